package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/zikoelomari/guardrail/internal/scan"
	"github.com/zikoelomari/guardrail/pkg/config"
	"github.com/zikoelomari/guardrail/pkg/logger"
)

// bundleSchema guards persisted reports against shape drift. Validation
// failures are logged, not fatal: persistence is best-effort by contract.
const bundleSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["run_id", "target", "results", "severity_counts", "risk_score"],
  "properties": {
    "run_id": {"type": "string", "minLength": 1},
    "target": {"type": "string"},
    "language": {"type": "string"},
    "results": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["success", "issues"],
        "properties": {
          "success": {"type": "boolean"},
          "error": {"type": "string"},
          "issues": {"type": "array"}
        }
      }
    },
    "timings": {"type": "object"},
    "suppressed": {"type": "object"},
    "severity_counts": {
      "type": "object",
      "required": ["HIGH", "MEDIUM", "LOW"]
    },
    "risk_score": {"type": "number", "minimum": 0}
  }
}`

var compiledBundleSchema *gojsonschema.Schema

func init() {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(bundleSchema))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded report schema: %v", err))
	}
	compiledBundleSchema = schema
}

// ValidateBundle checks a bundle against the persisted-report schema
func ValidateBundle(bundle *scan.ScanBundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return err
	}
	result, err := compiledBundleSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return err
	}
	if !result.Valid() {
		return fmt.Errorf("report failed schema validation: %v", result.Errors())
	}
	return nil
}

// SaveBundle persists a bundle as JSON under the reports directory. Errors
// are logged and swallowed so a full disk never fails a scan.
func SaveBundle(cfg *config.Config, kind string, bundle *scan.ScanBundle) string {
	if !cfg.Reports.Save {
		return ""
	}
	if err := ValidateBundle(bundle); err != nil {
		logger.Warn("not persisting malformed report", logger.Err(err))
		return ""
	}
	if err := os.MkdirAll(cfg.Reports.Dir, 0o755); err != nil {
		logger.Warn("could not create reports directory", logger.Err(err))
		return ""
	}

	name := fmt.Sprintf("report_%s_%s.json", kind, time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(cfg.Reports.Dir, name)
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		logger.Warn("could not serialize report", logger.Err(err))
		return ""
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Warn("could not write report", logger.String("path", path), logger.Err(err))
		return ""
	}
	logger.Info("report saved", logger.String("path", path))
	return path
}
