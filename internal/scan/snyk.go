package scan

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"

	"github.com/zikoelomari/guardrail/pkg/config"
)

// snykAdapter wraps `snyk code test` for file or directory targets
type snykAdapter struct {
	cfg *config.Config
}

func (s *snykAdapter) Name() Scanner { return ScannerSnyk }

func (s *snykAdapter) IsAvailable() bool {
	_, err := exec.LookPath("snyk")
	return err == nil
}

func (s *snykAdapter) Scan(ctx context.Context, target string, language string) ScanResult {
	argv := []string{"snyk", "code", "test", "--json"}
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		argv = append(argv, "--file", target)
	} else {
		argv = append(argv, target)
	}

	timeout := effectiveTimeout(s.cfg.Scan.Timeout, s.cfg.ToolTimeout("snyk"))
	output, err := Run(ctx, argv, RunOptions{Timeout: timeout})
	if err != nil {
		return failedResult(err)
	}

	issues, perr := parseSnykOutput(output)
	if perr != nil {
		return failedResult(perr)
	}
	return ScanResult{Success: true, Issues: issues}
}

// parseSnykOutput converts snyk JSON into normalized issues. Unlike
// bandit/semgrep, snyk reports a top-level `issues` list.
func parseSnykOutput(output string) ([]Issue, error) {
	var payload struct {
		Issues []map[string]interface{} `json:"issues"`
	}
	if output == "" {
		return []Issue{}, nil
	}
	if err := json.Unmarshal([]byte(output), &payload); err != nil {
		return nil, &OutputParseError{Tool: "snyk", Wrapped: err}
	}

	issues := make([]Issue, 0, len(payload.Issues))
	for _, r := range payload.Issues {
		msg := getString(r, "title", "message")
		issues = append(issues, Issue{
			Scanner:  ScannerSnyk,
			Severity: NormalizeSnykSeverity(getString(r, "severity")),
			Message:  msg,
			File:     getString(r, "file", "filePath"),
			Line:     getInt(r, "line", "lineNumber"),
			RuleID:   getString(r, "id", "ruleId"),
			Raw:      r,
		})
	}
	return issues, nil
}
