package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/zikoelomari/guardrail/pkg/config"
	"github.com/zikoelomari/guardrail/pkg/logger"
)

// structuralCheck matches a risky call shape on a single source line.
// Matching is lexical: the detector keeps no parse tree, so commented-out
// code will still flag. That is acceptable for a heuristic baseline that
// must run with zero external binaries installed.
type structuralCheck struct {
	ruleID   string
	severity Severity
	message  string
	re       *regexp.Regexp
}

var structuralChecks = []structuralCheck{
	{
		ruleID:   "dynamic_exec",
		severity: SeverityHigh,
		message:  "dynamic code execution (exec/eval/compile)",
		re:       regexp.MustCompile(`\b(?:exec|eval|compile)\s*\(`),
	},
	{
		ruleID:   "os_system",
		severity: SeverityHigh,
		message:  "shell command via os.system",
		re:       regexp.MustCompile(`\bos\s*\.\s*system\s*\(`),
	},
	{
		ruleID:   "subprocess_call",
		severity: SeverityMedium,
		message:  "subprocess invocation (Popen/run/call)",
		re:       regexp.MustCompile(`\bsubprocess\s*\.\s*(?:Popen|run|call|check_output|check_call)\s*\(`),
	},
	{
		ruleID:   "http_client",
		severity: SeverityLow,
		message:  "outbound HTTP request (requests/httpx)",
		re:       regexp.MustCompile(`\b(?:requests|httpx)\s*\.\s*(?:get|post|put|delete|patch|head|options|request)\s*\(`),
	},
}

// Source file extensions the detector walks when given a directory.
var detectorSourceGlobs = []string{
	"**/*.py", "**/*.js", "**/*.ts", "**/*.jsx", "**/*.tsx",
	"**/*.java", "**/*.cs", "**/*.go", "**/*.rb", "**/*.php",
}

var detectorSkipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
}

// Detector is the built-in heuristic scanner. Unlike the external
// adapters it needs no binary on PATH and is therefore always available.
type Detector struct {
	cfg *config.Config
}

func NewDetector(cfg *config.Config) *Detector {
	return &Detector{cfg: cfg}
}

func (d *Detector) Name() Scanner { return ScannerDetector }

func (d *Detector) IsAvailable() bool { return true }

// ScanSource analyzes in-memory code without touching the filesystem.
// Issues carry 1-based line numbers relative to the snippet.
func (d *Detector) ScanSource(code string) []Issue {
	issues := []Issue{}
	if !utf8.ValidString(code) {
		return []Issue{{
			Scanner:  ScannerDetector,
			Severity: SeverityUnknown,
			Message:  "input is not valid text; skipped heuristic analysis",
			RuleID:   "undecodable_input",
		}}
	}
	for i, line := range strings.Split(code, "\n") {
		for _, chk := range structuralChecks {
			if chk.re.MatchString(line) {
				issues = append(issues, Issue{
					Scanner:  ScannerDetector,
					Severity: chk.severity,
					Message:  chk.message,
					Line:     i + 1,
					RuleID:   chk.ruleID,
					Raw:      map[string]interface{}{"line": strings.TrimSpace(line)},
				})
			}
		}
	}
	issues = append(issues, scanSecrets(code, d.cfg.Scan.RevealSecrets)...)
	return issues
}

// Scan implements Adapter for a file or directory target.
func (d *Detector) Scan(ctx context.Context, target, language string) ScanResult {
	info, err := os.Stat(target)
	if err != nil {
		return failedResult(fmt.Errorf("detector: %w", err))
	}

	var files []string
	if info.IsDir() {
		files, err = d.collectFiles(target)
		if err != nil {
			return failedResult(fmt.Errorf("detector: %w", err))
		}
	} else {
		files = []string{target}
	}

	issues := []Issue{}
	scanned := 0
	for _, path := range files {
		select {
		case <-ctx.Done():
			return failedResult(&ToolTimeoutError{Tool: "detector", Timeout: d.cfg.Scan.Timeout})
		default:
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("detector: skipping unreadable file", logger.String("path", path), logger.Err(err))
			continue
		}
		scanned++
		rel := relOrSelf(target, path)
		for _, iss := range d.scanContent(data) {
			iss.File = rel
			issues = append(issues, iss)
		}
	}

	return ScanResult{
		Success: true,
		Issues:  issues,
		Metrics: map[string]interface{}{"files_scanned": scanned},
	}
}

// scanContent handles raw bytes, reporting a single explanatory issue for
// content that cannot be decoded rather than failing the whole scan.
func (d *Detector) scanContent(data []byte) []Issue {
	if !utf8.Valid(data) {
		return []Issue{{
			Scanner:  ScannerDetector,
			Severity: SeverityUnknown,
			Message:  "file is not valid text; skipped heuristic analysis",
			RuleID:   "undecodable_input",
		}}
	}
	return d.ScanSource(string(data))
}

func (d *Detector) collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if detectorSkipDirs[entry.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		for _, glob := range detectorSourceGlobs {
			if ok, _ := doublestar.Match(glob, rel); ok {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	return files, err
}

func relOrSelf(root, path string) string {
	if root == path {
		return filepath.Base(path)
	}
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
