package scan

import (
	"context"
	"encoding/json"
	"os/exec"

	"github.com/zikoelomari/guardrail/pkg/config"
)

// eslintAdapter wraps eslint's JSON formatter output
type eslintAdapter struct {
	cfg *config.Config
}

func (e *eslintAdapter) Name() Scanner { return ScannerESLint }

func (e *eslintAdapter) IsAvailable() bool {
	_, err := exec.LookPath("eslint")
	return err == nil
}

func (e *eslintAdapter) Scan(ctx context.Context, target string, language string) ScanResult {
	timeout := effectiveTimeout(e.cfg.Scan.Timeout, e.cfg.ToolTimeout("eslint"))
	output, err := Run(ctx, []string{"eslint", "-f", "json", target}, RunOptions{Timeout: timeout})
	if err != nil {
		return failedResult(err)
	}

	issues, perr := parseESLintOutput(output)
	if perr != nil {
		return failedResult(perr)
	}
	return ScanResult{Success: true, Issues: issues}
}

// parseESLintOutput flattens eslint's per-file findings arrays.
// Numeric severities map 1=warn to MEDIUM and 2=error to HIGH; 0=off never
// appears in output.
func parseESLintOutput(output string) ([]Issue, error) {
	var files []struct {
		FilePath string `json:"filePath"`
		Messages []struct {
			Line     int    `json:"line"`
			RuleID   string `json:"ruleId"`
			Severity int    `json:"severity"`
			Message  string `json:"message"`
		} `json:"messages"`
	}
	if output == "" {
		return []Issue{}, nil
	}
	if err := json.Unmarshal([]byte(output), &files); err != nil {
		return nil, &OutputParseError{Tool: "eslint", Wrapped: err}
	}

	var issues []Issue
	for _, f := range files {
		for _, m := range f.Messages {
			issues = append(issues, Issue{
				Scanner:  ScannerESLint,
				Severity: NormalizeESLintSeverity(m.Severity),
				Message:  m.Message,
				File:     f.FilePath,
				Line:     m.Line,
				RuleID:   m.RuleID,
				Raw: map[string]interface{}{
					"severity": m.Severity,
				},
			})
		}
	}
	if issues == nil {
		issues = []Issue{}
	}
	return issues, nil
}
