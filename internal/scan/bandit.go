package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/zikoelomari/guardrail/pkg/config"
)

// banditAdapter wraps the bandit Python security scanner
type banditAdapter struct {
	cfg *config.Config
}

func (b *banditAdapter) Name() Scanner { return ScannerBandit }

func (b *banditAdapter) IsAvailable() bool {
	_, err := exec.LookPath("bandit")
	return err == nil
}

func (b *banditAdapter) Scan(ctx context.Context, target string, language string) ScanResult {
	argv := []string{"bandit", "-f", "json", "-q"}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		argv = append(argv, "-r")
	}
	argv = append(argv, target)

	timeout := effectiveTimeout(b.cfg.Scan.Timeout, b.cfg.ToolTimeout("bandit"))
	output, err := Run(ctx, argv, RunOptions{Timeout: timeout})
	if err != nil {
		return failedResult(err)
	}

	issues, metrics, perr := parseBanditOutput(output)
	if perr != nil {
		return failedResult(perr)
	}
	return ScanResult{Success: true, Issues: issues, Metrics: metrics}
}

// parseBanditOutput converts bandit JSON into normalized issues.
// Bandit reports results[] with issue_severity/issue_confidence labels and
// a metrics block (lines-of-code counters) passed through untouched.
func parseBanditOutput(output string) ([]Issue, map[string]interface{}, error) {
	var payload struct {
		Results []map[string]interface{} `json:"results"`
		Metrics map[string]interface{}   `json:"metrics"`
	}
	if output == "" {
		return []Issue{}, nil, nil
	}
	if err := json.Unmarshal([]byte(output), &payload); err != nil {
		cleaned := extractJSONObject(output)
		if cleaned == "" {
			return nil, nil, &OutputParseError{Tool: "bandit", Wrapped: err}
		}
		if uerr := json.Unmarshal([]byte(cleaned), &payload); uerr != nil {
			return nil, nil, &OutputParseError{Tool: "bandit", Wrapped: uerr}
		}
	}

	issues := make([]Issue, 0, len(payload.Results))
	for _, r := range payload.Results {
		msg := getString(r, "issue_text")
		if name := getString(r, "test_name"); name != "" {
			msg = fmt.Sprintf("%s: %s", name, msg)
		}
		issues = append(issues, Issue{
			Scanner:  ScannerBandit,
			Severity: NormalizeBanditSeverity(getString(r, "issue_severity")),
			Message:  msg,
			File:     getString(r, "filename"),
			Line:     getInt(r, "line_number"),
			RuleID:   getString(r, "test_id"),
			Raw:      r,
		})
	}
	return issues, payload.Metrics, nil
}
