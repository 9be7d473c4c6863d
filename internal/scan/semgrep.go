package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/zikoelomari/guardrail/pkg/config"
	"github.com/zikoelomari/guardrail/pkg/logger"
)

// semgrepAdapter wraps semgrep with a per-language ruleset selection and a
// module-runner fallback for hosts where the direct binary misbehaves.
type semgrepAdapter struct {
	cfg *config.Config
}

// semgrep subprocesses inherit UTF-8 overrides so Windows hosts do not fall
// back to cp1252 when writing their JSON report.
var semgrepEnv = []string{"PYTHONUTF8=1", "PYTHONIOENCODING=utf-8"}

func (s *semgrepAdapter) Name() Scanner { return ScannerSemgrep }

func (s *semgrepAdapter) IsAvailable() bool {
	if _, err := exec.LookPath("semgrep"); err == nil {
		return true
	}
	// The module-runner fallback only needs a Python interpreter.
	_, err := exec.LookPath("python")
	if err != nil {
		_, err = exec.LookPath("python3")
	}
	return err == nil
}

func (s *semgrepAdapter) Scan(ctx context.Context, target string, language string) ScanResult {
	ruleset := s.cfg.SemgrepConfigFor(language)
	timeout := effectiveTimeout(s.cfg.Scan.Timeout, s.cfg.ToolTimeout("semgrep"))
	opts := RunOptions{Timeout: timeout, Env: semgrepEnv}

	argv := []string{"semgrep", "--json", "--config", ruleset, target}
	output, err := Run(ctx, argv, opts)
	if err != nil && needsModuleFallback(err) {
		// The fallback attempt is part of the contract: surface it in the
		// logs before re-invoking through the interpreter.
		logger.Warn(fmt.Sprintf("semgrep direct invocation failed (%v); retrying via python -m semgrep", err))
		output, err = Run(ctx, moduleRunnerArgv(ruleset, target), opts)
	}
	if err != nil {
		return failedResult(err)
	}

	issues, perr := parseSemgrepOutput(output)
	if perr != nil {
		return failedResult(perr)
	}
	return ScanResult{Success: true, Issues: issues}
}

// needsModuleFallback reports whether the failure looks like a missing
// binary or the known Windows encoding defect, both of which the module
// runner path can work around.
func needsModuleFallback(err error) bool {
	if IsToolNotInstalled(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"charmap", "codec", "encoding", "unicodeencodeerror"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func moduleRunnerArgv(ruleset, target string) []string {
	py := "python3"
	if _, err := exec.LookPath(py); err != nil {
		py = "python"
	}
	return []string{py, "-m", "semgrep", "--json", "--config", ruleset, target}
}

// parseSemgrepOutput converts semgrep JSON into normalized issues.
// Shape: results[] with check_id, path, start.line and extra.{severity,message}.
func parseSemgrepOutput(output string) ([]Issue, error) {
	var payload struct {
		Results []struct {
			CheckID string `json:"check_id"`
			Path    string `json:"path"`
			Start   struct {
				Line int `json:"line"`
			} `json:"start"`
			Extra map[string]interface{} `json:"extra"`
		} `json:"results"`
	}
	if output == "" {
		return []Issue{}, nil
	}
	if err := json.Unmarshal([]byte(output), &payload); err != nil {
		cleaned := extractJSONObject(output)
		if cleaned == "" {
			return nil, &OutputParseError{Tool: "semgrep", Wrapped: err}
		}
		if uerr := json.Unmarshal([]byte(cleaned), &payload); uerr != nil {
			return nil, &OutputParseError{Tool: "semgrep", Wrapped: uerr}
		}
	}

	issues := make([]Issue, 0, len(payload.Results))
	for _, r := range payload.Results {
		issues = append(issues, Issue{
			Scanner:  ScannerSemgrep,
			Severity: NormalizeSemgrepSeverity(getString(r.Extra, "severity")),
			Message:  getString(r.Extra, "message"),
			File:     r.Path,
			Line:     r.Start.Line,
			RuleID:   r.CheckID,
			Raw:      r.Extra,
		})
	}
	return issues, nil
}
