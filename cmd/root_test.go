package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zikoelomari/guardrail/internal/scan"
	"github.com/zikoelomari/guardrail/pkg/exitcode"
)

func executeCommand(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCommand()
	registerSubcommands(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := executeCommand(t, "version")
	if !strings.Contains(out, "guardrail") {
		t.Errorf("unexpected version output: %q", out)
	}
}

func TestScanCommandJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("import os\nos.system('ls')\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out := executeCommand(t, "scan", dir, "--scanners", "detector", "--format", "json")
	var bundle scan.ScanBundle
	if err := json.Unmarshal([]byte(out), &bundle); err != nil {
		t.Fatalf("scan --format json must emit valid JSON: %v\n%s", err, out)
	}
	if bundle.SeverityCounts.High != 1 {
		t.Errorf("expected one HIGH finding, got %+v", bundle.SeverityCounts)
	}
}

func TestScanCommandOutputFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("x = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	reportPath := filepath.Join(dir, "report.md")

	executeCommand(t, "scan", dir, "--scanners", "detector", "--format", "markdown", "-o", reportPath)
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if !strings.Contains(string(data), "# Scan Report") {
		t.Errorf("unexpected report content: %s", data)
	}
}

func TestScanCommandStdin(t *testing.T) {
	root := newRootCommand()
	registerSubcommands(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader("import os\nos.system('ls')\n"))
	// Subcommands are shared across roots, so reset flags another test set.
	root.SetArgs([]string{"scan", "-", "--scanners", "detector", "--language", "python", "--format", "json", "--output", ""})
	if err := root.Execute(); err != nil {
		t.Fatalf("stdin scan failed: %v", err)
	}
	var bundle scan.ScanBundle
	if err := json.Unmarshal(out.Bytes(), &bundle); err != nil {
		t.Fatalf("expected JSON output: %v\n%s", err, out.String())
	}
	if bundle.Target != "snippet" {
		t.Errorf("unexpected target: %q", bundle.Target)
	}
	if bundle.SeverityCounts.High == 0 {
		t.Errorf("expected HIGH findings, got %+v", bundle.SeverityCounts)
	}
}

func TestStatusCommand(t *testing.T) {
	out := executeCommand(t, "status")
	for _, want := range []string{"bandit", "semgrep", "detector", "codeql"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestRepoCommandInvalidScannerBeforeFetch(t *testing.T) {
	root := newRootCommand()
	registerSubcommands(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	// A bad scanner name must fail during validation; with a reachable
	// remote this would otherwise download the whole repository first.
	root.SetArgs([]string{"repo", "https://gitlab.com/acme/widget", "--scanners", "foo"})
	err := root.Execute()
	var eerr *exitError
	if !errors.As(err, &eerr) || eerr.code != exitcode.ValidationError {
		t.Fatalf("expected validation exit, got %T: %v", err, err)
	}
}

func TestScanCommandFailOn(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("import os\nos.system('ls')\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	root := newRootCommand()
	registerSubcommands(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	// The threshold trip surfaces as an error so deferred cleanups in
	// command bodies still run before the process exits.
	root.SetArgs([]string{"scan", dir, "--scanners", "detector", "--fail-on", "high", "--format", "json", "--output", ""})
	err := root.Execute()
	var eerr *exitError
	if !errors.As(err, &eerr) || eerr.code != exitcode.FindingsError {
		t.Fatalf("expected findings exit, got %T: %v", err, err)
	}
}

func TestGenerateCommandNoScan(t *testing.T) {
	out := executeCommand(t, "generate", "sum two numbers", "--language", "python", "--no-scan")
	if !strings.Contains(out, "def main()") {
		t.Errorf("expected generated python code:\n%s", out)
	}
}
