package scan

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func TestRunMissingBinary(t *testing.T) {
	_, err := Run(context.Background(), []string{"guardrail-no-such-tool-xyz"}, RunOptions{})
	if err == nil {
		t.Fatal("expected an error for a missing binary")
	}
	if !IsToolNotInstalled(err) {
		t.Fatalf("expected ToolNotInstalledError, got %T: %v", err, err)
	}
}

func TestRunTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sleep")
	}
	start := time.Now()
	_, err := Run(context.Background(), []string{"sleep", "30"}, RunOptions{Timeout: 100 * time.Millisecond})
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if !IsToolTimeout(err) {
		t.Fatalf("expected ToolTimeoutError, got %T: %v", err, err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("process was not killed promptly: %v", elapsed)
	}
}

func TestRunAcceptsFindingsExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	// Exit 1 is the linter convention for "ran fine, found issues".
	out, err := Run(context.Background(), []string{"sh", "-c", "echo findings; exit 1"}, RunOptions{})
	if err != nil {
		t.Fatalf("exit 1 should be accepted by default: %v", err)
	}
	if out != "findings\n" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRunRejectsUnacceptedExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	_, err := Run(context.Background(), []string{"sh", "-c", "echo boom >&2; exit 3"}, RunOptions{})
	if err == nil {
		t.Fatal("expected an execution error")
	}
	execErr, ok := err.(*ToolExecutionError)
	if !ok {
		t.Fatalf("expected ToolExecutionError, got %T: %v", err, err)
	}
	if execErr.ExitCode != 3 {
		t.Errorf("expected exit 3, got %d", execErr.ExitCode)
	}
	if execErr.Stderr == "" {
		t.Error("stderr should be captured")
	}
}

func TestEffectiveTimeout(t *testing.T) {
	if got := effectiveTimeout(2*time.Minute, 0); got != 2*time.Minute {
		t.Errorf("zero per-tool should fall back to global, got %v", got)
	}
	if got := effectiveTimeout(2*time.Minute, 30*time.Second); got != 30*time.Second {
		t.Errorf("smaller per-tool should win, got %v", got)
	}
	if got := effectiveTimeout(time.Minute, 5*time.Minute); got != time.Minute {
		t.Errorf("global should cap per-tool, got %v", got)
	}
}
