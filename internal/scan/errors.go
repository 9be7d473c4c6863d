package scan

import (
	"errors"
	"fmt"
	"time"
)

// Typed errors for the scanner pipeline. Adapter-level failures are captured
// into that adapter's ScanResult and never abort sibling adapters.

// ToolNotInstalledError indicates the scanner binary is absent from PATH
type ToolNotInstalledError struct {
	Tool string
}

func (e *ToolNotInstalledError) Error() string {
	return fmt.Sprintf("%s is not installed (binary not found in PATH)", e.Tool)
}

// ToolTimeoutError indicates the external process exceeded its deadline
type ToolTimeoutError struct {
	Tool    string
	Timeout time.Duration
}

func (e *ToolTimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %v", e.Tool, e.Timeout)
}

// ToolExecutionError indicates an exit code outside the accepted set
type ToolExecutionError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ToolExecutionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed (exit %d): %s", e.Tool, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s failed (exit %d)", e.Tool, e.ExitCode)
}

// OutputParseError indicates malformed JSON from an underlying tool
type OutputParseError struct {
	Tool    string
	Wrapped error
}

func (e *OutputParseError) Error() string {
	return fmt.Sprintf("failed to parse %s JSON output: %v", e.Tool, e.Wrapped)
}

func (e *OutputParseError) Unwrap() error { return e.Wrapped }

// InvalidScannerError indicates the caller requested an unknown scanner name
type InvalidScannerError struct {
	Names []string
}

func (e *InvalidScannerError) Error() string {
	return fmt.Sprintf("unsupported scanner(s): %v (valid choices: %v)", e.Names, AllScanners)
}

// IsToolNotInstalled checks if an error is a missing-binary error
func IsToolNotInstalled(err error) bool {
	var e *ToolNotInstalledError
	return errors.As(err, &e)
}

// IsToolTimeout checks if an error is a tool timeout
func IsToolTimeout(err error) bool {
	var e *ToolTimeoutError
	return errors.As(err, &e)
}

// IsInvalidScanner checks if an error is an invalid scanner selection
func IsInvalidScanner(err error) bool {
	var e *InvalidScannerError
	return errors.As(err, &e)
}
