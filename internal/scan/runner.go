/*
Copyright © 2025 Zakaria El Omari
*/
package scan

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// defaultAcceptedExits covers the style-checker convention: 0 = clean,
// 1 = findings present but the tool itself ran fine.
var defaultAcceptedExits = []int{0, 1}

// RunOptions tunes a single external tool invocation
type RunOptions struct {
	// Timeout for the process; 0 means no deadline beyond ctx
	Timeout time.Duration
	// AcceptExitCodes lists exit codes treated as success (default {0, 1})
	AcceptExitCodes []int
	// Env entries appended to the inherited environment
	Env []string
	// Dir is the working directory for the process
	Dir string
}

// Run executes an external command, captures stdout, and classifies failures.
// The binary is looked up on PATH before spawning so a missing tool surfaces
// as ToolNotInstalledError rather than a spawn failure. On timeout the
// process is killed by the context; no child is left running.
func Run(ctx context.Context, argv []string, opts RunOptions) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("empty command")
	}
	tool := argv[0]

	if _, err := exec.LookPath(tool); err != nil {
		return "", &ToolNotInstalledError{Tool: tool}
	}

	rctx := ctx
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		rctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(rctx, tool, argv[1:]...) // #nosec G204 -- argv is built from fixed adapter templates
	cmd.Dir = opts.Dir
	cmd.Env = append(os.Environ(), opts.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if rctx.Err() == context.DeadlineExceeded {
		return "", &ToolTimeoutError{Tool: tool, Timeout: opts.Timeout}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			if exitAccepted(code, opts.AcceptExitCodes) {
				return decodeOutput(stdout.Bytes()), nil
			}
			return "", &ToolExecutionError{
				Tool:     tool,
				ExitCode: code,
				Stderr:   decodeOutput(bytes.TrimSpace(stderr.Bytes())),
			}
		}
		return "", err
	}

	return decodeOutput(stdout.Bytes()), nil
}

func exitAccepted(code int, accepted []int) bool {
	if len(accepted) == 0 {
		accepted = defaultAcceptedExits
	}
	for _, a := range accepted {
		if code == a {
			return true
		}
	}
	return false
}

// decodeOutput normalizes tool output to UTF-8. Windows-hosted tools can
// emit cp1252 bytes; those are transcoded instead of being passed through
// as invalid UTF-8 that would break JSON parsing downstream.
func decodeOutput(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// effectiveTimeout returns min(global, perTool) treating 0 as unset
func effectiveTimeout(global, perTool time.Duration) time.Duration {
	switch {
	case global > 0 && perTool > 0:
		if global < perTool {
			return global
		}
		return perTool
	case global > 0:
		return global
	default:
		return perTool
	}
}
