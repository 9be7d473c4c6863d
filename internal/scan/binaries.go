package scan

import (
	"context"
	"os/exec"
	"strings"

	"github.com/zikoelomari/guardrail/pkg/config"
)

// externalTools are the scanners that require a binary on PATH. The
// detector is excluded because it is built in, codeql because its adapter
// is a permanent stub.
var externalTools = []Scanner{ScannerBandit, ScannerSemgrep, ScannerSnyk, ScannerESLint}

// CheckBinaries probes each external scanner binary with --version and a
// short timeout. A tool that hangs or errors is reported unavailable; the
// probe never fails the caller.
func CheckBinaries(ctx context.Context, cfg *config.Config) map[string]BinaryAvailability {
	out := make(map[string]BinaryAvailability, len(externalTools))
	for _, tool := range externalTools {
		out[string(tool)] = probeBinary(ctx, string(tool), cfg)
	}
	return out
}

func probeBinary(ctx context.Context, name string, cfg *config.Config) BinaryAvailability {
	if _, err := exec.LookPath(name); err != nil {
		return BinaryAvailability{Available: false, Error: "not found on PATH"}
	}
	probeCtx, cancel := context.WithTimeout(ctx, cfg.Scan.BinaryProbe)
	defer cancel()
	output, err := exec.CommandContext(probeCtx, name, "--version").CombinedOutput()
	if err != nil {
		return BinaryAvailability{Available: false, Error: err.Error()}
	}
	return BinaryAvailability{Available: true, Version: firstNonEmptyLine(string(output))}
}

func firstNonEmptyLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
