package cmd

import (
	"runtime"
	"sort"

	"github.com/spf13/cobra"

	"github.com/zikoelomari/guardrail/internal/scan"
	"github.com/zikoelomari/guardrail/pkg/buildinfo"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show scanner availability and platform information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig()

		cmd.Printf("guardrail %s on %s/%s\n\n", buildinfo.BinaryVersion, runtime.GOOS, runtime.GOARCH)

		binaries := scan.CheckBinaries(cmd.Context(), cfg)
		names := make([]string, 0, len(binaries))
		for name := range binaries {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b := binaries[name]
			if b.Available {
				cmd.Printf("  %-10s available  %s\n", name, b.Version)
			} else {
				cmd.Printf("  %-10s missing    %s\n", name, b.Error)
			}
		}
		cmd.Printf("  %-10s available  built-in\n", "detector")
		cmd.Printf("  %-10s missing    not configured in this environment\n", "codeql")

		policy := scan.DefaultPolicy()
		for _, sc := range scan.AllScanners {
			if blocked, reason := policy.Blocked(sc, runtime.GOOS); blocked {
				cmd.Printf("\n  note: %s is disabled on this platform (%s)\n", sc, reason)
			}
		}
		return nil
	},
}
