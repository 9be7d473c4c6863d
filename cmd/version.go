package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/zikoelomari/guardrail/pkg/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		extended, _ := cmd.Flags().GetBool("extended")
		if !extended {
			cmd.Printf("guardrail %s\n", buildinfo.BinaryVersion)
			return
		}
		cmd.Printf("guardrail %s\n", buildinfo.BinaryVersion)
		cmd.Printf("  go:       %s\n", runtime.Version())
		cmd.Printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		cmd.Printf("  module:   %s\n", buildinfo.ModuleVersion())
	},
}

func init() {
	versionCmd.Flags().Bool("extended", false, "Show build details")
}
