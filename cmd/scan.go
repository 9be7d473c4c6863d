/*
Copyright © 2025 Zakaria El Omari
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zikoelomari/guardrail/internal/report"
	"github.com/zikoelomari/guardrail/internal/scan"
	"github.com/zikoelomari/guardrail/pkg/exitcode"
	"github.com/zikoelomari/guardrail/pkg/logger"
)

var scanCmd = &cobra.Command{
	Use:   "scan [target]",
	Short: "Scan a file or directory for security issues",
	Long: `Scan runs the selected scanners against a file or directory and prints
a combined report. Without --scanners, a conservative default set is
chosen from the detected language. Pass "-" to scan a snippet from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringSlice("scanners", nil, "Scanners to run (bandit,semgrep,snyk,eslint,codeql,detector)")
	scanCmd.Flags().String("language", "", "Target language (detected when omitted)")
	scanCmd.Flags().String("format", "concise", "Output format (concise|markdown|json|html|sarif|junit)")
	scanCmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	scanCmd.Flags().Bool("save", false, "Persist the report under the reports directory")
	scanCmd.Flags().Bool("reveal-secrets", false, "Show matched secrets unmasked")
	scanCmd.Flags().Bool("force", false, "Run scanners that platform policy would skip")
	scanCmd.Flags().String("fail-on", "", "Exit non-zero when findings at or above this severity exist (high|medium|low)")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	scanners, _ := cmd.Flags().GetStringSlice("scanners")
	language, _ := cmd.Flags().GetString("language")
	reveal, _ := cmd.Flags().GetBool("reveal-secrets")
	force, _ := cmd.Flags().GetBool("force")
	save, _ := cmd.Flags().GetBool("save")
	if reveal {
		cfg.Scan.RevealSecrets = true
	}
	if save {
		cfg.Reports.Save = true
	}

	orchestrator := scan.NewOrchestrator(cfg)
	opts := scan.Options{
		Scanners:             scanners,
		Language:             language,
		ForcePlatformBlocked: force,
	}

	var bundle *scan.ScanBundle
	var err error
	if args[0] == "-" {
		code, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("reading snippet from stdin: %w", readErr)
		}
		bundle, err = orchestrator.RunSnippet(cmd.Context(), string(code), opts)
	} else {
		bundle, err = orchestrator.Run(cmd.Context(), args[0], opts)
	}
	if err != nil {
		if scan.IsInvalidScanner(err) {
			logger.Error(err.Error())
			return exitWith(exitcode.ValidationError)
		}
		return err
	}

	report.SaveBundle(cfg, "scan", bundle)
	if err := emitReport(cmd, bundle); err != nil {
		return err
	}
	return applyFailOn(cmd, bundle)
}

// emitReport renders the bundle per --format to stdout or --output
func emitReport(cmd *cobra.Command, bundle *scan.ScanBundle) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	rendered, err := report.NewFormatter(report.OutputFormat(format)).Format(bundle)
	if err != nil {
		return err
	}
	if output == "" {
		cmd.Print(rendered)
		return nil
	}
	if err := os.WriteFile(output, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("writing report to %s: %w", output, err)
	}
	logger.Info("report written", logger.String("path", output))
	return nil
}

// applyFailOn returns a FindingsError exit when the --fail-on threshold is
// met. It never calls os.Exit directly: callers may hold deferred cleanups.
func applyFailOn(cmd *cobra.Command, bundle *scan.ScanBundle) error {
	failOn, _ := cmd.Flags().GetString("fail-on")
	counts := bundle.SeverityCounts
	var tripped bool
	switch failOn {
	case "":
		return nil
	case "high":
		tripped = counts.High > 0
	case "medium":
		tripped = counts.High > 0 || counts.Medium > 0
	case "low":
		tripped = counts.High > 0 || counts.Medium > 0 || counts.Low > 0
	default:
		return fmt.Errorf("invalid --fail-on value %q (expected high, medium or low)", failOn)
	}
	if tripped {
		logger.Error("findings at or above fail-on threshold",
			logger.String("threshold", failOn),
			logger.Int("high", counts.High),
			logger.Int("medium", counts.Medium),
			logger.Int("low", counts.Low))
		return exitWith(exitcode.FindingsError)
	}
	return nil
}
