/*
Copyright © 2025 Zakaria El Omari
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zikoelomari/guardrail/pkg/buildinfo"
	"github.com/zikoelomari/guardrail/pkg/config"
	"github.com/zikoelomari/guardrail/pkg/exitcode"
	"github.com/zikoelomari/guardrail/pkg/logger"
)

// exitError carries a process exit code back through cobra's error return
// instead of calling os.Exit inside a command, so deferred cleanups (fetched
// repository temp directories in particular) still run.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func exitWith(code int) error { return &exitError{code: code} }

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guardrail",
		Short: "Multi-scanner security analysis for code and repositories",
		Long: `Guardrail orchestrates security scanners (bandit, semgrep, snyk, eslint)
plus a built-in heuristic detector over files, directories, snippets and
remote repositories, and folds their findings into one risk-scored report.

Examples:
   guardrail scan ./src              # Scan a directory
   guardrail repo github.com/o/r     # Fetch and scan a repository
   guardrail status                  # Show which scanner binaries are available
   guardrail serve                   # Run the HTTP API`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
		// Commands log their own failures; cobra's error echo would
		// duplicate them.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("guardrail {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// This is called from init() for production and can be called explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(scanCmd)
	cmd.AddCommand(repoCmd)
	cmd.AddCommand(statusCmd)
	cmd.AddCommand(serveCmd)
	cmd.AddCommand(generateCmd)
	cmd.AddCommand(versionCmd)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var eerr *exitError
		if errors.As(err, &eerr) {
			os.Exit(eerr.code)
		}
		logger.Error("Command execution failed", logger.Err(err))
		os.Exit(exitcode.GeneralError)
	}
}

func init() {
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	cfg := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "guardrail",
	}
	if err := logger.Initialize(cfg); err != nil {
		if _, writeErr := os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n"); writeErr != nil {
			_ = writeErr
		}
		os.Exit(exitcode.ConfigError)
	}
}

// loadConfig loads the merged global + project configuration, exiting on error
func loadConfig() *config.Config {
	cfg, err := config.LoadProjectConfig()
	if err != nil {
		logger.Error("Failed to load configuration", logger.Err(err))
		os.Exit(exitcode.ConfigError)
	}
	return cfg
}
