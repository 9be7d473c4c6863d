package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zikoelomari/guardrail/internal/fetch"
	"github.com/zikoelomari/guardrail/internal/report"
	"github.com/zikoelomari/guardrail/internal/scan"
	"github.com/zikoelomari/guardrail/pkg/exitcode"
	"github.com/zikoelomari/guardrail/pkg/logger"
)

var repoCmd = &cobra.Command{
	Use:   "repo [url]",
	Short: "Fetch a remote repository and scan it",
	Long: `Repo downloads a repository (GitHub zipball, or a shallow git clone for
other hosts) into a bounded temporary directory, scans it, and cleans up.
A '#branch' suffix or --branch selects a branch; otherwise the remote's
default branch is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runRepo,
}

func init() {
	repoCmd.Flags().String("branch", "", "Branch to fetch (default: remote default branch)")
	repoCmd.Flags().String("token", "", "Access token for private repositories (default: GITHUB_TOKEN env)")
	repoCmd.Flags().StringSlice("scanners", nil, "Scanners to run (bandit,semgrep,snyk,eslint,codeql,detector)")
	repoCmd.Flags().String("language", "", "Target language (detected when omitted)")
	repoCmd.Flags().String("format", "concise", "Output format (concise|markdown|json|html|sarif|junit)")
	repoCmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	repoCmd.Flags().Bool("save", false, "Persist the report under the reports directory")
	repoCmd.Flags().String("fail-on", "", "Exit non-zero when findings at or above this severity exist (high|medium|low)")
}

func runRepo(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if save, _ := cmd.Flags().GetBool("save"); save {
		cfg.Reports.Save = true
	}

	// Reject bad caller input before any bytes cross the network.
	scanners, _ := cmd.Flags().GetStringSlice("scanners")
	if err := scan.ValidateScanners(scanners); err != nil {
		logger.Error(err.Error())
		return exitWith(exitcode.ValidationError)
	}
	ref, err := fetch.ParseRepoURL(args[0])
	if err != nil {
		logger.Error(err.Error())
		return exitWith(exitcode.ValidationError)
	}
	if branch, _ := cmd.Flags().GetString("branch"); branch != "" {
		ref.Branch = branch
	}

	token, _ := cmd.Flags().GetString("token")
	dir, cleanup, err := fetch.NewFetcher(cfg).Fetch(cmd.Context(), ref, token)
	if err != nil {
		logger.Error("fetch failed", logger.Err(err))
		return exitWith(exitcode.NetworkError)
	}
	defer cleanup()

	language, _ := cmd.Flags().GetString("language")
	bundle, err := scan.NewOrchestrator(cfg).Run(cmd.Context(), dir, scan.Options{
		Scanners: scanners,
		Language: language,
	})
	if err != nil {
		return err
	}
	bundle.Target = ref.String()

	report.SaveBundle(cfg, "repo", bundle)
	if err := emitReport(cmd, bundle); err != nil {
		return err
	}
	return applyFailOn(cmd, bundle)
}
