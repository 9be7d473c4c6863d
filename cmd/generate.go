package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zikoelomari/guardrail/internal/gen"
	"github.com/zikoelomari/guardrail/internal/report"
	"github.com/zikoelomari/guardrail/internal/scan"
	"github.com/zikoelomari/guardrail/pkg/logger"
)

var generateCmd = &cobra.Command{
	Use:   "generate [description]",
	Short: "Generate code from a description and scan the result",
	Long: `Generate produces code from a natural-language description using the
configured provider and, unless --no-scan is given, runs the heuristic
detector over the result. Generated code is untrusted until scanned.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("language", "python", "Target language")
	generateCmd.Flags().String("provider", "", "Generation provider (default: simulated)")
	generateCmd.Flags().StringP("output", "o", "", "Write generated code to a file instead of stdout")
	generateCmd.Flags().Bool("no-scan", false, "Skip scanning the generated code")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	language, _ := cmd.Flags().GetString("language")
	providerName, _ := cmd.Flags().GetString("provider")
	output, _ := cmd.Flags().GetString("output")
	noScan, _ := cmd.Flags().GetBool("no-scan")

	provider, err := gen.GetProvider(providerName)
	if err != nil {
		return err
	}
	generation, err := provider.Generate(cmd.Context(), gen.Request{
		Description: args[0],
		Language:    language,
	})
	if err != nil {
		return err
	}

	if output == "" {
		cmd.Println(generation.Code)
	} else {
		if err := os.WriteFile(output, []byte(generation.Code), 0o644); err != nil {
			return fmt.Errorf("writing generated code to %s: %w", output, err)
		}
		logger.Info("generated code written",
			logger.String("path", output),
			logger.String("provider", generation.Provider))
	}

	if noScan {
		return nil
	}
	bundle, err := scan.NewOrchestrator(cfg).RunSnippet(cmd.Context(), generation.Code, scan.Options{
		Scanners: []string{string(scan.ScannerDetector)},
		Language: generation.Language,
	})
	if err != nil {
		return err
	}
	rendered, err := report.NewFormatter(report.FormatConcise).Format(bundle)
	if err != nil {
		return err
	}
	cmd.Print(rendered)
	return nil
}
