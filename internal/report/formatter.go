/*
Copyright © 2025 Zakaria El Omari
*/
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/zikoelomari/guardrail/internal/scan"
)

// OutputFormat represents the format for scan report output
type OutputFormat string

const (
	FormatConcise  OutputFormat = "concise"
	FormatMarkdown OutputFormat = "markdown"
	FormatJSON     OutputFormat = "json"
	FormatHTML     OutputFormat = "html"
	FormatSARIF    OutputFormat = "sarif"
	FormatJUnit    OutputFormat = "junit"
)

// Formatter renders a scan bundle in the configured format
type Formatter struct {
	format OutputFormat
}

func NewFormatter(format OutputFormat) *Formatter {
	return &Formatter{format: format}
}

// Format renders the bundle. Unknown formats are an error, not a fallback.
func (f *Formatter) Format(bundle *scan.ScanBundle) (string, error) {
	switch f.format {
	case FormatConcise:
		return f.formatConcise(bundle), nil
	case FormatMarkdown:
		return f.formatMarkdown(bundle), nil
	case FormatJSON:
		return f.formatJSON(bundle)
	case FormatHTML:
		return f.formatHTML(bundle)
	case FormatSARIF:
		return ToSARIF(bundle)
	case FormatJUnit:
		return ToJUnit(bundle)
	default:
		return "", fmt.Errorf("unsupported format: %s", f.format)
	}
}

// formatConcise prints a short, colorized summary suitable for CI logs
func (f *Formatter) formatConcise(bundle *scan.ScanBundle) string {
	color := func(code string, s string) string {
		if os.Getenv("NO_COLOR") != "" {
			return s
		}
		return "\x1b[" + code + "m" + s + "\x1b[0m"
	}
	bold := func(s string) string { return color("1", s) }
	red := func(s string) string { return color("31", s) }
	yellow := func(s string) string { return color("33", s) }
	green := func(s string) string { return color("32", s) }

	var b strings.Builder
	b.WriteString(bold(fmt.Sprintf("guardrail: %s", bundle.Target)))
	if bundle.Language != "" {
		b.WriteString(fmt.Sprintf(" (%s)", bundle.Language))
	}
	b.WriteString("\n")

	counts := bundle.SeverityCounts
	summary := fmt.Sprintf("risk %.0f: %d high, %d medium, %d low",
		bundle.RiskScore, counts.High, counts.Medium, counts.Low)
	switch {
	case counts.High > 0:
		b.WriteString(red(summary))
	case counts.Medium > 0:
		b.WriteString(yellow(summary))
	default:
		b.WriteString(green(summary))
	}
	b.WriteString("\n")

	for _, name := range scan.ScannerNames(bundle) {
		result := bundle.Results[name]
		if !result.Success {
			b.WriteString(fmt.Sprintf("  %s: %s\n", name, yellow("failed: "+truncate(result.Error, 80))))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s: %d issue(s) in %.2fs\n", name, len(result.Issues), bundle.Timings[name]))
		for _, issue := range result.Issues {
			rule := issue.RuleID
			if rule == "" {
				rule = "-"
			}
			b.WriteString(fmt.Sprintf("    [%s] %s %s %s\n",
				issue.Severity, location(issue), rule, truncate(issue.Message, 100)))
		}
	}
	for name, reason := range bundle.Suppressed {
		b.WriteString(fmt.Sprintf("  %s: skipped (%s)\n", name, reason))
	}
	return b.String()
}

func (f *Formatter) formatMarkdown(bundle *scan.ScanBundle) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Scan Report: %s\n\n", bundle.Target))
	b.WriteString(fmt.Sprintf("- **Run ID**: %s\n", bundle.RunID))
	if bundle.Language != "" {
		b.WriteString(fmt.Sprintf("- **Language**: %s\n", bundle.Language))
	}
	counts := bundle.SeverityCounts
	b.WriteString(fmt.Sprintf("- **Risk score**: %.0f (%d high, %d medium, %d low)\n\n",
		bundle.RiskScore, counts.High, counts.Medium, counts.Low))

	for _, name := range scan.ScannerNames(bundle) {
		result := bundle.Results[name]
		b.WriteString(fmt.Sprintf("## %s\n\n", name))
		if !result.Success {
			b.WriteString(fmt.Sprintf("Failed: %s\n\n", result.Error))
			continue
		}
		if len(result.Issues) == 0 {
			b.WriteString("No findings.\n\n")
			continue
		}
		b.WriteString("| Severity | Location | Rule | Message |\n")
		b.WriteString("|----------|----------|------|---------|\n")
		for _, issue := range result.Issues {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				issue.Severity, location(issue), issue.RuleID, escapePipes(issue.Message)))
		}
		b.WriteString("\n")
	}

	if len(bundle.Suppressed) > 0 {
		b.WriteString("## Suppressed scanners\n\n")
		names := make([]string, 0, len(bundle.Suppressed))
		for name := range bundle.Suppressed {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(fmt.Sprintf("- **%s**: %s\n", name, bundle.Suppressed[name]))
		}
	}
	return b.String()
}

func (f *Formatter) formatJSON(bundle *scan.ScanBundle) (string, error) {
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func location(issue scan.Issue) string {
	switch {
	case issue.File != "" && issue.Line > 0:
		return fmt.Sprintf("%s:%d", issue.File, issue.Line)
	case issue.File != "":
		return issue.File
	case issue.Line > 0:
		return fmt.Sprintf("line %d", issue.Line)
	default:
		return "-"
	}
}

// truncate shortens a string to a display width, not a byte count, so wide
// runes in tool output do not blow past terminal columns.
func truncate(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
