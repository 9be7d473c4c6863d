package report

import (
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/zikoelomari/guardrail/internal/scan"
	"github.com/zikoelomari/guardrail/pkg/buildinfo"
)

var sarifLevels = map[scan.Severity]string{
	scan.SeverityHigh:    "error",
	scan.SeverityMedium:  "warning",
	scan.SeverityLow:     "note",
	scan.SeverityUnknown: "none",
}

// ToSARIF renders the bundle as a SARIF 2.1.0 log with one run per scanner,
// so downstream viewers attribute findings to the tool that produced them.
func ToSARIF(bundle *scan.ScanBundle) (string, error) {
	log, err := sarif.New(sarif.Version210)
	if err != nil {
		return "", err
	}

	for _, name := range scan.ScannerNames(bundle) {
		result := bundle.Results[name]
		if !result.Success {
			continue
		}
		run := sarif.NewRunWithInformationURI(name, "https://github.com/zikoelomari/guardrail")
		run.Tool.Driver.WithVersion(buildinfo.BinaryVersion)

		seen := map[string]bool{}
		for _, issue := range result.Issues {
			ruleID := issue.RuleID
			if ruleID == "" {
				ruleID = name
			}
			if !seen[ruleID] {
				seen[ruleID] = true
				run.AddRule(ruleID).WithDescription(issue.Message)
			}

			res := run.CreateResultForRule(ruleID).
				WithLevel(sarifLevels[issue.Severity]).
				WithMessage(sarif.NewTextMessage(issue.Message))
			if issue.File != "" {
				region := sarif.NewSimpleRegion(issue.Line, issue.Line)
				res.AddLocation(sarif.NewLocationWithPhysicalLocation(
					sarif.NewPhysicalLocation().
						WithArtifactLocation(sarif.NewSimpleArtifactLocation(issue.File)).
						WithRegion(region)))
			}
		}
		log.AddRun(run)
	}

	var b strings.Builder
	if err := log.PrettyWrite(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}
