package report

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/zikoelomari/guardrail/internal/scan"
)

// ToJUnit renders the bundle as JUnit XML: one testsuite per scanner, one
// failing testcase per finding. Scanners with no findings emit a single
// passing case so CI systems show them as executed.
func ToJUnit(bundle *scan.ScanBundle) (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	suites := doc.CreateElement("testsuites")
	suites.CreateAttr("name", "guardrail")

	for _, name := range scan.ScannerNames(bundle) {
		result := bundle.Results[name]
		suite := suites.CreateElement("testsuite")
		suite.CreateAttr("name", name)
		suite.CreateAttr("time", fmt.Sprintf("%.3f", bundle.Timings[name]))

		if !result.Success {
			suite.CreateAttr("tests", "1")
			suite.CreateAttr("errors", "1")
			tc := suite.CreateElement("testcase")
			tc.CreateAttr("name", name)
			errEl := tc.CreateElement("error")
			errEl.CreateAttr("message", result.Error)
			continue
		}

		if len(result.Issues) == 0 {
			suite.CreateAttr("tests", "1")
			suite.CreateAttr("failures", "0")
			tc := suite.CreateElement("testcase")
			tc.CreateAttr("name", name+": no findings")
			continue
		}

		suite.CreateAttr("tests", fmt.Sprintf("%d", len(result.Issues)))
		suite.CreateAttr("failures", fmt.Sprintf("%d", len(result.Issues)))
		for _, issue := range result.Issues {
			tc := suite.CreateElement("testcase")
			tc.CreateAttr("name", fmt.Sprintf("%s: %s", issue.RuleID, location(issue)))
			failure := tc.CreateElement("failure")
			failure.CreateAttr("message", issue.Message)
			failure.CreateAttr("type", string(issue.Severity))
			failure.SetText(fmt.Sprintf("[%s] %s at %s", issue.Severity, issue.Message, location(issue)))
		}
	}

	doc.Indent(2)
	return doc.WriteToString()
}
