package report

import (
	"fmt"

	"github.com/aymerick/raymond"

	"github.com/zikoelomari/guardrail/internal/scan"
)

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Scan Report: {{target}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { border-bottom: 2px solid #ddd; padding-bottom: 0.3em; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5em; }
th, td { border: 1px solid #ddd; padding: 6px 10px; text-align: left; }
th { background: #f4f4f4; }
.sev-HIGH { color: #c0392b; font-weight: bold; }
.sev-MEDIUM { color: #d68910; font-weight: bold; }
.sev-LOW { color: #2874a6; }
.sev-UNKNOWN { color: #777; }
.failed { color: #c0392b; }
.summary { font-size: 1.1em; margin-bottom: 1em; }
</style>
</head>
<body>
<h1>Scan Report: {{target}}</h1>
<p class="summary">
Run {{runId}}{{#if language}} · {{language}}{{/if}} ·
risk score <strong>{{riskScore}}</strong>
({{counts.HIGH}} high, {{counts.MEDIUM}} medium, {{counts.LOW}} low)
</p>
{{#each scanners}}
<h2>{{name}}</h2>
{{#if failed}}
<p class="failed">Failed: {{error}}</p>
{{else}}
{{#if issues}}
<table>
<tr><th>Severity</th><th>Location</th><th>Rule</th><th>Message</th></tr>
{{#each issues}}
<tr>
<td class="sev-{{severity}}">{{severity}}</td>
<td>{{location}}</td>
<td>{{ruleId}}</td>
<td>{{message}}</td>
</tr>
{{/each}}
</table>
{{else}}
<p>No findings.</p>
{{/if}}
{{/if}}
{{/each}}
{{#if suppressed}}
<h2>Suppressed scanners</h2>
<ul>
{{#each suppressed}}
<li><strong>{{name}}</strong>: {{reason}}</li>
{{/each}}
</ul>
{{/if}}
</body>
</html>
`

func (f *Formatter) formatHTML(bundle *scan.ScanBundle) (string, error) {
	type issueView struct {
		Severity string `handlebars:"severity"`
		Location string `handlebars:"location"`
		RuleID   string `handlebars:"ruleId"`
		Message  string `handlebars:"message"`
	}
	type scannerView struct {
		Name   string      `handlebars:"name"`
		Failed bool        `handlebars:"failed"`
		Error  string      `handlebars:"error"`
		Issues []issueView `handlebars:"issues"`
	}
	type suppressedView struct {
		Name   string `handlebars:"name"`
		Reason string `handlebars:"reason"`
	}

	var scanners []scannerView
	for _, name := range scan.ScannerNames(bundle) {
		result := bundle.Results[name]
		view := scannerView{Name: name, Failed: !result.Success, Error: result.Error}
		for _, issue := range result.Issues {
			view.Issues = append(view.Issues, issueView{
				Severity: string(issue.Severity),
				Location: location(issue),
				RuleID:   issue.RuleID,
				Message:  issue.Message,
			})
		}
		scanners = append(scanners, view)
	}
	var suppressed []suppressedView
	for name, reason := range bundle.Suppressed {
		suppressed = append(suppressed, suppressedView{Name: name, Reason: reason})
	}

	data := map[string]interface{}{
		"target":    bundle.Target,
		"runId":     bundle.RunID,
		"language":  bundle.Language,
		"riskScore": fmt.Sprintf("%.0f", bundle.RiskScore),
		"counts": map[string]int{
			"HIGH":   bundle.SeverityCounts.High,
			"MEDIUM": bundle.SeverityCounts.Medium,
			"LOW":    bundle.SeverityCounts.Low,
		},
		"scanners":   scanners,
		"suppressed": suppressed,
	}
	return raymond.Render(htmlTemplate, data)
}
