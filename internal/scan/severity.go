package scan

import "strings"

// Severity normalization tables. Each tool speaks its own dialect; everything
// is mapped onto the canonical HIGH/MEDIUM/LOW scale at parse time.
// Labels outside a tool's table normalize to UNKNOWN rather than being
// silently reclassified, so they never skew the severity buckets.

var banditSeverities = map[string]Severity{
	"HIGH":   SeverityHigh,
	"MEDIUM": SeverityMedium,
	"LOW":    SeverityLow,
}

var semgrepSeverities = map[string]Severity{
	"ERROR":   SeverityHigh,
	"WARNING": SeverityMedium,
	"INFO":    SeverityLow,
	// Newer semgrep releases also emit these names directly.
	"HIGH":   SeverityHigh,
	"MEDIUM": SeverityMedium,
	"LOW":    SeverityLow,
}

var snykSeverities = map[string]Severity{
	"CRITICAL": SeverityHigh,
	"HIGH":     SeverityHigh,
	"MEDIUM":   SeverityMedium,
	"LOW":      SeverityLow,
}

// eslint reports 1=warn, 2=error; 0=off never appears in output
var eslintSeverities = map[int]Severity{
	1: SeverityMedium,
	2: SeverityHigh,
}

// NormalizeBanditSeverity maps a bandit issue_severity label
func NormalizeBanditSeverity(label string) Severity {
	return lookupSeverity(banditSeverities, label)
}

// NormalizeSemgrepSeverity maps a semgrep extra.severity label
func NormalizeSemgrepSeverity(label string) Severity {
	return lookupSeverity(semgrepSeverities, label)
}

// NormalizeSnykSeverity maps a snyk severity label
func NormalizeSnykSeverity(label string) Severity {
	return lookupSeverity(snykSeverities, label)
}

// NormalizeESLintSeverity maps an eslint numeric severity
func NormalizeESLintSeverity(code int) Severity {
	if sev, ok := eslintSeverities[code]; ok {
		return sev
	}
	return SeverityUnknown
}

func lookupSeverity(table map[string]Severity, label string) Severity {
	if sev, ok := table[strings.ToUpper(strings.TrimSpace(label))]; ok {
		return sev
	}
	return SeverityUnknown
}
