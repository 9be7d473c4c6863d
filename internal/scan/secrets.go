package scan

import (
	"fmt"
	"regexp"
	"strings"
)

// Secret-like token patterns. Matches are masked before leaving the
// detector; raw values never appear in a default-configuration response.
type secretPattern struct {
	name string
	re   *regexp.Regexp
}

var secretPatterns = []secretPattern{
	{"aws_access_key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"generic_api_key", regexp.MustCompile(`(?i)api[_-]?key\s*[=:]\s*['"]?[0-9A-Za-z\-_.]{16,}\b`)},
	{"google_api_key", regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`)},
	{"stripe_live_key", regexp.MustCompile(`sk_live_[0-9a-zA-Z]{24,}`)},
	{"sendgrid_key", regexp.MustCompile(`SG\.[A-Za-z0-9\-_.]{20,}`)},
	{"slack_token", regexp.MustCompile(`xox[baprs]-[0-9a-zA-Z-]{10,}`)},
}

// MaskSecret hides the middle of a matched token. Tokens of 8 characters or
// fewer are fully masked; longer ones keep the first and last 4 characters.
func MaskSecret(s string, reveal bool) string {
	if reveal {
		return s
	}
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return fmt.Sprintf("%s...%s", s[:4], s[len(s)-4:])
}

// scanSecrets runs the secret regexes over raw text, independent of any
// structural analysis, and returns masked issues with line numbers.
func scanSecrets(code string, reveal bool) []Issue {
	var issues []Issue
	for _, pat := range secretPatterns {
		for _, loc := range pat.re.FindAllStringIndex(code, -1) {
			raw := code[loc[0]:loc[1]]
			masked := MaskSecret(raw, reveal)
			issues = append(issues, Issue{
				Scanner:  ScannerDetector,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("possible %s: %s", pat.name, masked),
				Line:     1 + strings.Count(code[:loc[0]], "\n"),
				RuleID:   "secret",
				Raw: map[string]interface{}{
					"pattern":      pat.name,
					"match_masked": masked,
					"match_length": len(raw),
				},
			})
		}
	}
	return issues
}
