/*
Copyright © 2025 Zakaria El Omari
*/
package scan

// Scanner identifies one of the supported analysis backends
type Scanner string

const (
	ScannerBandit   Scanner = "bandit"
	ScannerSemgrep  Scanner = "semgrep"
	ScannerSnyk     Scanner = "snyk"
	ScannerESLint   Scanner = "eslint"
	ScannerCodeQL   Scanner = "codeql"
	ScannerDetector Scanner = "detector"
)

// AllScanners is the allow-list for explicit scanner selection
var AllScanners = []Scanner{
	ScannerBandit,
	ScannerSemgrep,
	ScannerSnyk,
	ScannerESLint,
	ScannerCodeQL,
	ScannerDetector,
}

// KnownScanner reports whether name is in the allow-list
func KnownScanner(name string) bool {
	for _, s := range AllScanners {
		if string(s) == name {
			return true
		}
	}
	return false
}

// Severity is the normalized severity scale. Tool-native labels
// (ERROR/WARNING/INFO, numeric ESLint codes) are mapped at parse time and
// never leak into an Issue.
type Severity string

const (
	SeverityHigh    Severity = "HIGH"
	SeverityMedium  Severity = "MEDIUM"
	SeverityLow     Severity = "LOW"
	SeverityUnknown Severity = "UNKNOWN"
)

// Issue is one normalized finding
type Issue struct {
	Scanner  Scanner                `json:"scanner"`
	Severity Severity               `json:"severity"`
	Message  string                 `json:"message"`
	File     string                 `json:"file,omitempty"`
	Line     int                    `json:"line,omitempty"`
	RuleID   string                 `json:"rule_id,omitempty"`
	Raw      map[string]interface{} `json:"raw,omitempty"`
}

// ScanResult is the outcome of one scanner run.
// Invariant: Success=false implies Issues is empty and Error is non-empty.
type ScanResult struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error,omitempty"`
	Issues  []Issue                `json:"issues"`
	Metrics map[string]interface{} `json:"metrics,omitempty"`
}

// failedResult builds the canonical failure-shaped ScanResult
func failedResult(err error) ScanResult {
	return ScanResult{Success: false, Error: err.Error(), Issues: []Issue{}}
}

// SeverityCounts buckets normalized issues. UNKNOWN issues are excluded.
type SeverityCounts struct {
	High   int `json:"HIGH"`
	Medium int `json:"MEDIUM"`
	Low    int `json:"LOW"`
}

// ScanBundle aggregates one orchestration run. Immutable once returned;
// re-running produces a fresh bundle.
type ScanBundle struct {
	RunID          string                `json:"run_id"`
	Target         string                `json:"target"`
	Language       string                `json:"language,omitempty"`
	Results        map[string]ScanResult `json:"results"`
	Timings        map[string]float64    `json:"timings"`
	Suppressed     map[string]string     `json:"suppressed,omitempty"`
	SeverityCounts SeverityCounts        `json:"severity_counts"`
	RiskScore      float64               `json:"risk_score"`
}

// BinaryAvailability describes whether a scanner executable is present
type BinaryAvailability struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}
