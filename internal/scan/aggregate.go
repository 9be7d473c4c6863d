package scan

// Risk weights per severity. Unknown severities intentionally carry no
// weight so noisy scanner output cannot inflate the score.
const (
	weightHigh   = 5
	weightMedium = 2
	weightLow    = 1
)

// Aggregate tallies severities across all scanner results and computes the
// weighted risk score. Failed results contribute nothing.
func Aggregate(results map[string]ScanResult) (SeverityCounts, float64) {
	var counts SeverityCounts
	for _, result := range results {
		if !result.Success {
			continue
		}
		for _, issue := range result.Issues {
			switch issue.Severity {
			case SeverityHigh:
				counts.High++
			case SeverityMedium:
				counts.Medium++
			case SeverityLow:
				counts.Low++
			}
		}
	}
	score := float64(weightHigh*counts.High + weightMedium*counts.Medium + weightLow*counts.Low)
	return counts, score
}
