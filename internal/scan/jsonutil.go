package scan

import (
	"fmt"
	"regexp"
)

func getString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func getInt(m map[string]interface{}, keys ...string) int {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			case string:
				var n int
				if _, err := fmt.Sscanf(t, "%d", &n); err == nil {
					return n
				}
			}
		}
	}
	return 0
}

var jsonObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)

// extractJSONObject attempts to extract a top-level JSON object from noisy
// output (some tools print progress text around their JSON report)
func extractJSONObject(s string) string {
	return jsonObjectRe.FindString(s)
}
