// Package exitcode provides standardized exit codes for the guardrail CLI
package exitcode

// Exit codes for guardrail
const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2
	ValidationError = 3
	NetworkError    = 4
	TimeoutError    = 5
	ToolNotFound    = 6
	FindingsError   = 7
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case ValidationError:
		return "Validation error"
	case NetworkError:
		return "Network error"
	case TimeoutError:
		return "Timeout error"
	case ToolNotFound:
		return "Tool not found"
	case FindingsError:
		return "Findings at or above fail-on severity"
	default:
		return "Unknown error"
	}
}
