package scan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyRule suppresses a scanner on a given platform. Suppressed scanners
// are skipped before invocation and recorded on the bundle so callers can
// tell a policy skip from a missing binary.
type PolicyRule struct {
	Scanner string `yaml:"scanner"`
	OS      string `yaml:"os"`
	Reason  string `yaml:"reason"`
}

type Policy struct {
	Rules []PolicyRule `yaml:"rules"`
}

// DefaultPolicy blocks semgrep on Windows, where its process handling is
// unreliable enough to hang entire runs.
func DefaultPolicy() Policy {
	return Policy{Rules: []PolicyRule{
		{
			Scanner: string(ScannerSemgrep),
			OS:      "windows",
			Reason:  "semgrep is unreliable on Windows and can hang; set scan.force_semgrep to override",
		},
	}}
}

// LoadPolicy reads a policy file, returning the default policy when the
// path is empty or the file does not exist.
func LoadPolicy(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPolicy(), nil
		}
		return Policy{}, fmt.Errorf("loading scanner policy: %w", err)
	}
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parsing scanner policy: %w", err)
	}
	return p, nil
}

// Blocked reports whether a scanner is suppressed on the given platform,
// returning the rule's reason when it is.
func (p Policy) Blocked(scanner Scanner, goos string) (bool, string) {
	for _, rule := range p.Rules {
		if rule.Scanner == string(scanner) && rule.OS == goos {
			return true, rule.Reason
		}
	}
	return false, ""
}
