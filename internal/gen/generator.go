package gen

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Request describes a code generation task
type Request struct {
	Description string  `json:"description"`
	Language    string  `json:"language"`
	Provider    string  `json:"provider,omitempty"`
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// Generation is the produced code plus provenance metadata
type Generation struct {
	Code     string `json:"code"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Language string `json:"language"`
}

// Generator produces code from a natural-language description. Generated
// code is untrusted input: callers are expected to scan it before use.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (Generation, error)
}

var providers = map[string]Generator{}

// RegisterProvider adds a generation backend under its name
func RegisterProvider(g Generator) {
	providers[g.Name()] = g
}

// Providers lists the registered backend names in sorted order, for
// capability discovery.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for n := range providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GetProvider resolves a provider by name, defaulting to "simulated"
func GetProvider(name string) (Generator, error) {
	if name == "" {
		name = "simulated"
	}
	g, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown generation provider %q (available: %s)", name, strings.Join(Providers(), ", "))
	}
	return g, nil
}

func init() {
	RegisterProvider(NewSimulated())
}
