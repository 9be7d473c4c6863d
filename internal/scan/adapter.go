package scan

import (
	"context"

	"github.com/zikoelomari/guardrail/pkg/config"
)

// Adapter wraps one analysis backend. Scan never returns an error: every
// failure mode is folded into the ScanResult so one adapter cannot abort
// its siblings.
type Adapter interface {
	Name() Scanner
	IsAvailable() bool
	Scan(ctx context.Context, target string, language string) ScanResult
}

// AdapterFactory constructs an adapter bound to the active configuration
type AdapterFactory func(cfg *config.Config) Adapter

type adapterEntry struct {
	name    Scanner
	factory AdapterFactory
}

// AdapterRegistry maintains the available scanner adapters
type AdapterRegistry struct {
	entries []adapterEntry
}

var adapterRegistry = &AdapterRegistry{}

// RegisterAdapter registers a scanner adapter factory
func RegisterAdapter(name Scanner, factory AdapterFactory) {
	adapterRegistry.entries = append(adapterRegistry.entries, adapterEntry{name: name, factory: factory})
}

// GetAdapterRegistry returns the global adapter registry
func GetAdapterRegistry() *AdapterRegistry { return adapterRegistry }

// Select returns adapters for the requested scanner set, in registration order
func (r *AdapterRegistry) Select(cfg *config.Config, names map[Scanner]bool) []Adapter {
	var adapters []Adapter
	for _, e := range r.entries {
		if !names[e.name] {
			continue
		}
		if a := e.factory(cfg); a != nil {
			adapters = append(adapters, a)
		}
	}
	return adapters
}

// Get constructs the adapter registered under name, if any
func (r *AdapterRegistry) Get(cfg *config.Config, name Scanner) (Adapter, bool) {
	for _, e := range r.entries {
		if e.name == name {
			return e.factory(cfg), true
		}
	}
	return nil, false
}

// Names lists every registered scanner name
func (r *AdapterRegistry) Names() []Scanner {
	out := make([]Scanner, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.name)
	}
	return out
}

// Register built-in adapters
func init() {
	RegisterAdapter(ScannerDetector, func(cfg *config.Config) Adapter { return NewDetector(cfg) })
	RegisterAdapter(ScannerBandit, func(cfg *config.Config) Adapter { return &banditAdapter{cfg: cfg} })
	RegisterAdapter(ScannerSemgrep, func(cfg *config.Config) Adapter { return &semgrepAdapter{cfg: cfg} })
	RegisterAdapter(ScannerSnyk, func(cfg *config.Config) Adapter { return &snykAdapter{cfg: cfg} })
	RegisterAdapter(ScannerESLint, func(cfg *config.Config) Adapter { return &eslintAdapter{cfg: cfg} })
	RegisterAdapter(ScannerCodeQL, func(cfg *config.Config) Adapter { return &codeqlAdapter{} })
}
