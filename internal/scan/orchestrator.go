/*
Copyright © 2025 Zakaria El Omari
*/
package scan

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zikoelomari/guardrail/pkg/config"
	"github.com/zikoelomari/guardrail/pkg/logger"
)

// Options selects which scanners run and how the target is interpreted.
type Options struct {
	// Scanners is the explicit scanner selection. Empty means
	// language-based defaults.
	Scanners []string
	// Language hints the target language; detected from the target when
	// empty.
	Language string
	// ForcePlatformBlocked runs scanners that platform policy would
	// otherwise suppress.
	ForcePlatformBlocked bool
}

// Orchestrator fans a target out to the selected scanner adapters and
// folds their results into a single bundle. Adapters run concurrently and
// fail independently: one tool crashing or timing out never aborts the run.
type Orchestrator struct {
	cfg      *config.Config
	registry *AdapterRegistry
	policy   Policy
}

func NewOrchestrator(cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		registry: GetAdapterRegistry(),
		policy:   DefaultPolicy(),
	}
}

// SetPolicy replaces the platform policy, normally loaded via LoadPolicy.
func (o *Orchestrator) SetPolicy(p Policy) { o.policy = p }

// defaultScanners picks a conservative scanner set per language. Unknown
// languages get the broad set so nothing slips through unexamined.
func defaultScanners(language string) []Scanner {
	switch language {
	case "python":
		return []Scanner{ScannerDetector, ScannerBandit}
	case "javascript", "typescript", "java", "csharp", "go", "ruby":
		return []Scanner{ScannerDetector, ScannerSemgrep}
	default:
		return []Scanner{ScannerDetector, ScannerBandit, ScannerSemgrep}
	}
}

// ValidateScanners checks an explicit scanner selection against the
// allow-list. Callers that do expensive work before scanning (fetching a
// repository, for instance) run this first so a typo fails before any
// network or subprocess I/O. An empty selection is valid.
func ValidateScanners(names []string) error {
	var invalid []string
	for _, name := range names {
		if !KnownScanner(name) {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		return &InvalidScannerError{Names: invalid}
	}
	return nil
}

// resolveScanners validates an explicit selection or falls back to the
// language defaults. Validation happens before any I/O so a typo fails
// fast instead of after minutes of scanning.
func (o *Orchestrator) resolveScanners(opts Options, language string) ([]Scanner, error) {
	if err := ValidateScanners(opts.Scanners); err != nil {
		return nil, err
	}
	if len(opts.Scanners) == 0 {
		return defaultScanners(language), nil
	}
	var selected []Scanner
	seen := map[Scanner]bool{}
	for _, name := range opts.Scanners {
		sc := Scanner(name)
		if !seen[sc] {
			seen[sc] = true
			selected = append(selected, sc)
		}
	}
	return selected, nil
}

// Run scans a file or directory target.
func (o *Orchestrator) Run(ctx context.Context, target string, opts Options) (*ScanBundle, error) {
	language := opts.Language
	if language == "" {
		language = DetectLanguage(target)
	}
	scanners, err := o.resolveScanners(opts, language)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(target); err != nil {
		return nil, err
	}
	return o.runScanners(ctx, target, language, scanners, opts), nil
}

// RunSnippet scans in-memory code. The snippet is written to a temporary
// file with a language-appropriate extension for the external tools; the
// detector additionally analyzes the raw string so findings carry snippet
// line numbers rather than temp file paths.
func (o *Orchestrator) RunSnippet(ctx context.Context, code string, opts Options) (*ScanBundle, error) {
	language := opts.Language
	if language == "" {
		language = "python"
	}
	scanners, err := o.resolveScanners(opts, language)
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "guardrail-snippet-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)
	target := filepath.Join(tmpDir, "snippet"+SuffixForLanguage(language))
	if err := os.WriteFile(target, []byte(code), 0o600); err != nil {
		return nil, err
	}

	bundle := o.runScanners(ctx, target, language, scanners, opts)
	bundle.Target = "snippet"

	detector := NewDetector(o.cfg)
	start := time.Now()
	bundle.Results["detector_snippet"] = ScanResult{Success: true, Issues: detector.ScanSource(code)}
	bundle.Timings["detector_snippet"] = time.Since(start).Seconds()
	bundle.SeverityCounts, bundle.RiskScore = Aggregate(bundle.Results)
	return bundle, nil
}

func (o *Orchestrator) runScanners(ctx context.Context, target, language string, scanners []Scanner, opts Options) *ScanBundle {
	bundle := &ScanBundle{
		RunID:      uuid.NewString(),
		Target:     target,
		Language:   language,
		Results:    map[string]ScanResult{},
		Timings:    map[string]float64{},
		Suppressed: map[string]string{},
	}

	var runnable []Adapter
	for _, sc := range scanners {
		if blocked, reason := o.policy.Blocked(sc, runtime.GOOS); blocked {
			if opts.ForcePlatformBlocked || (sc == ScannerSemgrep && o.cfg.Scan.ForceSemgrep) {
				logger.Warn("running platform-blocked scanner", logger.String("scanner", string(sc)))
			} else {
				bundle.Suppressed[string(sc)] = reason
				continue
			}
		}
		adapter, ok := o.registry.Get(o.cfg, sc)
		if !ok {
			bundle.Results[string(sc)] = failedResult(&ToolNotInstalledError{Tool: string(sc)})
			continue
		}
		runnable = append(runnable, adapter)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	// SetLimit(0) admits no goroutines at all; a misconfigured
	// concurrency must not deadlock the run.
	limit := o.cfg.Scan.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for _, adapter := range runnable {
		adapter := adapter
		g.Go(func() error {
			name := string(adapter.Name())
			start := time.Now()
			var result ScanResult
			if !adapter.IsAvailable() {
				result = failedResult(&ToolNotInstalledError{Tool: name})
			} else {
				result = adapter.Scan(gctx, target, language)
			}
			elapsed := time.Since(start)
			if result.Success {
				logger.Info("scanner finished",
					logger.String("scanner", name),
					logger.Int("issues", len(result.Issues)),
					logger.Duration("elapsed", elapsed))
			} else {
				logger.Warn("scanner failed",
					logger.String("scanner", name),
					logger.String("error", result.Error),
					logger.Duration("elapsed", elapsed))
			}
			mu.Lock()
			bundle.Results[name] = result
			bundle.Timings[name] = elapsed.Seconds()
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	bundle.SeverityCounts, bundle.RiskScore = Aggregate(bundle.Results)
	return bundle
}

// ScannerNames lists the results keys of a bundle in stable order, for
// deterministic report output.
func ScannerNames(bundle *ScanBundle) []string {
	names := make([]string, 0, len(bundle.Results))
	for name := range bundle.Results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
