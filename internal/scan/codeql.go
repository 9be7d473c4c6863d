package scan

import "context"

// codeqlAdapter is a deliberate stub: CodeQL requires database builds and
// license acceptance that this environment does not provide. It always
// reports a non-success result so callers never assume CodeQL participated
// in aggregation.
type codeqlAdapter struct{}

func (c *codeqlAdapter) Name() Scanner { return ScannerCodeQL }

func (c *codeqlAdapter) IsAvailable() bool { return true }

func (c *codeqlAdapter) Scan(ctx context.Context, target string, language string) ScanResult {
	return ScanResult{
		Success: false,
		Error:   "codeql is not configured in this environment",
		Issues:  []Issue{},
	}
}
