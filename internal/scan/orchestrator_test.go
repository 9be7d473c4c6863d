package scan

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zikoelomari/guardrail/pkg/config"
)

func TestDefaultScanners(t *testing.T) {
	cases := []struct {
		language string
		want     []Scanner
	}{
		{"python", []Scanner{ScannerDetector, ScannerBandit}},
		{"javascript", []Scanner{ScannerDetector, ScannerSemgrep}},
		{"java", []Scanner{ScannerDetector, ScannerSemgrep}},
		{"", []Scanner{ScannerDetector, ScannerBandit, ScannerSemgrep}},
		{"cobol", []Scanner{ScannerDetector, ScannerBandit, ScannerSemgrep}},
	}
	for _, tc := range cases {
		got := defaultScanners(tc.language)
		if len(got) != len(tc.want) {
			t.Errorf("%q: got %v, want %v", tc.language, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("%q: got %v, want %v", tc.language, got, tc.want)
				break
			}
		}
	}
}

func TestValidateScanners(t *testing.T) {
	if err := ValidateScanners(nil); err != nil {
		t.Errorf("empty selection is valid: %v", err)
	}
	if err := ValidateScanners([]string{"detector", "bandit"}); err != nil {
		t.Errorf("known names are valid: %v", err)
	}
	err := ValidateScanners([]string{"detector", "foo"})
	if !IsInvalidScanner(err) {
		t.Fatalf("expected InvalidScannerError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "foo") {
		t.Errorf("error should name the offending scanner: %v", err)
	}
}

func TestResolveScannersInvalidName(t *testing.T) {
	o := NewOrchestrator(config.Default())
	_, err := o.resolveScanners(Options{Scanners: []string{"detector", "foo"}}, "python")
	if err == nil {
		t.Fatal("expected an error for an unknown scanner name")
	}
	if !IsInvalidScanner(err) {
		t.Fatalf("expected InvalidScannerError, got %T: %v", err, err)
	}
}

func TestResolveScannersDeduplicates(t *testing.T) {
	o := NewOrchestrator(config.Default())
	got, err := o.resolveScanners(Options{Scanners: []string{"detector", "detector", "codeql"}}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != ScannerDetector || got[1] != ScannerCodeQL {
		t.Fatalf("unexpected selection: %v", got)
	}
}

func TestRunInvalidScannerFailsBeforeIO(t *testing.T) {
	o := NewOrchestrator(config.Default())
	_, err := o.Run(context.Background(), "/nonexistent/target", Options{Scanners: []string{"foo"}})
	if !IsInvalidScanner(err) {
		t.Fatalf("scanner validation must precede target access, got %T: %v", err, err)
	}
}

func TestRunDetectorOnly(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "app.py"), "import os\nos.system('ls')\nkey = 'x'\n")

	o := NewOrchestrator(config.Default())
	bundle, err := o.Run(context.Background(), dir, Options{Scanners: []string{"detector"}, Language: "python"})
	if err != nil {
		t.Fatal(err)
	}
	if bundle.RunID == "" {
		t.Error("bundle should carry a run id")
	}
	result, ok := bundle.Results["detector"]
	if !ok {
		t.Fatal("missing detector result")
	}
	if !result.Success {
		t.Fatalf("detector failed: %s", result.Error)
	}
	if len(result.Issues) != 1 || result.Issues[0].RuleID != "os_system" {
		t.Fatalf("unexpected issues: %v", result.Issues)
	}
	if bundle.SeverityCounts.High != 1 {
		t.Errorf("expected 1 HIGH, got %+v", bundle.SeverityCounts)
	}
	if bundle.RiskScore != 5 {
		t.Errorf("expected risk score 5, got %v", bundle.RiskScore)
	}
	if _, ok := bundle.Timings["detector"]; !ok {
		t.Error("missing detector timing")
	}
}

func TestRunZeroConcurrency(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "app.py"), "eval(x)\n")

	cfg := config.Default()
	cfg.Scan.Concurrency = 0
	o := NewOrchestrator(cfg)
	bundle, err := o.Run(context.Background(), dir, Options{Scanners: []string{"detector"}, Language: "python"})
	if err != nil {
		t.Fatal(err)
	}
	result, ok := bundle.Results["detector"]
	if !ok || !result.Success {
		t.Fatalf("zero concurrency must not stall the run: %+v", bundle.Results)
	}
}

func TestRunSnippet(t *testing.T) {
	o := NewOrchestrator(config.Default())
	bundle, err := o.RunSnippet(context.Background(), "import os\nos.system('whoami')\n",
		Options{Scanners: []string{"detector"}, Language: "python"})
	if err != nil {
		t.Fatal(err)
	}
	if bundle.Target != "snippet" {
		t.Errorf("snippet runs should not leak the temp path, got %q", bundle.Target)
	}
	snippet, ok := bundle.Results["detector_snippet"]
	if !ok {
		t.Fatal("missing in-memory detector result")
	}
	if len(snippet.Issues) != 1 || snippet.Issues[0].Line != 2 {
		t.Fatalf("unexpected snippet issues: %v", snippet.Issues)
	}
	if bundle.RiskScore == 0 {
		t.Error("risk score should include snippet findings")
	}
}

func TestPolicySuppression(t *testing.T) {
	o := NewOrchestrator(config.Default())
	o.SetPolicy(Policy{Rules: []PolicyRule{
		{Scanner: "codeql", OS: "linux", Reason: "blocked for test"},
		{Scanner: "codeql", OS: "darwin", Reason: "blocked for test"},
		{Scanner: "codeql", OS: "windows", Reason: "blocked for test"},
	}})

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.py"), "x = 1\n")

	bundle, err := o.Run(context.Background(), dir, Options{Scanners: []string{"detector", "codeql"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ran := bundle.Results["codeql"]; ran {
		t.Error("suppressed scanner must not run")
	}
	reason, ok := bundle.Suppressed["codeql"]
	if !ok || reason != "blocked for test" {
		t.Errorf("suppression not recorded: %v", bundle.Suppressed)
	}
	if _, ran := bundle.Results["detector"]; !ran {
		t.Error("other scanners should still run")
	}
}

func TestForcePlatformBlocked(t *testing.T) {
	o := NewOrchestrator(config.Default())
	o.SetPolicy(Policy{Rules: []PolicyRule{
		{Scanner: "detector", OS: "linux", Reason: "blocked for test"},
		{Scanner: "detector", OS: "darwin", Reason: "blocked for test"},
		{Scanner: "detector", OS: "windows", Reason: "blocked for test"},
	}})

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.py"), "x = 1\n")

	bundle, err := o.Run(context.Background(), dir,
		Options{Scanners: []string{"detector"}, ForcePlatformBlocked: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, ran := bundle.Results["detector"]; !ran {
		t.Error("force flag should override platform policy")
	}
	if len(bundle.Suppressed) != 0 {
		t.Errorf("forced scanners must not be recorded as suppressed: %v", bundle.Suppressed)
	}
}

func TestFailureIsolation(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.py"), "eval(x)\n")

	// codeql always fails (unconfigured stub); the detector must still
	// produce results alongside it.
	o := NewOrchestrator(config.Default())
	bundle, err := o.Run(context.Background(), dir, Options{Scanners: []string{"detector", "codeql"}})
	if err != nil {
		t.Fatal(err)
	}
	if bundle.Results["codeql"].Success {
		t.Error("codeql stub should fail")
	}
	detector := bundle.Results["detector"]
	if !detector.Success || len(detector.Issues) == 0 {
		t.Fatalf("detector should succeed independently: %+v", detector)
	}
}

func TestDefaultPolicyBlocksSemgrepOnWindows(t *testing.T) {
	p := DefaultPolicy()
	blocked, reason := p.Blocked(ScannerSemgrep, "windows")
	if !blocked || reason == "" {
		t.Fatal("semgrep should be blocked on windows by default")
	}
	if blocked, _ := p.Blocked(ScannerSemgrep, "linux"); blocked {
		t.Error("semgrep should run on linux")
	}
	if blocked, _ := p.Blocked(ScannerBandit, "windows"); blocked {
		t.Error("bandit should run on windows")
	}
}

func TestSuffixForLanguage(t *testing.T) {
	cases := map[string]string{
		"python":     ".py",
		"Python":     ".py",
		"typescript": ".ts",
		"csharp":     ".cs",
		"fortran":    ".txt",
		"":           ".txt",
	}
	for lang, want := range cases {
		if got := SuffixForLanguage(lang); got != want {
			t.Errorf("%q: got %q, want %q", lang, got, want)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "requirements.txt"), "flask\n")
	writeTestFile(t, filepath.Join(dir, "app.py"), "x = 1\n")
	if got := DetectLanguage(dir); got != "python" {
		t.Errorf("expected python, got %q", got)
	}
	if got := DetectLanguage(filepath.Join(dir, "app.py")); got != "python" {
		t.Errorf("file detection: expected python, got %q", got)
	}
	if got := DetectLanguage(filepath.Join(dir, "missing")); got != "" {
		t.Errorf("missing target should detect nothing, got %q", got)
	}
}
