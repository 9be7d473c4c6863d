package safeio

import (
	"path/filepath"
	"testing"
)

func TestCleanUserPath(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"reports/out.json", false},
		{"./out.json", false},
		{"../etc/passwd", true},
		{"a/../../b", true},
	}
	for _, c := range cases {
		_, err := CleanUserPath(c.in)
		if c.wantErr && err == nil {
			t.Errorf("CleanUserPath(%q): expected error", c.in)
		}
		if !c.wantErr && err != nil {
			t.Errorf("CleanUserPath(%q): unexpected error %v", c.in, err)
		}
	}
}

func TestEnsureContained(t *testing.T) {
	base := t.TempDir()

	if _, err := EnsureContained(base, filepath.Join(base, "sub", "file.py")); err != nil {
		t.Errorf("expected contained path accepted: %v", err)
	}
	if _, err := EnsureContained(base, filepath.Join(base, "..", "escape")); err == nil {
		t.Errorf("expected escape path rejected")
	}
	if _, err := EnsureContained(base, "/etc/passwd"); err == nil {
		t.Errorf("expected absolute outside path rejected")
	}
	// The base directory itself is contained.
	if _, err := EnsureContained(base, base); err != nil {
		t.Errorf("base dir should be contained in itself: %v", err)
	}
}
