package gen

import (
	"context"
	"strings"
	"testing"
)

func TestSimulatedGenerate(t *testing.T) {
	g := NewSimulated()
	out, err := g.Generate(context.Background(), Request{
		Description: "parse a CSV file and sum the second column",
		Language:    "python",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.Code, "def main()") {
		t.Errorf("expected a python skeleton:\n%s", out.Code)
	}
	if out.Provider != "simulated" || out.Language != "python" {
		t.Errorf("bad provenance: %+v", out)
	}
}

func TestSimulatedGenerateDeterministic(t *testing.T) {
	g := NewSimulated()
	req := Request{Description: "do the thing", Language: "go"}
	a, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if a.Code != b.Code {
		t.Error("simulated provider must be deterministic")
	}
}

func TestSimulatedGenerateRequiresDescription(t *testing.T) {
	g := NewSimulated()
	if _, err := g.Generate(context.Background(), Request{Language: "python"}); err == nil {
		t.Error("empty description should be rejected")
	}
}

func TestProviders(t *testing.T) {
	names := Providers()
	if len(names) == 0 {
		t.Fatal("at least the simulated provider should be registered")
	}
	found := false
	for i, name := range names {
		if name == "simulated" {
			found = true
		}
		if i > 0 && names[i-1] > name {
			t.Errorf("listing must be sorted: %v", names)
		}
	}
	if !found {
		t.Errorf("simulated provider missing: %v", names)
	}
}

func TestGetProvider(t *testing.T) {
	g, err := GetProvider("")
	if err != nil {
		t.Fatal(err)
	}
	if g.Name() != "simulated" {
		t.Errorf("default provider should be simulated, got %s", g.Name())
	}
	if _, err := GetProvider("nonexistent"); err == nil {
		t.Error("unknown provider should error")
	}
}
