package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zikoelomari/guardrail/internal/scan"
	"github.com/zikoelomari/guardrail/pkg/config"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	ts := httptest.NewServer(New(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, payload interface{}, headers map[string]string) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestAPIIndex(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/api")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["name"] != "guardrail" {
		t.Errorf("unexpected index: %v", body)
	}
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body struct {
		Platform string                             `json:"platform"`
		Binaries map[string]scan.BinaryAvailability `json:"binaries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Platform == "" {
		t.Error("status should report the platform")
	}
	for _, tool := range []string{"bandit", "semgrep", "snyk", "eslint"} {
		if _, ok := body.Binaries[tool]; !ok {
			t.Errorf("status should probe %s", tool)
		}
	}
}

func TestAnalyzeSnippet(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postJSON(t, ts.URL+"/analyze", map[string]interface{}{
		"code":     "import os\nos.system('ls')\n",
		"language": "python",
		"scanners": []string{"detector"},
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var bundle scan.ScanBundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		t.Fatal(err)
	}
	if bundle.SeverityCounts.High == 0 {
		t.Errorf("expected a HIGH finding: %+v", bundle.SeverityCounts)
	}
	if bundle.Target != "snippet" {
		t.Errorf("temp path leaked: %q", bundle.Target)
	}
}

func TestAnalyzeRejectsEmptyCode(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postJSON(t, ts.URL+"/analyze", map[string]interface{}{"language": "python"}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAnalyzeInvalidScanner(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postJSON(t, ts.URL+"/analyze", map[string]interface{}{
		"code":     "x = 1",
		"scanners": []string{"foo"},
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body["error"], "unsupported scanner") {
		t.Errorf("unexpected error: %q", body["error"])
	}
}

func TestAPIKeyAuth(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.APIKey = "sekrit"
	})

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/status", nil)
	req.Header.Set("X-API-Key", "sekrit")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d", resp.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimitPerMin = 2
	})

	var last int
	for i := 0; i < 3; i++ {
		resp, err := http.Get(ts.URL + "/api")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("third request should be limited, got %d", last)
	}
}

func TestGenerateAndScan(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postJSON(t, ts.URL+"/generate", map[string]interface{}{
		"description": "list files in a directory",
		"language":    "python",
		"scan":        true,
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Code     string           `json:"code"`
		Provider string           `json:"provider"`
		Scan     *scan.ScanBundle `json:"scan"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code == "" || body.Provider != "simulated" {
		t.Errorf("unexpected generation: %+v", body)
	}
	if body.Scan == nil {
		t.Error("scan=true should attach scan results")
	}
}

func TestGenerateUnknownProvider(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postJSON(t, ts.URL+"/generate", map[string]interface{}{
		"description": "anything",
		"provider":    "nonexistent",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAnalyzeGitHubInvalidScannerRejectedBeforeFetch(t *testing.T) {
	ts := newTestServer(t, nil)
	// A non-GitHub host would trigger a clone attempt; the bad scanner
	// name must be rejected before any network traffic.
	resp := postJSON(t, ts.URL+"/analyze/github", map[string]interface{}{
		"url":      "https://gitlab.com/acme/widget",
		"scanners": []string{"foo"},
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body["error"], "foo") {
		t.Errorf("error should name the bad scanner: %q", body["error"])
	}
}

func TestProvidersEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/api/providers")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Providers []string `json:"providers"`
		Default   string   `json:"default"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, name := range body.Providers {
		if name == "simulated" {
			found = true
		}
	}
	if !found || body.Default != "simulated" {
		t.Errorf("unexpected provider listing: %+v", body)
	}
}

func TestAnalyzeGitHubBadURL(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postJSON(t, ts.URL+"/analyze/github", map[string]interface{}{
		"url": "://not-a-url",
	}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
