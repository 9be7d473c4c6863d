package server

import (
	"encoding/json"
	"net/http"

	"github.com/zikoelomari/guardrail/internal/fetch"
	"github.com/zikoelomari/guardrail/internal/gen"
	"github.com/zikoelomari/guardrail/internal/report"
	"github.com/zikoelomari/guardrail/internal/scan"
	"github.com/zikoelomari/guardrail/pkg/logger"
)

const maxRequestBody = 1 << 20

type analyzeRequest struct {
	Code     string   `json:"code"`
	Language string   `json:"language,omitempty"`
	Scanners []string `json:"scanners,omitempty"`
}

type analyzeGitHubRequest struct {
	URL      string   `json:"url"`
	Branch   string   `json:"branch,omitempty"`
	Language string   `json:"language,omitempty"`
	Scanners []string `json:"scanners,omitempty"`
	Token    string   `json:"token,omitempty"`
}

type generateRequest struct {
	gen.Request
	Scan bool `json:"scan,omitempty"`
}

type generateResponse struct {
	gen.Generation
	Scan *scan.ScanBundle `json:"scan,omitempty"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	bundle, err := s.orchestrator.RunSnippet(r.Context(), req.Code, scan.Options{
		Scanners: req.Scanners,
		Language: req.Language,
	})
	if err != nil {
		if scan.IsInvalidScanner(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	report.SaveBundle(s.cfg, "snippet", bundle)
	writeJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleAnalyzeGitHub(w http.ResponseWriter, r *http.Request) {
	var req analyzeGitHubRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	// Caller-input problems must fail before the download starts.
	if err := scan.ValidateScanners(req.Scanners); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref, err := fetch.ParseRepoURL(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Branch != "" {
		ref.Branch = req.Branch
	}

	dir, cleanup, err := s.fetcher.Fetch(r.Context(), ref, req.Token)
	if err != nil {
		writeError(w, fetchStatus(err), err.Error())
		return
	}
	defer cleanup()

	bundle, err := s.orchestrator.Run(r.Context(), dir, scan.Options{
		Scanners: req.Scanners,
		Language: req.Language,
	})
	if err != nil {
		if scan.IsInvalidScanner(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// The temp path is meaningless to the caller; report the repo instead.
	bundle.Target = ref.String()
	report.SaveBundle(s.cfg, "github", bundle)
	writeJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"providers": gen.Providers(),
		"default":   "simulated",
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	provider, err := gen.GetProvider(req.Provider)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	generation, err := provider.Generate(r.Context(), req.Request)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := generateResponse{Generation: generation}
	if req.Scan {
		bundle, err := s.orchestrator.RunSnippet(r.Context(), generation.Code, scan.Options{
			Scanners: []string{string(scan.ScannerDetector)},
			Language: generation.Language,
		})
		if err != nil {
			logger.Warn("could not scan generated code", logger.Err(err))
		} else {
			resp.Scan = bundle
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// fetchStatus maps fetch failures onto HTTP statuses: size ceilings are the
// client's problem (413), traversal and remote errors are upstream (502),
// bad URLs are 400.
func fetchStatus(err error) int {
	switch err.(type) {
	case *fetch.ArchiveSizeError:
		return http.StatusRequestEntityTooLarge
	case *fetch.ArchiveTraversalError:
		return http.StatusBadGateway
	case *fetch.RemoteFetchError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
