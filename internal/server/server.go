/*
Copyright © 2025 Zakaria El Omari
*/
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"

	"github.com/zikoelomari/guardrail/internal/fetch"
	"github.com/zikoelomari/guardrail/internal/scan"
	"github.com/zikoelomari/guardrail/pkg/buildinfo"
	"github.com/zikoelomari/guardrail/pkg/config"
	"github.com/zikoelomari/guardrail/pkg/logger"
	"github.com/zikoelomari/guardrail/pkg/ratelimit"
)

// Server exposes the scanning pipeline over HTTP. All endpoints speak JSON;
// errors come back as {"error": "..."} with a matching status code.
type Server struct {
	cfg          *config.Config
	orchestrator *scan.Orchestrator
	fetcher      *fetch.Fetcher
	limiter      ratelimit.Limiter
	router       *mux.Router
}

func New(cfg *config.Config) *Server {
	s := &Server{
		cfg:          cfg,
		orchestrator: scan.NewOrchestrator(cfg),
		fetcher:      fetch.NewFetcher(cfg),
		limiter:      ratelimit.NewSlidingWindow(cfg.Server.RateLimitPerMin, time.Minute),
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.rateLimitMiddleware)
	r.Use(s.authMiddleware)

	r.HandleFunc("/api", s.handleAPIIndex).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/analyze/github", s.handleAnalyzeGitHub).Methods(http.MethodPost)
	r.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
	r.HandleFunc("/api/providers", s.handleProviders).Methods(http.MethodGet)
	return r
}

// Handler exposes the router, primarily for tests
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks until the context is canceled or the listener fails
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", logger.String("addr", s.cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Server.APIKey != "" && r.Header.Get("X-API-Key") != s.cfg.Server.APIKey {
			writeError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleAPIIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "guardrail",
		"version": buildinfo.BinaryVersion,
		"endpoints": []map[string]string{
			{"method": "GET", "path": "/api", "description": "this endpoint catalog"},
			{"method": "GET", "path": "/api/providers", "description": "available code generation providers"},
			{"method": "GET", "path": "/status", "description": "scanner binary availability and platform info"},
			{"method": "POST", "path": "/analyze", "description": "scan a code snippet"},
			{"method": "POST", "path": "/analyze/github", "description": "fetch and scan a repository"},
			{"method": "POST", "path": "/generate", "description": "generate code and optionally scan it"},
		},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":  buildinfo.BinaryVersion,
		"platform": runtime.GOOS + "/" + runtime.GOARCH,
		"binaries": scan.CheckBinaries(r.Context(), s.cfg),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("failed to write response", logger.Err(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
