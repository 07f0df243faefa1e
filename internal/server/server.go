// Package server is the web shell: upload a dataset, view suggestions, run
// built-in or LLM-backed analyses, and download results.
package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/config"
	"github.com/mrityunjay5004/personal-ai-data-analyst/internal/runner"
)

//go:embed web/index.html
var webFS embed.FS

var indexTmpl = template.Must(template.ParseFS(webFS, "web/index.html"))

// Server wires the session store, the query pipeline and the HTTP surface.
type Server struct {
	cfg      *config.Global
	logger   zerolog.Logger
	store    *Store
	pipeline *Pipeline

	httpSrv *http.Server
}

// New builds a Server. llm may be nil when no API key is configured; custom
// prompts then fail with a clear message while built-ins keep working.
func New(cfg *config.Global, logger zerolog.Logger, llm Asker) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		store:  NewStore(),
		pipeline: &Pipeline{
			LLM:    llm,
			Runner: runner.New(time.Duration(cfg.ExecTimeoutSec) * time.Second),
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /api/result.csv", s.handleDownload)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	s.httpSrv = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.logging(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the HTTP handler for tests.
func (s *Server) Handler() http.Handler { return s.httpSrv.Handler }

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.cfg.ListenAddr).Msg("web shell listening")
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// statusWriter records the response code for the request log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		event := s.logger.Info()
		if sw.status >= 500 {
			event = s.logger.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
