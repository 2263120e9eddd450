// Package httpapi maps the C10 façade onto the §6 HTTP wire surface, in the
// same stdlib-mux shape as the teacher's own internal/httpapi package
// (Server wrapping an *http.ServeMux, one HandleFunc per method+path
// pattern registered in registerRoutes).
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"clinicrag/internal/api"
	"clinicrag/internal/observability"
)

// Server exposes the §6 HTTP endpoints wired to the C10 façade.
type Server struct {
	facade *api.Facade
	mux    *http.ServeMux
	http   *http.Server
}

// New creates the HTTP API server wired to facade.
func New(facade *api.Facade) *Server {
	s := &Server{facade: facade, mux: http.NewServeMux()}
	s.registerRoutes()
	return s
}

// ServeHTTP satisfies http.Handler, logging every request with the
// trace/span ids carried on its context (§6, observability.LoggerWithTrace).
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)

	logger := observability.LoggerWithTrace(r.Context())
	ev := logger.Info()
	if rec.status >= http.StatusInternalServerError {
		ev = logger.Error()
	}
	ev.Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("latency", time.Since(start)).
		Msg("request handled")
}

// statusRecorder captures the status code written by a handler so it can be
// included in the access log line above.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /upload-audio", s.uploadAudio)
	s.mux.HandleFunc("POST /upload-document", s.uploadDocument)
	s.mux.HandleFunc("POST /transcriptions/{id}/resubmit", s.resubmit)
	s.mux.HandleFunc("GET /transcriptions/{id}", s.getRecord)
	s.mux.HandleFunc("GET /transcriptions", s.listRecords)
	s.mux.HandleFunc("DELETE /transcriptions/{id}", s.deleteRecord)
	s.mux.HandleFunc("GET /documents/{id}", s.getRecord)
	s.mux.HandleFunc("GET /documents", s.listRecords)
	s.mux.HandleFunc("GET /documents/search", s.search)
	s.mux.HandleFunc("DELETE /documents/{id}", s.deleteRecord)
	s.mux.HandleFunc("POST /chat", s.chat)
	s.mux.HandleFunc("GET /vector-store/status", s.vectorStoreStatus)
	s.mux.HandleFunc("GET /health", s.health)
}

// Start blocks serving on addr until Shutdown is called from another
// goroutine.
func (s *Server) Start(addr string) error {
	log.Info().Str("addr", addr).Msg("httpapi listening")
	s.http = &http.Server{Addr: addr, Handler: s}
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
