// Package api serves compiled show artifacts over HTTP.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lightdance/showcompiler/internal/config"
	"github.com/lightdance/showcompiler/internal/db"
	"github.com/lightdance/showcompiler/internal/show"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

type Server struct {
	compiler *show.Compiler
	db       *db.DB
	cfg      *config.ServerConfig
}

// NewServer returns a server compiling with c. store may be nil, in which
// case admin routes are not mounted.
func NewServer(c *show.Compiler, store *db.DB, cfg *config.ServerConfig) *Server {
	if cfg == nil {
		cfg = config.DefaultServerConfig()
	}
	return &Server{
		compiler: c,
		db:       store,
		cfg:      cfg,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware stamps a request id and logs method, path, query,
// status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms id=%s",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
			id,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/control_dat", s.handleControlDat)
	mux.HandleFunc("/api/frame_dat", s.handleFrameDat)
	mux.HandleFunc("/api/parts", s.handleParts)
	mux.HandleFunc("/api/preview", s.handlePreview)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/healthz", s.healthz)
	if s.db != nil && s.cfg.GetDebugRoutes() {
		s.db.AttachAdminRoutes(mux)
	}
	return mux
}

// Handler returns the full handler chain.
func (s *Server) Handler() http.Handler {
	return LoggingMiddleware(s.ServeMux())
}
