package api

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/lightdance/showcompiler/internal/httputil"
	"github.com/lightdance/showcompiler/internal/preview"
	"github.com/lightdance/showcompiler/internal/security"
	"github.com/lightdance/showcompiler/internal/show"
	"github.com/lightdance/showcompiler/internal/version"
)

// Artifact names as they appear in download filenames.
const (
	ControlArtifact = "control.dat"
	FrameArtifact   = "frame.dat"
)

// FormatBinary selects a raw octet-stream body instead of a JSON byte array.
const FormatBinary = "binary"

// writeCompileError maps a compile failure to its status. Classified errors
// expose only their message; the cause goes to the log.
func writeCompileError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, show.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, show.ErrRangeViolation):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	msg := err.Error()
	var se *show.Error
	if errors.As(err, &se) {
		msg = se.Msg
	}
	if status >= http.StatusInternalServerError {
		log.Printf("compile failed: %v", err)
	}
	httputil.WriteJSONError(w, status, msg)
}

// readRequest takes the compile request from a POST body, or for GET builds
// the dancer's default request from ?dancer=.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (*show.Request, bool) {
	switch r.Method {
	case http.MethodPost:
		var req show.Request
		if !httputil.DecodeJSONBody(w, r, s.cfg.GetMaxBodyBytes(), &req) {
			return nil, false
		}
		if req.Dancer == "" {
			httputil.BadRequest(w, "missing 'dancer'")
			return nil, false
		}
		return &req, true
	case http.MethodGet:
		dancer := r.URL.Query().Get("dancer")
		if dancer == "" {
			httputil.BadRequest(w, "missing 'dancer' parameter")
			return nil, false
		}
		req, err := s.compiler.DefaultRequest(r.Context(), dancer)
		if err != nil {
			if errors.Is(err, show.ErrNotFound) || errors.Is(err, show.ErrStore) {
				writeCompileError(w, err)
			} else {
				httputil.BadRequest(w, err.Error())
			}
			return nil, false
		}
		return req, true
	default:
		httputil.MethodNotAllowed(w)
		return nil, false
	}
}

func writeArtifact(w http.ResponseWriter, r *http.Request, dancer, artifact string, buf []byte) {
	if r.URL.Query().Get("format") == FormatBinary {
		httputil.WriteAttachment(w, security.ArtifactFilename(dancer, artifact), "application/octet-stream", buf)
		return
	}
	httputil.WriteByteArray(w, buf)
}

func (s *Server) handleControlDat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	header, err := s.compiler.Header(r.Context(), req)
	if err != nil {
		writeCompileError(w, err)
		return
	}
	buf, err := (&show.Show{Header: header}).ControlDat()
	if err != nil {
		writeCompileError(w, err)
		return
	}
	writeArtifact(w, r, req.Dancer, ControlArtifact, buf)
}

func (s *Server) handleFrameDat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	compiled, err := s.compiler.Compile(r.Context(), req)
	if err != nil {
		writeCompileError(w, err)
		return
	}
	writeArtifact(w, r, req.Dancer, FrameArtifact, compiled.FrameDat())
}

func (s *Server) handleParts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	dancer := r.URL.Query().Get("dancer")
	if dancer == "" {
		httputil.BadRequest(w, "missing 'dancer' parameter")
		return
	}
	parts, err := s.compiler.Parts(r.Context(), dancer)
	if err != nil {
		writeCompileError(w, err)
		return
	}
	httputil.WriteJSONOK(w, parts)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}
	if format != "html" && format != "png" {
		httputil.BadRequest(w, "format must be 'html' or 'png'")
		return
	}

	req, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	compiled, err := s.compiler.Compile(r.Context(), req)
	if err != nil {
		writeCompileError(w, err)
		return
	}

	var buf bytes.Buffer
	contentType := "text/html; charset=utf-8"
	if format == "png" {
		contentType = "image/png"
		err = preview.RenderPNG(&buf, compiled)
	} else {
		err = preview.RenderHTML(&buf, compiled, preview.Options{})
	}
	if err != nil {
		httputil.InternalServerError(w, "failed to render preview")
		log.Printf("preview %s: %v", req.Dancer, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("failed to write preview: %v", err)
	}
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"alpha_max":      s.cfg.GetAlphaMax(),
		"max_body_bytes": s.cfg.GetMaxBodyBytes(),
		"part_workers":   s.cfg.GetPartWorkers(),
		"channels":       s.compiler.Table().Len(),
		"version":        version.Version,
	})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			httputil.WriteJSONError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	httputil.WriteJSONOK(w, map[string]string{"status": "ok"})
}
