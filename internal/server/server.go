// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the extraction pipeline over HTTP: upload a
// PDF, get back the extracted workbook.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/greenguard/docflow/internal/export"
	"github.com/greenguard/docflow/internal/mdparse"
	"github.com/greenguard/docflow/internal/pipeline"
	"github.com/greenguard/docflow/pkg/types"
)

const defaultMaxUploadBytes = 64 << 20

// extractor is the minimal pipeline surface the handlers need.
// *pipeline.Pipeline is the production implementation.
type extractor interface {
	ExtractRows(ctx context.Context, pdfPath string) ([]types.Row, mdparse.Diagnostics, error)
}

// Server is the HTTP front end.
type Server struct {
	router    chi.Router
	extractor extractor
	log       *slog.Logger
	cfg       types.ServerConfig
	export    types.ExportConfig
}

// NewServer creates and configures the HTTP server around an extraction
// pipeline.
func NewServer(p *pipeline.Pipeline, log *slog.Logger, cfg types.ServerConfig, exportCfg types.ExportConfig) *Server {
	s := &Server{
		extractor: p,
		log:       log,
		cfg:       cfg,
		export:    exportCfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}
		r.Post("/api/extract", s.handleExtract)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleExtract accepts a multipart upload with a "pdf" file field and
// optional metadata fields, runs the pipeline, and responds with the
// workbook as an attachment.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("pdf")
	if err != nil {
		httpError(w, http.StatusBadRequest, "missing pdf upload: %v", err)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." {
		name = "upload.pdf"
	}

	tmpDir, err := os.MkdirTemp("", "docflow-extract-")
	if err != nil {
		httpError(w, http.StatusInternalServerError, "allocating scratch space: %v", err)
		return
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, name)
	dst, err := os.Create(pdfPath)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "writing upload: %v", err)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		httpError(w, http.StatusBadRequest, "reading upload: %v", err)
		return
	}
	dst.Close()

	rows, diag, err := s.extractor.ExtractRows(r.Context(), pdfPath)
	if err != nil {
		s.log.Error("extraction failed", "source", name, "error", err)
		httpError(w, http.StatusUnprocessableEntity, "extraction failed: %v", err)
		return
	}

	cfg := s.export
	if meta := requestMetadata(r); len(meta) > 0 {
		cfg.Metadata = meta
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	outPath := filepath.Join(tmpDir, base+".xlsx")
	if err := export.WriteXLSX(outPath, rows, cfg); err != nil {
		httpError(w, http.StatusInternalServerError, "writing workbook: %v", err)
		return
	}

	s.log.Info("extracted", "source", name, "rows", len(rows), "fallback_text", diag.FallbackText)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+".xlsx"))
	w.Header().Set("X-Docflow-Rows", fmt.Sprint(len(rows)))
	http.ServeFile(w, r, outPath)
}

// requestMetadata collects the optional metadata form fields stamped as
// leading workbook columns.
func requestMetadata(r *http.Request) map[string]string {
	meta := make(map[string]string)
	for field, column := range map[string]string{
		"company":       "Company",
		"year":          "Year",
		"document_type": "Document Type",
	} {
		if v := strings.TrimSpace(r.FormValue(field)); v != "" {
			meta[column] = v
		}
	}
	return meta
}

func httpError(w http.ResponseWriter, status int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, fmt.Sprintf(format, args...))
}
