// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements PDF-to-Markdown conversion with pluggable
// backends. The pdftext backend extracts embedded text directly, the
// docling backend runs a converter container, and the layout backend
// calls a remote layout-analysis API that returns structured rows
// instead of Markdown.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/greenguard/docflow/internal/container"
	"github.com/greenguard/docflow/internal/mdparse"
	"github.com/greenguard/docflow/pkg/types"
)

const (
	// markdownDir is the subdirectory under the work dir for Markdown output.
	markdownDir = "markdown"

	// pageSeparator splits per-page Markdown inside a cached file. Backends
	// that know page boundaries terminate every page with it; backends that
	// return a single undifferentiated document emit none.
	pageSeparator = "\f"
)

// Converter transforms a PDF file into Markdown text.
type Converter interface {
	// Convert reads a PDF at pdfPath and returns the Markdown content.
	// Page-aware backends separate pages with form feeds; see SplitPages.
	Convert(pdfPath string) (string, error)
}

// Status is the outcome of converting a single PDF.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any files failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// New builds the Markdown-producing converter named by cfg.Backend. An
// empty backend selects pdftext. The layout backend does not produce
// Markdown; construct it with NewLayout and use ConvertRows instead.
func New(cfg types.ConversionConfig) (Converter, error) {
	switch cfg.Backend {
	case types.BackendPDFText, "":
		return NewPDFText(), nil
	case types.BackendDocling:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return NewDocling(rt, cfg.ContainerImage), nil
	case types.BackendLayout:
		return nil, fmt.Errorf("backend %q returns rows, not Markdown; use NewLayout", cfg.Backend)
	default:
		return nil, fmt.Errorf("unknown conversion backend %q", cfg.Backend)
	}
}

// MarkdownPath returns where the cached Markdown for pdfPath lives under
// workDir.
func MarkdownPath(workDir, pdfPath string) string {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return filepath.Join(workDir, markdownDir, base+".md")
}

// ConvertFile converts a single PDF to Markdown, writing the result under
// workDir/markdown. It returns the status of the conversion. If the
// Markdown output already exists, conversion is skipped.
func ConvertFile(c Converter, pdfPath, workDir string, w io.Writer) Status {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	mdPath := MarkdownPath(workDir, pdfPath)

	if _, err := os.Stat(mdPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
		return StatusSkipped
	}

	if err := os.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	raw, err := c.Convert(pdfPath)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	content := addFrontmatter(pdfPath, raw)

	if err := os.WriteFile(mdPath, []byte(content), 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	fmt.Fprintf(w, "converted: %s\n", base)
	return StatusConverted
}

// ConvertBatch processes a list of PDF paths through the converter,
// printing per-file status to w and returning a summary.
func ConvertBatch(c Converter, pdfPaths []string, workDir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range pdfPaths {
		switch ConvertFile(c, p, workDir, w) {
		case StatusConverted:
			result.Converted++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// ReadMarkdown loads a cached Markdown file written by ConvertFile,
// stripping the frontmatter block.
func ReadMarkdown(mdPath string) (string, error) {
	data, err := os.ReadFile(mdPath)
	if err != nil {
		return "", fmt.Errorf("reading markdown %s: %w", mdPath, err)
	}
	return stripFrontmatter(string(data)), nil
}

// SplitPages splits converted Markdown into per-page inputs for parsing.
// Content with form-feed separators becomes pages numbered from 1; content
// without any becomes a single page numbered 0 (page unknown).
func SplitPages(markdown string) []mdparse.Page {
	if !strings.Contains(markdown, pageSeparator) {
		return []mdparse.Page{{Number: 0, Lines: splitMarkdownLines(markdown)}}
	}
	segments := strings.Split(markdown, pageSeparator)
	// A trailing separator leaves one empty final segment; drop it.
	if n := len(segments); n > 1 && strings.TrimSpace(segments[n-1]) == "" {
		segments = segments[:n-1]
	}
	pages := make([]mdparse.Page, len(segments))
	for i, seg := range segments {
		pages[i] = mdparse.Page{Number: i + 1, Lines: splitMarkdownLines(seg)}
	}
	return pages
}

func splitMarkdownLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

// addFrontmatter prepends YAML frontmatter to the converted Markdown content.
func addFrontmatter(pdfPath, body string) string {
	ts := time.Now().UTC().Format(time.RFC3339)
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "source_pdf: %q\n", pdfPath)
	fmt.Fprintf(&b, "converted_at: %q\n", ts)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}

// stripFrontmatter removes a leading YAML frontmatter block, if present.
func stripFrontmatter(content string) string {
	if !strings.HasPrefix(content, "---\n") {
		return content
	}
	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return content
	}
	return strings.TrimPrefix(rest[end+len("\n---\n"):], "\n")
}
