// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the full extraction flow: PDF to Markdown via a
// conversion backend, Markdown to rows, optional outline enrichment, and
// a workbook per document.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/greenguard/docflow/internal/convert"
	"github.com/greenguard/docflow/internal/export"
	"github.com/greenguard/docflow/internal/mdparse"
	"github.com/greenguard/docflow/internal/outline"
	"github.com/greenguard/docflow/pkg/types"
)

const outputDir = "output"

// defaultWorkers bounds batch parallelism when the configuration does
// not set one.
const defaultWorkers = 4

// Pipeline extracts structured rows from PDFs using one configured
// backend. It is safe for concurrent use; every document parse holds its
// own state.
type Pipeline struct {
	cfg     types.PipelineConfig
	conv    convert.Converter
	layout  *convert.Layout
	outline *outline.Outline
}

// New builds a pipeline for the configured backend. The outline may be
// nil, in which case no enrichment happens.
func New(cfg types.PipelineConfig, o *outline.Outline) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg, outline: o}
	if cfg.Conversion.Backend == types.BackendLayout {
		p.layout = convert.NewLayout(cfg.Conversion)
		return p, nil
	}
	c, err := convert.New(cfg.Conversion)
	if err != nil {
		return nil, err
	}
	p.conv = c
	return p, nil
}

// parseOptions maps the parse configuration onto parser options.
func (p *Pipeline) parseOptions() mdparse.Options {
	opts := mdparse.DefaultOptions()
	opts.SkipBoilerplate = p.cfg.Parse.SkipBoilerplate
	opts.ExtraAbbreviations = p.cfg.Parse.ExtraAbbreviations
	return opts
}

// ExtractRows converts and parses a single PDF without touching the
// Markdown cache or writing a workbook. The server uses this path.
func (p *Pipeline) ExtractRows(ctx context.Context, pdfPath string) ([]types.Row, mdparse.Diagnostics, error) {
	source := filepath.Base(pdfPath)

	if p.layout != nil {
		rows, err := p.layout.ConvertRows(ctx, pdfPath)
		if err != nil {
			return nil, mdparse.Diagnostics{}, err
		}
		p.enrich(rows)
		return rows, mdparse.Diagnostics{}, nil
	}

	raw, err := p.conv.Convert(pdfPath)
	if err != nil {
		return nil, mdparse.Diagnostics{}, fmt.Errorf("converting %s: %w", source, err)
	}

	doc := &mdparse.Document{Source: source, Pages: convert.SplitPages(raw)}
	rows, diag, err := mdparse.Parse(doc, p.parseOptions())
	if err != nil {
		return nil, diag, err
	}
	p.enrich(rows)
	return rows, diag, nil
}

func (p *Pipeline) enrich(rows []types.Row) {
	if p.outline != nil {
		p.outline.Apply(rows)
	}
}

// Result is the outcome of extracting one document.
type Result struct {
	Source      string
	Rows        []types.Row
	Diagnostics mdparse.Diagnostics
	OutPath     string
	Err         error
}

// Summary aggregates a batch run.
type Summary struct {
	Extracted int
	Failed    int
}

// Total returns the number of documents processed.
func (s Summary) Total() int {
	return s.Extracted + s.Failed
}

// HasFailures reports whether any documents failed extraction.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractFile runs the full flow for one PDF: convert (through the
// Markdown cache for Markdown backends), parse, enrich, and write the
// workbook under workDir/output.
func (p *Pipeline) ExtractFile(ctx context.Context, pdfPath string, w io.Writer) Result {
	source := filepath.Base(pdfPath)
	base := strings.TrimSuffix(source, filepath.Ext(source))
	res := Result{Source: source}

	var rows []types.Row
	if p.layout != nil {
		var err error
		rows, err = p.layout.ConvertRows(ctx, pdfPath)
		if err != nil {
			res.Err = err
			fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
			return res
		}
		p.enrich(rows)
	} else {
		workDir := p.cfg.Conversion.WorkDir
		if status := convert.ConvertFile(p.conv, pdfPath, workDir, w); status == convert.StatusFailed {
			res.Err = fmt.Errorf("conversion failed for %s", source)
			return res
		}

		markdown, err := convert.ReadMarkdown(convert.MarkdownPath(workDir, pdfPath))
		if err != nil {
			res.Err = err
			fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
			return res
		}

		doc := &mdparse.Document{Source: source, Pages: convert.SplitPages(markdown)}
		rows, res.Diagnostics, err = mdparse.Parse(doc, p.parseOptions())
		if err != nil {
			res.Err = err
			fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
			return res
		}
		p.enrich(rows)
	}

	outDir := p.cfg.Export.OutDir
	if outDir == "" {
		outDir = filepath.Join(p.cfg.Conversion.WorkDir, outputDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		res.Err = err
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return res
	}
	outPath := filepath.Join(outDir, base+".xlsx")
	if err := export.WriteXLSX(outPath, rows, p.cfg.Export); err != nil {
		res.Err = err
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return res
	}

	res.Rows = rows
	res.OutPath = outPath
	fmt.Fprintf(w, "extracted: %s (%d rows)\n", base, len(rows))
	return res
}

// ExtractBatch processes PDFs with a bounded worker pool. Results come
// back in input order; status lines interleave on w as workers finish.
func (p *Pipeline) ExtractBatch(ctx context.Context, pdfPaths []string, w io.Writer) ([]Result, Summary) {
	workers := p.cfg.Parse.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(pdfPaths) {
		workers = len(pdfPaths)
	}

	sw := &syncWriter{w: w}
	results := make([]Result, len(pdfPaths))

	var wg sync.WaitGroup
	jobs := make(chan int)

	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.ExtractFile(ctx, pdfPaths[i], sw)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range pdfPaths {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	// Jobs never handed out after cancellation are reported as failed.
	if err := ctx.Err(); err != nil {
		for i := range results {
			if results[i].Source == "" {
				results[i] = Result{Source: filepath.Base(pdfPaths[i]), Err: err}
			}
		}
	}

	var summary Summary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Extracted++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d failed (total: %d)\n",
		summary.Extracted, summary.Failed, summary.Total())
	return results, summary
}

// syncWriter serializes status lines from concurrent workers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
