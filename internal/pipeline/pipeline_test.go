// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/greenguard/docflow/internal/export"
	"github.com/greenguard/docflow/internal/outline"
	"github.com/greenguard/docflow/pkg/types"
)

const sampleMarkdown = "# Overview\n\nRevenue grew by 8%. Costs fell.\n\n- Solar capacity doubled\n\f" +
	"| Scope | 2024 | 2025 |\n| --- | --- | --- |\n| One | 10 | 9 |\n\f"

// fakeConverter maps PDF paths to canned Markdown.
type fakeConverter struct {
	outputs map[string]string
	errs    map[string]error
}

func (f *fakeConverter) Convert(pdfPath string) (string, error) {
	if err, ok := f.errs[pdfPath]; ok {
		return "", err
	}
	out, ok := f.outputs[pdfPath]
	if !ok {
		return "", errors.New("unexpected path: " + pdfPath)
	}
	return out, nil
}

func testPipeline(t *testing.T, conv *fakeConverter) (*Pipeline, string) {
	t.Helper()
	workDir := t.TempDir()
	cfg := types.PipelineConfig{
		Conversion: types.ConversionConfig{WorkDir: workDir},
		Parse:      types.ParseConfig{SkipBoilerplate: true, Workers: 2},
	}
	return &Pipeline{cfg: cfg, conv: conv}, workDir
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractFile(t *testing.T) {
	pdfDir := t.TempDir()
	pdfPath := writePDF(t, pdfDir, "report.pdf")

	p, workDir := testPipeline(t, &fakeConverter{
		outputs: map[string]string{pdfPath: sampleMarkdown},
	})

	var log bytes.Buffer
	res := p.ExtractFile(context.Background(), pdfPath, &log)
	if res.Err != nil {
		t.Fatalf("ExtractFile: %v", res.Err)
	}
	if !strings.Contains(log.String(), "extracted: report") {
		t.Errorf("log = %q", log.String())
	}

	// Markdown was cached for reuse.
	if _, err := os.Stat(filepath.Join(workDir, "markdown", "report.md")); err != nil {
		t.Error("markdown cache missing")
	}

	got, err := export.ReadXLSX(res.OutPath, "")
	if err != nil {
		t.Fatalf("reading workbook: %v", err)
	}
	if len(got) != len(res.Rows) {
		t.Fatalf("workbook has %d rows, result carries %d", len(got), len(res.Rows))
	}

	// Page stamps survive the form-feed boundaries.
	if got[0].SectionType != types.SectionHeading || got[0].PageNo != 1 {
		t.Errorf("first row = %+v", got[0])
	}
	var sawTable bool
	for _, r := range got {
		if r.IsTable {
			sawTable = true
			if r.PageNo != 2 {
				t.Errorf("table row on page %d, want 2", r.PageNo)
			}
		}
	}
	if !sawTable {
		t.Error("no table rows extracted")
	}
}

func TestExtractBatch(t *testing.T) {
	pdfDir := t.TempDir()
	good := writePDF(t, pdfDir, "good.pdf")
	bad := writePDF(t, pdfDir, "bad.pdf")

	p, _ := testPipeline(t, &fakeConverter{
		outputs: map[string]string{good: sampleMarkdown},
		errs:    map[string]error{bad: errors.New("corrupt xref")},
	})

	var log bytes.Buffer
	results, summary := p.ExtractBatch(context.Background(), []string{good, bad}, &log)

	if summary.Extracted != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if results[0].Err != nil || results[1].Err == nil {
		t.Errorf("results out of order: %v / %v", results[0].Err, results[1].Err)
	}
	if !strings.Contains(log.String(), "Batch summary: 1 extracted, 1 failed") {
		t.Errorf("log = %q", log.String())
	}
}

func TestExtractRowsWithOutline(t *testing.T) {
	pdfDir := t.TempDir()
	// Plain text with no headings, so enrichment has something to fill.
	pdfPath := writePDF(t, pdfDir, "plain.pdf")
	md := "First page sentence.\n\f" + "Second page sentence.\n\f"

	sidecar := filepath.Join(pdfDir, "outline.yaml")
	if err := os.WriteFile(sidecar, []byte(
		"- {level: 1, title: \"Intro\", start_page: 1, end_page: 1}\n"+
			"- {level: 1, title: \"Results\", start_page: 2}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	o, err := outline.LoadYAML(sidecar)
	if err != nil {
		t.Fatal(err)
	}

	p, _ := testPipeline(t, &fakeConverter{outputs: map[string]string{pdfPath: md}})
	p.outline = o

	rows, _, err := p.ExtractRows(context.Background(), pdfPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].H1 != "Intro" || rows[1].H1 != "Results" {
		t.Errorf("outline enrichment: %q / %q", rows[0].H1, rows[1].H1)
	}
}

func TestExtractRowsConversionError(t *testing.T) {
	pdfDir := t.TempDir()
	pdfPath := writePDF(t, pdfDir, "bad.pdf")

	p, _ := testPipeline(t, &fakeConverter{errs: map[string]error{pdfPath: errors.New("no text layer")}})
	if _, _, err := p.ExtractRows(context.Background(), pdfPath); err == nil {
		t.Error("expected conversion error")
	}
}
