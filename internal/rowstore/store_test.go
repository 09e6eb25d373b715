// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rowstore

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/greenguard/docflow/internal/export"
	"github.com/greenguard/docflow/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := types.StoreConfig{
		StoreDir:   filepath.Join(tmpDir, "store"),
		MaxResults: 20,
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, tmpDir
}

func sampleRows(source string) []types.Row {
	return []types.Row{
		{
			Source: source, LineNo: 1, PageNo: 1,
			SectionType: types.SectionHeading, HeadingLevel: 1,
			H1: "Emissions", SectionPath: "Emissions", CurrentSection: "Emissions",
			Text: "Emissions",
		},
		{
			Source: source, LineNo: 2, PageNo: 1,
			SectionType: types.SectionSentence,
			H1:          "Emissions", SectionPath: "Emissions", CurrentSection: "Emissions",
			Text: "Scope 1 emissions fell by twelve percent.",
		},
		{
			Source: source, LineNo: 3, PageNo: 2,
			SectionType: types.SectionBullet, IsBullet: true,
			H1: "Emissions", SectionPath: "Emissions", CurrentSection: "Emissions",
			Text: "Fleet electrification is ahead of schedule.",
		},
	}
}

func writeWorkbook(t *testing.T, tmpDir, name string, rows []types.Row) string {
	t.Helper()
	path := filepath.Join(tmpDir, name+".xlsx")
	if err := export.WriteXLSX(path, rows, types.ExportConfig{}); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIngestAndRetrieve(t *testing.T) {
	store, tmpDir := testSetup(t)
	ctx := context.Background()

	path := writeWorkbook(t, tmpDir, "report", sampleRows("report.pdf"))

	var log bytes.Buffer
	summary, err := store.Ingest(ctx, []string{path}, &log)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Indexed != 1 || summary.Total() != 1 {
		t.Errorf("summary = %+v, want 1 indexed", summary)
	}
	if !strings.Contains(log.String(), "indexed report (3 rows)") {
		t.Errorf("log = %q", log.String())
	}

	// Full-text search hits the sentence row.
	got, err := store.Retrieve(ctx, QueryOptions{Query: "emissions"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("full-text query returned no rows")
	}

	// Structured filter by section type.
	got, err = store.Retrieve(ctx, QueryOptions{SectionType: types.SectionBullet})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].IsBullet {
		t.Errorf("bullet filter returned %+v", got)
	}

	// Structured-only queries come back in document order.
	got, err = store.Retrieve(ctx, QueryOptions{Source: "report"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3", len(got))
	}
	for i, r := range got {
		if r.LineNo != i+1 {
			t.Errorf("row %d has line_no %d", i, r.LineNo)
		}
	}
}

func TestIngestIncremental(t *testing.T) {
	store, tmpDir := testSetup(t)
	ctx := context.Background()

	path := writeWorkbook(t, tmpDir, "report", sampleRows("report.pdf"))

	var log bytes.Buffer
	if _, err := store.Ingest(ctx, []string{path}, &log); err != nil {
		t.Fatal(err)
	}

	// Unchanged file is skipped.
	log.Reset()
	summary, err := store.Ingest(ctx, []string{path}, &log)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 {
		t.Errorf("summary = %+v, want 1 skipped", summary)
	}

	// Touched file is re-ingested as an update, replacing old rows.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	log.Reset()
	summary, err = store.Ingest(ctx, []string{path}, &log)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 {
		t.Errorf("summary = %+v, want 1 updated", summary)
	}

	got, err := store.Retrieve(ctx, QueryOptions{Source: "report", MaxResults: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("update duplicated rows: got %d, want 3", len(got))
	}
}

func TestIngestMissingFile(t *testing.T) {
	store, tmpDir := testSetup(t)

	var log bytes.Buffer
	summary, err := store.Ingest(context.Background(),
		[]string{filepath.Join(tmpDir, "absent.xlsx")}, &log)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 || !summary.HasFailures() {
		t.Errorf("summary = %+v, want 1 failed", summary)
	}
	if !strings.Contains(log.String(), "failed") {
		t.Errorf("log = %q", log.String())
	}
}

func TestIngestRows(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	if err := store.IngestRows(ctx, "direct", sampleRows("direct.pdf")); err != nil {
		t.Fatalf("IngestRows: %v", err)
	}

	sources, err := store.Sources(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sources["direct"] != 3 {
		t.Errorf("sources = %v, want direct: 3", sources)
	}
}

func TestExports(t *testing.T) {
	store, _ := testSetup(t)
	ctx := context.Background()

	if err := store.IngestRows(ctx, "report", sampleRows("report.pdf")); err != nil {
		t.Fatal(err)
	}

	if err := store.ExportYAML(ctx, QueryOptions{}); err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}
	if err := store.ExportJSON(ctx, QueryOptions{}); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	yamlData, err := os.ReadFile(filepath.Join(store.storeDir, indexDir, "export.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var fromYAML []types.Row
	if err := yaml.Unmarshal(yamlData, &fromYAML); err != nil {
		t.Fatal(err)
	}
	if len(fromYAML) != 3 {
		t.Errorf("yaml export has %d rows, want 3", len(fromYAML))
	}

	jsonData, err := os.ReadFile(filepath.Join(store.storeDir, indexDir, "export.json"))
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON []types.Row
	if err := json.Unmarshal(jsonData, &fromJSON); err != nil {
		t.Fatal(err)
	}
	if len(fromJSON) != 3 || fromJSON[1].Text != fromYAML[1].Text {
		t.Errorf("export mismatch: json %d rows, yaml %d rows", len(fromJSON), len(fromYAML))
	}
}
