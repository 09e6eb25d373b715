// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/greenguard/docflow/pkg/types"
)

func sampleRows() []types.Row {
	return []types.Row{
		{
			Source: "report.pdf", LineNo: 1, PageNo: 1,
			SectionType: types.SectionHeading, HeadingLevel: 1,
			H1: "Overview", SectionPath: "Overview", CurrentSection: "Overview",
			Text: "Overview",
		},
		{
			Source: "report.pdf", LineNo: 2, PageNo: 1,
			SectionType: types.SectionSentence,
			H1:          "Overview", SectionPath: "Overview", CurrentSection: "Overview",
			Text: "Revenue grew by 8%.",
		},
		{
			Source: "report.pdf", LineNo: 3, PageNo: 2,
			SectionType: types.SectionBullet, IsBullet: true,
			H1: "Overview", SectionPath: "Overview", CurrentSection: "Overview",
			Text: "Solar capacity doubled.",
		},
		{
			Source: "report.pdf", LineNo: 4,
			SectionType: types.SectionTable, IsTable: true,
			H1: "Overview", SectionPath: "Overview", CurrentSection: "Overview",
			Text: "Scope | 2024 | 2025",
		},
	}
}

func TestWriteReadXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	rows := sampleRows()

	if err := WriteXLSX(path, rows, types.ExportConfig{}); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	got, err := ReadXLSX(path, "")
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("row %d mismatch:\n got  %+v\n want %+v", i, got[i], rows[i])
		}
	}
}

func TestWriteXLSXEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := WriteXLSX(path, nil, types.ExportConfig{}); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	cells, err := f.GetRows(DefaultSheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 1 {
		t.Fatalf("want header-only workbook, got %d rows", len(cells))
	}
	if cells[0][0] != "Source" || cells[0][len(cells[0])-1] != "H3" {
		t.Errorf("unexpected header row: %v", cells[0])
	}
}

func TestWriteXLSXMetadataAndHiding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.xlsx")
	cfg := types.ExportConfig{
		SheetName: "rows",
		Metadata:  map[string]string{"Year": "2025", "Company": "GreenGuard"},
	}
	if err := WriteXLSX(path, sampleRows(), cfg); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	cells, err := f.GetRows("rows")
	if err != nil {
		t.Fatal(err)
	}

	// Metadata columns lead, in sorted key order.
	if cells[0][0] != "Company" || cells[0][1] != "Year" {
		t.Errorf("header = %v, want Company, Year first", cells[0][:3])
	}
	if cells[1][0] != "GreenGuard" || cells[1][1] != "2025" {
		t.Errorf("metadata values not stamped on data rows: %v", cells[1][:2])
	}

	// Page_No is hidden by default; its data survives.
	col := 0
	for i, name := range cells[0] {
		if name == "Page_No" {
			col = i + 1
		}
	}
	if col == 0 {
		t.Fatal("Page_No column missing")
	}
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		t.Fatal(err)
	}
	visible, err := f.GetColVisible("rows", name)
	if err != nil {
		t.Fatal(err)
	}
	if visible {
		t.Error("Page_No should be hidden by default")
	}
	if cells[1][col-1] != "1" {
		t.Errorf("hidden column lost its data: %q", cells[1][col-1])
	}
}

func TestWriteXLSXBlankZeroes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.xlsx")
	rows := []types.Row{{
		Source: "r.pdf", LineNo: 1,
		SectionType: types.SectionSentence, Text: "No page known.",
	}}
	if err := WriteXLSX(path, rows, types.ExportConfig{HiddenColumns: []string{}}); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// Page_No (C) and Heading Level (E) stay blank for zero values.
	for _, cell := range []string{"C2", "E2"} {
		v, err := f.GetCellValue(DefaultSheetName, cell)
		if err != nil {
			t.Fatal(err)
		}
		if v != "" {
			t.Errorf("cell %s = %q, want blank", cell, v)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	cfg := types.ExportConfig{Metadata: map[string]string{"Company": "GreenGuard"}}
	if err := WriteCSV(&buf, sampleRows(), cfg); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	if records[0][0] != "Company" || records[0][1] != "Source" {
		t.Errorf("header = %v", records[0][:2])
	}
	// Table row: no page, so the cell is empty.
	last := records[4]
	if last[3] != "" {
		t.Errorf("Page_No for unpaged row = %q, want empty", last[3])
	}
	if last[7] != "TRUE" {
		t.Errorf("Is Table = %q, want TRUE", last[7])
	}
}

func TestRecleanXLSX(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.xlsx")
	out := filepath.Join(dir, "out.xlsx")

	rows := []types.Row{{
		Source: "r.pdf", LineNo: 1, SectionType: types.SectionSentence,
		Text: "Double  spaced   text.", CurrentSection: "Intro",
	}}
	if err := WriteXLSX(in, rows, types.ExportConfig{}); err != nil {
		t.Fatal(err)
	}

	collapse := func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	}
	changed, err := RecleanXLSX(in, out, "", collapse)
	if err != nil {
		t.Fatalf("RecleanXLSX: %v", err)
	}
	if changed != 1 {
		t.Errorf("changed = %d, want 1", changed)
	}

	got, err := ReadXLSX(out, "")
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Text != "Double spaced text." {
		t.Errorf("Text = %q", got[0].Text)
	}
	if got[0].CurrentSection != "Intro" {
		t.Errorf("untouched cell changed: %q", got[0].CurrentSection)
	}
}
