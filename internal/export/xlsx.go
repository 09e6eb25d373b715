// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes parsed rows to spreadsheet files and reads them
// back. The xlsx format is the primary deliverable; CSV is a plain-text
// fallback with the same column layout.
package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/greenguard/docflow/pkg/types"
)

// DefaultSheetName names the worksheet holding extracted rows.
const DefaultSheetName = "extracted"

// baseHeaders is the stable column order for row fields. Metadata columns,
// when configured, are prepended in sorted key order.
var baseHeaders = []string{
	"Source",
	"Line_No",
	"Page_No",
	"Section Type",
	"Heading Level",
	"Is Bullet",
	"Is Table",
	"Section",
	"Current Section",
	"Text",
	"H1",
	"H2",
	"H3",
}

// defaultHiddenColumns are collapsed in the workbook unless the
// configuration overrides them. The data stays present for round-trips.
var defaultHiddenColumns = []string{"Page_No", "H1", "H2", "H3"}

// headers returns the full header row for the given configuration.
func headers(cfg types.ExportConfig) []string {
	meta := metadataKeys(cfg.Metadata)
	out := make([]string, 0, len(meta)+len(baseHeaders))
	out = append(out, meta...)
	out = append(out, baseHeaders...)
	return out
}

func metadataKeys(meta map[string]string) []string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// cellValues maps a row onto the base columns. Zero page numbers and
// heading levels become blank cells rather than zeros.
func cellValues(r types.Row) []any {
	var pageNo, headingLevel any
	if r.PageNo > 0 {
		pageNo = r.PageNo
	}
	if r.HeadingLevel > 0 {
		headingLevel = r.HeadingLevel
	}
	return []any{
		r.Source,
		r.LineNo,
		pageNo,
		string(r.SectionType),
		headingLevel,
		r.IsBullet,
		r.IsTable,
		r.SectionPath,
		r.CurrentSection,
		r.Text,
		r.H1,
		r.H2,
		r.H3,
	}
}

// WriteXLSX writes rows to an xlsx workbook at path. An empty row slice
// produces a header-only workbook.
func WriteXLSX(path string, rows []types.Row, cfg types.ExportConfig) error {
	sheet := cfg.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	hdr := headers(cfg)
	metaKeys := metadataKeys(cfg.Metadata)

	for col, name := range hdr {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}

	for i, r := range rows {
		values := make([]any, 0, len(hdr))
		for _, k := range metaKeys {
			values = append(values, cfg.Metadata[k])
		}
		values = append(values, cellValues(r)...)

		for col, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("writing row %d: %w", i+1, err)
			}
		}
	}

	if err := styleHeader(f, sheet, len(hdr)); err != nil {
		return err
	}
	if err := hideColumns(f, sheet, hdr, cfg.HiddenColumns); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

// styleHeader bolds the header row and freezes it above the data.
func styleHeader(f *excelize.File, sheet string, ncols int) error {
	if ncols == 0 {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(ncols, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// hideColumns collapses the named columns. A nil list selects the default
// hidden set; an empty list hides nothing.
func hideColumns(f *excelize.File, sheet string, hdr, hidden []string) error {
	if hidden == nil {
		hidden = defaultHiddenColumns
	}
	want := make(map[string]bool, len(hidden))
	for _, h := range hidden {
		want[h] = true
	}
	for i, name := range hdr {
		if !want[name] {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColVisible(sheet, col, false); err != nil {
			return err
		}
	}
	return nil
}

// ReadXLSX loads rows back from a workbook written by WriteXLSX. Metadata
// columns are ignored; unknown headers are skipped so workbooks edited by
// hand still load.
func ReadXLSX(path, sheet string) ([]types.Row, error) {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(cells) == 0 {
		return []types.Row{}, nil
	}

	colFor := make(map[string]int, len(cells[0]))
	for i, name := range cells[0] {
		colFor[name] = i
	}

	get := func(row []string, header string) string {
		i, ok := colFor[header]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rows := make([]types.Row, 0, len(cells)-1)
	for _, c := range cells[1:] {
		r := types.Row{
			Source:         get(c, "Source"),
			LineNo:         atoiOrZero(get(c, "Line_No")),
			PageNo:         atoiOrZero(get(c, "Page_No")),
			SectionType:    types.SectionType(get(c, "Section Type")),
			HeadingLevel:   atoiOrZero(get(c, "Heading Level")),
			IsBullet:       isTrue(get(c, "Is Bullet")),
			IsTable:        isTrue(get(c, "Is Table")),
			SectionPath:    get(c, "Section"),
			CurrentSection: get(c, "Current Section"),
			Text:           get(c, "Text"),
			H1:             get(c, "H1"),
			H2:             get(c, "H2"),
			H3:             get(c, "H3"),
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func isTrue(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "1":
		return true
	}
	return false
}

// textColumns are the columns rewritten by RecleanXLSX.
var textColumns = []string{"Text", "Section", "Current Section", "H1", "H2", "H3"}

// RecleanXLSX applies clean to every text-bearing cell of an existing
// workbook, writing the result to outPath. It returns the number of cells
// whose content changed.
func RecleanXLSX(inPath, outPath, sheet string, clean func(string) string) (int, error) {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	f, err := excelize.OpenFile(inPath)
	if err != nil {
		return 0, fmt.Errorf("opening workbook %s: %w", inPath, err)
	}
	defer f.Close()

	cells, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(cells) == 0 {
		return 0, f.SaveAs(outPath)
	}

	target := make(map[int]bool)
	for i, name := range cells[0] {
		for _, want := range textColumns {
			if name == want {
				target[i] = true
			}
		}
	}

	changed := 0
	for rowIdx, row := range cells[1:] {
		for colIdx, val := range row {
			if !target[colIdx] || val == "" {
				continue
			}
			cleaned := clean(val)
			if cleaned == val {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return changed, err
			}
			if err := f.SetCellValue(sheet, cell, cleaned); err != nil {
				return changed, err
			}
			changed++
		}
	}

	if err := f.SaveAs(outPath); err != nil {
		return changed, fmt.Errorf("saving workbook %s: %w", outPath, err)
	}
	return changed, nil
}
