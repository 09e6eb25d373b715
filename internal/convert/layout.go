// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/greenguard/docflow/internal/httputil"
	"github.com/greenguard/docflow/internal/mdparse"
	"github.com/greenguard/docflow/internal/textclean"
	"github.com/greenguard/docflow/pkg/types"
)

const layoutParsePath = "/v1/parse"

// Layout is the remote layout-analysis backend. Instead of Markdown it
// returns typed chunks with page numbers, which are mapped straight to
// rows without going through the Markdown parser.
type Layout struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewLayout returns a converter that posts PDFs to the layout API at
// cfg.LayoutBaseURL.
func NewLayout(cfg types.ConversionConfig) *Layout {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Layout{
		baseURL: cfg.LayoutBaseURL,
		apiKey:  cfg.LayoutAPIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// layoutChunk is one element of the layout API response.
type layoutChunk struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
	Level int    `json:"level"`
}

type layoutResponse struct {
	Chunks []layoutChunk `json:"chunks"`
}

// ConvertRows uploads the PDF and maps the returned chunks to rows.
// Heading chunks feed the section tracker so every row carries the
// heading hierarchy, same as the Markdown pipeline.
func (l *Layout) ConvertRows(ctx context.Context, pdfPath string) ([]types.Row, error) {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("reading pdf %s: %w", pdfPath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+layoutParsePath, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building layout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	if l.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+l.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, l.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("calling layout API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("layout API returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var parsed layoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding layout response: %w", err)
	}

	return chunksToRows(filepath.Base(pdfPath), parsed.Chunks), nil
}

func chunksToRows(source string, chunks []layoutChunk) []types.Row {
	var tracker mdparse.SectionTracker
	rows := make([]types.Row, 0, len(chunks))
	lineNo := 0

	for _, c := range chunks {
		text := textclean.Clean(c.Text)
		if text == "" {
			continue
		}

		row := types.Row{
			Source: source,
			PageNo: c.Page,
			Text:   text,
		}
		switch c.Type {
		case "title", "heading", "section_header":
			level := c.Level
			if level < 1 {
				level = 1
			}
			if level > mdparse.MaxHeadingLevel {
				level = mdparse.MaxHeadingLevel
			}
			tracker.Apply(level, text)
			row.SectionType = types.SectionHeading
			row.HeadingLevel = level
		case "list_item", "bullet":
			row.SectionType = types.SectionBullet
			row.IsBullet = true
		case "table", "table_row":
			row.SectionType = types.SectionTable
			row.IsTable = true
		default:
			row.SectionType = types.SectionSentence
		}

		snap := tracker.Snapshot()
		row.H1 = snap.H1
		row.H2 = snap.H2
		row.H3 = snap.H3
		row.SectionPath = snap.SectionPath
		row.CurrentSection = snap.CurrentSection

		lineNo++
		row.LineNo = lineNo
		rows = append(rows, row)
	}
	return rows
}
