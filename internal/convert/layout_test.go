// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenguard/docflow/pkg/types"
)

const layoutFixture = `{
  "chunks": [
    {"type": "title", "text": "Annual Report", "page": 1, "level": 1},
    {"type": "section_header", "text": "Emissions", "page": 2, "level": 2},
    {"type": "text", "text": "Scope 1 fell by 12%.", "page": 2},
    {"type": "list_item", "text": "Fleet electrification", "page": 2},
    {"type": "table", "text": "Scope | 2024 | 2025", "page": 3},
    {"type": "text", "text": "   ", "page": 3}
  ]
}`

func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("fake pdf"), 0o644))
	return path
}

func TestLayoutConvertRows(t *testing.T) {
	var gotAuth, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, layoutParsePath, r.URL.Path)
		w.Write([]byte(layoutFixture))
	}))
	defer srv.Close()

	l := NewLayout(types.ConversionConfig{
		Backend:       types.BackendLayout,
		LayoutBaseURL: srv.URL,
		LayoutAPIKey:  "sekrit",
	})

	rows, err := l.ConvertRows(context.Background(), writeTempPDF(t))
	require.NoError(t, err)

	assert.Equal(t, "Bearer sekrit", gotAuth)
	assert.Equal(t, "application/pdf", gotContentType)

	// The blank text chunk is dropped.
	require.Len(t, rows, 5)

	assert.Equal(t, types.SectionHeading, rows[0].SectionType)
	assert.Equal(t, 1, rows[0].HeadingLevel)
	assert.Equal(t, "Annual Report", rows[0].Text)
	assert.Equal(t, 1, rows[0].PageNo)

	assert.Equal(t, types.SectionHeading, rows[1].SectionType)
	assert.Equal(t, 2, rows[1].HeadingLevel)
	assert.Equal(t, "Annual Report", rows[1].H1)
	assert.Equal(t, "Emissions", rows[1].H2)

	body := rows[2]
	assert.Equal(t, types.SectionSentence, body.SectionType)
	assert.Equal(t, "Annual Report > Emissions", body.SectionPath)
	assert.Equal(t, "Emissions", body.CurrentSection)
	assert.Equal(t, 2, body.PageNo)

	assert.True(t, rows[3].IsBullet)
	assert.Equal(t, types.SectionBullet, rows[3].SectionType)

	assert.True(t, rows[4].IsTable)
	assert.Equal(t, types.SectionTable, rows[4].SectionType)
	assert.Equal(t, 3, rows[4].PageNo)

	for i, r := range rows {
		assert.Equal(t, i+1, r.LineNo, "line numbers are emission ordinals")
		assert.Equal(t, "report.pdf", r.Source)
	}
}

func TestLayoutConvertRowsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	l := NewLayout(types.ConversionConfig{LayoutBaseURL: srv.URL})
	_, err := l.ConvertRows(context.Background(), writeTempPDF(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
