// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionBackend identifies the PDF-to-Markdown conversion tool.
type ConversionBackend string

const (
	// BackendPDFText extracts per-page plain text natively, with no
	// external dependencies.
	BackendPDFText ConversionBackend = "pdftext"

	// BackendDocling runs the docling container image, which handles
	// reading order, multi-column layouts, and most tables.
	BackendDocling ConversionBackend = "docling"

	// BackendLayout calls a remote layout-analysis API that returns
	// typed chunks directly.
	BackendLayout ConversionBackend = "layout"
)

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// Backend selects the conversion tool: pdftext, docling, or layout.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// WorkDir is the base directory for pipeline artifacts
	// (contains markdown/, output/).
	WorkDir string `json:"work_dir" yaml:"work_dir"`

	// ContainerImage is the docling container image (default "docling:latest").
	ContainerImage string `json:"container_image,omitempty" yaml:"container_image,omitempty"`

	// LayoutBaseURL is the base URL of the remote layout API.
	LayoutBaseURL string `json:"layout_base_url,omitempty" yaml:"layout_base_url,omitempty"`

	// LayoutAPIKey authenticates against the remote layout API.
	LayoutAPIKey string `json:"layout_api_key,omitempty" yaml:"layout_api_key,omitempty"`

	// Timeout is the per-document conversion timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ParseConfig holds settings for the Markdown-to-rows parsing stage.
type ParseConfig struct {
	// SkipBoilerplate drops table-of-contents and reference-list lines
	// before classification (default true).
	SkipBoilerplate bool `json:"skip_boilerplate" yaml:"skip_boilerplate"`

	// ExtraAbbreviations adds document-specific abbreviation tokens to the
	// sentence-boundary guard list (e.g. "Twp.", "Reg.").
	ExtraAbbreviations []string `json:"extra_abbreviations,omitempty" yaml:"extra_abbreviations,omitempty"`

	// Workers is the number of documents parsed in parallel in batch
	// mode. Each document gets its own parser state (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// ExportConfig holds settings for the spreadsheet export stage.
type ExportConfig struct {
	// SheetName names the worksheet (default "extracted").
	SheetName string `json:"sheet_name" yaml:"sheet_name"`

	// OutDir overrides the workbook output directory. Empty means
	// <work_dir>/output.
	OutDir string `json:"out_dir,omitempty" yaml:"out_dir,omitempty"`

	// Metadata adds constant-valued leading columns to every row,
	// e.g. Company, Year, Document Type.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// HiddenColumns lists renamed header names to hide in the workbook.
	// Nil means the default set (Page_No, H1, H2, H3); an empty slice
	// hides nothing.
	HiddenColumns []string `json:"hidden_columns,omitempty" yaml:"hidden_columns,omitempty"`
}

// StoreConfig holds settings for the row store.
type StoreConfig struct {
	// StoreDir is the base directory for the store (contains index/).
	StoreDir string `json:"store_dir" yaml:"store_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServerConfig holds settings for the HTTP front end.
type ServerConfig struct {
	// Addr is the listen address (default ":8090").
	Addr string `json:"addr" yaml:"addr"`

	// APIKey, when set, is required in the X-API-Key header on /api routes.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxUploadBytes limits the size of uploaded PDFs (default 64 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	Parse      ParseConfig      `json:"parse" yaml:"parse"`
	Export     ExportConfig     `json:"export" yaml:"export"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Server     ServerConfig     `json:"server" yaml:"server"`
}
