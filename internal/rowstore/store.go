// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rowstore persists extracted rows and builds a retrieval index.
// Workbooks produced by the extract pipeline are ingested into SQLite
// with a full-text index over row text, so extracted documents can be
// queried without reopening spreadsheets.
package rowstore

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/greenguard/docflow/internal/export"
	"github.com/greenguard/docflow/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "docflow.db"
)

// Store manages the row store SQLite database.
type Store struct {
	db         *sql.DB
	storeDir   string
	maxResults int
}

// NewStore opens or creates the SQLite database at storeDir/index/docflow.db,
// creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.StoreDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		storeDir:   cfg.StoreDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			source TEXT PRIMARY KEY,
			ingested_at TEXT,
			row_count INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS rows (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL REFERENCES documents(source),
			line_no INTEGER NOT NULL,
			page_no INTEGER,
			section_type TEXT NOT NULL,
			heading_level INTEGER,
			is_bullet INTEGER NOT NULL DEFAULT 0,
			is_table INTEGER NOT NULL DEFAULT 0,
			h1 TEXT,
			h2 TEXT,
			h3 TEXT,
			section_path TEXT,
			current_section TEXT,
			text TEXT NOT NULL,
			UNIQUE(source, line_no)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_source ON rows(source)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_section_type ON rows(section_type)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			source TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='rows_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE rows_fts USING fts5(text, content=rows, content_rowid=rowid)`,
			`CREATE TRIGGER rows_ai AFTER INSERT ON rows BEGIN
				INSERT INTO rows_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
			`CREATE TRIGGER rows_ad AFTER DELETE ON rows BEGIN
				INSERT INTO rows_fts(rows_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			END`,
			`CREATE TRIGGER rows_au AFTER UPDATE ON rows BEGIN
				INSERT INTO rows_fts(rows_fts, rowid, text) VALUES('delete', old.rowid, old.text);
				INSERT INTO rows_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a store indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of workbooks processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// HasFailures reports whether any workbooks failed ingestion.
func (s IngestSummary) HasFailures() bool {
	return s.Failed > 0
}

// Ingest loads rows from the given xlsx workbooks into the database.
// Unchanged files (same modification time as last ingest) are skipped,
// changed files replace their previous rows. Per-file status goes to w.
func (s *Store) Ingest(ctx context.Context, xlsxPaths []string, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	for _, path := range xlsxPaths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM ingest_status WHERE source = ?`, name,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", name)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		rows, err := export.ReadXLSX(path, "")
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if err := s.ingestDocument(ctx, name, rows, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d rows)\n", name, len(rows))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s (%d rows)\n", name, len(rows))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

// IngestRows stores already-parsed rows for a document, replacing any
// previous rows under the same name. The extract pipeline uses this to
// index results without going through a workbook on disk.
func (s *Store) IngestRows(ctx context.Context, name string, rows []types.Row) error {
	modTime := time.Now().UTC().Format(time.RFC3339Nano)
	return s.ingestDocument(ctx, name, rows, modTime, true)
}

func (s *Store) ingestDocument(ctx context.Context, name string, rows []types.Row, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rows WHERE source = ?`, name); err != nil {
			return fmt.Errorf("deleting old rows: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (source, ingested_at, row_count) VALUES (?, ?, ?)
		 ON CONFLICT(source) DO UPDATE SET
			ingested_at=excluded.ingested_at, row_count=excluded.row_count`,
		name, time.Now().UTC().Format(time.RFC3339), len(rows),
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rows (source, line_no, page_no, section_type, heading_level,
			is_bullet, is_table, h1, h2, h3, section_path, current_section, text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			name, r.LineNo, r.PageNo, string(r.SectionType), r.HeadingLevel,
			r.IsBullet, r.IsTable, r.H1, r.H2, r.H3,
			r.SectionPath, r.CurrentSection, r.Text,
		)
		if err != nil {
			return fmt.Errorf("inserting row %d: %w", r.LineNo, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_status (source, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(source) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		name, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating ingest status: %w", err)
	}

	return tx.Commit()
}
