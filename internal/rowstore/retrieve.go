// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rowstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/greenguard/docflow/pkg/types"
)

// QueryOptions holds parameters for row store queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over row text.
	Query string

	// SectionType filters by row classification.
	SectionType types.SectionType

	// Source filters by originating document.
	Source string

	// Section filters by current section heading (exact match).
	Section string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.SectionType == "" && q.Source == "" && q.Section == ""
}

// Retrieve queries the store with optional full-text search and
// structured filters. Full-text queries are ranked by relevance;
// structured-only queries come back in document order.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.Row, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT r.source, r.line_no, r.page_no, r.section_type, r.heading_level,
				r.is_bullet, r.is_table, r.h1, r.h2, r.h3,
				r.section_path, r.current_section, r.text
			FROM rows_fts
			JOIN rows r ON r.rowid = rows_fts.rowid
			WHERE rows_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT r.source, r.line_no, r.page_no, r.section_type, r.heading_level,
				r.is_bullet, r.is_table, r.h1, r.h2, r.h3,
				r.section_path, r.current_section, r.text
			FROM rows r
			WHERE 1=1`)
	}

	if opts.SectionType != "" {
		qb.WriteString(` AND r.section_type = ?`)
		args = append(args, string(opts.SectionType))
	}

	if opts.Source != "" {
		qb.WriteString(` AND r.source = ?`)
		args = append(args, opts.Source)
	}

	if opts.Section != "" {
		qb.WriteString(` AND r.current_section = ?`)
		args = append(args, opts.Section)
	}

	if useFTS {
		qb.WriteString(` ORDER BY rows_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.source, r.line_no`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	dbRows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying row store: %w", err)
	}
	defer dbRows.Close()

	var results []types.Row
	for dbRows.Next() {
		var (
			r           types.Row
			sectionType string
		)
		if err := dbRows.Scan(
			&r.Source, &r.LineNo, &r.PageNo, &sectionType, &r.HeadingLevel,
			&r.IsBullet, &r.IsTable, &r.H1, &r.H2, &r.H3,
			&r.SectionPath, &r.CurrentSection, &r.Text,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.SectionType = types.SectionType(sectionType)
		results = append(results, r)
	}

	return results, dbRows.Err()
}

// Sources lists the documents in the store with their row counts.
func (s *Store) Sources(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, row_count FROM documents ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		out[source] = count
	}
	return out, rows.Err()
}
