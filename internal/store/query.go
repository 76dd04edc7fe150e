// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"
)

// SearchOptions holds parameters for index queries.
type SearchOptions struct {
	// Query is the FTS5 full-text search string. Empty browses by filters.
	Query string

	// FilingType filters by form type ("10-K", "10-Q", "8-K").
	FilingType string

	// CIK filters by filer.
	CIK string

	// ItemKey filters by output field name (e.g. "item_1A").
	ItemKey string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// SearchResult is one matching item section with its filing context.
type SearchResult struct {
	Accession  string
	CIK        string
	Company    string
	FilingType string
	FilingDate string
	ItemKey    string

	// Snippet is the matched passage for full-text queries, or the
	// leading text of the section for structured browsing.
	Snippet string
}

// Search queries the index with optional full-text search and structured
// filters. Full-text results are ranked by relevance; structured-only
// results are ordered by filing date, newest first.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]SearchResult, error) {
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
			`SELECT i.accession, f.cik, f.company, f.filing_type, f.filing_date,
				i.item_key, snippet(items_fts, 0, '[', ']', ' ... ', 24)
			FROM items_fts
			JOIN items i ON i.rowid = items_fts.rowid
			JOIN filings f ON i.accession = f.accession
			WHERE items_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT i.accession, f.cik, f.company, f.filing_type, f.filing_date,
				i.item_key, substr(i.content, 1, 200)
			FROM items i
			JOIN filings f ON i.accession = f.accession
			WHERE 1=1`)
	}

	if opts.FilingType != "" {
		qb.WriteString(` AND f.filing_type = ?`)
		args = append(args, opts.FilingType)
	}

	if opts.CIK != "" {
		qb.WriteString(` AND f.cik = ?`)
		args = append(args, opts.CIK)
	}

	if opts.ItemKey != "" {
		qb.WriteString(` AND i.item_key = ?`)
		args = append(args, opts.ItemKey)
	}

	if useFTS {
		qb.WriteString(` ORDER BY items_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY f.filing_date DESC, i.accession, i.item_key`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(
			&r.Accession, &r.CIK, &r.Company, &r.FilingType, &r.FilingDate,
			&r.ItemKey, &r.Snippet,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// StatusSummary reports the index contents by outcome and form type.
type StatusSummary struct {
	Extracted int
	Failed    int
	ByType    map[string]int
}

// Total returns the number of filings with a recorded outcome.
func (s StatusSummary) Total() int {
	return s.Extracted + s.Failed
}

// Status summarizes recorded outcomes across the whole index.
func (s *Store) Status(ctx context.Context) (StatusSummary, error) {
	summary := StatusSummary{ByType: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx,
		`SELECT filing_type, status, count(*) FROM filings GROUP BY filing_type, status`)
	if err != nil {
		return summary, fmt.Errorf("querying status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ft, status string
		var n int
		if err := rows.Scan(&ft, &status, &n); err != nil {
			return summary, fmt.Errorf("scanning status row: %w", err)
		}
		switch status {
		case StatusExtracted:
			summary.Extracted += n
			summary.ByType[ft] += n
		case StatusFailed:
			summary.Failed += n
		}
	}

	return summary, rows.Err()
}
