// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extraction outcomes: one JSON record per
// extracted filing on disk, plus a SQLite index with full-text search
// over the extracted item text. The index doubles as the extraction
// ledger that lets re-runs skip filings already processed.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/edgar-engine/pkg/types"
)

const (
	extractedDir = "extracted"
	indexDir     = "index"
	dbFile       = "edgar.db"
)

// Filing status values recorded in the index.
const (
	StatusExtracted = "extracted"
	StatusFailed    = "failed"
)

// Store manages the extraction index SQLite database and the extracted
// JSON records under the data directory.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the index database at dataDir/index/edgar.db,
// creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
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
		dataDir:    cfg.DataDir,
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
		`CREATE TABLE IF NOT EXISTS filings (
			accession TEXT PRIMARY KEY,
			cik TEXT,
			company TEXT,
			filing_type TEXT,
			filing_date TEXT,
			period_of_report TEXT,
			sic TEXT,
			state_of_inc TEXT,
			state_location TEXT,
			fiscal_year_end TEXT,
			filename TEXT,
			status TEXT NOT NULL,
			failure_reason TEXT,
			failure_detail TEXT,
			recorded_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			accession TEXT NOT NULL REFERENCES filings(accession),
			item_key TEXT NOT NULL,
			content TEXT NOT NULL,
			UNIQUE(accession, item_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_accession ON items(accession)`,
		`CREATE INDEX IF NOT EXISTS idx_filings_type ON filings(filing_type)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='items_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE items_fts USING fts5(content, content=items, content_rowid=rowid)`,
			`CREATE TRIGGER items_ai AFTER INSERT ON items BEGIN
				INSERT INTO items_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER items_ad AFTER DELETE ON items BEGIN
				INSERT INTO items_fts(items_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER items_au AFTER UPDATE ON items BEGIN
				INSERT INTO items_fts(items_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO items_fts(rowid, content) VALUES (new.rowid, new.content);
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

// Seen reports whether an accession already has a successful extraction
// recorded. Failed outcomes are not seen, so a re-run retries them.
func (s *Store) Seen(accession string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT count(*) FROM filings WHERE accession = ? AND status = ?`,
		accession, StatusExtracted,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying filing status: %w", err)
	}
	return n > 0, nil
}

// Record persists one extraction outcome: the filing row and its item
// text in the index, and for successful extractions the JSON record
// under dataDir/extracted/[type]/[accession].json. Re-recording an
// accession replaces the previous outcome.
func (s *Store) Record(outcome types.ExtractionOutcome) error {
	if err := s.index(outcome); err != nil {
		return err
	}
	if outcome.Filing != nil {
		return s.writeRecord(outcome.Filing, outcome.Accession)
	}
	return nil
}

func (s *Store) index(outcome types.ExtractionOutcome) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM items WHERE accession = ?`, outcome.Accession); err != nil {
		return fmt.Errorf("deleting old items: %w", err)
	}

	recordedAt := time.Now().UTC().Format(time.RFC3339)

	if f := outcome.Filing; f != nil {
		m := f.Metadata
		_, err := tx.Exec(
			`INSERT INTO filings (accession, cik, company, filing_type, filing_date,
				period_of_report, sic, state_of_inc, state_location, fiscal_year_end,
				filename, status, failure_reason, failure_detail, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '', '', ?)
			 ON CONFLICT(accession) DO UPDATE SET
				cik=excluded.cik, company=excluded.company,
				filing_type=excluded.filing_type, filing_date=excluded.filing_date,
				period_of_report=excluded.period_of_report, sic=excluded.sic,
				state_of_inc=excluded.state_of_inc, state_location=excluded.state_location,
				fiscal_year_end=excluded.fiscal_year_end, filename=excluded.filename,
				status=excluded.status, failure_reason='', failure_detail='',
				recorded_at=excluded.recorded_at`,
			outcome.Accession, m.CIK, m.Company, string(m.Type), m.FilingDate,
			m.PeriodOfReport, m.SIC, m.StateOfInc, m.StateLocation, m.FiscalYearEnd,
			f.Filename, StatusExtracted, recordedAt,
		)
		if err != nil {
			return fmt.Errorf("upserting filing: %w", err)
		}

		stmt, err := tx.Prepare(
			`INSERT INTO items (accession, item_key, content) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing item insert: %w", err)
		}
		defer stmt.Close()

		for _, seg := range f.Segments {
			if seg.Text == "" {
				continue
			}
			if _, err := stmt.Exec(outcome.Accession, seg.Key, seg.Text); err != nil {
				return fmt.Errorf("inserting item %s: %w", seg.Key, err)
			}
		}
	} else {
		fail := outcome.Failure
		var m types.FilingMetadata
		if fail.Metadata != nil {
			m = *fail.Metadata
		}
		_, err := tx.Exec(
			`INSERT INTO filings (accession, cik, company, filing_type, filing_date,
				period_of_report, sic, state_of_inc, state_location, fiscal_year_end,
				filename, status, failure_reason, failure_detail, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '', ?, ?, ?, ?)
			 ON CONFLICT(accession) DO UPDATE SET
				status=excluded.status, failure_reason=excluded.failure_reason,
				failure_detail=excluded.failure_detail, recorded_at=excluded.recorded_at`,
			outcome.Accession, m.CIK, m.Company, string(m.Type), m.FilingDate,
			m.PeriodOfReport, m.SIC, m.StateOfInc, m.StateLocation, m.FiscalYearEnd,
			StatusFailed, string(fail.Reason), fail.Detail, recordedAt,
		)
		if err != nil {
			return fmt.Errorf("recording failure: %w", err)
		}
	}

	return tx.Commit()
}

// writeRecord writes the flat JSON record for one extracted filing.
func (s *Store) writeRecord(f *types.ExtractedFiling, accession string) error {
	dir := filepath.Join(s.dataDir, extractedDir, string(f.Metadata.Type))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating extracted directory: %w", err)
	}

	data, err := json.MarshalIndent(f, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling record for %s: %w", accession, err)
	}

	path := filepath.Join(dir, accession+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing record %s: %w", path, err)
	}
	return nil
}
