// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ManifestEntry is one filing's line in the exported manifest.
type ManifestEntry struct {
	Accession     string `yaml:"accession"`
	CIK           string `yaml:"cik"`
	Company       string `yaml:"company"`
	FilingType    string `yaml:"filing_type"`
	FilingDate    string `yaml:"filing_date"`
	Status        string `yaml:"status"`
	FailureReason string `yaml:"failure_reason,omitempty"`
	Items         int    `yaml:"items"`
}

// ExportManifest writes a YAML summary of every recorded outcome to
// dataDir/index/manifest.yaml, ordered by filing date then accession.
// The manifest is the human-browsable companion to the SQLite index.
func (s *Store) ExportManifest(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.accession, f.cik, f.company, f.filing_type, f.filing_date,
			f.status, f.failure_reason,
			(SELECT count(*) FROM items i WHERE i.accession = f.accession)
		FROM filings f
		ORDER BY f.filing_date, f.accession`)
	if err != nil {
		return fmt.Errorf("querying for manifest: %w", err)
	}
	defer rows.Close()

	var entries []ManifestEntry
	for rows.Next() {
		var e ManifestEntry
		if err := rows.Scan(
			&e.Accession, &e.CIK, &e.Company, &e.FilingType, &e.FilingDate,
			&e.Status, &e.FailureReason, &e.Items,
		); err != nil {
			return fmt.Errorf("scanning manifest row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	path := filepath.Join(s.dataDir, indexDir, "manifest.yaml")
	return os.WriteFile(path, data, 0o644)
}
