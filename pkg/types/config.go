// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. EDGAR
	// rejects requests without a declared agent (e.g. "Name email@example.com").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DownloadConfig holds settings for the retrieval stage.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// DataDir is the base directory (contains indices/, raw/, extracted/, index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// StartYear and EndYear bound the quarterly index range, inclusive.
	StartYear int `json:"start_year" yaml:"start_year"`
	EndYear   int `json:"end_year" yaml:"end_year"`

	// Quarters selects which quarters to fetch (subset of 1..4; default all).
	Quarters []int `json:"quarters" yaml:"quarters"`

	// FilingTypes restricts downloads to these form types.
	FilingTypes []string `json:"filing_types" yaml:"filing_types"`

	// CIKs restricts downloads to these filers. Empty means all filers.
	CIKs []string `json:"ciks" yaml:"ciks"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// SkipPresentIndices skips index files already on disk.
	SkipPresentIndices bool `json:"skip_present_indices" yaml:"skip_present_indices"`
}

// ExtractionConfig holds settings for the segmentation engine.
type ExtractionConfig struct {
	// DataDir is the base directory (contains raw/, extracted/, index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// FilingTypes selects which filing types to process. A requested type
	// with no registered schema is fatal at startup.
	FilingTypes []string `json:"filing_types" yaml:"filing_types"`

	// ItemsToRetain restricts output to a subset of item identifiers.
	// Empty means all items of each filing type's schema.
	ItemsToRetain []string `json:"items_to_retain" yaml:"items_to_retain"`

	// RemoveTables controls whether tabular numeric regions are deleted
	// before boundary matching (default true).
	RemoveTables bool `json:"remove_tables" yaml:"remove_tables"`

	// IncludeSignature controls whether the post-last-item signature text
	// is retained as its own output field.
	IncludeSignature bool `json:"include_signature" yaml:"include_signature"`

	// Workers is the extraction worker count (default: available CPU cores).
	Workers int `json:"workers" yaml:"workers"`

	// SkipExtracted skips filings already recorded in the ledger.
	SkipExtracted bool `json:"skip_extracted" yaml:"skip_extracted"`
}

// StoreConfig holds settings for the persistence stage.
type StoreConfig struct {
	// DataDir is the base directory (contains extracted/, index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Download   DownloadConfig   `json:"download" yaml:"download"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Store      StoreConfig      `json:"store" yaml:"store"`
}
