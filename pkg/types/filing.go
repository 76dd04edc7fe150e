// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data model for the EDGAR extraction pipeline.
package types

import (
	"bytes"
	"encoding/json"
)

// FilingType identifies one supported filing taxonomy.
type FilingType string

const (
	// FilingAnnual is the annual report form (10-K).
	FilingAnnual FilingType = "10-K"

	// FilingQuarterly is the quarterly report form (10-Q).
	FilingQuarterly FilingType = "10-Q"

	// FilingCurrent is the current report form (8-K).
	FilingCurrent FilingType = "8-K"
)

// SupportedFilingTypes lists the filing types the engine can segment.
var SupportedFilingTypes = []FilingType{FilingAnnual, FilingQuarterly, FilingCurrent}

// SourceLinks points back to the archive copies of a filing.
type SourceLinks struct {
	// HTMLIndex is the EDGAR filing index page.
	HTMLIndex string `json:"filing_html_index" yaml:"filing_html_index"`

	// Document is the primary .htm document link, when one exists.
	Document string `json:"htm_filing_link" yaml:"htm_filing_link"`

	// CompleteText is the complete submission text file link.
	CompleteText string `json:"complete_text_filing_link" yaml:"complete_text_filing_link"`
}

// RawFiling is one filing as delivered by the retrieval collaborator.
// The engine borrows it read-only for the duration of one extraction call.
type RawFiling struct {
	// Accession is the archive accession number (e.g. "0000320193-23-000006").
	Accession string

	// Type is the declared filing type.
	Type FilingType

	// CIK is the central index key of the filer.
	CIK string

	// Filename is the source filename of the raw document.
	Filename string

	// Content is the raw document bytes, including the SEC header block.
	Content []byte

	// Links are the archive source links for the filing.
	Links SourceLinks
}

// FilingMetadata holds the fields parsed from a filing's header block.
// Parsed once per filing and never mutated after creation.
type FilingMetadata struct {
	CIK            string      `json:"cik" yaml:"cik"`
	Company        string      `json:"company" yaml:"company"`
	Type           FilingType  `json:"filing_type" yaml:"filing_type"`
	FilingDate     string      `json:"filing_date" yaml:"filing_date"`
	PeriodOfReport string      `json:"period_of_report" yaml:"period_of_report"`
	SIC            string      `json:"sic" yaml:"sic"`
	StateOfInc     string      `json:"state_of_inc" yaml:"state_of_inc"`
	StateLocation  string      `json:"state_location" yaml:"state_location"`
	FiscalYearEnd  string      `json:"fiscal_year_end" yaml:"fiscal_year_end"`
	Links          SourceLinks `json:"links" yaml:"links"`
}

// HasRequiredFields reports whether the minimum field set for a usable
// record (company identifier and filing type) was recovered.
func (m FilingMetadata) HasRequiredFields() bool {
	return m.CIK != "" && m.Type != ""
}

// ItemSegment is one item-keyed slice of narrative text. An item that does
// not appear in the filing carries an empty Text, never a missing key.
type ItemSegment struct {
	// Key is the output field name (e.g. "item_1A", "part_2_item_6", "part_1").
	Key string `json:"key" yaml:"key"`

	// Text is the extracted section text, empty when the item is absent.
	Text string `json:"text" yaml:"text"`
}

// ExtractedFiling is the structured record produced for one filing:
// metadata plus item segments in schema order.
type ExtractedFiling struct {
	Metadata FilingMetadata

	// Filename is the source filename of the raw document.
	Filename string

	// Segments holds one entry per schema item, in schema order.
	Segments []ItemSegment
}

// Segment returns the text for an item key, and whether the key exists.
func (f *ExtractedFiling) Segment(key string) (string, bool) {
	for _, s := range f.Segments {
		if s.Key == key {
			return s.Text, true
		}
	}
	return "", false
}

// MarshalJSON emits a flat object: metadata fields first, then one field per
// item key in schema order. Key order is significant to downstream consumers,
// so the record is assembled by hand rather than through a map.
func (f *ExtractedFiling) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	fields := []struct {
		key   string
		value string
	}{
		{"cik", f.Metadata.CIK},
		{"company", f.Metadata.Company},
		{"filing_type", string(f.Metadata.Type)},
		{"filing_date", f.Metadata.FilingDate},
		{"period_of_report", f.Metadata.PeriodOfReport},
		{"sic", f.Metadata.SIC},
		{"state_of_inc", f.Metadata.StateOfInc},
		{"state_location", f.Metadata.StateLocation},
		{"fiscal_year_end", f.Metadata.FiscalYearEnd},
		{"filing_html_index", f.Metadata.Links.HTMLIndex},
		{"htm_filing_link", f.Metadata.Links.Document},
		{"complete_text_filing_link", f.Metadata.Links.CompleteText},
		{"filename", f.Filename},
	}
	for _, s := range f.Segments {
		fields = append(fields, struct{ key, value string }{s.Key, s.Text})
	}

	for i, fv := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(fv.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(fv.value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FailureReason classifies why a filing could not be extracted.
type FailureReason string

const (
	// FailureMetadata means the required header fields were unrecoverable.
	FailureMetadata FailureReason = "metadata"

	// FailureEmptyDocument means the normalized buffer contained no text.
	FailureEmptyDocument FailureReason = "empty_document"

	// FailureUnsupportedType means the filing type has no registered schema.
	FailureUnsupportedType FailureReason = "unsupported_type"
)

// ExtractionFailure records a filing that could not be extracted.
type ExtractionFailure struct {
	Accession string          `json:"accession" yaml:"accession"`
	Reason    FailureReason   `json:"reason" yaml:"reason"`
	Detail    string          `json:"detail,omitempty" yaml:"detail,omitempty"`
	Metadata  *FilingMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ExtractionOutcome is the tagged result of one extraction call: exactly one
// of Filing or Failure is set. Every filing yields exactly one outcome; the
// engine never lets a single filing abort a run.
type ExtractionOutcome struct {
	Accession string
	Filing    *ExtractedFiling
	Failure   *ExtractionFailure
}

// Succeeded reports whether the filing produced a structured record.
func (o ExtractionOutcome) Succeeded() bool {
	return o.Filing != nil
}
