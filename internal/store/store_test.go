// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/edgar-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleOutcome(accession string) types.ExtractionOutcome {
	return types.ExtractionOutcome{
		Accession: accession,
		Filing: &types.ExtractedFiling{
			Metadata: types.FilingMetadata{
				CIK:        "320193",
				Company:    "WIDGETRON INC",
				Type:       types.FilingAnnual,
				FilingDate: "2023-02-03",
			},
			Filename: accession + ".txt",
			Segments: []types.ItemSegment{
				{Key: "item_1", Text: "Item 1. Business. The company sells widgets."},
				{Key: "item_1A", Text: "Item 1A. Risk Factors. Demand may decline."},
				{Key: "item_2", Text: ""},
			},
		},
	}
}

func failedOutcome(accession string) types.ExtractionOutcome {
	return types.ExtractionOutcome{
		Accession: accession,
		Failure: &types.ExtractionFailure{
			Accession: accession,
			Reason:    types.FailureEmptyDocument,
			Detail:    "no narrative text in 52 raw bytes",
			Metadata: &types.FilingMetadata{
				CIK:  "320193",
				Type: types.FilingAnnual,
			},
		},
	}
}

func TestRecordAndSeen(t *testing.T) {
	s := newTestStore(t)
	acc := "0000320193-23-000006"

	seen, err := s.Seen(acc)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.Record(sampleOutcome(acc)))

	seen, err = s.Seen(acc)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestRecordWritesJSONRecord(t *testing.T) {
	dataDir := t.TempDir()
	s, err := NewStore(types.StoreConfig{DataDir: dataDir})
	require.NoError(t, err)
	defer s.Close()

	acc := "0000320193-23-000006"
	require.NoError(t, s.Record(sampleOutcome(acc)))

	path := filepath.Join(dataDir, "extracted", "10-K", acc+".json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	record := string(data)
	assert.Contains(t, record, `"cik": "320193"`)
	assert.Contains(t, record, `"item_1A"`)
	// Metadata fields precede segment fields in the flat record.
	assert.Less(t, strings.Index(record, `"cik"`), strings.Index(record, `"item_1"`))
}

func TestRecordFailureHasNoJSONRecord(t *testing.T) {
	dataDir := t.TempDir()
	s, err := NewStore(types.StoreConfig{DataDir: dataDir})
	require.NoError(t, err)
	defer s.Close()

	acc := "0000320193-23-000099"
	require.NoError(t, s.Record(failedOutcome(acc)))

	_, err = os.Stat(filepath.Join(dataDir, "extracted", "10-K", acc+".json"))
	assert.True(t, os.IsNotExist(err))
}

func TestSeenRetriesFailures(t *testing.T) {
	s := newTestStore(t)
	acc := "0000320193-23-000099"

	require.NoError(t, s.Record(failedOutcome(acc)))

	seen, err := s.Seen(acc)
	require.NoError(t, err)
	assert.False(t, seen, "failed filings must be retried on a re-run")

	require.NoError(t, s.Record(sampleOutcome(acc)))

	seen, err = s.Seen(acc)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestRecordReplacesPreviousOutcome(t *testing.T) {
	s := newTestStore(t)
	acc := "0000320193-23-000006"

	require.NoError(t, s.Record(failedOutcome(acc)))
	require.NoError(t, s.Record(sampleOutcome(acc)))

	summary, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Extracted)
	assert.Equal(t, 0, summary.Failed)
}

func TestSearchFullText(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Record(sampleOutcome("0000320193-23-000006")))

	results, err := s.Search(context.Background(), SearchOptions{Query: "widgets"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "item_1", results[0].ItemKey)
	assert.Equal(t, "WIDGETRON INC", results[0].Company)
	assert.Contains(t, results[0].Snippet, "[widgets]")
}

func TestSearchStructuredFilters(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Record(sampleOutcome("0000320193-23-000006")))

	results, err := s.Search(context.Background(), SearchOptions{
		FilingType: "10-K",
		ItemKey:    "item_1A",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "item_1A", results[0].ItemKey)
	assert.Contains(t, results[0].Snippet, "Risk Factors")

	results, err = s.Search(context.Background(), SearchOptions{FilingType: "8-K"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchSkipsEmptySegments(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Record(sampleOutcome("0000320193-23-000006")))

	results, err := s.Search(context.Background(), SearchOptions{ItemKey: "item_2"})
	require.NoError(t, err)
	assert.Empty(t, results, "empty segments are not indexed")
}

func TestStatus(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Record(sampleOutcome("0000320193-23-000006")))
	require.NoError(t, s.Record(sampleOutcome("0000320193-23-000007")))
	require.NoError(t, s.Record(failedOutcome("0000320193-23-000099")))

	summary, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Extracted)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, summary.Total())
	assert.Equal(t, 2, summary.ByType["10-K"])
}

func TestExportManifest(t *testing.T) {
	dataDir := t.TempDir()
	s, err := NewStore(types.StoreConfig{DataDir: dataDir})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Record(sampleOutcome("0000320193-23-000006")))
	require.NoError(t, s.Record(failedOutcome("0000320193-23-000099")))

	require.NoError(t, s.ExportManifest(context.Background()))

	data, err := os.ReadFile(filepath.Join(dataDir, "index", "manifest.yaml"))
	require.NoError(t, err)

	manifest := string(data)
	assert.Contains(t, manifest, "accession: 0000320193-23-000006")
	assert.Contains(t, manifest, "status: extracted")
	assert.Contains(t, manifest, "failure_reason: empty_document")
	assert.Contains(t, manifest, "items: 2")
}
