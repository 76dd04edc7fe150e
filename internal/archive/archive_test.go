// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/edgar-engine/pkg/types"
)

const sampleIndex = `Description:           Master Index of EDGAR Dissemination Feed by Form Type
Last Data Received:    March 31, 2023

Form Type   Company Name                     CIK         Date Filed  File Name
---------------------------------------------------------------------------------
10-K        WIDGETRON INC                    320193      2023-02-03  edgar/data/320193/0000320193-23-000006.txt
10-Q        GADGET HOLDINGS CORP             1234567     2023-02-10  edgar/data/1234567/0001234567-23-000011.txt
8-K         WIDGETRON INC                    320193      2023-02-15  edgar/data/320193/0000320193-23-000100.txt
S-1         NEWCO LLC                        7654321     2023-03-01  edgar/data/7654321/0007654321-23-000001.txt
`

func TestParseIndex(t *testing.T) {
	entries, err := ParseIndex(strings.NewReader(sampleIndex))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	first := entries[0]
	assert.Equal(t, "10-K", first.FormType)
	assert.Equal(t, "WIDGETRON INC", first.Company)
	assert.Equal(t, "320193", first.CIK)
	assert.Equal(t, "2023-02-03", first.Filed)
	assert.Equal(t, "edgar/data/320193/0000320193-23-000006.txt", first.Path)
	assert.Equal(t, "0000320193-23-000006", first.Accession())

	// Multi-word company names survive column splitting.
	assert.Equal(t, "GADGET HOLDINGS CORP", entries[1].Company)
}

func TestParseIndexSkipsPreamble(t *testing.T) {
	entries, err := ParseIndex(strings.NewReader(sampleIndex))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "Form", e.FormType)
		assert.NotContains(t, e.FormType, "Description")
	}
}

func TestFilter(t *testing.T) {
	entries, err := ParseIndex(strings.NewReader(sampleIndex))
	require.NoError(t, err)

	byType := Filter(entries, []string{"10-K", "8-K"}, nil)
	require.Len(t, byType, 2)
	assert.Equal(t, "10-K", byType[0].FormType)
	assert.Equal(t, "8-K", byType[1].FormType)

	// Leading zeros in the requested CIK are ignored.
	byCIK := Filter(entries, nil, []string{"0000320193"})
	require.Len(t, byCIK, 2)
	for _, e := range byCIK {
		assert.Equal(t, "320193", e.CIK)
	}

	both := Filter(entries, []string{"10-Q"}, []string{"320193"})
	assert.Empty(t, both)
}

func TestDownloadIndices(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		assert.Equal(t, "tester test@example.com", r.Header.Get("User-Agent"))
		fmt.Fprint(w, sampleIndex)
	}))
	defer server.Close()

	orig := IndexURLtmpl
	IndexURLtmpl = server.URL + "/full-index/%d/QTR%d/form.idx"
	defer func() { IndexURLtmpl = orig }()

	dataDir := t.TempDir()
	cfg := types.DownloadConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "tester test@example.com"},
		DataDir:    dataDir,
		StartYear:  2023,
		EndYear:    2023,
		Quarters:   []int{1, 2},
	}

	summary, err := DownloadIndices(context.Background(), server.Client(), cfg, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Downloaded)
	assert.False(t, summary.HasFailures())
	assert.Len(t, requests, 2)

	for _, q := range []int{1, 2} {
		path := filepath.Join(dataDir, "indices", fmt.Sprintf("2023_QTR%d.idx", q))
		_, err := os.Stat(path)
		assert.NoError(t, err)
	}

	// A second run with skipping enabled touches nothing.
	cfg.SkipPresentIndices = true
	summary, err = DownloadIndices(context.Background(), server.Client(), cfg, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 0, summary.Downloaded)
	assert.Len(t, requests, 2)
}

func TestDownloadBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "<SEC-HEADER>content</SEC-HEADER>")
	}))
	defer server.Close()

	orig := ArchiveBase
	ArchiveBase = server.URL + "/"
	defer func() { ArchiveBase = orig }()

	dataDir := t.TempDir()
	cfg := types.DownloadConfig{DataDir: dataDir}
	entries := []IndexEntry{
		{FormType: "10-K", CIK: "320193", Path: "edgar/data/320193/0000320193-23-000006.txt"},
		{FormType: "10-K", CIK: "999", Path: "edgar/data/999/missing.txt"},
	}

	result, err := DownloadBatch(context.Background(), server.Client(), entries, cfg, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Downloaded)
	assert.Equal(t, 1, result.Failed)
	assert.True(t, result.HasFailures())

	data, err := os.ReadFile(filepath.Join(dataDir, "raw", "10-K", "0000320193-23-000006.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "SEC-HEADER")

	// Existing files are skipped on the next run.
	result, err = DownloadBatch(context.Background(), server.Client(), entries[:1], cfg, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)

	// No leftover temp files from the failed download.
	leftovers, err := filepath.Glob(filepath.Join(dataDir, "raw", "10-K", ".archive-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestDownloadBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := DownloadBatch(ctx, http.DefaultClient, []IndexEntry{
		{FormType: "10-K", Path: "edgar/data/1/a.txt"},
	}, types.DownloadConfig{DataDir: t.TempDir()}, io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.Total())
}

func TestSourceLinks(t *testing.T) {
	links := SourceLinks("320193", "0000320193-23-000006")
	assert.Equal(t,
		"https://www.sec.gov/Archives/edgar/data/320193/0000320193-23-000006-index.html",
		links.HTMLIndex)
	assert.Equal(t,
		"https://www.sec.gov/Archives/edgar/data/320193/000032019323000006/0000320193-23-000006.txt",
		links.CompleteText)
	assert.Empty(t, links.Document)

	assert.Equal(t, types.SourceLinks{}, SourceLinks("", "0000320193-23-000006"))
}

func TestLoadRaw(t *testing.T) {
	dataDir := t.TempDir()
	dir := filepath.Join(dataDir, "raw", "10-K")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "0000320193-23-000006.txt"), []byte("content"), 0o644))

	filings, err := LoadRaw(dataDir, []string{"10-K", "10-Q"})
	require.NoError(t, err)
	require.Len(t, filings, 1)

	f := filings[0]
	assert.Equal(t, "0000320193-23-000006", f.Accession)
	assert.Equal(t, types.FilingAnnual, f.Type)
	assert.Equal(t, "0000320193-23-000006.txt", f.Filename)
	assert.Equal(t, "content", string(f.Content))
	assert.Empty(t, f.CIK, "the header parse supplies the CIK later")
}

func TestLoadIndices(t *testing.T) {
	dataDir := t.TempDir()
	dir := filepath.Join(dataDir, "indices")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "2023_QTR1.idx"), []byte(sampleIndex), 0o644))

	entries, err := LoadIndices(types.DownloadConfig{
		DataDir:     dataDir,
		FilingTypes: []string{"10-K"},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "0000320193-23-000006", entries[0].Accession())
}
