// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive retrieves filings from the EDGAR full-text archive:
// quarterly form indices first, then the complete submission text files
// they point to. Downloads are polite by construction: declared
// User-Agent, a delay between requests, and backoff on throttling.
package archive

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/edgar-engine/pkg/types"
)

const (
	indicesDir = "indices"
	rawDir     = "raw"
)

// Archive endpoints. Tests point these at a local server.
var (
	ArchiveBase   = "https://www.sec.gov/Archives/"
	IndexURLtmpl  = "https://www.sec.gov/Archives/edgar/full-index/%d/QTR%d/form.idx"
	EdgarDataBase = "https://www.sec.gov/Archives/edgar/data/"
)

// IndexEntry is one row of a quarterly form index.
type IndexEntry struct {
	FormType string
	Company  string
	CIK      string
	Filed    string

	// Path is the archive-relative path of the complete submission
	// ("edgar/data/320193/0000320193-23-000006.txt").
	Path string
}

// Accession returns the accession number encoded in the entry path.
func (e IndexEntry) Accession() string {
	return strings.TrimSuffix(filepath.Base(e.Path), ".txt")
}

// IndexSummary reports the outcome of an index download run.
type IndexSummary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the number of quarterly indices considered.
func (s IndexSummary) Total() int {
	return s.Downloaded + s.Skipped + s.Failed
}

// HasFailures reports whether any index failed to download.
func (s IndexSummary) HasFailures() bool {
	return s.Failed > 0
}

// DownloadIndices fetches the form.idx file for every requested year and
// quarter into dataDir/indices/, named YYYY_QTRn.idx. Indices already on
// disk are skipped when the configuration says so. Individual failures
// do not stop the run.
func DownloadIndices(ctx context.Context, client *http.Client, cfg types.DownloadConfig, w io.Writer) (IndexSummary, error) {
	var summary IndexSummary

	dir := filepath.Join(cfg.DataDir, indicesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return summary, fmt.Errorf("creating indices directory: %w", err)
	}

	quarters := cfg.Quarters
	if len(quarters) == 0 {
		quarters = []int{1, 2, 3, 4}
	}

	first := true
	for year := cfg.StartYear; year <= cfg.EndYear; year++ {
		for _, q := range quarters {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			default:
			}

			dest := filepath.Join(dir, fmt.Sprintf("%d_QTR%d.idx", year, q))
			if cfg.SkipPresentIndices {
				if _, err := os.Stat(dest); err == nil {
					fmt.Fprintf(w, "skipped %d QTR%d (already exists)\n", year, q)
					summary.Skipped++
					continue
				}
			}

			if !first && cfg.DownloadDelay > 0 {
				time.Sleep(cfg.DownloadDelay)
			}
			first = false

			url := fmt.Sprintf(IndexURLtmpl, year, q)
			if err := downloadFile(ctx, client, url, dest, cfg.UserAgent); err != nil {
				fmt.Fprintf(w, "failed %d QTR%d: %v\n", year, q, err)
				summary.Failed++
				continue
			}
			fmt.Fprintf(w, "downloaded %d QTR%d\n", year, q)
			summary.Downloaded++
		}
	}

	fmt.Fprintf(w, "\nindices: %d downloaded, %d skipped, %d failed\n",
		summary.Downloaded, summary.Skipped, summary.Failed)
	return summary, nil
}

// columnSplitRe splits index rows on runs of two or more spaces; column
// contents themselves are single-spaced.
var columnSplitRe = regexp.MustCompile(`[ \t]{2,}`)

// ParseIndex reads one form.idx stream. Rows before the dashed separator
// line are preamble; each data row carries form type, company name, CIK,
// date filed, and the submission path. Malformed rows are skipped.
func ParseIndex(r io.Reader) ([]IndexEntry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []IndexEntry
	inBody := false
	for sc.Scan() {
		line := sc.Text()
		if !inBody {
			if strings.HasPrefix(strings.TrimSpace(line), "---") {
				inBody = true
			}
			continue
		}

		fields := columnSplitRe.Split(strings.TrimSpace(line), -1)
		if len(fields) < 5 {
			continue
		}
		entries = append(entries, IndexEntry{
			FormType: fields[0],
			Company:  strings.Join(fields[1:len(fields)-3], " "),
			CIK:      fields[len(fields)-3],
			Filed:    fields[len(fields)-2],
			Path:     fields[len(fields)-1],
		})
	}
	return entries, sc.Err()
}

// ParseIndexFile parses one downloaded index from disk.
func ParseIndexFile(path string) ([]IndexEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	defer f.Close()
	entries, err := ParseIndex(f)
	if err != nil {
		return nil, fmt.Errorf("parsing index %s: %w", path, err)
	}
	return entries, nil
}

// LoadIndices parses every downloaded index under dataDir/indices/ and
// returns the entries matching the configured filing types and filers.
func LoadIndices(cfg types.DownloadConfig) ([]IndexEntry, error) {
	dir := filepath.Join(cfg.DataDir, indicesDir)
	names, err := filepath.Glob(filepath.Join(dir, "*.idx"))
	if err != nil {
		return nil, err
	}

	var all []IndexEntry
	for _, name := range names {
		entries, err := ParseIndexFile(name)
		if err != nil {
			return nil, err
		}
		all = append(all, Filter(entries, cfg.FilingTypes, cfg.CIKs)...)
	}
	return all, nil
}

// Filter keeps entries matching the requested form types and, when the
// filer list is non-empty, the requested CIKs.
func Filter(entries []IndexEntry, filingTypes, ciks []string) []IndexEntry {
	typeSet := make(map[string]bool, len(filingTypes))
	for _, t := range filingTypes {
		typeSet[t] = true
	}
	cikSet := make(map[string]bool, len(ciks))
	for _, c := range ciks {
		cikSet[strings.TrimLeft(c, "0")] = true
	}

	var kept []IndexEntry
	for _, e := range entries {
		if len(typeSet) > 0 && !typeSet[e.FormType] {
			continue
		}
		if len(cikSet) > 0 && !cikSet[strings.TrimLeft(e.CIK, "0")] {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}
