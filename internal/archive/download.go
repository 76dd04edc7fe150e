// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/edgar-engine/internal/httputil"
	"github.com/pdiddy/edgar-engine/pkg/types"
)

// BatchResult holds the outcome of a filing download run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the number of index entries processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any filings failed to download.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// DownloadFiling fetches one complete submission text file into
// dataDir/raw/[form type]/[accession].txt. A file already on disk is
// not re-downloaded.
func DownloadFiling(ctx context.Context, client *http.Client, entry IndexEntry, cfg types.DownloadConfig, w io.Writer) (skipped bool, err error) {
	dir := filepath.Join(cfg.DataDir, rawDir, entry.FormType)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("creating raw directory: %w", err)
	}

	dest := filepath.Join(dir, entry.Accession()+".txt")
	if _, err := os.Stat(dest); err == nil {
		fmt.Fprintf(w, "skipped %s (already exists)\n", entry.Accession())
		return true, nil
	}

	url := ArchiveBase + entry.Path
	if err := downloadFile(ctx, client, url, dest, cfg.UserAgent); err != nil {
		return false, fmt.Errorf("downloading %s: %w", entry.Accession(), err)
	}
	fmt.Fprintf(w, "downloaded %s (%s)\n", entry.Accession(), entry.FormType)
	return false, nil
}

// DownloadBatch fetches every entry, continuing after individual
// failures and pausing between consecutive downloads. Cancellation
// stops before the next entry.
func DownloadBatch(ctx context.Context, client *http.Client, entries []IndexEntry, cfg types.DownloadConfig, w io.Writer) (BatchResult, error) {
	var result BatchResult
	for i, entry := range entries {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}

		wasSkipped, err := DownloadFiling(ctx, client, entry, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed %s: %v\n", entry.Accession(), err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// downloadFile fetches url to destPath through a temporary file, with
// declared User-Agent and backoff on archive throttling.
func downloadFile(ctx context.Context, client *http.Client, url, destPath, userAgent string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".archive-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// SourceLinks builds the archive links for a filing from its filer CIK
// and accession number.
func SourceLinks(cik, accession string) types.SourceLinks {
	if cik == "" || accession == "" {
		return types.SourceLinks{}
	}
	noDash := strings.ReplaceAll(accession, "-", "")
	return types.SourceLinks{
		HTMLIndex:    fmt.Sprintf("%s%s/%s-index.html", EdgarDataBase, cik, accession),
		Document:     "",
		CompleteText: fmt.Sprintf("%s%s/%s/%s.txt", EdgarDataBase, cik, noDash, accession),
	}
}

// LoadRaw reads the downloaded submissions for the requested form types
// from dataDir/raw/ into memory. The CIK and source links are recovered
// later from each filing's own header block.
func LoadRaw(dataDir string, filingTypes []string) ([]types.RawFiling, error) {
	var filings []types.RawFiling
	for _, ft := range filingTypes {
		dir := filepath.Join(dataDir, rawDir, ft)
		names, err := filepath.Glob(filepath.Join(dir, "*.txt"))
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			content, err := os.ReadFile(name)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", name, err)
			}
			base := filepath.Base(name)
			filings = append(filings, types.RawFiling{
				Accession: strings.TrimSuffix(base, ".txt"),
				Type:      types.FilingType(ft),
				Filename:  base,
				Content:   content,
			})
		}
	}
	return filings, nil
}
