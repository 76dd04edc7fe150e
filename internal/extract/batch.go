// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/pdiddy/edgar-engine/pkg/types"
)

// Ledger records extraction outcomes and answers whether a filing was
// already processed. Implementations must tolerate Record being called
// while Seen queries are idle; the batch driver never interleaves them.
type Ledger interface {
	// Seen reports whether an accession needs no re-extraction. Failed
	// outcomes are not seen; a re-run retries them.
	Seen(accession string) (bool, error)

	// Record persists one outcome.
	Record(outcome types.ExtractionOutcome) error
}

// BatchSummary reports what happened to each filing in a batch.
type BatchSummary struct {
	// Extracted counts filings that produced a structured record.
	Extracted int

	// Failed counts filings that produced a failure outcome.
	Failed int

	// Skipped counts filings bypassed because the ledger already had them.
	Skipped int

	// Cancelled counts filings left unprocessed after cancellation.
	Cancelled int
}

// Total returns the number of filings the batch was asked to process.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Failed + s.Skipped + s.Cancelled
}

// HasFailures reports whether any filing produced a failure outcome.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractBatch runs the engine over a set of filings with a worker pool.
// Outcomes are recorded through the ledger from a single collector, so
// implementations need no write concurrency. Cancellation stops
// dispatching new filings; filings already in flight complete and are
// recorded. The returned error reports ledger trouble or cancellation,
// never a per-filing extraction problem.
func (e *Engine) ExtractBatch(ctx context.Context, filings []types.RawFiling, ledger Ledger, progress io.Writer) (BatchSummary, error) {
	var summary BatchSummary
	if progress == nil {
		progress = io.Discard
	}

	pending := make([]types.RawFiling, 0, len(filings))
	for _, f := range filings {
		if e.cfg.SkipExtracted && ledger != nil {
			seen, err := ledger.Seen(f.Accession)
			if err != nil {
				return summary, fmt.Errorf("querying ledger for %s: %w", f.Accession, err)
			}
			if seen {
				summary.Skipped++
				continue
			}
		}
		pending = append(pending, f)
	}

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pending) {
		workers = len(pending)
	}
	if workers == 0 {
		return summary, nil
	}

	jobs := make(chan types.RawFiling)
	results := make(chan types.ExtractionOutcome)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for raw := range jobs {
				results <- e.Extract(raw)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range pending {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- f:
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var ledgerErr error
	processed := 0
	for outcome := range results {
		processed++
		if outcome.Succeeded() {
			summary.Extracted++
			fmt.Fprintf(progress, "extracted %s (%d/%d)\n", outcome.Accession, processed, len(pending))
		} else {
			summary.Failed++
			fmt.Fprintf(progress, "failed %s: %s\n", outcome.Accession, outcome.Failure.Reason)
		}
		if ledger != nil {
			if err := ledger.Record(outcome); err != nil && ledgerErr == nil {
				ledgerErr = fmt.Errorf("recording outcome for %s: %w", outcome.Accession, err)
			}
		}
	}

	summary.Cancelled = len(pending) - processed
	if ledgerErr != nil {
		return summary, ledgerErr
	}
	if summary.Cancelled > 0 {
		return summary, ctx.Err()
	}
	return summary, nil
}
