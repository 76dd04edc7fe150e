// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edgar-engine/internal/archive"
	"github.com/pdiddy/edgar-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "edgar-engine/0.1 admin@meshintelligence.example"
	defaultDataDir   = "data"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download quarterly indices and filings from EDGAR",
	Long: `Download fetches the EDGAR quarterly form indices for the requested
year range, filters them by filing type and optionally by CIK, and
downloads each matching complete submission text file. Files already on
disk are skipped, so interrupted runs resume where they left off.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("data-dir", defaultDataDir, "base data directory (contains indices/, raw/)")
	downloadCmd.Flags().Int("start-year", 0, "first year of quarterly indices to fetch")
	downloadCmd.Flags().Int("end-year", 0, "last year of quarterly indices to fetch")
	downloadCmd.Flags().IntSlice("quarters", nil, "quarters to fetch (default all four)")
	downloadCmd.Flags().StringSlice("types", []string{"10-K", "10-Q", "8-K"}, "filing types to download")
	downloadCmd.Flags().StringSlice("ciks", nil, "restrict downloads to these CIKs")
	downloadCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	downloadCmd.Flags().Duration("delay", defaultDelay, "delay between consecutive downloads")
	downloadCmd.Flags().String("user-agent", "", "User-Agent header (EDGAR requires a declared agent)")
	downloadCmd.Flags().Bool("indices-only", false, "fetch quarterly indices without downloading filings")
	downloadCmd.Flags().Bool("refetch-indices", false, "re-download indices already on disk")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	startYear, _ := cmd.Flags().GetInt("start-year")
	endYear, _ := cmd.Flags().GetInt("end-year")
	if startYear == 0 || endYear == 0 {
		return fmt.Errorf("provide --start-year and --end-year")
	}
	if endYear < startYear {
		return fmt.Errorf("end year %d precedes start year %d", endYear, startYear)
	}

	quarters, _ := cmd.Flags().GetIntSlice("quarters")
	for _, q := range quarters {
		if q < 1 || q > 4 {
			return fmt.Errorf("invalid quarter %d", q)
		}
	}

	filingTypes, _ := cmd.Flags().GetStringSlice("types")
	ciks, _ := cmd.Flags().GetStringSlice("ciks")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	delay, _ := cmd.Flags().GetDuration("delay")
	indicesOnly, _ := cmd.Flags().GetBool("indices-only")
	refetch, _ := cmd.Flags().GetBool("refetch-indices")

	cfg := types.DownloadConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: stringSetting(cmd, "user-agent", "download.user_agent", defaultUserAgent),
		},
		DataDir:            stringSetting(cmd, "data-dir", "data_dir", defaultDataDir),
		StartYear:          startYear,
		EndYear:            endYear,
		Quarters:           quarters,
		FilingTypes:        filingTypes,
		CIKs:               ciks,
		DownloadDelay:      delay,
		SkipPresentIndices: !refetch,
	}

	client := &http.Client{Timeout: cfg.Timeout}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	indexSummary, err := archive.DownloadIndices(ctx, client, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if indicesOnly {
		if indexSummary.HasFailures() {
			return fmt.Errorf("%d quarterly index(es) failed to download", indexSummary.Failed)
		}
		return nil
	}

	entries, err := archive.LoadIndices(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%d filings match the requested types\n", len(entries))

	result, err := archive.DownloadBatch(ctx, client, entries, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() || indexSummary.HasFailures() {
		return fmt.Errorf("%d download(s) failed", result.Failed+indexSummary.Failed)
	}
	return nil
}
