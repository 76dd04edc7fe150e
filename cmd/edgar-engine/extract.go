// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edgar-engine/internal/archive"
	"github.com/pdiddy/edgar-engine/internal/extract"
	"github.com/pdiddy/edgar-engine/internal/store"
	"github.com/pdiddy/edgar-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Segment downloaded filings into item-keyed records",
	Long: `Extract runs the segmentation engine over the downloaded filings:
each submission is normalized to plain text, its header metadata parsed,
tabular regions removed, and the narrative split at item boundaries
according to the filing type's taxonomy. Every filing yields either a
JSON record under data/extracted/ or a recorded failure; a single bad
filing never aborts the run.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("data-dir", defaultDataDir, "base data directory (contains raw/, extracted/, index/)")
	extractCmd.Flags().StringSlice("types", []string{"10-K", "10-Q", "8-K"}, "filing types to extract")
	extractCmd.Flags().StringSlice("items", nil, "item identifiers to retain (default all)")
	extractCmd.Flags().Bool("keep-tables", false, "keep tabular numeric regions in the output")
	extractCmd.Flags().Bool("include-signature", false, "retain the signature block as its own field")
	extractCmd.Flags().Int("workers", 0, "extraction worker count (default: CPU cores)")
	extractCmd.Flags().Bool("force", false, "re-extract filings already in the index")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	filingTypes, _ := cmd.Flags().GetStringSlice("types")
	items, _ := cmd.Flags().GetStringSlice("items")
	keepTables, _ := cmd.Flags().GetBool("keep-tables")
	includeSig, _ := cmd.Flags().GetBool("include-signature")
	workers, _ := cmd.Flags().GetInt("workers")
	force, _ := cmd.Flags().GetBool("force")
	dataDir := stringSetting(cmd, "data-dir", "data_dir", defaultDataDir)

	cfg := types.ExtractionConfig{
		DataDir:          dataDir,
		FilingTypes:      filingTypes,
		ItemsToRetain:    items,
		RemoveTables:     !keepTables,
		IncludeSignature: includeSig,
		Workers:          workers,
		SkipExtracted:    !force,
	}

	// Schema problems are configuration errors: fail before any worker
	// is dispatched, not once per filing mid-run.
	engine, err := extract.NewEngine(cfg)
	if err != nil {
		return err
	}

	st, err := store.NewStore(types.StoreConfig{DataDir: dataDir})
	if err != nil {
		return err
	}
	defer st.Close()

	filings, err := archive.LoadRaw(dataDir, filingTypes)
	if err != nil {
		return err
	}
	if len(filings) == 0 {
		fmt.Fprintln(os.Stdout, "no downloaded filings found; run download first")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := engine.ExtractBatch(ctx, filings, st, os.Stdout)

	fmt.Fprintf(os.Stdout, "\nextracted: %d, failed: %d, skipped: %d, cancelled: %d (total: %d)\n",
		summary.Extracted, summary.Failed, summary.Skipped, summary.Cancelled, summary.Total())

	if err != nil {
		return err
	}
	if expErr := st.ExportManifest(context.Background()); expErr != nil {
		fmt.Fprintf(os.Stderr, "warning: manifest export failed: %v\n", expErr)
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d filing(s) failed extraction", summary.Failed)
	}
	return nil
}
