// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/edgar-engine/internal/store"
	"github.com/pdiddy/edgar-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Query the extraction index (search, status, export)",
	Long: `Store queries the SQLite index built during extraction. Use subcommands
to search the extracted item text, summarize what the index holds, or
export a YAML manifest of every recorded outcome.`,
}

// --- search subcommand ---

var storeSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over extracted item sections",
	Long: `Search runs an FTS5 full-text query over the extracted item text,
optionally filtered by filing type, filer CIK, or item key. Without a
query it browses the newest matching sections.`,
	RunE: runStoreSearch,
}

func runStoreSearch(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	filingType, _ := cmd.Flags().GetString("type")
	cik, _ := cmd.Flags().GetString("cik")
	itemKey, _ := cmd.Flags().GetString("item")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := store.SearchOptions{
		Query:      strings.Join(args, " "),
		FilingType: filingType,
		CIK:        cik,
		ItemKey:    itemKey,
		MaxResults: limit,
	}
	if opts.Query == "" && filingType == "" && cik == "" && itemKey == "" {
		return fmt.Errorf("query or filter required: provide search terms, --type, --cik, or --item")
	}

	results, err := st.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []store.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-22s  %-6s  %-24s  %-10s  %-16s  %s\n",
		"Accession", "Form", "Company", "Filed", "Item", "Snippet")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))

	for _, r := range results {
		company := r.Company
		if len(company) > 24 {
			company = company[:21] + "..."
		}
		snippet := strings.ReplaceAll(r.Snippet, "\n", " ")
		if len(snippet) > 48 {
			snippet = snippet[:45] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-22s  %-6s  %-24s  %-10s  %-16s  %s\n",
			r.Accession, r.FilingType, company, r.FilingDate, r.ItemKey, snippet)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- status subcommand ---

var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize recorded extraction outcomes",
	RunE:  runStoreStatus,
}

func runStoreStatus(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := st.Status(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "extracted: %d, failed: %d (total: %d)\n",
		summary.Extracted, summary.Failed, summary.Total())
	for _, ft := range types.SupportedFilingTypes {
		if n := summary.ByType[string(ft)]; n > 0 {
			fmt.Fprintf(os.Stdout, "  %-5s %d\n", ft, n)
		}
	}
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the YAML manifest of all recorded outcomes",
	RunE:  runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.ExportManifest(context.Background()); err != nil {
		return err
	}
	dataDir := stringSetting(cmd, "data-dir", "data_dir", defaultDataDir)
	fmt.Printf("Exported to %s/index/manifest.yaml\n", dataDir)
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return store.NewStore(types.StoreConfig{
		DataDir:    stringSetting(cmd, "data-dir", "data_dir", defaultDataDir),
		MaxResults: maxResults,
	})
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	storeCmd.PersistentFlags().String("data-dir", defaultDataDir, "base data directory (contains extracted/, index/)")
	storeCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Search flags.
	storeSearchCmd.Flags().String("type", "", "filter by filing type: 10-K, 10-Q, 8-K")
	storeSearchCmd.Flags().String("cik", "", "filter by filer CIK")
	storeSearchCmd.Flags().String("item", "", "filter by item key (e.g. item_1A)")
	storeSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeSearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Wire subcommands.
	storeCmd.AddCommand(storeSearchCmd)
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
