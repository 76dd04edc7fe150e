// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the edgar-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the edgar-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "edgar-engine",
	Short: "Download and segment SEC EDGAR filings",
	Long: `edgar-engine turns raw SEC EDGAR filings into structured, item-keyed
records. The pipeline is three subcommands: download fetches quarterly
indices and complete submission text files, extract segments each filing
into its legally defined items, and store queries the resulting index.

Supported filing types are 10-K, 10-Q, and 8-K, including the numeric
item taxonomy 8-K filings used before August 2004.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./edgar-engine.yaml or ~/.config/edgar-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("edgar-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "edgar-engine"))
		}
	}

	viper.SetEnvPrefix("EDGAR_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// stringSetting resolves a string option: explicit flag, then config
// file or environment, then the built-in default.
func stringSetting(cmd *cobra.Command, flag, key, fallback string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	v, _ := cmd.Flags().GetString(flag)
	if v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
