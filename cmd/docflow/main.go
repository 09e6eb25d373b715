// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docflow CLI: PDF reports in,
// row-structured spreadsheets out.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/greenguard/docflow/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the docflow CLI.
var rootCmd = &cobra.Command{
	Use:   "docflow",
	Short: "Turn PDF reports into row-structured spreadsheets",
	Long: `docflow converts PDF reports to Markdown, parses the Markdown into
classified rows (headings, bullets, table lines, sentences) stamped with
the active section hierarchy, and writes the rows to xlsx workbooks.

Each pipeline stage is a subcommand: convert, extract, rows, clean, and
serve. Run a full extraction with "docflow extract report.pdf".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docflow.yaml or ~/.config/docflow/config.yaml)")
	rootCmd.PersistentFlags().String("work-dir", "work", "base directory for pipeline artifacts (markdown/, output/)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docflow")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docflow"))
		}
	}

	viper.SetEnvPrefix("DOCFLOW")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
