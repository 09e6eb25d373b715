// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greenguard/docflow/internal/export"
	"github.com/greenguard/docflow/internal/textclean"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [workbook]",
	Short: "Re-clean the text columns of an extracted workbook",
	Long: `Clean reapplies text normalization to an existing xlsx workbook:
HTML entities, Unicode compatibility forms, control characters, stray
table pipes, bilingual heading prefixes, and duplicated phrases.
Useful after conversion backends improve without re-running extraction.`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().String("out", "", "output path (default: overwrite in place)")
	cleanCmd.Flags().String("sheet", "", "worksheet name (default \"extracted\")")

	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	inPath := args[0]
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		outPath = inPath
	}
	sheet, _ := cmd.Flags().GetString("sheet")

	changed, err := export.RecleanXLSX(inPath, outPath, sheet, textclean.Clean)
	if err != nil {
		return err
	}

	if outPath == inPath {
		fmt.Printf("cleaned %d cell(s) in %s\n", changed, inPath)
	} else {
		fmt.Printf("cleaned %d cell(s): %s -> %s\n", changed, inPath, outPath)
	}
	return nil
}
