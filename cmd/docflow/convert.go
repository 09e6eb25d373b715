// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenguard/docflow/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert [pdfs...]",
	Short: "Convert PDF files to cached Markdown",
	Long: `Convert transforms PDF files into Markdown under work/markdown/,
without parsing or export. Already-converted files are skipped, so the
command is safe to re-run. The pdftext backend reads the embedded text
layer; docling runs a converter container for layout-aware output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("backend", "", "conversion backend: pdftext or docling")
	convertCmd.Flags().String("image", "", "docling container image")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := conversionConfig(cmd)
	c, err := convert.New(cfg)
	if err != nil {
		return err
	}

	result := convert.ConvertBatch(c, args, cfg.WorkDir, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}
