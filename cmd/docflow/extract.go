// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenguard/docflow/internal/outline"
	"github.com/greenguard/docflow/internal/pipeline"
	"github.com/greenguard/docflow/internal/rowstore"
	"github.com/greenguard/docflow/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdfs...]",
	Short: "Extract structured rows from PDF reports into xlsx workbooks",
	Long: `Extract runs the full pipeline for each PDF: conversion to Markdown
(cached under the work dir), parsing into classified rows, optional
outline enrichment, and one xlsx workbook per document under
work/output/. Documents are processed in parallel.

With --store, extracted rows are also ingested into the row store for
later retrieval with "docflow rows".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("backend", "", "conversion backend: pdftext, docling, or layout")
	extractCmd.Flags().String("image", "", "docling container image")
	extractCmd.Flags().String("out", "", "workbook output directory (default <work-dir>/output)")
	extractCmd.Flags().String("outline", "", "outline sidecar YAML for heading backfill")
	extractCmd.Flags().Int("workers", 0, "documents processed in parallel")
	extractCmd.Flags().Bool("keep-boilerplate", false, "keep table-of-contents and reference lines")
	extractCmd.Flags().StringToString("meta", nil, "metadata columns, e.g. --meta Company=Acme,Year=2025")
	extractCmd.Flags().Bool("store", false, "ingest extracted rows into the row store")
	extractCmd.Flags().String("store-dir", "", "row store base directory")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := types.PipelineConfig{
		Conversion: conversionConfig(cmd),
		Parse:      parseConfig(cmd),
		Export:     exportConfig(cmd),
	}

	var o *outline.Outline
	if path, _ := cmd.Flags().GetString("outline"); path != "" {
		var err error
		o, err = outline.LoadYAML(path)
		if err != nil {
			return err
		}
	}

	p, err := pipeline.New(cfg, o)
	if err != nil {
		return err
	}

	ctx := context.Background()
	results, summary := p.ExtractBatch(ctx, args, os.Stdout)

	if useStore, _ := cmd.Flags().GetBool("store"); useStore {
		store, err := rowstore.NewStore(storeConfig(cmd))
		if err != nil {
			return err
		}
		defer store.Close()

		for _, r := range results {
			if r.Err != nil {
				continue
			}
			if err := store.IngestRows(ctx, r.Source, r.Rows); err != nil {
				return fmt.Errorf("ingesting %s: %w", r.Source, err)
			}
		}
		fmt.Fprintf(os.Stdout, "Ingested %d document(s) into the row store\n", summary.Extracted)
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed extraction", summary.Failed)
	}
	return nil
}
