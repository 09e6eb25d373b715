// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/greenguard/docflow/internal/rowstore"
	"github.com/greenguard/docflow/pkg/types"
)

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Manage the row store (ingest, retrieve, export)",
	Long: `Rows manages a local SQLite store of extracted rows with full-text
search over row text. Use subcommands to ingest workbooks, query rows,
or export the store.`,
}

// --- ingest subcommand ---

var rowsIngestCmd = &cobra.Command{
	Use:   "ingest [workbooks...]",
	Short: "Ingest extracted xlsx workbooks into the row store",
	Long: `Ingest loads rows from xlsx workbooks into the store, indexing row
text for full-text search. Unchanged workbooks are skipped on
subsequent runs; changed ones replace their previous rows.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRowsIngest,
}

func runRowsIngest(cmd *cobra.Command, args []string) error {
	store, err := rowstore.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), args, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d workbook(s) failed ingestion", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var rowsRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the row store with full-text search and filters",
	Long: `Retrieve searches row text using FTS5 full-text search, structured
filters (type, source, section), or a combination of both. Full-text
results are ranked by relevance; filtered results come back in
document order.`,
	RunE: runRowsRetrieve,
}

func runRowsRetrieve(cmd *cobra.Command, args []string) error {
	store, err := rowstore.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --type, --source, or --section")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []types.Row, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-8s  %-50s  %-20s  %-20s  %s\n",
		"Rank", "Type", "Text", "Source", "Section", "Page")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 114))

	for i, r := range results {
		text := r.Text
		if len(text) > 50 {
			text = text[:47] + "..."
		}
		source := r.Source
		if len(source) > 20 {
			source = source[:17] + "..."
		}
		section := r.CurrentSection
		if len(section) > 20 {
			section = section[:17] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-8s  %-50s  %-20s  %-20s  %d\n",
			i+1, r.SectionType, text, source, section, r.PageNo)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var rowsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the row store to YAML or JSON",
	Long: `Export writes the full row store (or a filtered subset) to
store/index/export.yaml or export.json. Supports the same filter flags
as retrieve for partial exports.`,
	RunE: runRowsExport,
}

func runRowsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := rowstore.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to store/index/export.yaml")
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to store/index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) rowstore.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	sectionType, _ := cmd.Flags().GetString("type")
	source, _ := cmd.Flags().GetString("source")
	section, _ := cmd.Flags().GetString("section")
	limit, _ := cmd.Flags().GetInt("limit")

	return rowstore.QueryOptions{
		Query:       queryText,
		SectionType: types.SectionType(sectionType),
		Source:      source,
		Section:     section,
		MaxResults:  limit,
	}
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "full-text search query")
	cmd.Flags().String("type", "", "filter by section type: heading, bullet, table, or sentence")
	cmd.Flags().String("source", "", "filter by source document")
	cmd.Flags().String("section", "", "filter by current section heading")
	cmd.Flags().Int("limit", 0, "maximum number of results")
}

func init() {
	for _, c := range []*cobra.Command{rowsIngestCmd, rowsRetrieveCmd, rowsExportCmd} {
		c.Flags().String("store-dir", "", "row store base directory")
	}
	addQueryFlags(rowsRetrieveCmd)
	addQueryFlags(rowsExportCmd)
	rowsRetrieveCmd.Flags().Bool("json", false, "output results as JSON")
	rowsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	rowsCmd.AddCommand(rowsIngestCmd, rowsRetrieveCmd, rowsExportCmd)
	rootCmd.AddCommand(rowsCmd)
}
