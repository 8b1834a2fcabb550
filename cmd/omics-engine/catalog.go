// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/omics-engine/internal/catalog"
	"github.com/pdiddy/omics-engine/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the column catalog (ingest, query, datasets, export)",
	Long: `Catalog manages a local SQLite index built from column profiles. Use
subcommands to ingest profiles, query columns with full-text search, list
indexed datasets, or export the catalog.`,
}

// --- ingest subcommand ---

var catalogIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest column profiles into the catalog",
	Long: `Ingest reads profile YAML files from catalog/profiles/, indexes them
into a SQLite database with FTS5 over column names and example values,
and writes an export file. Unchanged profiles are skipped on subsequent
runs.`,
	RunE: runCatalogIngest,
}

func runCatalogIngest(cmd *cobra.Command, args []string) error {
	cfg, dataDir := catalogConfig(cmd)

	store, err := catalog.NewStore(cfg, dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d profile(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var catalogQueryCmd = &cobra.Command{
	Use:   "query [search terms]",
	Short: "Query the catalog with full-text search and filters",
	Long: `Query searches indexed columns using FTS5 full-text search over column
names and example values, structured filters (collection, category,
dataset, kind), or a combination of both.`,
	RunE: runCatalogQuery,
}

func runCatalogQuery(cmd *cobra.Command, args []string) error {
	cfg, dataDir := catalogConfig(cmd)
	store, err := catalog.NewStore(cfg, dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search terms, --collection, --category, --dataset, or --kind")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []catalog.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %-12s  %-30s  %-8s  %s\n",
		"Rank", "Column", "Kind", "Dataset", "Distinct", "Missing")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 105))

	for i, r := range results {
		name := r.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		dataset := r.DatasetID
		if len(dataset) > 30 {
			dataset = dataset[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %-12s  %-30s  %-8d  %d\n",
			i+1, name, r.Kind, dataset, r.Distinct, r.Missing)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- datasets subcommand ---

var catalogDatasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the datasets indexed in the catalog",
	RunE:  runCatalogDatasets,
}

func runCatalogDatasets(cmd *cobra.Command, args []string) error {
	cfg, dataDir := catalogConfig(cmd)
	store, err := catalog.NewStore(cfg, dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.Datasets(context.Background())
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		fmt.Println("No datasets indexed.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-40s  %-10s  %-12s  %-10s  %-8s  %s\n",
		"Dataset", "Collection", "Category", "Shape", "Columns", "Status")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, ds := range summaries {
		id := ds.ID
		if len(id) > 40 {
			id = id[:37] + "..."
		}
		shape := fmt.Sprintf("%dx%d", ds.Rows, ds.Cols)
		fmt.Fprintf(os.Stdout, "%-40s  %-10s  %-12s  %-10s  %-8d  %s\n",
			id, ds.Collection, ds.Category, shape, ds.ColumnCount, ds.ConversionStatus)
	}

	fmt.Fprintf(os.Stdout, "\n%d datasets\n", len(summaries))
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	Long: `Export writes the full catalog (or a filtered subset) to
catalog/index/export.yaml or export.json. Supports the same filter flags
as query for partial exports.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg, dataDir := catalogConfig(cmd)
	store, err := catalog.NewStore(cfg, dataDir)
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
		fmt.Println("Exported to catalog/index/export.yaml")
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to catalog/index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func catalogConfig(cmd *cobra.Command) (types.CatalogConfig, string) {
	catalogDir := stringSetting(cmd, "catalog-dir", pipelineCfg.Catalog.CatalogDir)
	dataDir, _ := cmd.Flags().GetString("data-dir")
	maxResults := intSetting(cmd, "max-results", pipelineCfg.Catalog.MaxResults)

	cfg := types.CatalogConfig{
		CatalogDir: catalogDir,
		MaxResults: maxResults,
	}
	return cfg, dataDir
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	collection, _ := cmd.Flags().GetString("collection")
	category, _ := cmd.Flags().GetString("category")
	dataset, _ := cmd.Flags().GetString("dataset")
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		Query:      queryText,
		Collection: collection,
		Category:   category,
		Dataset:    dataset,
		Kind:       types.ColumnKind(kind),
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("catalog-dir", "catalog", "base directory for the catalog (contains profiles/, index/)")
	catalogCmd.PersistentFlags().String("data-dir", "data", "base directory for data (contains metadata/)")
	catalogCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Query flags.
	catalogQueryCmd.Flags().String("query", "", "full-text search query")
	catalogQueryCmd.Flags().String("collection", "", "filter by archive collection")
	catalogQueryCmd.Flags().String("category", "", "filter by data category")
	catalogQueryCmd.Flags().String("dataset", "", "filter by dataset ID")
	catalogQueryCmd.Flags().String("kind", "", "filter by column kind: numeric, categorical, empty")
	catalogQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	catalogExportCmd.Flags().String("collection", "", "filter by collection for partial export")
	catalogExportCmd.Flags().String("category", "", "filter by category for partial export")
	catalogExportCmd.Flags().String("dataset", "", "filter by dataset ID for partial export")
	catalogExportCmd.Flags().String("kind", "", "filter by column kind for partial export")
	catalogExportCmd.Flags().Int("limit", 0, "maximum entries to export (0 = all)")

	// Wire subcommands.
	catalogCmd.AddCommand(catalogIngestCmd)
	catalogCmd.AddCommand(catalogQueryCmd)
	catalogCmd.AddCommand(catalogDatasetsCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
