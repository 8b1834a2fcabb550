package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/omics-engine/internal/archive"
	"github.com/pdiddy/omics-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List archive files matching a collection and category",
	Long: `Search queries cancer-archive sources (the GDC files API, a local
manifest TSV) for files matching a collection, data category, and format.
Results are deduplicated across sources and ranked by relevance. Use
--output to save the listing for a later acquire --from-listing run.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("collection", "", "archive collection, e.g. TCGA-OV")
	searchCmd.Flags().String("category", "", "data category filter, e.g. Biospecimen or Clinical")
	searchCmd.Flags().String("format", "", "data format filter, e.g. 'BCR Biotab'")
	searchCmd.Flags().String("name", "", "substring filter on file names")
	searchCmd.Flags().String("manifest", "", "path to a local manifest TSV to search alongside the API")
	searchCmd.Flags().Bool("no-gdc", false, "disable the GDC API backend")
	searchCmd.Flags().Int("max-results", 100, "maximum number of results to return")
	searchCmd.Flags().String("token", "", "archive access token (default: gdc-token secret)")
	searchCmd.Flags().Duration("timeout", 30*time.Second, "HTTP request timeout")
	searchCmd.Flags().String("output", "", "save the listing to a YAML file")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	collection, _ := cmd.Flags().GetString("collection")
	category, _ := cmd.Flags().GetString("category")
	format, _ := cmd.Flags().GetString("format")
	nameFilter, _ := cmd.Flags().GetString("name")
	manifestPath := stringSetting(cmd, "manifest", pipelineCfg.Archive.ManifestPath)
	noGDC, _ := cmd.Flags().GetBool("no-gdc")
	maxResults := intSetting(cmd, "max-results", pipelineCfg.Archive.MaxResults)
	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = pipelineCfg.Archive.Token
	}
	timeout := durationSetting(cmd, "timeout", pipelineCfg.Archive.Timeout)
	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	userAgent := pipelineCfg.Archive.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	query := archive.Query{
		Collection: collection,
		Category:   category,
		Format:     format,
		NameFilter: nameFilter,
	}

	cfg := types.ArchiveConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: userAgent,
		},
		MaxResults:   maxResults,
		EnableGDC:    pipelineCfg.Archive.EnableGDC && !noGDC,
		ManifestPath: manifestPath,
		Token:        secretDefault("gdc-token", token),
	}

	var backends []archive.Backend
	if cfg.EnableGDC {
		backends = append(backends, &archive.GDCBackend{
			Client: &http.Client{Timeout: cfg.Timeout},
			Token:  cfg.Token,
		})
	}
	if cfg.ManifestPath != "" {
		backends = append(backends, &archive.ManifestBackend{Path: cfg.ManifestPath})
	}

	out, err := archive.Search(context.Background(), query, backends, cfg, os.Stderr)
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := archive.WriteListing(outputPath, query, cfg, out); err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Listing saved to %s\n", outputPath)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out.Records)
	}

	printSearchResults(out)
	return nil
}

func printSearchResults(out archive.SearchOutput) {
	if len(out.Records) == 0 {
		fmt.Println("No files found.")
		return
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-50s  %-12s  %-10s  %-10s  %s\n",
		"Rank", "Name", "Category", "Format", "Size", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, r := range out.Records {
		name := r.Name
		if len(name) > 50 {
			name = name[:47] + "..."
		}
		category := r.Category
		if len(category) > 12 {
			category = category[:9] + "..."
		}
		format := r.Format
		if len(format) > 10 {
			format = format[:7] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-50s  %-12s  %-10s  %-10d  %s\n",
			i+1, name, category, format, r.SizeBytes, r.Source)
	}

	fmt.Fprintf(os.Stdout, "\n%d files (%d duplicates removed)\n", len(out.Records), out.DupsRemoved)
}
