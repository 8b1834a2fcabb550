package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/omics-engine/internal/profile"
	"github.com/pdiddy/omics-engine/pkg/types"
)

var profileCmd = &cobra.Command{
	Use:   "profile [csv]",
	Short: "Compute per-column summaries for converted datasets",
	Long: `Profile computes per-column statistics (kind, counts, numeric ranges,
example values) for converted CSVs. Without arguments it profiles every
converted dataset under the data directory, writing one YAML file per
dataset to catalog/profiles/. With a CSV path it prints the profile to
stdout.`,
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().String("data-dir", "data", "base directory for data")
	profileCmd.Flags().String("catalog-dir", "catalog", "base directory for catalog output")
	profileCmd.Flags().Int("max-examples", 5, "example values recorded per column")

	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	dataDir := stringSetting(cmd, "data-dir", pipelineCfg.Profile.DataDir)
	catalogDir := stringSetting(cmd, "catalog-dir", pipelineCfg.Profile.CatalogDir)
	maxExamples := intSetting(cmd, "max-examples", pipelineCfg.Profile.MaxExamples)

	if len(args) > 0 {
		columns, err := profile.ProfileCSV(args[0], maxExamples)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(columns)
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		return nil
	}

	cfg := types.ProfileConfig{
		DataDir:     dataDir,
		CatalogDir:  catalogDir,
		MaxExamples: maxExamples,
	}
	summary, err := profile.ProfileAll(cfg, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d dataset(s) failed profiling", summary.Failed)
	}
	return nil
}
