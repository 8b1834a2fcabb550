package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/omics-engine/internal/convert"
	"github.com/pdiddy/omics-engine/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [raw files...]",
	Short: "Convert raw delimited text files to CSV",
	Long: `Convert parses raw archive files (BCR Biotab or generic delimited text)
into CSV, normalizing not-available markers to empty cells. With --batch it
processes every unconverted dataset recorded under the data directory;
otherwise it converts the given raw file paths directly.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("backend", "biotab", "conversion backend: biotab or delimited")
	convertCmd.Flags().String("data-dir", "data", "base directory for data")
	convertCmd.Flags().Bool("batch", false, "process all unconverted datasets in data-dir")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	backend := stringSetting(cmd, "backend", string(pipelineCfg.Conversion.Backend))
	dataDir := stringSetting(cmd, "data-dir", pipelineCfg.Conversion.DataDir)
	batch, _ := cmd.Flags().GetBool("batch")

	c, err := convert.ForBackend(types.ConversionBackend(backend))
	if err != nil {
		return err
	}

	if batch {
		result, err := convert.ConvertBatch(c, dataDir, os.Stdout)
		if err != nil {
			return err
		}
		if result.HasFailures() {
			return fmt.Errorf("%d dataset(s) failed conversion", result.Failed)
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("provide raw file paths or use --batch")
	}
	result := convert.ConvertPaths(c, args, dataDir, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}
