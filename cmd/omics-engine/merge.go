package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/omics-engine/internal/merge"
	"github.com/pdiddy/omics-engine/pkg/types"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <left> <right>",
	Short: "Concatenate two converted CSVs into the combined artifact",
	Long: `Merge concatenates two converted datasets into the combined
biomedical/clinical CSV. Inputs are CSV paths or dataset IDs resolved
under the data directory. Row concatenation stacks the inputs with a
union (or intersection) of columns; column concatenation aligns rows on
the shared index column.

With --expect-shape the combined shape is validated before the output is
written; a mismatch aborts the merge.`,
	Args: cobra.ExactArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().String("axis", "rows", "concatenation axis: rows or columns")
	mergeCmd.Flags().Bool("transpose-left", false, "transpose the left input before concatenation")
	mergeCmd.Flags().Bool("transpose-right", false, "transpose the right input before concatenation")
	mergeCmd.Flags().String("join", "union", "column handling for row concatenation: union or intersect")
	mergeCmd.Flags().String("expect-shape", "", "expected combined shape as ROWSxCOLS, e.g. 234454x272")
	mergeCmd.Flags().String("out", "", "output path (default: data-dir/combined/biomedical_clinical_data.csv)")
	mergeCmd.Flags().String("data-dir", "data", "base directory for data")

	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	axis, _ := cmd.Flags().GetString("axis")
	expectShape, _ := cmd.Flags().GetString("expect-shape")
	outPath, _ := cmd.Flags().GetString("out")

	join := stringSetting(cmd, "join", string(pipelineCfg.Merge.Join))
	dataDir := stringSetting(cmd, "data-dir", pipelineCfg.Merge.DataDir)
	if outPath == "" && pipelineCfg.Merge.OutputName != "" {
		outPath = filepath.Join(dataDir, "combined", pipelineCfg.Merge.OutputName)
	}

	transposeLeft, _ := cmd.Flags().GetBool("transpose-left")
	transposeRight, _ := cmd.Flags().GetBool("transpose-right")

	opts := merge.Options{
		LeftPath:       merge.InputPath(args[0], dataDir),
		RightPath:      merge.InputPath(args[1], dataDir),
		Axis:           merge.Axis(axis),
		TransposeLeft:  transposeLeft,
		TransposeRight: transposeRight,
		Join:           types.JoinMode(join),
		OutputPath:     outPath,
		ExpectedRows:   pipelineCfg.Merge.ExpectedRows,
		ExpectedCols:   pipelineCfg.Merge.ExpectedCols,
	}

	if expectShape != "" {
		rows, cols, err := parseShape(expectShape)
		if err != nil {
			return err
		}
		opts.ExpectedRows = rows
		opts.ExpectedCols = cols
	}

	_, err := merge.Merge(opts, dataDir, os.Stdout)
	return err
}

// parseShape parses a "ROWSxCOLS" string, e.g. "234454x272".
func parseShape(s string) (rows, cols int, err error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid shape %q: use ROWSxCOLS, e.g. 234454x272", s)
	}
	rows, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid row count in shape %q", s)
	}
	cols, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid column count in shape %q", s)
	}
	return rows, cols, nil
}
