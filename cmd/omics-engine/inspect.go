package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/omics-engine/internal/frame"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <csv>",
	Short: "Print the shape of a CSV file",
	Long: `Inspect reads a CSV file and prints its shape as data rows by columns,
header excluded. With --expect the shape is checked against an expected
ROWSxCOLS value and the command fails on mismatch.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().String("expect", "", "expected shape as ROWSxCOLS, e.g. 234454x272")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	expect, _ := cmd.Flags().GetString("expect")

	f, err := frame.ReadCSV(args[0])
	if err != nil {
		return err
	}
	rows, cols := f.Shape()
	fmt.Printf("%d x %d\n", rows, cols)

	if expect != "" {
		wantRows, wantCols, err := parseShape(expect)
		if err != nil {
			return err
		}
		if rows != wantRows || cols != wantCols {
			return fmt.Errorf("shape %d x %d does not match expected %d x %d", rows, cols, wantRows, wantCols)
		}
	}
	return nil
}
