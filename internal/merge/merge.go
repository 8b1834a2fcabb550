// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge concatenates converted CSV datasets into the combined
// biomedical/clinical artifact.
package merge

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/omics-engine/internal/frame"
	"github.com/pdiddy/omics-engine/pkg/types"
)

const (
	combinedDir = "combined"
	metadataDir = "metadata"
	csvDir      = "csv"

	// DefaultOutputName is the combined CSV file name documented for the
	// published TCGA-OV artifact.
	DefaultOutputName = "biomedical_clinical_data.csv"
)

// Axis selects the concatenation direction.
type Axis string

const (
	AxisRows    Axis = "rows"
	AxisColumns Axis = "columns"
)

// Options configures a merge run.
type Options struct {
	// LeftPath and RightPath are the input CSV files (biomedical first,
	// clinical second by convention).
	LeftPath  string
	RightPath string

	// Axis is rows (stack) or columns (align on the index column).
	Axis Axis

	// TransposeLeft and TransposeRight flip an input before concatenation.
	// Omics matrices ship with features in rows and samples in columns;
	// transposing puts sample barcodes on the row axis like clinical files.
	TransposeLeft  bool
	TransposeRight bool

	// Join applies to row concatenation: union or intersect.
	Join types.JoinMode

	// OutputPath overrides dataDir/combined/<DefaultOutputName>.
	OutputPath string

	// ExpectedRows and ExpectedCols, when non-zero, are validated against
	// the output shape.
	ExpectedRows int
	ExpectedCols int
}

// Result reports the shapes involved in a merge.
type Result struct {
	LeftRows, LeftCols   int
	RightRows, RightCols int
	OutRows, OutCols     int
	OutputPath           string
}

// Merge loads both inputs, concatenates them along the requested axis,
// validates the output shape, and writes the combined CSV via a temp file
// and rename. A metadata record for the combined artifact is written under
// dataDir/metadata/.
func Merge(opts Options, dataDir string, w io.Writer) (Result, error) {
	left, err := frame.ReadCSV(opts.LeftPath)
	if err != nil {
		return Result{}, fmt.Errorf("loading left input: %w", err)
	}
	right, err := frame.ReadCSV(opts.RightPath)
	if err != nil {
		return Result{}, fmt.Errorf("loading right input: %w", err)
	}

	if opts.TransposeLeft {
		left = left.Transpose()
	}
	if opts.TransposeRight {
		right = right.Transpose()
	}

	var result Result
	result.LeftRows, result.LeftCols = left.Shape()
	result.RightRows, result.RightCols = right.Shape()
	fmt.Fprintf(w, "%s: %d x %d\n", filepath.Base(opts.LeftPath), result.LeftRows, result.LeftCols)
	fmt.Fprintf(w, "%s: %d x %d\n", filepath.Base(opts.RightPath), result.RightRows, result.RightCols)

	var combined *frame.Frame
	switch opts.Axis {
	case AxisRows, "":
		combined = left.ConcatRows(right, opts.Join == types.JoinIntersect)
	case AxisColumns:
		combined, err = left.ConcatColumns(right)
		if err != nil {
			return result, fmt.Errorf("column concatenation: %w", err)
		}
	default:
		return result, fmt.Errorf("unknown axis %q: use rows or columns", opts.Axis)
	}

	result.OutRows, result.OutCols = combined.Shape()
	fmt.Fprintf(w, "combined: %d x %d\n", result.OutRows, result.OutCols)

	if opts.ExpectedRows > 0 && result.OutRows != opts.ExpectedRows {
		return result, fmt.Errorf("combined row count %d does not match expected %d", result.OutRows, opts.ExpectedRows)
	}
	if opts.ExpectedCols > 0 && result.OutCols != opts.ExpectedCols {
		return result, fmt.Errorf("combined column count %d does not match expected %d", result.OutCols, opts.ExpectedCols)
	}

	outPath := opts.OutputPath
	if outPath == "" {
		outPath = filepath.Join(dataDir, combinedDir, DefaultOutputName)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return result, fmt.Errorf("creating output directory: %w", err)
	}

	if err := writeCSVAtomic(combined, outPath); err != nil {
		return result, err
	}
	result.OutputPath = outPath

	if err := writeCombinedMetadata(opts, result, dataDir); err != nil {
		fmt.Fprintf(w, "  warning: metadata write failed: %v\n", err)
	}

	fmt.Fprintf(w, "wrote %s\n", outPath)
	return result, nil
}

// InputPath resolves a merge input: an existing file path is used as-is,
// anything else is treated as a dataset ID under dataDir/csv/.
func InputPath(input, dataDir string) string {
	if _, err := os.Stat(input); err == nil {
		return input
	}
	return filepath.Join(dataDir, csvDir, input+".csv")
}

// writeCSVAtomic writes the frame to a temp file in the destination
// directory and renames it into place.
func writeCSVAtomic(f *frame.Frame, destPath string) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".merge-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writeErr := f.Write(tmpFile)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing combined CSV: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// writeCombinedMetadata records the combined artifact as a dataset so the
// catalog can index it alongside its inputs.
func writeCombinedMetadata(opts Options, result Result, dataDir string) error {
	metaDir := filepath.Join(dataDir, metadataDir)
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return err
	}

	id := nameStem(result.OutputPath)
	d := types.Dataset{
		ID:               id,
		Category:         "Combined",
		CSVPath:          result.OutputPath,
		Rows:             result.OutRows,
		Cols:             result.OutCols,
		AcquiredAt:       time.Now().UTC(),
		Source:           "merge",
		ConversionStatus: types.ConversionDone,
	}

	data, err := yaml.Marshal(&d)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(filepath.Join(metaDir, id+".yaml"), data, 0o644)
}

func nameStem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
