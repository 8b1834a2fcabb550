// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements raw-text-to-CSV conversion with pluggable parsers.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/omics-engine/internal/frame"
	"github.com/pdiddy/omics-engine/pkg/types"
)

const (
	// csvDir is the subdirectory under the data base for CSV output.
	csvDir = "csv"
	// rawDir is the subdirectory under the data base for raw text files.
	rawDir = "raw"
	// metadataDir is the subdirectory under the data base for dataset records.
	metadataDir = "metadata"
)

// Converter parses a raw delimited text file into a Frame. Different
// backends (biotab, delimited) implement this interface.
type Converter interface {
	// Convert reads the raw file at rawPath and returns the parsed table.
	Convert(rawPath string) (*frame.Frame, error)
}

// ForBackend returns the Converter for the configured backend name.
func ForBackend(backend types.ConversionBackend) (Converter, error) {
	switch backend {
	case types.BackendBiotab, "":
		return &BiotabConverter{}, nil
	case types.BackendDelimited:
		return &DelimitedConverter{}, nil
	default:
		return nil, fmt.Errorf("unknown conversion backend %q: use biotab or delimited", backend)
	}
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of datasets processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any datasets failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertDataset converts a single raw file to CSV, writing the result to
// dataDir/csv/ and updating the dataset's metadata record when one exists.
// If the CSV output already exists, it skips conversion and returns
// ConversionNone.
func ConvertDataset(c Converter, ds *types.Dataset, dataDir string, w io.Writer) types.ConversionStatus {
	outDir := filepath.Join(dataDir, csvDir)
	csvPath := filepath.Join(outDir, ds.ID+".csv")

	if _, err := os.Stat(csvPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", ds.ID)
		return types.ConversionNone
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", ds.ID, err)
		return types.ConversionFailed
	}

	f, err := c.Convert(ds.RawPath)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", ds.ID, err)
		markFailed(ds, dataDir)
		return types.ConversionFailed
	}

	if err := f.WriteCSV(csvPath); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", ds.ID, err)
		markFailed(ds, dataDir)
		return types.ConversionFailed
	}

	ds.CSVPath = csvPath
	ds.Rows, ds.Cols = f.Shape()
	ds.ConversionStatus = types.ConversionDone
	if err := updateMetadata(ds, dataDir); err != nil {
		fmt.Fprintf(w, "  warning: metadata update failed for %s: %v\n", ds.ID, err)
	}

	fmt.Fprintf(w, "converted: %s (%d x %d)\n", ds.ID, ds.Rows, ds.Cols)
	return types.ConversionDone
}

// ConvertBatch processes all dataset metadata records under dataDir that
// are not yet converted, printing per-file status to w and returning a
// summary.
func ConvertBatch(c Converter, dataDir string, w io.Writer) (BatchResult, error) {
	datasets, err := loadDatasets(dataDir)
	if err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for i := range datasets {
		status := ConvertDataset(c, &datasets[i], dataDir, w)
		switch status {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionNone:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// ConvertPaths builds Dataset records from raw file paths and converts
// each. Ad-hoc files have no archive metadata; the ID derives from the
// filename.
func ConvertPaths(c Converter, rawPaths []string, dataDir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range rawPaths {
		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		ds := types.Dataset{
			ID:      base,
			RawPath: p,
		}
		switch ConvertDataset(c, &ds, dataDir, w) {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionNone:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// loadDatasets reads every dataset metadata record under dataDir/metadata/.
func loadDatasets(dataDir string) ([]types.Dataset, error) {
	metaDir := filepath.Join(dataDir, metadataDir)
	entries, err := os.ReadDir(metaDir)
	if err != nil {
		return nil, fmt.Errorf("reading metadata directory %s: %w", metaDir, err)
	}

	var datasets []types.Dataset
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(metaDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading metadata %s: %w", entry.Name(), err)
		}
		var ds types.Dataset
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("parsing metadata %s: %w", entry.Name(), err)
		}
		datasets = append(datasets, ds)
	}
	return datasets, nil
}

func markFailed(ds *types.Dataset, dataDir string) {
	ds.ConversionStatus = types.ConversionFailed
	_ = updateMetadata(ds, dataDir)
}

// updateMetadata rewrites the dataset's YAML record if one exists on disk.
// Ad-hoc conversions (ConvertPaths) have no record and are left alone.
func updateMetadata(ds *types.Dataset, dataDir string) error {
	path := filepath.Join(dataDir, metadataDir, ds.ID+".yaml")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	data, err := yaml.Marshal(ds)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// naMarkers lists the cell values the BCR emits for absent data. They all
// normalize to the empty string.
var naMarkers = map[string]bool{
	"[Not Available]":  true,
	"[Not Applicable]": true,
	"[Not Evaluated]":  true,
	"[Unknown]":        true,
	"[Discrepancy]":    true,
	"[Pending]":        true,
	"null":             true,
	"NA":               true,
	"N/A":              true,
}

// normalizeCell trims whitespace and maps not-available markers to "".
func normalizeCell(cell string) string {
	cell = strings.TrimSpace(cell)
	if naMarkers[cell] {
		return ""
	}
	return cell
}
