// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile computes per-column summaries for converted CSV datasets.
package profile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/omics-engine/internal/frame"
	"github.com/pdiddy/omics-engine/pkg/types"
)

const (
	metadataDir = "metadata"
	profilesDir = "profiles"

	defaultMaxExamples = 5
	// distinctCap bounds the distinct-value scan; omics matrices have
	// hundreds of thousands of distinct floats and exact counts past the
	// cap carry no catalog value.
	distinctCap = 10000
)

// BatchSummary holds counts from a batch profiling run.
type BatchSummary struct {
	Profiled int
	Skipped  int
	Failed   int
}

// Total returns the number of datasets processed.
func (s BatchSummary) Total() int {
	return s.Profiled + s.Skipped + s.Failed
}

// HasFailures reports whether any datasets failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ProfileAll profiles every converted dataset recorded under
// cfg.DataDir/metadata/, writing one profile YAML per dataset to
// cfg.CatalogDir/profiles/. Datasets whose profile is newer than their CSV
// are skipped.
func ProfileAll(cfg types.ProfileConfig, w io.Writer) (BatchSummary, error) {
	metaDir := filepath.Join(cfg.DataDir, metadataDir)
	outDir := filepath.Join(cfg.CatalogDir, profilesDir)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating profiles directory: %w", err)
	}

	entries, err := os.ReadDir(metaDir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading metadata directory %s: %w", metaDir, err)
	}

	var summary BatchSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".yaml")
		data, err := os.ReadFile(filepath.Join(metaDir, entry.Name()))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}
		var ds types.Dataset
		if err := yaml.Unmarshal(data, &ds); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}
		if ds.ConversionStatus != types.ConversionDone || ds.CSVPath == "" {
			continue
		}

		outPath := filepath.Join(outDir, ds.ID+"-columns.yaml")
		changed, err := hasChanged(ds.CSVPath, outPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", ds.ID, err)
			summary.Failed++
			continue
		}
		if !changed {
			fmt.Fprintf(w, "skipped %s\n", ds.ID)
			summary.Skipped++
			continue
		}

		columns, err := ProfileCSV(ds.CSVPath, cfg.MaxExamples)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", ds.ID, err)
			summary.Failed++
			continue
		}

		result := types.ProfileResult{DatasetID: ds.ID, Columns: columns}
		if err := writeResult(outPath, result); err != nil {
			fmt.Fprintf(w, "failed  %s: write error: %v\n", ds.ID, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "profiled %s (%d columns)\n", ds.ID, len(columns))
		summary.Profiled++
	}

	fmt.Fprintf(w, "\nBatch summary: %d profiled, %d skipped, %d failed (total: %d)\n",
		summary.Profiled, summary.Skipped, summary.Failed, summary.Total())
	return summary, nil
}

// ProfileCSV computes a ColumnProfile for every column of the CSV at path.
func ProfileCSV(path string, maxExamples int) ([]types.ColumnProfile, error) {
	if maxExamples <= 0 {
		maxExamples = defaultMaxExamples
	}

	f, err := frame.ReadCSV(path)
	if err != nil {
		return nil, err
	}

	profiles := make([]types.ColumnProfile, len(f.Columns))
	for i, name := range f.Columns {
		profiles[i] = profileColumn(f, i, name, maxExamples)
	}
	return profiles, nil
}

func profileColumn(f *frame.Frame, idx int, name string, maxExamples int) types.ColumnProfile {
	p := types.ColumnProfile{Name: name}

	distinct := make(map[string]bool)
	var (
		sum       float64
		min, max  float64
		numeric   = true
		firstSeen []string
	)

	for _, row := range f.Rows {
		cell := row[idx]
		if cell == "" {
			p.Missing++
			continue
		}
		p.NonEmpty++

		if len(distinct) < distinctCap && !distinct[cell] {
			distinct[cell] = true
			if len(firstSeen) < maxExamples {
				firstSeen = append(firstSeen, cell)
			}
		}

		if numeric {
			v, parseErr := strconv.ParseFloat(cell, 64)
			if parseErr != nil {
				numeric = false
			} else {
				if p.NonEmpty == 1 || v < min {
					min = v
				}
				if p.NonEmpty == 1 || v > max {
					max = v
				}
				sum += v
			}
		}
	}

	p.Distinct = len(distinct)
	p.Examples = firstSeen

	switch {
	case p.NonEmpty == 0:
		p.Kind = types.KindEmpty
	case numeric:
		p.Kind = types.KindNumeric
		p.Min = min
		p.Max = max
		p.Mean = sum / float64(p.NonEmpty)
	default:
		p.Kind = types.KindCategorical
	}
	return p
}

// hasChanged reports whether the CSV is newer than its profile output.
func hasChanged(csvPath, outPath string) (bool, error) {
	csvInfo, err := os.Stat(csvPath)
	if err != nil {
		return false, err
	}
	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return csvInfo.ModTime().After(outInfo.ModTime()), nil
}

func writeResult(path string, result types.ProfileResult) error {
	data, err := yaml.Marshal(&result)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
