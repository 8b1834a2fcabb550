// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds a column profile with dataset metadata for export.
type ExportEntry struct {
	DatasetID  string         `json:"dataset_id" yaml:"dataset_id"`
	Name       string         `json:"name" yaml:"name"`
	Kind       string         `json:"kind" yaml:"kind"`
	NonEmpty   int            `json:"non_empty" yaml:"non_empty"`
	Missing    int            `json:"missing" yaml:"missing"`
	Distinct   int            `json:"distinct" yaml:"distinct"`
	Min        float64        `json:"min,omitempty" yaml:"min,omitempty"`
	Max        float64        `json:"max,omitempty" yaml:"max,omitempty"`
	Mean       float64        `json:"mean,omitempty" yaml:"mean,omitempty"`
	Examples   []string       `json:"examples,omitempty" yaml:"examples,omitempty"`
	Dataset    *ExportDataset `json:"dataset,omitempty" yaml:"dataset,omitempty"`
}

// ExportDataset holds the dataset-level fields included in each export entry.
type ExportDataset struct {
	Collection string `json:"collection" yaml:"collection"`
	Category   string `json:"category" yaml:"category"`
}

const exportLimit = 100000

// ExportYAML writes the catalog to catalog/index/export.yaml. It supports
// the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.catalogDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the catalog to catalog/index/export.json. It supports
// the same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.catalogDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = exportLimit
	}
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			DatasetID: r.DatasetID,
			Name:      r.Name,
			Kind:      string(r.Kind),
			NonEmpty:  r.NonEmpty,
			Missing:   r.Missing,
			Distinct:  r.Distinct,
			Min:       r.Min,
			Max:       r.Max,
			Mean:      r.Mean,
			Examples:  r.Examples,
		}
		if r.Collection != "" || r.Category != "" {
			entries[i].Dataset = &ExportDataset{
				Collection: r.Collection,
				Category:   r.Category,
			}
		}
	}

	return entries, nil
}
