// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/omics-engine/pkg/types"
)

// ListingFile is the on-disk representation of a search query and its
// results. A search can be saved to a file and fed to acquisition later
// without re-querying the archive.
type ListingFile struct {
	Query   ListingQuery       `yaml:"query"`
	Config  ListingConfig      `yaml:"config"`
	Records []types.FileRecord `yaml:"records"`
	Summary ListingSummary     `yaml:"summary"`
}

// ListingQuery stores the query parameters in a serializable form.
type ListingQuery struct {
	Collection string `yaml:"collection"`
	Category   string `yaml:"category,omitempty"`
	Format     string `yaml:"format,omitempty"`
	NameFilter string `yaml:"name_filter,omitempty"`
}

// ListingConfig stores the search configuration that produced the records.
type ListingConfig struct {
	MaxResults int `yaml:"max_results"`
}

// ListingSummary stores record statistics and a timestamp.
type ListingSummary struct {
	Total             int       `yaml:"total"`
	DuplicatesRemoved int       `yaml:"duplicates_removed"`
	BackendErrors     []string  `yaml:"backend_errors,omitempty"`
	Timestamp         time.Time `yaml:"timestamp"`
}

// WriteListing saves query parameters and records to a YAML file.
func WriteListing(path string, query Query, cfg types.ArchiveConfig, out SearchOutput) error {
	lf := ListingFile{
		Query: ListingQuery{
			Collection: query.Collection,
			Category:   query.Category,
			Format:     query.Format,
			NameFilter: query.NameFilter,
		},
		Config: ListingConfig{
			MaxResults: cfg.MaxResults,
		},
		Records: out.Records,
		Summary: ListingSummary{
			Total:             len(out.Records),
			DuplicatesRemoved: out.DupsRemoved,
			BackendErrors:     out.BackendErrors,
			Timestamp:         time.Now(),
		},
	}

	data, err := yaml.Marshal(&lf)
	if err != nil {
		return fmt.Errorf("marshaling listing file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadListing loads a previously saved listing file from disk.
func ReadListing(path string) (*ListingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading listing file: %w", err)
	}
	var lf ListingFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing listing file: %w", err)
	}
	return &lf, nil
}
