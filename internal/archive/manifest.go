// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/omics-engine/pkg/types"
)

// ManifestBackend reads file records from a local manifest TSV, the format
// the archive's download portal exports (id, filename, md5, size, state).
// It serves offline runs and pinned file sets.
type ManifestBackend struct {
	Path string
}

// Name returns the backend identifier.
func (b *ManifestBackend) Name() string { return "manifest" }

// Files parses the manifest and returns records matching the query.
func (b *ManifestBackend) Files(ctx context.Context, query Query, cfg types.ArchiveConfig) ([]types.FileRecord, error) {
	file, err := os.Open(b.Path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest %s: %w", b.Path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading manifest %s: %w", b.Path, err)
		}
		return nil, fmt.Errorf("manifest %s is empty", b.Path)
	}
	cols, err := manifestColumns(scanner.Text())
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", b.Path, err)
	}

	var records []types.FileRecord
	lineNum := 1
	for scanner.Scan() {
		lineNum++
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		if len(cells) < len(cols) {
			return nil, fmt.Errorf("manifest %s: row %d has %d cells, header has %d",
				b.Path, lineNum, len(cells), len(cols))
		}

		name := cells[cols["filename"]]
		if !matchesName(name, query.NameFilter) {
			continue
		}

		r := types.FileRecord{
			ID:         cells[cols["id"]],
			Name:       name,
			Collection: query.Collection,
			Category:   query.Category,
			MD5:        cells[cols["md5"]],
			Source:     "manifest",
			// Manifests are pinned by the operator; rank them above API hits.
			RelevanceScore: 1.0,
		}
		if size, convErr := strconv.ParseInt(cells[cols["size"]], 10, 64); convErr == nil {
			r.SizeBytes = size
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", b.Path, err)
	}
	return records, nil
}

// manifestColumns maps required header names to their positions.
func manifestColumns(header string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, name := range strings.Split(strings.TrimRight(header, "\r"), "\t") {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"id", "filename", "md5", "size"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("header missing %q column", required)
		}
	}
	return cols, nil
}
