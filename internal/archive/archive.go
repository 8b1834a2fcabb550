// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive queries cancer-archive file listings and returns unified,
// deduplicated records.
package archive

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pdiddy/omics-engine/pkg/types"
)

// Backend lists files from a single archive source. Each backend (GDC API,
// local manifest) implements this interface.
type Backend interface {
	Name() string
	Files(ctx context.Context, query Query, cfg types.ArchiveConfig) ([]types.FileRecord, error)
}

// Query holds the file-listing parameters.
type Query struct {
	// Collection is the archive project, e.g. "TCGA-OV".
	Collection string
	// Category filters by data category, e.g. "Biospecimen" or "Clinical".
	Category string
	// Format filters by archive data format, e.g. "BCR Biotab".
	Format string
	// NameFilter is a substring match against the file name.
	NameFilter string
}

// IsEmpty reports whether the query names no collection.
func (q Query) IsEmpty() bool {
	return q.Collection == ""
}

// SearchOutput holds the records and dedup statistics.
type SearchOutput struct {
	Records       []types.FileRecord
	DupsRemoved   int
	BackendErrors []string
}

// Search fans the query out to all backends concurrently, deduplicates
// records, ranks them, and returns the top N. A failing backend produces
// a warning, not an abort; the command only fails when every backend fails.
func Search(ctx context.Context, query Query, backends []Backend, cfg types.ArchiveConfig, w io.Writer) (SearchOutput, error) {
	if query.IsEmpty() {
		return SearchOutput{}, fmt.Errorf("query is empty: provide a collection (e.g. TCGA-OV)")
	}
	if len(backends) == 0 {
		return SearchOutput{}, fmt.Errorf("no archive backends configured")
	}

	type backendResult struct {
		records []types.FileRecord
		err     error
		name    string
	}

	ch := make(chan backendResult, len(backends))
	var wg sync.WaitGroup

	for _, b := range backends {
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			records, err := b.Files(ctx, query, cfg)
			ch <- backendResult{records: records, err: err, name: b.Name()}
		}(b)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.FileRecord
	var backendErrors []string
	for br := range ch {
		if br.err != nil {
			msg := fmt.Sprintf("%s: %v", br.name, br.err)
			backendErrors = append(backendErrors, msg)
			fmt.Fprintf(w, "warning: backend %s failed: %v\n", br.name, br.err)
			continue
		}
		all = append(all, br.records...)
	}

	if len(all) == 0 && len(backendErrors) == len(backends) && len(backends) > 0 {
		return SearchOutput{BackendErrors: backendErrors},
			fmt.Errorf("all archive backends failed: %s", strings.Join(backendErrors, "; "))
	}

	deduped, removed := deduplicate(all)

	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].RelevanceScore != deduped[j].RelevanceScore {
			return deduped[i].RelevanceScore > deduped[j].RelevanceScore
		}
		if !deduped[i].Updated.Equal(deduped[j].Updated) {
			return deduped[i].Updated.After(deduped[j].Updated)
		}
		return deduped[i].Name < deduped[j].Name
	})

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}
	if len(deduped) > maxResults {
		deduped = deduped[:maxResults]
	}

	return SearchOutput{
		Records:       deduped,
		DupsRemoved:   removed,
		BackendErrors: backendErrors,
	}, nil
}

// deduplicate merges records that share a file ID or normalized file name.
// The first occurrence wins; API-backed records arrive before manifest ones
// only by goroutine timing, so callers must not rely on which duplicate
// survives beyond field equality.
func deduplicate(records []types.FileRecord) ([]types.FileRecord, int) {
	seen := make(map[string]bool)
	var deduped []types.FileRecord
	removed := 0

	for _, r := range records {
		var keys []string
		if r.ID != "" {
			keys = append(keys, "id:"+strings.ToLower(r.ID))
		}
		if r.Name != "" {
			keys = append(keys, "name:"+normalizeName(r.Name))
		}

		dup := false
		for _, k := range keys {
			if seen[k] {
				dup = true
				break
			}
		}
		if dup {
			removed++
			continue
		}
		for _, k := range keys {
			seen[k] = true
		}
		deduped = append(deduped, r)
	}
	return deduped, removed
}

// normalizeName lowercases a file name and strips its extension so the
// same logical file dedups across .txt/.tsv variants.
func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// matchesName applies the query's NameFilter as a case-insensitive
// substring match. An empty filter matches everything.
func matchesName(name, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(filter))
}
