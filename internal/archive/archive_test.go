// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/omics-engine/pkg/types"
)

// fakeBackend returns canned records or an error.
type fakeBackend struct {
	name    string
	records []types.FileRecord
	err     error
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Files(_ context.Context, _ Query, _ types.ArchiveConfig) ([]types.FileRecord, error) {
	return f.records, f.err
}

func rec(id, name string, score float64) types.FileRecord {
	return types.FileRecord{ID: id, Name: name, Source: "fake", RelevanceScore: score}
}

func TestSearchEmptyQuery(t *testing.T) {
	var buf bytes.Buffer
	_, err := Search(context.Background(), Query{}, []Backend{&fakeBackend{name: "a"}}, types.ArchiveConfig{}, &buf)
	if err == nil {
		t.Fatal("Search with empty query succeeded, want error")
	}
}

func TestSearchNoBackends(t *testing.T) {
	var buf bytes.Buffer
	_, err := Search(context.Background(), Query{Collection: "TCGA-OV"}, nil, types.ArchiveConfig{}, &buf)
	if err == nil {
		t.Fatal("Search with no backends succeeded, want error")
	}
}

func TestSearchMergesAndRanks(t *testing.T) {
	b1 := &fakeBackend{name: "one", records: []types.FileRecord{
		rec("f1", "clinical_patient_ov.txt", 0.5),
	}}
	b2 := &fakeBackend{name: "two", records: []types.FileRecord{
		rec("f2", "biospecimen_sample_ov.txt", 0.9),
	}}

	var buf bytes.Buffer
	out, err := Search(context.Background(), Query{Collection: "TCGA-OV"}, []Backend{b1, b2}, types.ArchiveConfig{}, &buf)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(out.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(out.Records))
	}
	if out.Records[0].ID != "f2" {
		t.Errorf("first record = %s, want f2 (higher score)", out.Records[0].ID)
	}
}

func TestSearchDeduplicates(t *testing.T) {
	tests := []struct {
		name     string
		a, b     types.FileRecord
		wantDups int
	}{
		{"same id", rec("f1", "a.txt", 1), rec("f1", "b.txt", 1), 1},
		{"same name different extension", rec("f1", "Clinical_OV.txt", 1), rec("f2", "clinical_ov.tsv", 1), 1},
		{"distinct", rec("f1", "a.txt", 1), rec("f2", "b.txt", 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b1 := &fakeBackend{name: "one", records: []types.FileRecord{tt.a}}
			b2 := &fakeBackend{name: "two", records: []types.FileRecord{tt.b}}

			var buf bytes.Buffer
			out, err := Search(context.Background(), Query{Collection: "TCGA-OV"}, []Backend{b1, b2}, types.ArchiveConfig{}, &buf)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if out.DupsRemoved != tt.wantDups {
				t.Errorf("DupsRemoved = %d, want %d", out.DupsRemoved, tt.wantDups)
			}
		})
	}
}

func TestSearchPartialBackendFailure(t *testing.T) {
	good := &fakeBackend{name: "good", records: []types.FileRecord{rec("f1", "a.txt", 1)}}
	bad := &fakeBackend{name: "bad", err: fmt.Errorf("boom")}

	var buf bytes.Buffer
	out, err := Search(context.Background(), Query{Collection: "TCGA-OV"}, []Backend{good, bad}, types.ArchiveConfig{}, &buf)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out.Records) != 1 {
		t.Errorf("got %d records, want 1", len(out.Records))
	}
	if len(out.BackendErrors) != 1 {
		t.Errorf("BackendErrors = %v, want one entry", out.BackendErrors)
	}
	if !bytes.Contains(buf.Bytes(), []byte("warning: backend bad failed")) {
		t.Errorf("output = %q, want warning line", buf.String())
	}
}

func TestSearchAllBackendsFail(t *testing.T) {
	b1 := &fakeBackend{name: "one", err: fmt.Errorf("down")}
	b2 := &fakeBackend{name: "two", err: fmt.Errorf("also down")}

	var buf bytes.Buffer
	_, err := Search(context.Background(), Query{Collection: "TCGA-OV"}, []Backend{b1, b2}, types.ArchiveConfig{}, &buf)
	if err == nil {
		t.Fatal("Search with all backends failing succeeded, want error")
	}
}

func TestSearchCapsResults(t *testing.T) {
	var records []types.FileRecord
	for i := 0; i < 10; i++ {
		records = append(records, rec(fmt.Sprintf("f%d", i), fmt.Sprintf("file%d.txt", i), 1.0-float64(i)*0.05))
	}
	b := &fakeBackend{name: "one", records: records}

	var buf bytes.Buffer
	out, err := Search(context.Background(), Query{Collection: "TCGA-OV"}, []Backend{b}, types.ArchiveConfig{MaxResults: 3}, &buf)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out.Records) != 3 {
		t.Errorf("got %d records, want 3", len(out.Records))
	}
}

func TestSearchTiebreaksByUpdated(t *testing.T) {
	older := rec("f1", "older.txt", 0.5)
	older.Updated = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := rec("f2", "newer.txt", 0.5)
	newer.Updated = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	b := &fakeBackend{name: "one", records: []types.FileRecord{older, newer}}

	var buf bytes.Buffer
	out, err := Search(context.Background(), Query{Collection: "TCGA-OV"}, []Backend{b}, types.ArchiveConfig{}, &buf)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out.Records[0].ID != "f2" {
		t.Errorf("first record = %s, want f2 (newer)", out.Records[0].ID)
	}
}

func TestListingRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listing.yaml")
	query := Query{Collection: "TCGA-OV", Category: "Clinical"}
	out := SearchOutput{
		Records:     []types.FileRecord{rec("f1", "clinical_patient_ov.txt", 1)},
		DupsRemoved: 2,
	}

	if err := WriteListing(path, query, types.ArchiveConfig{MaxResults: 50}, out); err != nil {
		t.Fatalf("WriteListing: %v", err)
	}

	lf, err := ReadListing(path)
	if err != nil {
		t.Fatalf("ReadListing: %v", err)
	}
	if lf.Query.Collection != "TCGA-OV" || lf.Query.Category != "Clinical" {
		t.Errorf("Query = %+v", lf.Query)
	}
	if len(lf.Records) != 1 || lf.Records[0].ID != "f1" {
		t.Errorf("Records = %+v", lf.Records)
	}
	if lf.Summary.Total != 1 || lf.Summary.DuplicatesRemoved != 2 {
		t.Errorf("Summary = %+v", lf.Summary)
	}
}

func TestReadListingMissing(t *testing.T) {
	_, err := ReadListing(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("ReadListing on missing file succeeded, want error")
	}
}
