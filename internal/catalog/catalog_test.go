package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/omics-engine/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	for _, dir := range []string{
		filepath.Join(tmpDir, "catalog", profilesDir),
		filepath.Join(tmpDir, "data", metadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	cfg := types.CatalogConfig{
		CatalogDir: filepath.Join(tmpDir, "catalog"),
		MaxResults: 20,
	}
	store, err := NewStore(cfg, filepath.Join(tmpDir, "data"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, tmpDir
}

func writeProfile(t *testing.T, tmpDir, datasetID string, columns []types.ColumnProfile) {
	t.Helper()
	result := types.ProfileResult{
		DatasetID: datasetID,
		Columns:   columns,
	}
	data, err := yaml.Marshal(&result)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(tmpDir, "catalog", profilesDir, datasetID+"-columns.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeDatasetMeta(t *testing.T, tmpDir string, ds types.Dataset) {
	t.Helper()
	data, err := yaml.Marshal(&ds)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(tmpDir, "data", metadataDir, ds.ID+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func sampleColumns() []types.ColumnProfile {
	return []types.ColumnProfile{
		{
			Name: "bcr_patient_barcode", Kind: types.KindCategorical,
			NonEmpty: 587, Distinct: 587,
			Examples: []string{"TCGA-04-1331", "TCGA-04-1332"},
		},
		{
			Name: "age_at_initial_pathologic_diagnosis", Kind: types.KindNumeric,
			NonEmpty: 580, Missing: 7, Distinct: 52,
			Min: 27, Max: 89, Mean: 59.7,
			Examples: []string{"61", "70"},
		},
		{
			Name: "clinical_stage", Kind: types.KindCategorical,
			NonEmpty: 583, Missing: 4, Distinct: 10,
			Examples: []string{"Stage IIIC", "Stage IV"},
		},
		{
			Name: "day_of_dcc_upload", Kind: types.KindEmpty,
			Missing: 587,
		},
	}
}

func sampleDataset(datasetID string) types.Dataset {
	return types.Dataset{
		ID:               datasetID,
		Collection:       "TCGA-OV",
		Category:         "Clinical",
		Rows:             587,
		Cols:             4,
		ConversionStatus: types.ConversionDone,
	}
}

// ingestHelper writes profile and metadata files, then ingests.
func ingestHelper(t *testing.T, store *Store, tmpDir, datasetID string) {
	t.Helper()
	writeProfile(t, tmpDir, datasetID, sampleColumns())
	writeDatasetMeta(t, tmpDir, sampleDataset(datasetID))
	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store, _ := testSetup(t)

	tables := []string{"datasets", "columns", "columns_fts", "runs", "indexing_status"}
	for _, table := range tables {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "catalog", indexDir, dbFile)

	cfg := types.CatalogConfig{CatalogDir: filepath.Join(tmpDir, "catalog")}
	store, err := NewStore(cfg, filepath.Join(tmpDir, "data"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}
}

// --- ingest tests ---

func TestIngest(t *testing.T) {
	tests := []struct {
		name        string
		datasets    int
		wantIndexed int
	}{
		{"single dataset", 1, 1},
		{"multiple datasets", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, tmpDir := testSetup(t)

			for i := 0; i < tt.datasets; i++ {
				datasetID := fmt.Sprintf("dataset-%d", i)
				writeProfile(t, tmpDir, datasetID, sampleColumns())
				writeDatasetMeta(t, tmpDir, sampleDataset(datasetID))
			}

			var buf strings.Builder
			summary, err := store.Ingest(context.Background(), &buf)
			if err != nil {
				t.Fatalf("Ingest: %v", err)
			}
			if summary.Indexed != tt.wantIndexed {
				t.Errorf("Indexed = %d, want %d", summary.Indexed, tt.wantIndexed)
			}
			if summary.Failed != 0 {
				t.Errorf("Failed = %d, want 0; output: %s", summary.Failed, buf.String())
			}
		})
	}
}

func TestIngestStoresAllFields(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "clinical_patient_ov")

	results, err := store.Retrieve(context.Background(), QueryOptions{Dataset: "clinical_patient_ov"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	// Structured queries sort by dataset, then column name.
	r := results[0]
	if r.Name != "age_at_initial_pathologic_diagnosis" {
		t.Fatalf("first column = %q", r.Name)
	}
	if r.Kind != types.KindNumeric {
		t.Errorf("Kind = %q, want numeric", r.Kind)
	}
	if r.NonEmpty != 580 || r.Missing != 7 || r.Distinct != 52 {
		t.Errorf("counts = %d/%d/%d", r.NonEmpty, r.Missing, r.Distinct)
	}
	if r.Min != 27 || r.Max != 89 || r.Mean != 59.7 {
		t.Errorf("stats = %v/%v/%v", r.Min, r.Max, r.Mean)
	}
	if len(r.Examples) != 2 || r.Examples[0] != "61" {
		t.Errorf("Examples = %v", r.Examples)
	}
	if r.Collection != "TCGA-OV" || r.Category != "Clinical" {
		t.Errorf("dataset context = %q/%q", r.Collection, r.Category)
	}
}

func TestIngestPopulatesDatasetsTable(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "clinical_patient_ov")

	var collection string
	var dataRows int
	err := store.db.QueryRow(
		`SELECT collection, data_rows FROM datasets WHERE id = ?`, "clinical_patient_ov",
	).Scan(&collection, &dataRows)
	if err != nil {
		t.Fatal(err)
	}
	if collection != "TCGA-OV" {
		t.Errorf("collection = %q", collection)
	}
	if dataRows != 587 {
		t.Errorf("data_rows = %d, want 587", dataRows)
	}
}

func TestIngestWritesExportYAML(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "dataset-export")

	path := filepath.Join(tmpDir, "catalog", indexDir, "export.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("export.yaml not written after ingestion")
	}
}

func TestIngestRecordsRun(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "dataset-run")

	var count int
	if err := store.db.QueryRow(`SELECT count(*) FROM runs WHERE stage = 'ingest'`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("runs rows = %d, want 1", count)
	}
}

// --- incremental update tests ---

func TestIngestSkipsUnchanged(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "dataset-skip")

	// Second ingestion without modifying the file.
	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", summary.Skipped)
	}
	if summary.Indexed != 0 {
		t.Errorf("Indexed = %d, want 0", summary.Indexed)
	}
	if !strings.Contains(buf.String(), "skipped") {
		t.Errorf("output should contain 'skipped': %s", buf.String())
	}
}

func TestIngestUpdatesChanged(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "dataset-update")

	// Rewrite the profile with new columns and a newer mod time.
	newColumns := []types.ColumnProfile{{
		Name: "vital_status", Kind: types.KindCategorical,
		NonEmpty: 587, Distinct: 2,
		Examples: []string{"Alive", "Dead"},
	}}
	writeProfile(t, tmpDir, "dataset-update", newColumns)

	path := filepath.Join(tmpDir, "catalog", profilesDir, "dataset-update-columns.yaml")
	future := time.Now().Add(time.Second)
	os.Chtimes(path, future, future)

	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 {
		t.Errorf("Updated = %d, want 1", summary.Updated)
	}

	// Old columns removed, new column present.
	results, err := store.Retrieve(context.Background(), QueryOptions{Dataset: "dataset-update"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (old columns should be removed)", len(results))
	}
	if results[0].Name != "vital_status" {
		t.Errorf("column = %q, want vital_status", results[0].Name)
	}
}

func TestIngestSummaryOutput(t *testing.T) {
	store, tmpDir := testSetup(t)

	writeProfile(t, tmpDir, "dataset1", sampleColumns())
	writeDatasetMeta(t, tmpDir, sampleDataset("dataset1"))

	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	output := buf.String()

	if !strings.Contains(output, "indexed: 1") {
		t.Errorf("output should contain 'indexed: 1': %s", output)
	}
	if !strings.Contains(output, "skipped: 0") {
		t.Errorf("output should contain 'skipped: 0': %s", output)
	}
}

// --- full-text search tests ---

func TestRetrieveFullTextSearch(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "fts-dataset")

	tests := []struct {
		name    string
		query   string
		wantMin int
	}{
		{"column name term", "barcode", 1},
		{"example value", "IIIC", 1},
		{"no match", "xyzzy", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Retrieve(context.Background(), QueryOptions{Query: tt.query})
			if err != nil {
				t.Fatal(err)
			}
			if len(results) < tt.wantMin {
				t.Errorf("got %d results, want >= %d", len(results), tt.wantMin)
			}
		})
	}
}

func TestRetrieveRespectsMaxResults(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "limit-dataset")

	results, err := store.Retrieve(context.Background(), QueryOptions{
		Dataset:    "limit-dataset",
		MaxResults: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) > 2 {
		t.Errorf("got %d results, want <= 2", len(results))
	}
}

// --- structured query tests ---

func TestRetrieveByKind(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "kind-dataset")

	tests := []struct {
		kind      types.ColumnKind
		wantCount int
	}{
		{types.KindNumeric, 1},
		{types.KindCategorical, 2},
		{types.KindEmpty, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			results, err := store.Retrieve(context.Background(), QueryOptions{Kind: tt.kind})
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != tt.wantCount {
				t.Errorf("got %d results, want %d", len(results), tt.wantCount)
			}
			for _, r := range results {
				if r.Kind != tt.kind {
					t.Errorf("result kind = %q, want %q", r.Kind, tt.kind)
				}
			}
		})
	}
}

func TestRetrieveByDataset(t *testing.T) {
	store, tmpDir := testSetup(t)

	for _, id := range []string{"dataset-a", "dataset-b"} {
		writeProfile(t, tmpDir, id, sampleColumns())
		writeDatasetMeta(t, tmpDir, sampleDataset(id))
	}
	var buf strings.Builder
	store.Ingest(context.Background(), &buf)

	results, err := store.Retrieve(context.Background(), QueryOptions{Dataset: "dataset-a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Errorf("got %d results, want 4", len(results))
	}
	for _, r := range results {
		if r.DatasetID != "dataset-a" {
			t.Errorf("result dataset_id = %q, want %q", r.DatasetID, "dataset-a")
		}
	}
}

func TestRetrieveByCategory(t *testing.T) {
	store, tmpDir := testSetup(t)

	writeProfile(t, tmpDir, "clinical-ds", sampleColumns())
	writeDatasetMeta(t, tmpDir, sampleDataset("clinical-ds"))

	bio := sampleDataset("biospecimen-ds")
	bio.Category = "Biospecimen"
	writeProfile(t, tmpDir, "biospecimen-ds", sampleColumns())
	writeDatasetMeta(t, tmpDir, bio)

	var buf strings.Builder
	store.Ingest(context.Background(), &buf)

	results, err := store.Retrieve(context.Background(), QueryOptions{Category: "Biospecimen"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Errorf("got %d results, want 4", len(results))
	}
	for _, r := range results {
		if r.Category != "Biospecimen" {
			t.Errorf("result category = %q", r.Category)
		}
	}
}

func TestRetrieveCombinedQuery(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "combo-dataset")

	// FTS + kind filter.
	results, err := store.Retrieve(context.Background(), QueryOptions{
		Query: "age",
		Kind:  types.KindNumeric,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Name != "age_at_initial_pathologic_diagnosis" {
		t.Errorf("column = %q", results[0].Name)
	}
}

func TestRetrieveEmptyQuery(t *testing.T) {
	opts := QueryOptions{}
	if !opts.IsEmpty() {
		t.Error("empty QueryOptions should report IsEmpty() = true")
	}
	opts.Kind = types.KindNumeric
	if opts.IsEmpty() {
		t.Error("QueryOptions with kind filter should report IsEmpty() = false")
	}
}

// --- dataset listing tests ---

func TestDatasets(t *testing.T) {
	store, tmpDir := testSetup(t)

	for _, id := range []string{"zzz-dataset", "aaa-dataset"} {
		writeProfile(t, tmpDir, id, sampleColumns())
		writeDatasetMeta(t, tmpDir, sampleDataset(id))
	}
	var buf strings.Builder
	store.Ingest(context.Background(), &buf)

	summaries, err := store.Datasets(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d datasets, want 2", len(summaries))
	}
	if summaries[0].ID != "aaa-dataset" {
		t.Errorf("first dataset = %q, want sorted order", summaries[0].ID)
	}
	if summaries[0].ColumnCount != 4 {
		t.Errorf("ColumnCount = %d, want 4", summaries[0].ColumnCount)
	}
	if summaries[0].Rows != 587 {
		t.Errorf("Rows = %d, want 587", summaries[0].Rows)
	}
}

func TestRetrieveMalformedExamples(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "bad-examples")

	_, err := store.db.Exec(
		`UPDATE columns SET examples = ? WHERE name = ?`,
		"{not json", "bcr_patient_barcode")
	if err != nil {
		t.Fatal(err)
	}

	_, err = store.Retrieve(context.Background(), QueryOptions{Dataset: "bad-examples"})
	if err == nil || !strings.Contains(err.Error(), "decoding examples") {
		t.Fatalf("err = %v, want decoding examples", err)
	}
}

// --- export tests ---

func TestExportYAML(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "export-yaml-dataset")

	if err := store.ExportYAML(context.Background(), QueryOptions{}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(tmpDir, "catalog", indexDir, "export.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var entries []ExportEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("got %d entries, want 4", len(entries))
	}
	for _, e := range entries {
		if e.Dataset == nil {
			t.Errorf("entry %s missing dataset metadata", e.Name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "export-json-dataset")

	if err := store.ExportJSON(context.Background(), QueryOptions{}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(tmpDir, "catalog", indexDir, "export.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var entries []ExportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("got %d entries, want 4", len(entries))
	}
}

func TestExportFilteredByKind(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "filtered-export")

	if err := store.ExportYAML(context.Background(), QueryOptions{Kind: types.KindNumeric}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(tmpDir, "catalog", indexDir, "export.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var entries []ExportEntry
	yaml.Unmarshal(data, &entries)
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}
	for _, e := range entries {
		if e.Kind != string(types.KindNumeric) {
			t.Errorf("entry kind = %q, want numeric", e.Kind)
		}
	}
}

func TestExportRespectsLimit(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "limited-export")

	if err := store.ExportYAML(context.Background(), QueryOptions{MaxResults: 2}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(tmpDir, "catalog", indexDir, "export.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var entries []ExportEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

// --- IngestSummary ---

func TestIngestSummaryTotal(t *testing.T) {
	s := IngestSummary{Indexed: 2, Updated: 1, Skipped: 3, Failed: 1}
	if s.Total() != 7 {
		t.Errorf("Total() = %d, want 7", s.Total())
	}
}
