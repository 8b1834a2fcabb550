// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists column profiles and builds a retrieval index.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/omics-engine/pkg/types"
)

const (
	profilesDir = "profiles"
	indexDir    = "index"
	metadataDir = "metadata"
	dbFile      = "omics.db"
)

// Store manages the catalog SQLite database.
type Store struct {
	db         *sql.DB
	catalogDir string
	dataDir    string
	maxResults int
}

// NewStore opens or creates the catalog SQLite database at
// catalogDir/index/omics.db, creating the schema if it does not exist.
func NewStore(cfg types.CatalogConfig, dataDir string) (*Store, error) {
	dbDir := filepath.Join(cfg.CatalogDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		catalogDir: cfg.CatalogDir,
		dataDir:    dataDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			collection TEXT,
			category TEXT,
			source_url TEXT,
			csv_path TEXT,
			data_rows INTEGER,
			data_cols INTEGER,
			conversion_status TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS columns (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			dataset_id TEXT NOT NULL REFERENCES datasets(id),
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			non_empty INTEGER,
			missing INTEGER,
			distinct_count INTEGER,
			min_value REAL,
			max_value REAL,
			mean_value REAL,
			examples TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_columns_dataset_id ON columns(dataset_id)`,
		`CREATE INDEX IF NOT EXISTS idx_columns_kind ON columns(kind)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			stage TEXT NOT NULL,
			summary TEXT,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			dataset_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='columns_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE columns_fts USING fts5(name, examples, content=columns, content_rowid=rowid)`,
			`CREATE TRIGGER columns_ai AFTER INSERT ON columns BEGIN
				INSERT INTO columns_fts(rowid, name, examples) VALUES (new.rowid, new.name, new.examples);
			END`,
			`CREATE TRIGGER columns_ad AFTER DELETE ON columns BEGIN
				INSERT INTO columns_fts(columns_fts, rowid, name, examples) VALUES('delete', old.rowid, old.name, old.examples);
			END`,
			`CREATE TRIGGER columns_au AFTER UPDATE ON columns BEGIN
				INSERT INTO columns_fts(columns_fts, rowid, name, examples) VALUES('delete', old.rowid, old.name, old.examples);
				INSERT INTO columns_fts(rowid, name, examples) VALUES (new.rowid, new.name, new.examples);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a catalog indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of profiles processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads profile YAML files from catalogDir/profiles/ and populates
// the database. It detects new, changed, and unchanged files for
// incremental updates. On success it writes export.yaml and records a run.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	profDir := filepath.Join(s.catalogDir, profilesDir)
	metaDir := filepath.Join(s.dataDir, metadataDir)

	entries, err := os.ReadDir(profDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading profiles directory %s: %w", profDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-columns.yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		datasetID := strings.TrimSuffix(entry.Name(), "-columns.yaml")
		filePath := filepath.Join(profDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", datasetID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE dataset_id = ?`, datasetID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", datasetID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", datasetID, err)
			summary.Failed++
			continue
		}

		var result types.ProfileResult
		if err := yaml.Unmarshal(data, &result); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", datasetID, err)
			summary.Failed++
			continue
		}

		ds := loadDatasetMetadata(metaDir, datasetID)

		if err := s.ingestDataset(ctx, datasetID, &result, ds, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", datasetID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d columns)\n", datasetID, len(result.Columns))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d columns)\n", datasetID, len(result.Columns))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
		runSummary := fmt.Sprintf("indexed=%d updated=%d skipped=%d failed=%d",
			summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)
		if err := s.RecordRun(ctx, "ingest", runSummary); err != nil {
			fmt.Fprintf(w, "warning: run record write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestDataset(ctx context.Context, datasetID string, result *types.ProfileResult, ds *types.Dataset, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove old columns if updating.
	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM columns WHERE dataset_id = ?`, datasetID); err != nil {
			return fmt.Errorf("deleting old columns: %w", err)
		}
	}

	if ds != nil {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO datasets (id, collection, category, source_url, csv_path, data_rows, data_cols, conversion_status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				collection=excluded.collection, category=excluded.category,
				source_url=excluded.source_url, csv_path=excluded.csv_path,
				data_rows=excluded.data_rows, data_cols=excluded.data_cols,
				conversion_status=excluded.conversion_status`,
			ds.ID, ds.Collection, ds.Category, ds.SourceURL, ds.CSVPath,
			ds.Rows, ds.Cols, string(ds.ConversionStatus),
		)
		if err != nil {
			return fmt.Errorf("upserting dataset: %w", err)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO datasets (id) VALUES (?)`, datasetID,
		)
		if err != nil {
			return fmt.Errorf("inserting dataset stub: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO columns (dataset_id, name, kind, non_empty, missing, distinct_count, min_value, max_value, mean_value, examples)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, col := range result.Columns {
		examplesJSON, _ := json.Marshal(col.Examples)
		_, err := stmt.ExecContext(ctx,
			datasetID, col.Name, string(col.Kind),
			col.NonEmpty, col.Missing, col.Distinct,
			col.Min, col.Max, col.Mean, string(examplesJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting column %s: %w", col.Name, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (dataset_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(dataset_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		datasetID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// RecordRun stores an audit record for a pipeline stage invocation.
func (s *Store) RecordRun(ctx context.Context, stage, summary string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, stage, summary, recorded_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), stage, summary, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// loadDatasetMetadata reads a Dataset record from metaDir/[datasetID].yaml.
// Returns nil if the file does not exist or cannot be parsed.
func loadDatasetMetadata(metaDir, datasetID string) *types.Dataset {
	path := filepath.Join(metaDir, datasetID+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var ds types.Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil
	}
	return &ds
}
