// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/omics-engine/pkg/types"
)

// QueryOptions holds parameters for catalog queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string, matched against column
	// names and example values.
	Query string

	// Collection filters by archive collection (e.g. "TCGA-OV").
	Collection string

	// Category filters by data category (e.g. "Clinical").
	Category string

	// Dataset filters by dataset ID.
	Dataset string

	// Kind filters by inferred column kind.
	Kind types.ColumnKind

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Collection == "" && q.Category == "" &&
		q.Dataset == "" && q.Kind == ""
}

// QueryResult is a ColumnProfile with its dataset context.
type QueryResult struct {
	types.ColumnProfile
	DatasetID  string `json:"dataset_id" yaml:"dataset_id"`
	Collection string `json:"collection" yaml:"collection"`
	Category   string `json:"category" yaml:"category"`
}

// Retrieve queries the catalog with optional full-text search and
// structured filters. Results are ranked by relevance for full-text
// queries or sorted by dataset and column name otherwise.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT c.dataset_id, c.name, c.kind, c.non_empty, c.missing,
				c.distinct_count, c.min_value, c.max_value, c.mean_value, c.examples,
				d.collection, d.category, columns_fts.rank
			FROM columns_fts
			JOIN columns c ON c.rowid = columns_fts.rowid
			LEFT JOIN datasets d ON c.dataset_id = d.id
			WHERE columns_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT c.dataset_id, c.name, c.kind, c.non_empty, c.missing,
				c.distinct_count, c.min_value, c.max_value, c.mean_value, c.examples,
				d.collection, d.category, 0 AS rank
			FROM columns c
			LEFT JOIN datasets d ON c.dataset_id = d.id
			WHERE 1=1`)
	}

	if opts.Collection != "" {
		qb.WriteString(` AND d.collection = ?`)
		args = append(args, opts.Collection)
	}

	if opts.Category != "" {
		qb.WriteString(` AND d.category = ?`)
		args = append(args, opts.Category)
	}

	if opts.Dataset != "" {
		qb.WriteString(` AND c.dataset_id = ?`)
		args = append(args, opts.Dataset)
	}

	if opts.Kind != "" {
		qb.WriteString(` AND c.kind = ?`)
		args = append(args, string(opts.Kind))
	}

	if useFTS {
		qb.WriteString(` ORDER BY columns_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY c.dataset_id, c.name`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr           QueryResult
			kind         string
			examplesJSON sql.NullString
			collection   sql.NullString
			category     sql.NullString
			rank         float64
		)

		if err := rows.Scan(
			&qr.DatasetID, &qr.Name, &kind, &qr.NonEmpty, &qr.Missing,
			&qr.Distinct, &qr.Min, &qr.Max, &qr.Mean, &examplesJSON,
			&collection, &category, &rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		qr.Kind = types.ColumnKind(kind)

		if examplesJSON.Valid {
			if err := json.Unmarshal([]byte(examplesJSON.String), &qr.Examples); err != nil {
				return nil, fmt.Errorf("decoding examples for column %s.%s: %w", qr.DatasetID, qr.Name, err)
			}
		}
		if collection.Valid {
			qr.Collection = collection.String
		}
		if category.Valid {
			qr.Category = category.String
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}

// DatasetSummary holds the dataset-level fields shown by catalog listings.
type DatasetSummary struct {
	ID               string `json:"id" yaml:"id"`
	Collection       string `json:"collection" yaml:"collection"`
	Category         string `json:"category" yaml:"category"`
	Rows             int    `json:"rows" yaml:"rows"`
	Cols             int    `json:"cols" yaml:"cols"`
	ConversionStatus string `json:"conversion_status" yaml:"conversion_status"`
	ColumnCount      int    `json:"column_count" yaml:"column_count"`
}

// Datasets lists the datasets known to the catalog with their indexed
// column counts, sorted by ID.
func (s *Store) Datasets(ctx context.Context) ([]DatasetSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.collection, d.category, d.data_rows, d.data_cols,
			d.conversion_status, count(c.rowid)
		FROM datasets d
		LEFT JOIN columns c ON c.dataset_id = d.id
		GROUP BY d.id
		ORDER BY d.id`)
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	defer rows.Close()

	var summaries []DatasetSummary
	for rows.Next() {
		var (
			ds         DatasetSummary
			collection sql.NullString
			category   sql.NullString
			dataRows   sql.NullInt64
			dataCols   sql.NullInt64
			status     sql.NullString
		)
		if err := rows.Scan(&ds.ID, &collection, &category, &dataRows, &dataCols, &status, &ds.ColumnCount); err != nil {
			return nil, fmt.Errorf("scanning dataset row: %w", err)
		}
		ds.Collection = collection.String
		ds.Category = category.String
		ds.Rows = int(dataRows.Int64)
		ds.Cols = int(dataCols.Int64)
		ds.ConversionStatus = status.String
		summaries = append(summaries, ds)
	}

	return summaries, rows.Err()
}
