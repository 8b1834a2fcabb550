// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the state of raw-to-CSV conversion for a dataset.
type ConversionStatus string

const (
	ConversionNone   ConversionStatus = "none"
	ConversionDone   ConversionStatus = "converted"
	ConversionFailed ConversionStatus = "failed"
)

// Dataset holds metadata and file paths for an acquired dataset file.
type Dataset struct {
	// ID is a slug derived from the archive file name (e.g.
	// "nationwidechildrens.org_biospecimen_sample_ov").
	ID string `json:"id" yaml:"id"`

	// Collection is the archive collection the file belongs to (e.g. "TCGA-OV").
	Collection string `json:"collection" yaml:"collection"`

	// Category is the archive data category (e.g. "Biospecimen", "Clinical").
	Category string `json:"category" yaml:"category"`

	// SourceURL is the URL from which the file was downloaded.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// RawPath is the local filesystem path to the raw delimited text file.
	RawPath string `json:"raw_path" yaml:"raw_path"`

	// CSVPath is the local filesystem path to the converted CSV, once converted.
	CSVPath string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"`

	// SizeBytes is the raw file size reported by the archive, or the
	// downloaded size when the archive did not report one.
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes"`

	// MD5 is the hex checksum of the raw file.
	MD5 string `json:"md5,omitempty" yaml:"md5,omitempty"`

	// Rows and Cols record the shape of the converted CSV (data rows by
	// columns, header excluded from the row count).
	Rows int `json:"rows,omitempty" yaml:"rows,omitempty"`
	Cols int `json:"cols,omitempty" yaml:"cols,omitempty"`

	// AcquiredAt is when the raw file was downloaded.
	AcquiredAt time.Time `json:"acquired_at" yaml:"acquired_at"`

	// Source identifies which backend provided the file record (e.g. "gdc",
	// "manifest", "url").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// ConversionStatus tracks whether the raw file has been converted to CSV.
	ConversionStatus ConversionStatus `json:"conversion_status" yaml:"conversion_status"`
}

// ColumnKind classifies the inferred content of a dataset column.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
	KindEmpty       ColumnKind = "empty"
)

// ColumnProfile summarizes one column of a converted CSV.
type ColumnProfile struct {
	// Name is the column header.
	Name string `json:"name" yaml:"name"`

	// Kind is numeric when every non-empty cell parses as a float,
	// empty when the column has no values, categorical otherwise.
	Kind ColumnKind `json:"kind" yaml:"kind"`

	// NonEmpty and Missing count cells with and without a value.
	NonEmpty int `json:"non_empty" yaml:"non_empty"`
	Missing  int `json:"missing" yaml:"missing"`

	// Distinct is the number of distinct non-empty values.
	Distinct int `json:"distinct" yaml:"distinct"`

	// Min, Max, and Mean are populated for numeric columns only.
	Min  float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max  float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Mean float64 `json:"mean,omitempty" yaml:"mean,omitempty"`

	// Examples holds up to a handful of distinct values in first-seen order.
	Examples []string `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// ProfileResult is the on-disk record of a profiling run for one dataset.
type ProfileResult struct {
	DatasetID string          `json:"dataset_id" yaml:"dataset_id"`
	Columns   []ColumnProfile `json:"columns" yaml:"columns"`
}
