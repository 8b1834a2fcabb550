// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FileRecord is a single archive file listing returned by a search backend.
type FileRecord struct {
	// ID is the archive file identifier (a UUID for API-backed archives).
	ID string `json:"id" yaml:"id"`

	// Name is the archive file name (e.g.
	// "nationwidechildrens.org_biospecimen_sample_ov.txt").
	Name string `json:"name" yaml:"name"`

	// Collection is the collection/project the file belongs to.
	Collection string `json:"collection" yaml:"collection"`

	// Category is the archive data category (e.g. "Biospecimen", "Clinical").
	Category string `json:"category" yaml:"category"`

	// Format is the archive-reported data format (e.g. "BCR Biotab", "TSV").
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	// SizeBytes is the file size reported by the archive.
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes"`

	// MD5 is the hex checksum reported by the archive, used to verify downloads.
	MD5 string `json:"md5,omitempty" yaml:"md5,omitempty"`

	// Updated is the archive's last-modified timestamp for the file.
	Updated time.Time `json:"updated,omitempty" yaml:"updated,omitempty"`

	// DownloadURL is a direct download URL when the backend provides one.
	// When empty, acquisition resolves the URL from the file ID.
	DownloadURL string `json:"download_url,omitempty" yaml:"download_url,omitempty"`

	// Source identifies which backend produced the record (e.g. "gdc", "manifest").
	Source string `json:"source" yaml:"source"`

	// RelevanceScore orders records within search output; backends assign
	// position-based scores in [0.1, 1.0].
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}
