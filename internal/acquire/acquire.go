// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads raw dataset files and creates metadata records.
package acquire

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/omics-engine/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
)

// BatchResult holds the outcome of a batch acquisition run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Datasets   []*types.Dataset
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any downloads failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// AcquireRecord downloads a single archive file record and writes its
// metadata. If the raw file already exists on disk, it skips the download.
// The skipped return value indicates whether the download was skipped.
func AcquireRecord(client *http.Client, rec types.FileRecord, cfg types.AcquisitionConfig, w io.Writer) (ds *types.Dataset, skipped bool, err error) {
	slug := NameSlug(rec.Name)
	if rec.Name == "" {
		slug = rec.ID
	}
	if slug == "" {
		return nil, false, fmt.Errorf("file record has neither name nor id")
	}

	ext := filepath.Ext(rec.Name)
	if ext == "" {
		ext = ".txt"
	}
	rawPath := filepath.Join(cfg.DataDir, rawDir, slug+ext)
	metaPath := filepath.Join(cfg.DataDir, metadataDir, slug+".yaml")

	// Skip if the raw file already exists.
	if _, statErr := os.Stat(rawPath); statErr == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", slug)
		d, readErr := readMetadata(metaPath)
		if readErr != nil {
			d = &types.Dataset{ID: slug, RawPath: rawPath}
		}
		return d, true, nil
	}

	downloadURL := rec.DownloadURL
	if downloadURL == "" {
		if rec.ID == "" {
			return nil, false, fmt.Errorf("cannot resolve download URL for %q", rec.Name)
		}
		downloadURL = DataURL(TypeFileID, rec.ID)
	}

	for _, dir := range []string{
		filepath.Join(cfg.DataDir, rawDir),
		filepath.Join(cfg.DataDir, metadataDir),
	} {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return nil, false, fmt.Errorf("creating directory %s: %w", dir, mkErr)
		}
	}

	fmt.Fprintf(w, "downloading: %s (%s)\n", slug, rec.Source)

	written, err := downloadFile(client, downloadURL, rawPath, rec.MD5, cfg)
	if err != nil {
		return nil, false, fmt.Errorf("downloading %s: %w", slug, err)
	}

	d := &types.Dataset{
		ID:               slug,
		Collection:       rec.Collection,
		Category:         rec.Category,
		SourceURL:        downloadURL,
		RawPath:          rawPath,
		SizeBytes:        rec.SizeBytes,
		MD5:              rec.MD5,
		AcquiredAt:       time.Now().UTC(),
		Source:           rec.Source,
		ConversionStatus: types.ConversionNone,
	}
	if d.SizeBytes == 0 {
		d.SizeBytes = written
	}

	if err := writeMetadata(d, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", slug, err)
	}

	return d, false, nil
}

// AcquireBatch processes multiple file records, printing per-item status
// and returning a summary. It continues after individual failures and
// applies a delay between consecutive downloads.
func AcquireBatch(client *http.Client, records []types.FileRecord, cfg types.AcquisitionConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, rec := range records {
		if i > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}
		ds, wasSkipped, err := AcquireRecord(client, rec, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", rec.Name, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Datasets = append(result.Datasets, ds)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// downloadFile fetches url to destPath using a temporary file, verifying
// the MD5 checksum when the archive reported one. It sets User-Agent and
// an optional bearer token for controlled-access files.
func downloadFile(client *http.Client, url, destPath, wantMD5 string, cfg types.AcquisitionConfig) (int64, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/plain, */*")
	if cfg.Token != "" {
		req.Header.Set("X-Auth-Token", cfg.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	hash := md5.New()
	written, copyErr := io.Copy(io.MultiWriter(tmpFile, hash), resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if wantMD5 != "" {
		got := hex.EncodeToString(hash.Sum(nil))
		if got != wantMD5 {
			os.Remove(tmpPath)
			return 0, fmt.Errorf("checksum mismatch: got %s, want %s", got, wantMD5)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return written, nil
}

// readMetadata loads a dataset record from its YAML file.
func readMetadata(path string) (*types.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d types.Dataset
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing metadata %s: %w", path, err)
	}
	return &d, nil
}

// writeMetadata saves a dataset record as YAML.
func writeMetadata(d *types.Dataset, path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
