// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/omics-engine/internal/httputil"
	"github.com/pdiddy/omics-engine/pkg/types"
)

// gdcFilesBase is the GDC files endpoint. Declared as a var so tests can
// substitute an httptest server.
var gdcFilesBase = "https://api.gdc.cancer.gov/files"

// gdcFields lists the response fields the backend requests.
const gdcFields = "file_id,file_name,data_category,data_format,file_size,md5sum,updated_datetime,cases.project.project_id"

// GDCBackend queries the GDC files API.
type GDCBackend struct {
	Client *http.Client
	// Token is an optional access token sent as X-Auth-Token for
	// controlled-access listings.
	Token string
}

// Name returns the backend identifier.
func (b *GDCBackend) Name() string { return "gdc" }

// Files queries the GDC files endpoint and returns matching records.
func (b *GDCBackend) Files(ctx context.Context, query Query, cfg types.ArchiveConfig) ([]types.FileRecord, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}
	if maxResults > 1000 {
		maxResults = 1000
	}

	filters, err := buildGDCFilters(query)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"filters": {filters},
		"fields":  {gdcFields},
		"size":    {fmt.Sprintf("%d", maxResults)},
		"sort":    {"updated_datetime:desc"},
	}

	reqURL := gdcFilesBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/json")
	if b.Token != "" {
		req.Header.Set("X-Auth-Token", b.Token)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("GDC API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GDC API returned HTTP %d", resp.StatusCode)
	}

	var gr gdcResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("parsing GDC response: %w", err)
	}

	total := len(gr.Data.Hits)
	var records []types.FileRecord
	for i, hit := range gr.Data.Hits {
		if !matchesName(hit.FileName, query.NameFilter) {
			continue
		}

		r := types.FileRecord{
			ID:         hit.FileID,
			Name:       hit.FileName,
			Collection: query.Collection,
			Category:   hit.DataCategory,
			Format:     hit.DataFormat,
			SizeBytes:  hit.FileSize,
			MD5:        hit.MD5Sum,
			Source:     "gdc",
		}

		if hit.UpdatedDatetime != "" {
			if t, parseErr := time.Parse(time.RFC3339, hit.UpdatedDatetime); parseErr == nil {
				r.Updated = t
			}
		}

		// Position-based score: the API already sorts newest-first.
		if total > 1 {
			r.RelevanceScore = 1.0 - float64(i)/float64(total-1)*0.9
		} else {
			r.RelevanceScore = 1.0
		}

		records = append(records, r)
	}
	return records, nil
}

// buildGDCFilters composes the GDC JSON filter expression for the query.
func buildGDCFilters(query Query) (string, error) {
	var content []gdcFilter

	content = append(content, gdcFilter{
		Op: "=",
		Content: gdcFilterContent{
			Field: "cases.project.project_id",
			Value: query.Collection,
		},
	})
	if query.Category != "" {
		content = append(content, gdcFilter{
			Op: "=",
			Content: gdcFilterContent{
				Field: "data_category",
				Value: query.Category,
			},
		})
	}
	if query.Format != "" {
		content = append(content, gdcFilter{
			Op: "=",
			Content: gdcFilterContent{
				Field: "data_format",
				Value: query.Format,
			},
		})
	}

	data, err := json.Marshal(gdcFilterGroup{Op: "and", Content: content})
	if err != nil {
		return "", fmt.Errorf("marshaling GDC filters: %w", err)
	}
	return string(data), nil
}

// GDC API JSON structures.
type gdcFilterGroup struct {
	Op      string      `json:"op"`
	Content []gdcFilter `json:"content"`
}

type gdcFilter struct {
	Op      string           `json:"op"`
	Content gdcFilterContent `json:"content"`
}

type gdcFilterContent struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type gdcResponse struct {
	Data gdcData `json:"data"`
}

type gdcData struct {
	Hits       []gdcHit      `json:"hits"`
	Pagination gdcPagination `json:"pagination"`
}

type gdcPagination struct {
	Count int `json:"count"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

type gdcHit struct {
	FileID          string `json:"file_id"`
	FileName        string `json:"file_name"`
	DataCategory    string `json:"data_category"`
	DataFormat      string `json:"data_format"`
	FileSize        int64  `json:"file_size"`
	MD5Sum          string `json:"md5sum"`
	UpdatedDatetime string `json:"updated_datetime"`
}
