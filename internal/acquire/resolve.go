// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/omics-engine/pkg/types"
)

// IdentifierType classifies an input identifier.
type IdentifierType int

const (
	TypeUnknown IdentifierType = iota
	TypeFileID
	TypeURL
)

func (t IdentifierType) String() string {
	switch t {
	case TypeFileID:
		return "file-id"
	case TypeURL:
		return "url"
	default:
		return "unknown"
	}
}

// gdcDataBase is the archive's data download endpoint. Declared as a var
// so tests can substitute an httptest server.
var gdcDataBase = "https://api.gdc.cancer.gov/data/"

// fileIDPattern matches archive file UUIDs:
// "a1b2c3d4-0000-1111-2222-333344445555".
var fileIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// Classify determines the identifier type and returns the normalized form.
// File UUIDs are lowercased.
func Classify(identifier string) (IdentifierType, string) {
	identifier = strings.TrimSpace(identifier)

	if fileIDPattern.MatchString(identifier) {
		return TypeFileID, strings.ToLower(identifier)
	}

	if u, err := url.Parse(identifier); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return TypeURL, identifier
	}

	return TypeUnknown, identifier
}

// Slug returns a filesystem-safe filename stem for the identifier.
func Slug(idType IdentifierType, normalized string) string {
	switch idType {
	case TypeFileID:
		return normalized
	case TypeURL:
		u, err := url.Parse(normalized)
		if err != nil {
			return urlHashSlug(normalized)
		}
		base := strings.TrimSuffix(filepath.Base(u.Path), filepath.Ext(u.Path))
		if base == "" || base == "." || base == "/" {
			return urlHashSlug(normalized)
		}
		return base
	default:
		return "unknown"
	}
}

// NameSlug returns a filesystem-safe filename stem for an archive file
// name, stripping the extension and replacing path separators.
func NameSlug(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.NewReplacer("/", "-", "\\", "-", ":", "-").Replace(base)
	if base == "" || base == "." {
		return urlHashSlug(name)
	}
	return base
}

// DataURL returns the download URL for the identifier. For file IDs this
// is the archive data endpoint; direct URLs pass through.
func DataURL(idType IdentifierType, normalized string) string {
	switch idType {
	case TypeFileID:
		return gdcDataBase + normalized
	case TypeURL:
		return normalized
	default:
		return ""
	}
}

// RecordForIdentifier resolves a bare identifier (archive file UUID or
// direct URL) into a file record suitable for acquisition.
func RecordForIdentifier(identifier string) (types.FileRecord, error) {
	idType, normalized := Classify(identifier)
	if idType == TypeUnknown {
		return types.FileRecord{}, fmt.Errorf("unrecognized identifier format: %q", identifier)
	}

	rec := types.FileRecord{Source: idType.String()}
	switch idType {
	case TypeFileID:
		rec.ID = normalized
	case TypeURL:
		rec.DownloadURL = DataURL(TypeURL, normalized)
		rec.Name = Slug(TypeURL, normalized) + filepath.Ext(normalized)
	}
	return rec, nil
}

func urlHashSlug(rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return fmt.Sprintf("file-%x", h[:8])
}
