// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/omics-engine/internal/frame"
)

// BiotabConverter parses the BCR Biotab format used by the archive for
// biospecimen and clinical files: tab-delimited text with leading '#'
// comment lines, a column-header row, and one or more annotation rows
// (CDE identifiers and a repeat of the header) before the data.
type BiotabConverter struct{}

// Convert reads the biotab file at rawPath and returns the parsed table
// with annotation rows dropped and not-available markers normalized to
// empty cells.
func (b *BiotabConverter) Convert(rawPath string) (*frame.Frame, error) {
	file, err := os.Open(rawPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", rawPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	// Clinical files carry long free-text cells; allow lines up to 1 MiB.
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var (
		f       *frame.Frame
		lineNum int
	)

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cells := strings.Split(line, "\t")

		if f == nil {
			header := make([]string, len(cells))
			for i, c := range cells {
				header[i] = strings.TrimSpace(c)
			}
			f = frame.New(header)
			continue
		}

		if isAnnotationRow(cells, f.Columns) {
			continue
		}

		if len(cells) != f.NumCols() {
			return nil, fmt.Errorf("%s: row %d has %d cells, header has %d",
				rawPath, lineNum, len(cells), f.NumCols())
		}

		row := make([]string, len(cells))
		for i, c := range cells {
			row[i] = normalizeCell(c)
		}
		f.Rows = append(f.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawPath, err)
	}

	if f == nil {
		return nil, fmt.Errorf("%s: no header row found", rawPath)
	}
	return f, nil
}

// isAnnotationRow reports whether a row is one of the BCR annotation rows
// that follow the header: a CDE identifier row or a repeated header row.
func isAnnotationRow(cells, header []string) bool {
	if len(cells) == 0 {
		return false
	}
	first := strings.TrimSpace(cells[0])
	if strings.HasPrefix(first, "CDE_ID:") {
		return true
	}
	return len(header) > 0 && first == header[0]
}
