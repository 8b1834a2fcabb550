// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/omics-engine/internal/frame"
)

// delimiterCandidates lists the separators the sniffer considers.
var delimiterCandidates = []rune{'\t', ',', ';', '|'}

// sniffLines is how many leading non-comment lines the sniffer inspects.
const sniffLines = 20

// DelimitedConverter parses generic delimited text by sniffing the
// delimiter from the leading lines and then decoding the whole file with
// that separator. '#' lines are treated as comments.
type DelimitedConverter struct{}

// Convert reads the file at rawPath and returns the parsed table.
func (d *DelimitedConverter) Convert(rawPath string) (*frame.Frame, error) {
	delim, err := sniffDelimiter(rawPath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(rawPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", rawPath, err)
	}
	defer file.Close()

	cr := csv.NewReader(file)
	cr.Comma = delim
	cr.Comment = '#'
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawPath, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no header row found", rawPath)
	}

	header := make([]string, len(records[0]))
	for i, c := range records[0] {
		header[i] = strings.TrimSpace(c)
	}

	f := frame.New(header)
	for _, record := range records[1:] {
		row := make([]string, len(record))
		for i, c := range record {
			row[i] = normalizeCell(c)
		}
		f.Rows = append(f.Rows, row)
	}
	return f, nil
}

// sniffDelimiter picks the candidate that splits the leading lines into
// the most columns with a consistent count. A candidate only qualifies
// when every inspected line yields the same count and that count is
// greater than one.
func sniffDelimiter(rawPath string) (rune, error) {
	file, err := os.Open(rawPath)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", rawPath, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() && len(lines) < sniffLines {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("reading %s: %w", rawPath, err)
	}
	if len(lines) == 0 {
		return 0, fmt.Errorf("%s: no content to sniff", rawPath)
	}

	best, bestCols := rune(0), 1
	for _, cand := range delimiterCandidates {
		cols := strings.Count(lines[0], string(cand)) + 1
		if cols <= bestCols {
			continue
		}
		consistent := true
		for _, line := range lines {
			if strings.Count(line, string(cand))+1 != cols {
				consistent = false
				break
			}
		}
		if consistent {
			best, bestCols = cand, cols
		}
	}
	if best == 0 {
		return 0, fmt.Errorf("%s: could not determine delimiter", rawPath)
	}
	return best, nil
}
