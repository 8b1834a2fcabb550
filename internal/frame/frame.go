// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package frame provides a small in-memory tabular model for CSV artifacts.
// A Frame holds a header row and string-valued data rows; the first column
// conventionally carries the sample barcode and acts as the index for
// column-wise concatenation.
package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Frame is a rectangular table: every row has exactly len(Columns) cells.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// New creates a Frame with the given columns and no rows.
func New(columns []string) *Frame {
	return &Frame{Columns: columns}
}

// NumRows returns the number of data rows (header excluded).
func (f *Frame) NumRows() int { return len(f.Rows) }

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.Columns) }

// Shape returns (rows, cols) for the frame.
func (f *Frame) Shape() (int, int) { return f.NumRows(), f.NumCols() }

// Append adds a data row. The row must match the column count.
func (f *Frame) Append(row []string) error {
	if len(row) != len(f.Columns) {
		return fmt.Errorf("row has %d cells, frame has %d columns", len(row), len(f.Columns))
	}
	f.Rows = append(f.Rows, row)
	return nil
}

// ColumnIndex returns the position of the named column, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns the values of the named column in row order.
func (f *Frame) Column(name string) ([]string, error) {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("no column %q", name)
	}
	vals := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		vals[i] = row[idx]
	}
	return vals, nil
}

// DropColumn removes the named column from the frame.
func (f *Frame) DropColumn(name string) error {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		return fmt.Errorf("no column %q", name)
	}
	f.Columns = append(f.Columns[:idx], f.Columns[idx+1:]...)
	for i, row := range f.Rows {
		f.Rows[i] = append(row[:idx], row[idx+1:]...)
	}
	return nil
}

// Read parses CSV data into a Frame. The first record is the header.
// Ragged input fails with the offending row number.
func Read(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV input")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	f := New(header)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		f.Rows = append(f.Rows, record)
	}
	return f, nil
}

// ReadCSV loads a CSV file into a Frame.
func ReadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	f, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Write serializes the frame as CSV: header first, then data rows.
func (f *Frame) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, row := range f.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes the frame to a CSV file.
func (f *Frame) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := f.Write(file); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}

// ConcatRows appends other's rows below f, returning a new frame. With
// JoinUnion the result carries the union of columns, f's columns first,
// with empty cells where a side lacks a column. With JoinIntersect only
// columns present in both frames are kept, in f's order.
func (f *Frame) ConcatRows(other *Frame, intersect bool) *Frame {
	if f.NumCols() == 0 {
		return cloneFrame(other)
	}
	if other.NumCols() == 0 {
		return cloneFrame(f)
	}

	otherIdx := make(map[string]int, len(other.Columns))
	for i, c := range other.Columns {
		otherIdx[c] = i
	}

	var columns []string
	if intersect {
		for _, c := range f.Columns {
			if _, ok := otherIdx[c]; ok {
				columns = append(columns, c)
			}
		}
	} else {
		columns = append(columns, f.Columns...)
		inLeft := make(map[string]bool, len(f.Columns))
		for _, c := range f.Columns {
			inLeft[c] = true
		}
		for _, c := range other.Columns {
			if !inLeft[c] {
				columns = append(columns, c)
			}
		}
	}

	out := New(columns)
	appendMapped := func(src *Frame) {
		srcIdx := make(map[string]int, len(src.Columns))
		for i, c := range src.Columns {
			srcIdx[c] = i
		}
		for _, row := range src.Rows {
			mapped := make([]string, len(columns))
			for i, c := range columns {
				if j, ok := srcIdx[c]; ok {
					mapped[i] = row[j]
				}
			}
			out.Rows = append(out.Rows, mapped)
		}
	}
	appendMapped(f)
	appendMapped(other)
	return out
}

// ConcatColumns joins other's columns to the right of f, matching rows on
// the index (first) column with inner-join semantics: only index values
// present in both frames appear, in f's row order. Duplicate non-index
// column names from other gain a "_2" suffix.
func (f *Frame) ConcatColumns(other *Frame) (*Frame, error) {
	if f.NumCols() == 0 || other.NumCols() == 0 {
		return nil, fmt.Errorf("column concatenation requires non-empty frames")
	}

	rightByIndex := make(map[string][]string, len(other.Rows))
	for _, row := range other.Rows {
		if _, dup := rightByIndex[row[0]]; !dup {
			rightByIndex[row[0]] = row
		}
	}

	inLeft := make(map[string]bool, len(f.Columns))
	for _, c := range f.Columns {
		inLeft[c] = true
	}

	columns := append([]string{}, f.Columns...)
	for _, c := range other.Columns[1:] {
		if inLeft[c] {
			c += "_2"
		}
		columns = append(columns, c)
	}

	out := New(columns)
	for _, row := range f.Rows {
		right, ok := rightByIndex[row[0]]
		if !ok {
			continue
		}
		merged := make([]string, 0, len(columns))
		merged = append(merged, row...)
		merged = append(merged, right[1:]...)
		out.Rows = append(out.Rows, merged)
	}
	return out, nil
}

// Transpose returns the frame flipped over its diagonal. The original
// header becomes the first column and each original index value becomes a
// column header. Omics matrices ship feature-major and are loaded
// transposed to sample-major.
func (f *Frame) Transpose() *Frame {
	if f.NumCols() == 0 {
		return New(nil)
	}

	columns := make([]string, 1+len(f.Rows))
	columns[0] = f.Columns[0]
	for i, row := range f.Rows {
		columns[i+1] = row[0]
	}

	out := New(columns)
	for c := 1; c < len(f.Columns); c++ {
		row := make([]string, 1+len(f.Rows))
		row[0] = f.Columns[c]
		for r, src := range f.Rows {
			row[r+1] = src[c]
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func cloneFrame(f *Frame) *Frame {
	out := New(append([]string{}, f.Columns...))
	for _, row := range f.Rows {
		out.Rows = append(out.Rows, append([]string{}, row...))
	}
	return out
}
