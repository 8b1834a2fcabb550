// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package frame

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadAndShape(t *testing.T) {
	csvData := "barcode,age,stage\nTCGA-01,61,IIIC\nTCGA-02,58,IV\n"
	f, err := Read(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	rows, cols := f.Shape()
	if rows != 2 || cols != 3 {
		t.Errorf("Shape() = (%d, %d), want (2, 3)", rows, cols)
	}
	if !reflect.DeepEqual(f.Columns, []string{"barcode", "age", "stage"}) {
		t.Errorf("Columns = %v", f.Columns)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"ragged row", "a,b,c\n1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.input)); err == nil {
				t.Errorf("Read(%q) succeeded, want error", tt.input)
			}
		})
	}
}

func TestCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	f := New([]string{"barcode", "value"})
	if err := f.Append([]string{"TCGA-01", "1.5"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := f.Append([]string{"TCGA-02", "has,comma"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := f.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !reflect.DeepEqual(got.Columns, f.Columns) || !reflect.DeepEqual(got.Rows, f.Rows) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, f)
	}
}

func TestAppendRejectsRaggedRow(t *testing.T) {
	f := New([]string{"a", "b"})
	if err := f.Append([]string{"1"}); err == nil {
		t.Error("Append with wrong cell count succeeded, want error")
	}
}

func TestConcatRows(t *testing.T) {
	left := &Frame{
		Columns: []string{"barcode", "age", "stage"},
		Rows: [][]string{
			{"TCGA-01", "61", "IIIC"},
		},
	}
	right := &Frame{
		Columns: []string{"barcode", "stage", "grade"},
		Rows: [][]string{
			{"TCGA-02", "IV", "G3"},
		},
	}

	t.Run("union fills missing cells", func(t *testing.T) {
		got := left.ConcatRows(right, false)
		wantCols := []string{"barcode", "age", "stage", "grade"}
		if !reflect.DeepEqual(got.Columns, wantCols) {
			t.Fatalf("Columns = %v, want %v", got.Columns, wantCols)
		}
		wantRows := [][]string{
			{"TCGA-01", "61", "IIIC", ""},
			{"TCGA-02", "", "IV", "G3"},
		}
		if !reflect.DeepEqual(got.Rows, wantRows) {
			t.Errorf("Rows = %v, want %v", got.Rows, wantRows)
		}
	})

	t.Run("intersect keeps shared columns", func(t *testing.T) {
		got := left.ConcatRows(right, true)
		wantCols := []string{"barcode", "stage"}
		if !reflect.DeepEqual(got.Columns, wantCols) {
			t.Fatalf("Columns = %v, want %v", got.Columns, wantCols)
		}
		wantRows := [][]string{
			{"TCGA-01", "IIIC"},
			{"TCGA-02", "IV"},
		}
		if !reflect.DeepEqual(got.Rows, wantRows) {
			t.Errorf("Rows = %v, want %v", got.Rows, wantRows)
		}
	})

	t.Run("identical columns is plain append", func(t *testing.T) {
		other := &Frame{
			Columns: []string{"barcode", "age", "stage"},
			Rows:    [][]string{{"TCGA-03", "70", "II"}},
		}
		got := left.ConcatRows(other, false)
		if got.NumRows() != 2 || got.NumCols() != 3 {
			t.Errorf("shape = (%d, %d), want (2, 3)", got.NumRows(), got.NumCols())
		}
	})

	t.Run("empty frame is identity", func(t *testing.T) {
		got := New(nil).ConcatRows(left, false)
		if !reflect.DeepEqual(got.Columns, left.Columns) || !reflect.DeepEqual(got.Rows, left.Rows) {
			t.Errorf("concat with empty left changed the frame: %+v", got)
		}
	})
}

func TestConcatColumns(t *testing.T) {
	left := &Frame{
		Columns: []string{"barcode", "age"},
		Rows: [][]string{
			{"TCGA-01", "61"},
			{"TCGA-02", "58"},
			{"TCGA-03", "70"},
		},
	}
	right := &Frame{
		Columns: []string{"barcode", "cnv_1", "age"},
		Rows: [][]string{
			{"TCGA-02", "0.4", "58"},
			{"TCGA-01", "-1.1", "61"},
		},
	}

	got, err := left.ConcatColumns(right)
	if err != nil {
		t.Fatalf("ConcatColumns: %v", err)
	}

	wantCols := []string{"barcode", "age", "cnv_1", "age_2"}
	if !reflect.DeepEqual(got.Columns, wantCols) {
		t.Fatalf("Columns = %v, want %v", got.Columns, wantCols)
	}

	// Inner join: TCGA-03 has no right-side row and is dropped; left order wins.
	wantRows := [][]string{
		{"TCGA-01", "61", "-1.1", "61"},
		{"TCGA-02", "58", "0.4", "58"},
	}
	if !reflect.DeepEqual(got.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", got.Rows, wantRows)
	}
}

func TestConcatColumnsNoSharedIndex(t *testing.T) {
	left := &Frame{Columns: []string{"barcode", "a"}, Rows: [][]string{{"x", "1"}}}
	right := &Frame{Columns: []string{"barcode", "b"}, Rows: [][]string{{"y", "2"}}}

	got, err := left.ConcatColumns(right)
	if err != nil {
		t.Fatalf("ConcatColumns: %v", err)
	}
	if got.NumRows() != 0 {
		t.Errorf("NumRows = %d, want 0", got.NumRows())
	}
}

func TestTranspose(t *testing.T) {
	f := &Frame{
		Columns: []string{"feature", "TCGA-01", "TCGA-02"},
		Rows: [][]string{
			{"cnv_1", "0.1", "0.2"},
			{"cnv_2", "0.3", "0.4"},
		},
	}

	got := f.Transpose()
	wantCols := []string{"feature", "cnv_1", "cnv_2"}
	if !reflect.DeepEqual(got.Columns, wantCols) {
		t.Fatalf("Columns = %v, want %v", got.Columns, wantCols)
	}
	wantRows := [][]string{
		{"TCGA-01", "0.1", "0.3"},
		{"TCGA-02", "0.2", "0.4"},
	}
	if !reflect.DeepEqual(got.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", got.Rows, wantRows)
	}

	// Transposing twice restores the original.
	back := got.Transpose()
	if !reflect.DeepEqual(back.Columns, f.Columns) || !reflect.DeepEqual(back.Rows, f.Rows) {
		t.Errorf("double transpose mismatch: %+v", back)
	}
}

func TestColumnAndDrop(t *testing.T) {
	f := &Frame{
		Columns: []string{"barcode", "uuid", "age"},
		Rows: [][]string{
			{"TCGA-01", "u1", "61"},
			{"TCGA-02", "u2", "58"},
		},
	}

	vals, err := f.Column("age")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if !reflect.DeepEqual(vals, []string{"61", "58"}) {
		t.Errorf("Column(age) = %v", vals)
	}

	if err := f.DropColumn("uuid"); err != nil {
		t.Fatalf("DropColumn: %v", err)
	}
	if f.NumCols() != 2 {
		t.Errorf("NumCols after drop = %d, want 2", f.NumCols())
	}
	if _, err := f.Column("uuid"); err == nil {
		t.Error("Column(uuid) after drop succeeded, want error")
	}

	if err := f.DropColumn("missing"); err == nil {
		t.Error("DropColumn(missing) succeeded, want error")
	}
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("ReadCSV on missing file: err = %v, want ErrNotExist", err)
	}
}
