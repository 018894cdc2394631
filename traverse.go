package gridbook

import (
	"iter"

	"github.com/javajack/gridbook/engine"
)

// Mode selects how row traversal treats internally-missing cells.
type Mode int

const (
	// Logical walks columns 0..LastCol, reconstructing missing positions
	// as nil. It never extends past the row's last physically present cell.
	Logical Mode = iota
	// Physical yields only the physically present cells, no gap-filling.
	Physical
)

// CellFunc extracts a value from a cell during traversal. Decode is the
// default; callers needing style, comment or hyperlink detail alongside the
// value can inject their own (see Detail).
type CellFunc func(engine.Cell) (any, error)

// RowValues returns a lazy sequence of per-cell results for one row. Each
// cell is extracted only when the caller advances the sequence; the
// sequence is single-pass and a fresh call is required to re-read.
func RowValues(row engine.Row, mode Mode, fn CellFunc) iter.Seq2[any, error] {
	if fn == nil {
		fn = Decode
	}
	if mode == Physical {
		return func(yield func(any, error) bool) {
			for cell := range row.Cells() {
				if !yield(fn(cell)) {
					return
				}
			}
		}
	}
	return func(yield func(any, error) bool) {
		last := row.LastCol()
		for col := 0; col <= last; col++ {
			cell, ok := row.Cell(col)
			if !ok {
				if !yield(nil, nil) {
					return
				}
				continue
			}
			if !yield(fn(cell)) {
				return
			}
		}
	}
}

// SheetRows returns a lazy sequence with one RowValues entry per physically
// present row, in increasing row order. Absent rows are not gap-filled at
// the sheet level.
func SheetRows(sheet engine.Sheet, mode Mode, fn CellFunc) iter.Seq[iter.Seq2[any, error]] {
	return func(yield func(iter.Seq2[any, error]) bool) {
		for row := range sheet.Rows() {
			if !yield(RowValues(row, mode, fn)) {
				return
			}
		}
	}
}

// WorkbookRows returns the lazy sheet sequences of every sheet, keyed by
// sheet name, in workbook order.
func WorkbookRows(wb engine.Workbook, mode Mode, fn CellFunc) iter.Seq2[string, iter.Seq[iter.Seq2[any, error]]] {
	return func(yield func(string, iter.Seq[iter.Seq2[any, error]]) bool) {
		for sheet := range wb.Sheets() {
			if !yield(sheet.Name(), SheetRows(sheet, mode, fn)) {
				return
			}
		}
	}
}

// CollectRow realizes RowValues into a slice.
func CollectRow(row engine.Row, mode Mode, fn CellFunc) ([]any, error) {
	var out []any
	for v, err := range RowValues(row, mode, fn) {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// CollectSheet realizes SheetRows into a jagged grid.
func CollectSheet(sheet engine.Sheet, mode Mode, fn CellFunc) ([][]any, error) {
	var out [][]any
	for rowSeq := range SheetRows(sheet, mode, fn) {
		var rowVals []any
		for v, err := range rowSeq {
			if err != nil {
				return nil, err
			}
			rowVals = append(rowVals, v)
		}
		out = append(out, rowVals)
	}
	return out, nil
}

// CollectWorkbook realizes every sheet into a name-keyed map of jagged
// grids.
func CollectWorkbook(wb engine.Workbook, mode Mode, fn CellFunc) (map[string][][]any, error) {
	out := make(map[string][][]any)
	for sheet := range wb.Sheets() {
		grid, err := CollectSheet(sheet, mode, fn)
		if err != nil {
			return nil, err
		}
		out[sheet.Name()] = grid
	}
	return out, nil
}

// CellDetail is the result shape produced by Detail.
type CellDetail struct {
	Value   any
	URL     string
	Comment string
}

// Detail is a CellFunc that decodes the value and carries the cell's
// hyperlink target and comment text alongside it.
func Detail(cell engine.Cell) (any, error) {
	v, err := Decode(cell)
	if err != nil {
		return nil, err
	}
	d := CellDetail{Value: v}
	if link, ok := cell.Hyperlink(); ok {
		d.URL = link.Target
	}
	if c, ok := cell.Comment(); ok {
		d.Comment = c.Text
	}
	return d, nil
}
