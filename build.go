package gridbook

import (
	"bytes"
	"fmt"
	"io"
	"iter"

	"github.com/javajack/gridbook/engine"
	"github.com/javajack/gridbook/engine/biff"
	"github.com/javajack/gridbook/engine/xlsx"
)

// Grid is one named sheet of jagged input rows. A nil row is absent (the
// sheet row is never created); a nil cell value is a physically present
// blank cell.
type Grid struct {
	Name string
	Rows [][]any
}

// Workbook wraps one backing engine instance.
type Workbook struct {
	eng     engine.Workbook
	variant engine.Variant
}

// compound-document magic, the container of the legacy binary format.
var compDocMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// New creates an empty workbook on the chosen engine variant.
func New(variant engine.Variant) (*Workbook, error) {
	switch variant {
	case engine.LegacyBinary:
		return &Workbook{eng: biff.New(), variant: variant}, nil
	case engine.ZippedXML:
		return &Workbook{eng: xlsx.New(), variant: variant}, nil
	case engine.ZippedXMLStreaming:
		return &Workbook{eng: xlsx.NewStreaming(), variant: variant}, nil
	default:
		return nil, fmt.Errorf("gridbook: unknown engine variant %d", variant)
	}
}

// Build populates a fresh workbook from named grids: one sheet per grid in
// order, one cell per position present in the jagged input. Rows are never
// padded to a common width. On error the partially built workbook is
// released.
func Build(variant engine.Variant, grids []Grid) (*Workbook, error) {
	wb, err := New(variant)
	if err != nil {
		return nil, err
	}
	if err := wb.fill(grids); err != nil {
		wb.Close()
		return nil, err
	}
	return wb, nil
}

func (wb *Workbook) fill(grids []Grid) error {
	for _, grid := range grids {
		sheet, err := wb.eng.AddSheet(grid.Name)
		if err != nil {
			return fmt.Errorf("add sheet %q: %w", grid.Name, err)
		}
		for r, rowVals := range grid.Rows {
			if rowVals == nil {
				continue
			}
			row, err := sheet.AddRow(r)
			if err != nil {
				return fmt.Errorf("sheet %q row %d: %w", grid.Name, r, err)
			}
			for c, v := range rowVals {
				cell, err := row.AddCell(c)
				if err != nil {
					return fmt.Errorf("sheet %q cell (%d,%d): %w", grid.Name, r, c, err)
				}
				if err := Encode(wb.eng, cell, v); err != nil {
					return fmt.Errorf("sheet %q cell (%d,%d): %w", grid.Name, r, c, err)
				}
			}
		}
	}
	return nil
}

// Open reconstructs a workbook from its byte-stream representation. The
// container magic selects the engine; unrecognizable input fails with
// engine.ErrFormatRecognition.
func Open(r io.Reader) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gridbook: read input: %w", err)
	}
	switch {
	case len(data) >= 2 && data[0] == 'P' && data[1] == 'K':
		eng, err := xlsx.Open(data)
		if err != nil {
			return nil, err
		}
		return &Workbook{eng: eng, variant: engine.ZippedXML}, nil
	case len(data) >= len(compDocMagic) && bytes.Equal(data[:len(compDocMagic)], compDocMagic):
		eng, err := biff.Open(data)
		if err != nil {
			return nil, err
		}
		return &Workbook{eng: eng, variant: engine.LegacyBinary}, nil
	default:
		return nil, engine.ErrFormatRecognition
	}
}

// Engine exposes the backing engine instance.
func (wb *Workbook) Engine() engine.Workbook { return wb.eng }

// Variant reports which engine variant backs this workbook.
func (wb *Workbook) Variant() engine.Variant { return wb.variant }

// Save finalizes the workbook and writes its complete byte-stream
// representation. Streaming engines flush and release their auxiliary
// resources on every exit path.
func (wb *Workbook) Save(w io.Writer) error { return wb.eng.Save(w) }

// Close releases engine resources. Idempotent.
func (wb *Workbook) Close() error { return wb.eng.Close() }

// Rows returns the lazy per-sheet traversal of the whole workbook.
func (wb *Workbook) Rows(mode Mode, fn CellFunc) iter.Seq2[string, iter.Seq[iter.Seq2[any, error]]] {
	return WorkbookRows(wb.eng, mode, fn)
}

// Data eagerly decodes the whole workbook into name-keyed jagged grids.
func (wb *Workbook) Data(mode Mode, fn CellFunc) (map[string][][]any, error) {
	return CollectWorkbook(wb.eng, mode, fn)
}
