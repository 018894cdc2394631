// Package xlsx implements the engine contract over excelize: a
// random-access workbook for the zipped-XML variant and a write-once
// workbook for its streaming variant.
package xlsx

import (
	"fmt"
	"io"
	"iter"
	"maps"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/javajack/gridbook/engine"
)

// Workbook is the random-access zipped-XML engine. It keeps an in-memory
// mirror of cell state for readback and writes through to the underlying
// excelize file.
type Workbook struct {
	file   *excelize.File
	order  []string
	sheets map[string]*Sheet
	styles *styleTable
}

// New creates an empty random-access workbook.
func New() *Workbook {
	f := excelize.NewFile()
	return &Workbook{
		file:   f,
		sheets: make(map[string]*Sheet),
		styles: newStyleTable(f),
	}
}

// AddSheet appends a sheet. The first sheet replaces the default one the
// underlying file is born with.
func (wb *Workbook) AddSheet(name string) (engine.Sheet, error) {
	if _, ok := wb.sheets[name]; ok {
		return nil, fmt.Errorf("%w: %q", engine.ErrSheetExists, name)
	}
	if len(wb.order) == 0 {
		if err := wb.file.SetSheetName(wb.file.GetSheetName(0), name); err != nil {
			return nil, fmt.Errorf("rename default sheet: %w", err)
		}
	} else {
		if _, err := wb.file.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %q: %w", name, err)
		}
	}
	sheet := &Sheet{wb: wb, name: name, rows: make(map[int]*Row)}
	wb.sheets[name] = sheet
	wb.order = append(wb.order, name)
	return sheet, nil
}

// Sheet returns the named sheet.
func (wb *Workbook) Sheet(name string) (engine.Sheet, error) {
	sheet, ok := wb.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", engine.ErrNoSheet, name)
	}
	return sheet, nil
}

// Sheets iterates the sheets in workbook order.
func (wb *Workbook) Sheets() iter.Seq[engine.Sheet] {
	return func(yield func(engine.Sheet) bool) {
		for _, name := range wb.order {
			if !yield(wb.sheets[name]) {
				return
			}
		}
	}
}

// SheetNames returns the sheet names in workbook order.
func (wb *Workbook) SheetNames() []string {
	return slices.Clone(wb.order)
}

// NewFont registers a font definition for use in styles.
func (wb *Workbook) NewFont(def engine.FontDef) (engine.Font, error) {
	return wb.styles.newFont(def), nil
}

// NewStyle registers a style, deduplicating identical definitions.
func (wb *Workbook) NewStyle(def engine.StyleDef) (engine.Style, error) {
	return wb.styles.newStyle(def)
}

// Save writes the complete .xlsx byte stream.
func (wb *Workbook) Save(w io.Writer) error {
	if err := wb.file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Close releases the underlying file. Idempotent.
func (wb *Workbook) Close() error {
	if wb.file == nil {
		return nil
	}
	err := wb.file.Close()
	wb.file = nil
	return err
}

// Sheet is a sparse row container.
type Sheet struct {
	wb   *Workbook
	name string
	rows map[int]*Row
}

func (s *Sheet) Name() string { return s.name }

func (s *Sheet) Row(idx int) (engine.Row, bool) {
	row, ok := s.rows[idx]
	return row, ok
}

func (s *Sheet) Rows() iter.Seq[engine.Row] {
	return func(yield func(engine.Row) bool) {
		for _, idx := range slices.Sorted(maps.Keys(s.rows)) {
			if !yield(s.rows[idx]) {
				return
			}
		}
	}
}

func (s *Sheet) AddRow(idx int) (engine.Row, error) {
	if row, ok := s.rows[idx]; ok {
		return row, nil
	}
	row := &Row{sheet: s, idx: idx, cells: make(map[int]*Cell)}
	s.rows[idx] = row
	return row, nil
}

// Row is a sparse cell container.
type Row struct {
	sheet *Sheet
	idx   int
	cells map[int]*Cell
}

func (r *Row) Index() int { return r.idx }

func (r *Row) LastCol() int {
	last := -1
	for col := range r.cells {
		if col > last {
			last = col
		}
	}
	return last
}

func (r *Row) Cell(col int) (engine.Cell, bool) {
	cell, ok := r.cells[col]
	return cell, ok
}

func (r *Row) Cells() iter.Seq[engine.Cell] {
	return func(yield func(engine.Cell) bool) {
		for _, col := range slices.Sorted(maps.Keys(r.cells)) {
			if !yield(r.cells[col]) {
				return
			}
		}
	}
}

func (r *Row) AddCell(col int) (engine.Cell, error) {
	if cell, ok := r.cells[col]; ok {
		return cell, nil
	}
	cell := &Cell{sheet: r.sheet, row: r.idx, col: col}
	r.cells[col] = cell
	return cell, nil
}

// Cell mirrors one cell's state and writes through to the file.
type Cell struct {
	sheet *Sheet
	row   int
	col   int

	typ     engine.CellType
	boolVal bool
	numVal  float64
	strVal  string
	formula string

	cachedTyp engine.CellType
	cachedVal any

	numFmt  string
	link    *engine.Hyperlink
	comment *engine.Comment
}

func (c *Cell) ref() string {
	name, _ := excelize.CoordinatesToCellName(c.col+1, c.row+1)
	return name
}

func (c *Cell) Column() int           { return c.col }
func (c *Cell) Type() engine.CellType { return c.typ }

func (c *Cell) SetBlank() error {
	c.typ = engine.TypeBlank
	c.boolVal, c.numVal, c.strVal, c.formula = false, 0, "", ""
	return c.sheet.wb.file.SetCellValue(c.sheet.name, c.ref(), nil)
}

func (c *Cell) SetBool(v bool) error {
	c.typ = engine.TypeBoolean
	c.boolVal = v
	return c.sheet.wb.file.SetCellBool(c.sheet.name, c.ref(), v)
}

func (c *Cell) SetNumber(v float64) error {
	c.typ = engine.TypeNumeric
	c.numVal = v
	return c.sheet.wb.file.SetCellFloat(c.sheet.name, c.ref(), v, -1, 64)
}

func (c *Cell) SetString(v string) error {
	c.typ = engine.TypeString
	c.strVal = v
	return c.sheet.wb.file.SetCellStr(c.sheet.name, c.ref(), v)
}

func (c *Cell) SetFormula(expr string) error {
	c.typ = engine.TypeFormula
	c.formula = expr
	return c.sheet.wb.file.SetCellFormula(c.sheet.name, c.ref(), expr)
}

func (c *Cell) Bool() bool      { return c.boolVal }
func (c *Cell) Number() float64 { return c.numVal }
func (c *Cell) Text() string    { return c.strVal }
func (c *Cell) Formula() string { return c.formula }

func (c *Cell) CachedType() engine.CellType { return c.cachedTyp }
func (c *Cell) CachedValue() any            { return c.cachedVal }

func (c *Cell) SetStyle(style engine.Style) error {
	st, ok := style.(*Style)
	if !ok {
		return fmt.Errorf("xlsx: style handle from a different engine")
	}
	c.numFmt = st.def.NumFmt
	ref := c.ref()
	return c.sheet.wb.file.SetCellStyle(c.sheet.name, ref, ref, st.id)
}

func (c *Cell) NumberFormat() string { return c.numFmt }

func (c *Cell) SetHyperlink(link engine.Hyperlink) error {
	c.link = &link
	return c.sheet.wb.file.SetCellHyperLink(c.sheet.name, c.ref(), link.Target, "External")
}

func (c *Cell) Hyperlink() (engine.Hyperlink, bool) {
	if c.link == nil {
		return engine.Hyperlink{}, false
	}
	return *c.link, true
}

func (c *Cell) SetComment(comment engine.Comment) error {
	c.comment = &comment
	return c.sheet.wb.file.AddComment(c.sheet.name, excelize.Comment{
		Cell:   c.ref(),
		Author: comment.Author,
		Text:   comment.Text,
		Width:  uint(comment.Width * cellUnitWidth),
		Height: uint(comment.Height * cellUnitHeight),
	})
}

func (c *Cell) Comment() (engine.Comment, bool) {
	if c.comment == nil {
		return engine.Comment{}, false
	}
	return *c.comment, true
}

// Comment sizes are given in grid-cell units; the drawing layer wants
// pixels.
const (
	cellUnitWidth  = 64
	cellUnitHeight = 20
)
