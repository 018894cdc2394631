package xlsx

import (
	"fmt"
	"io"
	"iter"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/javajack/gridbook/engine"
)

// StreamWorkbook is the write-once streaming variant of the zipped-XML
// engine. Rows are emitted through excelize stream writers in increasing
// order with one buffered row per sheet, so memory stays bounded while the
// writer spills to auxiliary storage. Readback and out-of-order mutation
// are rejected with engine.ErrRandomAccess.
type StreamWorkbook struct {
	file      *excelize.File
	order     []string
	sheets    map[string]*StreamSheet
	styles    *styleTable
	finalized bool
}

// NewStreaming creates an empty streaming workbook.
func NewStreaming() *StreamWorkbook {
	f := excelize.NewFile()
	return &StreamWorkbook{
		file:   f,
		sheets: make(map[string]*StreamSheet),
		styles: newStyleTable(f),
	}
}

// AddSheet appends a sheet and opens its stream writer.
func (wb *StreamWorkbook) AddSheet(name string) (engine.Sheet, error) {
	if wb.finalized {
		return nil, engine.ErrFinalized
	}
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
	sw, err := wb.file.NewStreamWriter(name)
	if err != nil {
		return nil, fmt.Errorf("stream writer for %q: %w", name, err)
	}
	sheet := &StreamSheet{wb: wb, name: name, sw: sw, lastIdx: -1}
	wb.sheets[name] = sheet
	wb.order = append(wb.order, name)
	return sheet, nil
}

// Sheet returns the named sheet.
func (wb *StreamWorkbook) Sheet(name string) (engine.Sheet, error) {
	sheet, ok := wb.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", engine.ErrNoSheet, name)
	}
	return sheet, nil
}

// Sheets iterates the sheets in workbook order.
func (wb *StreamWorkbook) Sheets() iter.Seq[engine.Sheet] {
	return func(yield func(engine.Sheet) bool) {
		for _, name := range wb.order {
			if !yield(wb.sheets[name]) {
				return
			}
		}
	}
}

// SheetNames returns the sheet names in workbook order.
func (wb *StreamWorkbook) SheetNames() []string {
	return slices.Clone(wb.order)
}

// NewFont registers a font definition for use in styles.
func (wb *StreamWorkbook) NewFont(def engine.FontDef) (engine.Font, error) {
	return wb.styles.newFont(def), nil
}

// NewStyle registers a style, deduplicating identical definitions.
func (wb *StreamWorkbook) NewStyle(def engine.StyleDef) (engine.Style, error) {
	return wb.styles.newStyle(def)
}

// Save flushes every stream writer and writes the complete byte stream.
// The workbook is write-once: Save finalizes it.
func (wb *StreamWorkbook) Save(w io.Writer) error {
	if wb.finalized {
		return engine.ErrFinalized
	}
	wb.finalized = true
	for _, name := range wb.order {
		sheet := wb.sheets[name]
		if err := sheet.flushOpenRow(); err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
		if err := sheet.sw.Flush(); err != nil {
			return fmt.Errorf("flush sheet %q: %w", name, err)
		}
	}
	if err := wb.file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Close releases the underlying file and the stream writers' spill
// storage, whether or not Save succeeded. Idempotent.
func (wb *StreamWorkbook) Close() error {
	if wb.file == nil {
		return nil
	}
	err := wb.file.Close()
	wb.file = nil
	return err
}

// StreamSheet holds at most one open (not yet flushed) row.
type StreamSheet struct {
	wb      *StreamWorkbook
	name    string
	sw      *excelize.StreamWriter
	openRow *StreamRow
	lastIdx int
}

func (s *StreamSheet) Name() string { return s.name }

// Row returns the open row when idx matches it; flushed rows are gone.
func (s *StreamSheet) Row(idx int) (engine.Row, bool) {
	if s.openRow != nil && s.openRow.idx == idx {
		return s.openRow, true
	}
	return nil, false
}

// Rows yields nothing: the streaming engine is write-only and flushed rows
// cannot be revisited.
func (s *StreamSheet) Rows() iter.Seq[engine.Row] {
	return func(yield func(engine.Row) bool) {}
}

// AddRow opens the row at idx, flushing the previously open row. Indexes
// must be strictly increasing.
func (s *StreamSheet) AddRow(idx int) (engine.Row, error) {
	if s.wb.finalized {
		return nil, engine.ErrFinalized
	}
	if s.openRow != nil && s.openRow.idx == idx {
		return s.openRow, nil
	}
	if idx <= s.lastIdx {
		return nil, fmt.Errorf("%w: row %d after row %d", engine.ErrRandomAccess, idx, s.lastIdx)
	}
	if err := s.flushOpenRow(); err != nil {
		return nil, err
	}
	s.openRow = &StreamRow{sheet: s, idx: idx, cells: make(map[int]*StreamCell)}
	s.lastIdx = idx
	return s.openRow, nil
}

// flushOpenRow emits the buffered row through the stream writer.
func (s *StreamSheet) flushOpenRow() error {
	row := s.openRow
	if row == nil {
		return nil
	}
	s.openRow = nil

	last := row.LastCol()
	if last < 0 {
		return nil
	}
	values := make([]any, last+1)
	for col, cell := range row.cells {
		values[col] = cell.streamValue()
	}
	axis, err := excelize.CoordinatesToCellName(1, row.idx+1)
	if err != nil {
		return err
	}
	if err := s.sw.SetRow(axis, values); err != nil {
		return fmt.Errorf("emit row %d: %w", row.idx, err)
	}
	return nil
}

// StreamRow is the single buffered row of a stream sheet.
type StreamRow struct {
	sheet *StreamSheet
	idx   int
	cells map[int]*StreamCell
}

func (r *StreamRow) Index() int { return r.idx }

func (r *StreamRow) LastCol() int {
	last := -1
	for col := range r.cells {
		if col > last {
			last = col
		}
	}
	return last
}

func (r *StreamRow) Cell(col int) (engine.Cell, bool) {
	cell, ok := r.cells[col]
	return cell, ok
}

func (r *StreamRow) Cells() iter.Seq[engine.Cell] {
	return func(yield func(engine.Cell) bool) {
		cols := make([]int, 0, len(r.cells))
		for col := range r.cells {
			cols = append(cols, col)
		}
		slices.Sort(cols)
		for _, col := range cols {
			if !yield(r.cells[col]) {
				return
			}
		}
	}
}

func (r *StreamRow) AddCell(col int) (engine.Cell, error) {
	if cell, ok := r.cells[col]; ok {
		return cell, nil
	}
	cell := &StreamCell{row: r, col: col}
	r.cells[col] = cell
	return cell, nil
}

// StreamCell buffers one cell until its row is flushed.
type StreamCell struct {
	row *StreamRow
	col int

	typ     engine.CellType
	boolVal bool
	numVal  float64
	strVal  string
	formula string

	styleID int
	numFmt  string
	link    *engine.Hyperlink
	comment *engine.Comment
}

func (c *StreamCell) ref() string {
	name, _ := excelize.CoordinatesToCellName(c.col+1, c.row.idx+1)
	return name
}

func (c *StreamCell) Column() int           { return c.col }
func (c *StreamCell) Type() engine.CellType { return c.typ }

func (c *StreamCell) SetBlank() error {
	c.typ = engine.TypeBlank
	c.boolVal, c.numVal, c.strVal, c.formula = false, 0, "", ""
	return nil
}

func (c *StreamCell) SetBool(v bool) error {
	c.typ = engine.TypeBoolean
	c.boolVal = v
	return nil
}

func (c *StreamCell) SetNumber(v float64) error {
	c.typ = engine.TypeNumeric
	c.numVal = v
	return nil
}

func (c *StreamCell) SetString(v string) error {
	c.typ = engine.TypeString
	c.strVal = v
	return nil
}

func (c *StreamCell) SetFormula(expr string) error {
	c.typ = engine.TypeFormula
	c.formula = expr
	return nil
}

func (c *StreamCell) Bool() bool      { return c.boolVal }
func (c *StreamCell) Number() float64 { return c.numVal }
func (c *StreamCell) Text() string    { return c.strVal }
func (c *StreamCell) Formula() string { return c.formula }

func (c *StreamCell) CachedType() engine.CellType { return engine.TypeBlank }
func (c *StreamCell) CachedValue() any            { return nil }

func (c *StreamCell) SetStyle(style engine.Style) error {
	st, ok := style.(*Style)
	if !ok {
		return fmt.Errorf("xlsx: style handle from a different engine")
	}
	c.styleID = st.id
	c.numFmt = st.def.NumFmt
	return nil
}

func (c *StreamCell) NumberFormat() string { return c.numFmt }

func (c *StreamCell) SetHyperlink(link engine.Hyperlink) error {
	c.link = &link
	sheet := c.row.sheet
	return sheet.wb.file.SetCellHyperLink(sheet.name, c.ref(), link.Target, "External")
}

func (c *StreamCell) Hyperlink() (engine.Hyperlink, bool) {
	if c.link == nil {
		return engine.Hyperlink{}, false
	}
	return *c.link, true
}

func (c *StreamCell) SetComment(comment engine.Comment) error {
	c.comment = &comment
	sheet := c.row.sheet
	return sheet.wb.file.AddComment(sheet.name, excelize.Comment{
		Cell:   c.ref(),
		Author: comment.Author,
		Text:   comment.Text,
		Width:  uint(comment.Width * cellUnitWidth),
		Height: uint(comment.Height * cellUnitHeight),
	})
}

func (c *StreamCell) Comment() (engine.Comment, bool) {
	if c.comment == nil {
		return engine.Comment{}, false
	}
	return *c.comment, true
}

// streamValue converts the buffered cell into the stream writer's payload.
func (c *StreamCell) streamValue() excelize.Cell {
	out := excelize.Cell{StyleID: c.styleID}
	switch c.typ {
	case engine.TypeBoolean:
		out.Value = c.boolVal
	case engine.TypeNumeric:
		out.Value = c.numVal
	case engine.TypeString:
		out.Value = c.strVal
	case engine.TypeFormula:
		out.Formula = c.formula
	}
	return out
}
