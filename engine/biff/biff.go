// Package biff implements the engine contract for the legacy binary
// workbook format: BIFF8 records inside an OLE2 compound document. The
// workbook is modeled fully in memory; Save serializes the record stream
// and Open rebuilds the model from one.
package biff

import (
	"fmt"
	"io"
	"iter"
	"maps"
	"slices"

	"github.com/javajack/gridbook/engine"
)

// File positions of the fixed entries every stream carries: four copies of
// the default font (index 4 is reserved and never used), fifteen style XFs
// and the default cell XF at index 15.
const (
	defaultFontRecords = 4
	firstCustomFont    = 5
	defaultXFRecords   = 16
	defaultCellXF      = 15
	firstCustomFormat  = 164
)

var defaultFont = engine.FontDef{Name: "Arial", Size: 10}

// Workbook is the legacy-binary engine.
type Workbook struct {
	order  []string
	sheets map[string]*Sheet

	fonts   []engine.FontDef // customs; file index firstCustomFont+i
	formats []string         // customs; format id firstCustomFormat+i
	fmtIDs  map[string]int
	xfs     []xfDef // customs; XF index defaultXFRecords+i
	xfIDs   map[string]int
}

// xfDef is one extended-format entry: font, number format, border and fill.
type xfDef struct {
	fontIndex int
	fmtID     int
	border    engine.BorderDef
	hasBorder bool
	fillFg    engine.Color
	pattern   engine.Pattern
}

// New creates an empty legacy workbook.
func New() *Workbook {
	return &Workbook{
		sheets: make(map[string]*Sheet),
		fmtIDs: make(map[string]int),
		xfIDs:  make(map[string]int),
	}
}

// AddSheet appends a sheet.
func (wb *Workbook) AddSheet(name string) (engine.Sheet, error) {
	if _, ok := wb.sheets[name]; ok {
		return nil, fmt.Errorf("%w: %q", engine.ErrSheetExists, name)
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

// NewFont registers a font and returns its handle. The handle's ID is the
// font's index in the file's font table.
func (wb *Workbook) NewFont(def engine.FontDef) (engine.Font, error) {
	id := firstCustomFont + len(wb.fonts)
	wb.fonts = append(wb.fonts, def)
	return &Font{id: id, def: def}, nil
}

// NewStyle registers a style, deduplicating identical definitions. The
// handle's ID is the XF index cells reference.
func (wb *Workbook) NewStyle(def engine.StyleDef) (engine.Style, error) {
	xf := xfDef{fontIndex: 0, fillFg: def.FillForeground, pattern: def.FillPattern}
	if def.Font != nil {
		font, ok := def.Font.(*Font)
		if !ok {
			return nil, fmt.Errorf("biff: font handle from a different engine")
		}
		xf.fontIndex = font.id
	}
	if def.Border != nil {
		xf.border = *def.Border
		xf.hasBorder = true
	}
	xf.fmtID = wb.formatID(def.NumFmt)

	key := fmt.Sprintf("%d|%d|%v|%v|%d|%d", xf.fontIndex, xf.fmtID, xf.border, xf.hasBorder, xf.fillFg, xf.pattern)
	if id, ok := wb.xfIDs[key]; ok {
		return &Style{id: id, numFmt: def.NumFmt}, nil
	}
	id := defaultXFRecords + len(wb.xfs)
	wb.xfs = append(wb.xfs, xf)
	wb.xfIDs[key] = id
	return &Style{id: id, numFmt: def.NumFmt}, nil
}

// formatID resolves a pattern to a format id: 0 for General, a built-in id
// when the pattern matches one, otherwise a newly assigned custom id.
func (wb *Workbook) formatID(pattern string) int {
	if pattern == "" || pattern == "General" {
		return 0
	}
	if id, ok := engine.BuiltinNumFmtID(pattern); ok {
		return id
	}
	if id, ok := wb.fmtIDs[pattern]; ok {
		return id
	}
	id := firstCustomFormat + len(wb.formats)
	wb.formats = append(wb.formats, pattern)
	wb.fmtIDs[pattern] = id
	return id
}

// formatPattern is the inverse of formatID, for readback.
func (wb *Workbook) formatPattern(fmtID int) string {
	if fmtID == 0 {
		return ""
	}
	if fmtID >= firstCustomFormat {
		i := fmtID - firstCustomFormat
		if i < len(wb.formats) {
			return wb.formats[i]
		}
		return ""
	}
	return engine.BuiltinNumFmt[fmtID]
}

// Save serializes the workbook stream and wraps it in a compound document.
func (wb *Workbook) Save(w io.Writer) error {
	return wb.write(w)
}

// Close is a no-op; the legacy engine holds no external resources.
func (wb *Workbook) Close() error { return nil }

// Style is an opaque handle around an XF index.
type Style struct {
	id     int
	numFmt string
}

func (s *Style) StyleID() int { return s.id }

// Font is an opaque handle around a font-table index.
type Font struct {
	id  int
	def engine.FontDef
}

func (f *Font) FontID() int { return f.id }

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
	cell := &Cell{row: r, col: col, xf: defaultCellXF}
	r.cells[col] = cell
	return cell, nil
}

// Cell holds one cell's full state.
type Cell struct {
	row *Row
	col int

	typ     engine.CellType
	boolVal bool
	numVal  float64
	strVal  string
	formula string

	cachedTyp engine.CellType
	cachedVal any

	xf      int
	numFmt  string
	link    *engine.Hyperlink
	comment *engine.Comment
}

func (c *Cell) Column() int           { return c.col }
func (c *Cell) Type() engine.CellType { return c.typ }

func (c *Cell) SetBlank() error {
	c.typ = engine.TypeBlank
	c.boolVal, c.numVal, c.strVal, c.formula = false, 0, "", ""
	return nil
}

func (c *Cell) SetBool(v bool) error {
	c.typ = engine.TypeBoolean
	c.boolVal = v
	return nil
}

func (c *Cell) SetNumber(v float64) error {
	c.typ = engine.TypeNumeric
	c.numVal = v
	return nil
}

func (c *Cell) SetString(v string) error {
	c.typ = engine.TypeString
	c.strVal = v
	return nil
}

func (c *Cell) SetFormula(expr string) error {
	c.typ = engine.TypeFormula
	c.formula = expr
	return nil
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
		return fmt.Errorf("biff: style handle from a different engine")
	}
	c.xf = st.id
	c.numFmt = st.numFmt
	return nil
}

func (c *Cell) NumberFormat() string { return c.numFmt }

func (c *Cell) SetHyperlink(link engine.Hyperlink) error {
	c.link = &link
	return nil
}

func (c *Cell) Hyperlink() (engine.Hyperlink, bool) {
	if c.link == nil {
		return engine.Hyperlink{}, false
	}
	return *c.link, true
}

func (c *Cell) SetComment(comment engine.Comment) error {
	c.comment = &comment
	return nil
}

func (c *Cell) Comment() (engine.Comment, bool) {
	if c.comment == nil {
		return engine.Comment{}, false
	}
	return *c.comment, true
}
