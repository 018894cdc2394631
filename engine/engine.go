// Package engine defines the workbook-engine contract that the gridbook core
// is written against. An engine owns the physical representation of a
// spreadsheet document (cells, styles, fonts, comments, hyperlinks) and its
// byte-stream serialization; the core only decides what value goes into a
// cell and what value comes back out.
//
// Three engine variants exist: the legacy binary format (BIFF8 .xls), the
// zipped-XML format (.xlsx), and a write-optimized streaming variant of the
// zipped-XML format. All three implement Workbook; the streaming variant
// trades random-access mutation for bounded-memory, in-order row emission.
package engine

import (
	"errors"
	"io"
	"iter"
)

// Variant selects a backing engine at workbook-creation time.
type Variant int

const (
	LegacyBinary       Variant = iota // BIFF8 .xls inside an OLE2 container
	ZippedXML                         // .xlsx, random access
	ZippedXMLStreaming                // .xlsx, write-once streaming
)

// String returns a human-readable name for the Variant.
func (v Variant) String() string {
	switch v {
	case LegacyBinary:
		return "legacy-binary"
	case ZippedXML:
		return "zipped-xml"
	case ZippedXMLStreaming:
		return "zipped-xml-streaming"
	default:
		return "unknown"
	}
}

// CellType is the stored type of a cell.
type CellType int

const (
	TypeBlank CellType = iota
	TypeBoolean
	TypeString
	TypeNumeric
	TypeFormula
)

// String returns a human-readable name for the CellType.
func (t CellType) String() string {
	switch t {
	case TypeBlank:
		return "Blank"
	case TypeBoolean:
		return "Boolean"
	case TypeString:
		return "String"
	case TypeNumeric:
		return "Numeric"
	case TypeFormula:
		return "Formula"
	default:
		return "Unknown"
	}
}

var (
	// ErrFormatRecognition is returned by Open implementations when the
	// input bytes are not a recognizable spreadsheet document. It is
	// propagated to callers unwrapped.
	ErrFormatRecognition = errors.New("engine: input is not a recognizable spreadsheet document")

	// ErrRandomAccess is returned by streaming engines when a caller
	// attempts readback or out-of-order mutation.
	ErrRandomAccess = errors.New("engine: streaming workbook does not support random access")

	// ErrFinalized is returned when a streaming workbook is mutated after
	// it has been flushed.
	ErrFinalized = errors.New("engine: workbook already finalized")

	// ErrSheetExists is returned by AddSheet for a duplicate sheet name.
	ErrSheetExists = errors.New("engine: sheet already exists")

	// ErrNoSheet is returned by Sheet for an unknown sheet name.
	ErrNoSheet = errors.New("engine: no such sheet")
)

// Workbook is one backing engine instance. Implementations are not safe for
// concurrent use.
type Workbook interface {
	// AddSheet appends a sheet with a unique name.
	AddSheet(name string) (Sheet, error)
	// Sheet returns the named sheet, or ErrNoSheet.
	Sheet(name string) (Sheet, error)
	// Sheets iterates the sheets in workbook order.
	Sheets() iter.Seq[Sheet]
	// SheetNames returns the sheet names in workbook order.
	SheetNames() []string

	// NewFont registers a font with only the set attributes overriding the
	// engine defaults. The returned handle may be reused read-only across
	// many styles but must not be mutated.
	NewFont(FontDef) (Font, error)
	// NewStyle registers a cell style. The returned handle may be reused
	// read-only across many cells but must not be mutated.
	NewStyle(StyleDef) (Style, error)

	// Save finalizes the workbook (flushing and releasing any auxiliary
	// resources held by streaming variants, on error paths included) and
	// writes the complete byte-stream representation.
	Save(w io.Writer) error
	// Close releases engine resources. Idempotent.
	Close() error
}

// Sheet is a sparse, row-indexed sequence of rows. Row indexes are 0-based.
type Sheet interface {
	Name() string
	// Row returns the physically present row at idx.
	Row(idx int) (Row, bool)
	// Rows iterates the physically present rows in increasing index order.
	Rows() iter.Seq[Row]
	// AddRow creates (or returns) the row at idx. Streaming engines require
	// strictly increasing indexes and flush the previously open row.
	AddRow(idx int) (Row, error)
}

// Row is a sparse, column-indexed sequence of cells. Column indexes are
// 0-based and each row's length is independent: grids are jagged and never
// padded to a common width.
type Row interface {
	Index() int
	// LastCol returns the last physically present column index, or -1 for
	// an empty row.
	LastCol() int
	// Cell returns the physically present cell at col.
	Cell(col int) (Cell, bool)
	// Cells iterates the physically present cells in increasing column order.
	Cells() iter.Seq[Cell]
	// AddCell creates (or returns) the cell at col.
	AddCell(col int) (Cell, error)
}

// Cell is a single cell. The Set* methods replace the stored contents and
// type; the read accessors are only meaningful for the matching Type.
type Cell interface {
	Column() int
	Type() CellType

	SetBlank() error
	SetBool(v bool) error
	SetNumber(v float64) error
	SetString(v string) error
	SetFormula(expr string) error

	Bool() bool
	Number() float64
	Text() string
	Formula() string

	// CachedType and CachedValue expose the engine-cached result of a
	// formula cell. CachedValue returns a bool, float64 or string per
	// CachedType, or nil when the engine holds no cached result.
	CachedType() CellType
	CachedValue() any

	// SetStyle attaches a style handle produced by the same workbook.
	SetStyle(Style) error
	// NumberFormat returns the applied number-format pattern, "" or
	// "General" when unformatted.
	NumberFormat() string

	SetHyperlink(Hyperlink) error
	Hyperlink() (Hyperlink, bool)
	SetComment(Comment) error
	Comment() (Comment, bool)
}

// Style is an opaque engine style handle.
type Style interface {
	StyleID() int
}

// Font is an opaque engine font handle.
type Font interface {
	FontID() int
}

// HyperlinkKind is the kind of hyperlink target, inferred from the URL
// scheme on the input side.
type HyperlinkKind int

const (
	LinkURL HyperlinkKind = iota
	LinkEmail
	LinkFile
)

// Hyperlink is a clickable link attached to a cell.
type Hyperlink struct {
	Kind   HyperlinkKind
	Target string
}

// Comment is a text note attached to a cell. Width and Height are measured
// in grid-cell units; Height also advises the default rendering rows.
type Comment struct {
	Author string
	Text   string
	Width  int
	Height int
}

// FontDef describes a font. Zero values mean "engine default".
type FontDef struct {
	Name      string
	Size      float64 // points
	Bold      bool
	Italic    bool
	Strikeout bool
	Underline Underline
	Color     Color
}

// BorderDef sets the line style of each cell edge independently.
type BorderDef struct {
	Top    BorderStyle
	Right  BorderStyle
	Bottom BorderStyle
	Left   BorderStyle
}

// StyleDef describes a cell style. Nil/zero fields retain engine defaults.
type StyleDef struct {
	Font           Font
	Border         *BorderDef
	FillForeground Color
	FillPattern    Pattern
	NumFmt         string // number-format pattern, "" = General
}
