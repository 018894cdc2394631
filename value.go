package gridbook

import (
	"fmt"
	"math"
	"time"

	"github.com/javajack/gridbook/engine"
)

// Value is the closed set of cell-input shapes the codec understands. Go
// runtime values enter the union through ToValue; anything outside the set
// is rejected there with ErrUnsupportedValueKind.
type Value interface {
	isValue()
}

// Blank clears a cell.
type Blank struct{}

// Bool is a boolean cell value.
type Bool bool

// Number is a floating-point cell value.
type Number float64

// Int is an integral cell value. It is stored as the engine's native float
// with an integer number format applied, so decoding recovers an int64.
type Int int64

// Text is a string cell value.
type Text string

// DateTime is a date/time cell value, stored as a day-count serial.
type DateTime time.Time

// Formula is a formula-text cell value. The engine does not evaluate it.
type Formula string

func (Blank) isValue()    {}
func (Bool) isValue()     {}
func (Number) isValue()   {}
func (Int) isValue()      {}
func (Text) isValue()     {}
func (DateTime) isValue() {}
func (Formula) isValue()  {}
func (*Spec) isValue()    {}

// Time returns the wrapped time.Time.
func (d DateTime) Time() time.Time { return time.Time(d) }

// Spec is the composite cell description: a value or a formula, plus
// optional style, font, hyperlink and comment.
type Spec struct {
	// Value is re-dispatched through ToValue. Mutually exclusive with
	// Formula; setting both fails with ErrConflictingCellSpec.
	Value any
	// Formula is formula text without a leading "=".
	Formula string
	// Style is an existing resolved style handle, reused as-is.
	Style engine.Style
	// Font is resolved fresh via the style resolver and attached.
	Font *FontSpec
	// URL attaches a hyperlink; the link kind is inferred from the scheme.
	URL string
	// Comment attaches a text comment.
	Comment *CommentSpec
}

// FontSpec describes a font. Unset fields retain engine defaults.
type FontSpec struct {
	Font      string  // family name
	Size      float64 // points
	Bold      bool
	Italic    bool
	Underline string // UnderlineIndices keyword
	Strikeout bool
	// Color is a ColorIndices keyword (string), an engine.Color, or a raw
	// palette index (int).
	Color any
}

// StyleSpec describes a cell style. Unset fields retain engine defaults.
type StyleSpec struct {
	Font *FontSpec
	// Border is the edge shorthand: a single border-style keyword (or
	// engine.BorderStyle) for all four edges, a 2-element sequence
	// [a b] for top/bottom=a left/right=b, or a 4-element sequence
	// [top right bottom left]. Other arities fail with
	// ErrInvalidBorderSpec.
	Border any
	// ForegroundColor is the fill color: a keyword, an engine.Color, or a
	// raw palette index.
	ForegroundColor any
	// Pattern is the fill pattern, applied with ForegroundColor.
	Pattern engine.Pattern
	// Format is a DataFormats keyword or a literal pattern applied verbatim.
	Format string
}

// CommentSpec is a cell comment sized in grid-cell units. Height also
// advises the number of default rendering rows. An empty Author falls back
// to the engine default.
type CommentSpec struct {
	Text   string
	Author string
	Width  int
	Height int
}

// ToValue maps a Go runtime value into the Value union. It accepts nil,
// booleans, all integer and float kinds, strings, fmt.Stringer (symbolic
// tokens), time.Time, Value itself, and Spec composites.
func ToValue(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Blank{}, nil
	case Value:
		return x, nil
	case Spec:
		return &x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(x), nil
	case int8:
		return Int(x), nil
	case int16:
		return Int(x), nil
	case int32:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, fmt.Errorf("%w: uint %d overflows the integral range", ErrUnsupportedValueKind, x)
		}
		return Int(x), nil
	case uint8:
		return Int(x), nil
	case uint16:
		return Int(x), nil
	case uint32:
		return Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("%w: uint64 %d overflows the integral range", ErrUnsupportedValueKind, x)
		}
		return Int(x), nil
	case float32:
		return Number(x), nil
	case float64:
		return Number(x), nil
	case string:
		return Text(x), nil
	case time.Time:
		return DateTime(x), nil
	case fmt.Stringer:
		return Text(x.String()), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValueKind, v)
	}
}
