package gridbook

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/javajack/gridbook/engine"
)

// Encode writes a generic value into a cell. The value enters the Value
// union through ToValue; composite specs additionally resolve style, font,
// hyperlink and comment. Spec validation and style resolution happen before
// the cell is mutated, so a failed encode leaves prior contents untouched.
func Encode(wb engine.Workbook, cell engine.Cell, v any) error {
	val, err := ToValue(v)
	if err != nil {
		return err
	}
	if spec, ok := val.(*Spec); ok {
		return encodeSpec(wb, cell, spec)
	}
	return encodeScalar(wb, cell, val, true)
}

// encodeScalar writes a non-composite union member. When defaultStyle is
// set, integral and date/time values also get the format style that makes
// them recoverable on decode; an explicit spec style suppresses this.
func encodeScalar(wb engine.Workbook, cell engine.Cell, val Value, defaultStyle bool) error {
	switch x := val.(type) {
	case Blank:
		return cell.SetBlank()
	case Bool:
		return cell.SetBool(bool(x))
	case Number:
		return cell.SetNumber(float64(x))
	case Int:
		if err := cell.SetNumber(float64(x)); err != nil {
			return err
		}
		if defaultStyle {
			return applyFormat(wb, cell, DataFormats["integer"])
		}
		return nil
	case Text:
		return cell.SetString(string(x))
	case DateTime:
		if err := cell.SetNumber(TimeToSerial(x.Time())); err != nil {
			return err
		}
		if defaultStyle {
			return applyFormat(wb, cell, DataFormats["date"])
		}
		return nil
	case Formula:
		return cell.SetFormula(string(x))
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValueKind, val)
	}
}

func encodeSpec(wb engine.Workbook, cell engine.Cell, spec *Spec) error {
	if spec.Formula != "" && spec.Value != nil {
		return ErrConflictingCellSpec
	}

	// Resolve everything fallible before touching the cell.
	var val Value
	if spec.Formula != "" {
		val = Formula(spec.Formula)
	} else {
		var err error
		val, err = ToValue(spec.Value)
		if err != nil {
			return err
		}
		if _, ok := val.(*Spec); ok {
			return fmt.Errorf("%w: nested composite spec", ErrUnsupportedValueKind)
		}
	}
	style := spec.Style
	if style == nil && spec.Font != nil {
		font, err := ResolveFont(wb, *spec.Font)
		if err != nil {
			return err
		}
		style, err = wb.NewStyle(engine.StyleDef{Font: font})
		if err != nil {
			return err
		}
	}

	if err := encodeScalar(wb, cell, val, style == nil); err != nil {
		return err
	}
	if style != nil {
		if err := cell.SetStyle(style); err != nil {
			return err
		}
	}
	if spec.URL != "" {
		link := engine.Hyperlink{Kind: linkKind(spec.URL), Target: spec.URL}
		if err := cell.SetHyperlink(link); err != nil {
			return err
		}
	}
	if spec.Comment != nil {
		comment := engine.Comment{
			Author: spec.Comment.Author,
			Text:   spec.Comment.Text,
			Width:  spec.Comment.Width,
			Height: spec.Comment.Height,
		}
		if err := cell.SetComment(comment); err != nil {
			return err
		}
	}
	return nil
}

// applyFormat attaches a style carrying only a number format.
func applyFormat(wb engine.Workbook, cell engine.Cell, pattern string) error {
	style, err := wb.NewStyle(engine.StyleDef{NumFmt: pattern})
	if err != nil {
		return err
	}
	return cell.SetStyle(style)
}

// linkKind infers the hyperlink kind from the URL scheme.
func linkKind(raw string) engine.HyperlinkKind {
	u, err := url.Parse(raw)
	if err != nil {
		return engine.LinkURL
	}
	switch strings.ToLower(u.Scheme) {
	case "mailto":
		return engine.LinkEmail
	case "file":
		return engine.LinkFile
	default:
		return engine.LinkURL
	}
}

// Decode reads a cell back into a generic value. Numeric cells recover
// their semantic type from the applied number format: dates become
// time.Time, integer formats become int64, percentage formats stay plain
// fractions, currency formats render to a formatted string, and everything
// else stays float64.
func Decode(cell engine.Cell) (any, error) {
	switch cell.Type() {
	case engine.TypeBlank:
		return nil, nil
	case engine.TypeBoolean:
		return cell.Bool(), nil
	case engine.TypeString:
		return cell.Text(), nil
	case engine.TypeNumeric:
		return decodeNumeric(cell, cell.Number())
	case engine.TypeFormula:
		return decodeCached(cell)
	default:
		return nil, fmt.Errorf("gridbook: cell has unknown stored type %v", cell.Type())
	}
}

// decodeCached decodes a formula cell through its engine-cached result. The
// formula itself is never evaluated here.
func decodeCached(cell engine.Cell) (any, error) {
	switch v := cell.CachedValue().(type) {
	case nil:
		return nil, nil
	case bool:
		return v, nil
	case string:
		return v, nil
	case float64:
		return decodeNumeric(cell, v)
	default:
		return nil, fmt.Errorf("gridbook: formula cell has unsupported cached result %T", v)
	}
}

func decodeNumeric(cell engine.Cell, v float64) (any, error) {
	pattern := cell.NumberFormat()
	switch Classify(pattern) {
	case ClassDate:
		return SerialToTime(v)
	case ClassInteger:
		return int64(math.Round(v)), nil
	case ClassPercentage:
		// The stored value is already the plain fraction; never scale.
		return v, nil
	case ClassCurrency:
		return CurrencyString(pattern, v), nil
	default:
		return v, nil
	}
}
