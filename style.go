package gridbook

import (
	"fmt"

	"github.com/javajack/gridbook/engine"
)

// ResolveFont resolves a declarative font spec into an engine font handle.
// Only the set attributes override the engine defaults.
func ResolveFont(wb engine.Workbook, spec FontSpec) (engine.Font, error) {
	def := engine.FontDef{
		Name:      spec.Font,
		Size:      spec.Size,
		Bold:      spec.Bold,
		Italic:    spec.Italic,
		Strikeout: spec.Strikeout,
	}
	if spec.Underline != "" {
		u, err := UnderlineIndex(spec.Underline)
		if err != nil {
			return nil, err
		}
		def.Underline = u
	}
	if spec.Color != nil {
		c, err := resolveColor(spec.Color)
		if err != nil {
			return nil, err
		}
		def.Color = c
	}
	return wb.NewFont(def)
}

// NewCellStyle resolves a declarative style spec into an engine style
// handle. Resolution failures surface before any style object is created.
func NewCellStyle(wb engine.Workbook, spec StyleSpec) (engine.Style, error) {
	var def engine.StyleDef
	if spec.Format != "" {
		def.NumFmt = FormatPattern(spec.Format)
	}
	if spec.Border != nil {
		border, err := resolveBorder(spec.Border)
		if err != nil {
			return nil, err
		}
		def.Border = border
	}
	if spec.ForegroundColor != nil {
		c, err := resolveColor(spec.ForegroundColor)
		if err != nil {
			return nil, err
		}
		def.FillForeground = c
		def.FillPattern = spec.Pattern
		if def.FillPattern == engine.PatternNone {
			def.FillPattern = engine.PatternSolid
		}
	} else if spec.Pattern != engine.PatternNone {
		def.FillPattern = spec.Pattern
	}
	if spec.Font != nil {
		font, err := ResolveFont(wb, *spec.Font)
		if err != nil {
			return nil, err
		}
		def.Font = font
	}
	return wb.NewStyle(def)
}

// resolveBorder expands the border shorthand into per-edge styles.
// Arity is order-sensitive: 1 → all edges, 2 → [top/bottom left/right],
// 4 → [top right bottom left].
func resolveBorder(v any) (*engine.BorderDef, error) {
	edges, err := borderEdges(v)
	if err != nil {
		return nil, err
	}
	switch len(edges) {
	case 1:
		return &engine.BorderDef{Top: edges[0], Right: edges[0], Bottom: edges[0], Left: edges[0]}, nil
	case 2:
		return &engine.BorderDef{Top: edges[0], Bottom: edges[0], Left: edges[1], Right: edges[1]}, nil
	case 4:
		return &engine.BorderDef{Top: edges[0], Right: edges[1], Bottom: edges[2], Left: edges[3]}, nil
	default:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBorderSpec, len(edges))
	}
}

// borderEdges normalizes the accepted shorthand shapes into a style slice.
func borderEdges(v any) ([]engine.BorderStyle, error) {
	switch x := v.(type) {
	case engine.BorderStyle:
		return []engine.BorderStyle{x}, nil
	case string:
		b, err := BorderStyle(x)
		if err != nil {
			return nil, err
		}
		return []engine.BorderStyle{b}, nil
	case []engine.BorderStyle:
		return x, nil
	case []string:
		edges := make([]engine.BorderStyle, len(x))
		for i, name := range x {
			b, err := BorderStyle(name)
			if err != nil {
				return nil, err
			}
			edges[i] = b
		}
		return edges, nil
	case []any:
		edges := make([]engine.BorderStyle, len(x))
		for i, e := range x {
			single, err := borderEdges(e)
			if err != nil {
				return nil, err
			}
			if len(single) != 1 {
				return nil, fmt.Errorf("%w: nested sequence", ErrInvalidBorderSpec)
			}
			edges[i] = single[0]
		}
		return edges, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidBorderSpec, v)
	}
}

// resolveColor accepts a ColorIndices keyword, an engine.Color, or a raw
// palette index.
func resolveColor(v any) (engine.Color, error) {
	switch x := v.(type) {
	case engine.Color:
		return x, nil
	case int:
		return engine.Color(x), nil
	case string:
		return ColorIndex(x)
	default:
		return engine.ColorAuto, fmt.Errorf("%w: color spec %T", ErrUnsupportedValueKind, v)
	}
}
