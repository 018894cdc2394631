package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/javajack/gridbook/engine"
)

// Style is an opaque handle around an excelize style ID.
type Style struct {
	id  int
	def engine.StyleDef
}

func (s *Style) StyleID() int { return s.id }

// Font is an opaque handle around a font definition. Fonts have no
// standalone object in the zipped-XML model; the definition is inlined into
// each style that references it.
type Font struct {
	id  int
	def engine.FontDef
}

func (f *Font) FontID() int { return f.id }

// styleTable registers styles with the file, deduplicating identical
// definitions so handles can be reused read-only across many cells.
type styleTable struct {
	file  *excelize.File
	byKey map[string]*Style
	fonts int
}

func newStyleTable(f *excelize.File) *styleTable {
	return &styleTable{file: f, byKey: make(map[string]*Style)}
}

func (t *styleTable) newFont(def engine.FontDef) *Font {
	t.fonts++
	return &Font{id: t.fonts, def: def}
}

func (t *styleTable) newStyle(def engine.StyleDef) (*Style, error) {
	key := styleKey(def)
	if st, ok := t.byKey[key]; ok {
		return st, nil
	}
	converted, err := toExcelizeStyle(def)
	if err != nil {
		return nil, err
	}
	id, err := t.file.NewStyle(converted)
	if err != nil {
		return nil, fmt.Errorf("register style: %w", err)
	}
	st := &Style{id: id, def: def}
	t.byKey[key] = st
	return st, nil
}

func styleKey(def engine.StyleDef) string {
	var font engine.FontDef
	if def.Font != nil {
		if f, ok := def.Font.(*Font); ok {
			font = f.def
		}
	}
	var border engine.BorderDef
	if def.Border != nil {
		border = *def.Border
	}
	return fmt.Sprintf("%q|%v|%d|%d|%+v", def.NumFmt, border, def.FillForeground, def.FillPattern, font)
}

func toExcelizeStyle(def engine.StyleDef) (*excelize.Style, error) {
	st := &excelize.Style{}
	if def.NumFmt != "" && def.NumFmt != "General" {
		fmtStr := def.NumFmt
		st.CustomNumFmt = &fmtStr
	}
	if def.Border != nil {
		st.Border = borderEdges(def.Border)
	}
	if def.FillPattern != engine.PatternNone {
		color := def.FillForeground.RGB()
		if color == "" {
			color = "FFFFFF"
		}
		st.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: int(def.FillPattern),
			Color:   []string{color},
		}
	}
	if def.Font != nil {
		font, ok := def.Font.(*Font)
		if !ok {
			return nil, fmt.Errorf("xlsx: font handle from a different engine")
		}
		st.Font = toExcelizeFont(font.def)
	}
	return st, nil
}

func toExcelizeFont(def engine.FontDef) *excelize.Font {
	font := &excelize.Font{
		Family: def.Name,
		Size:   def.Size,
		Bold:   def.Bold,
		Italic: def.Italic,
		Strike: def.Strikeout,
	}
	switch def.Underline {
	case engine.UnderlineSingle, engine.UnderlineSingleAccounting:
		font.Underline = "single"
	case engine.UnderlineDouble, engine.UnderlineDoubleAccounting:
		font.Underline = "double"
	}
	if rgb := def.Color.RGB(); rgb != "" {
		font.Color = rgb
	}
	return font
}

// borderEdges converts a BorderDef into the excelize edge list. The engine
// border-style codes match the excelize style table, so they pass through.
func borderEdges(def *engine.BorderDef) []excelize.Border {
	edges := []struct {
		kind  string
		style engine.BorderStyle
	}{
		{"top", def.Top},
		{"right", def.Right},
		{"bottom", def.Bottom},
		{"left", def.Left},
	}
	var out []excelize.Border
	for _, e := range edges {
		out = append(out, excelize.Border{Type: e.kind, Style: int(e.style), Color: "000000"})
	}
	return out
}

// numFmtPattern resolves a style ID to its effective number-format pattern.
func numFmtPattern(f *excelize.File, styleID int) string {
	if styleID <= 0 {
		return ""
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return ""
	}
	if style.CustomNumFmt != nil {
		return *style.CustomNumFmt
	}
	return engine.BuiltinNumFmt[style.NumFmt]
}
