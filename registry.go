package gridbook

import "github.com/javajack/gridbook/engine"

// The registries map symbolic keywords to engine codes. They are built once
// at package initialization, hold no external resources and must be treated
// as read-only.

// DataFormats maps symbolic format names to number-format patterns. Names
// not present in the map are passed through verbatim as literal patterns.
var DataFormats = map[string]string{
	"general":  "General",
	"date":     "m/d/yy h:mm",
	"integer":  "0",
	"decimal":  "0.00",
	"percent":  "0.00%",
	"currency": "$#,##0.00",
	"text":     "@",
}

// FormatPattern resolves a DataFormats keyword, or returns the input
// unchanged so literal patterns apply verbatim.
func FormatPattern(name string) string {
	if p, ok := DataFormats[name]; ok {
		return p
	}
	return name
}

// ColorIndices maps named colors to engine palette indexes.
var ColorIndices = map[string]engine.Color{
	"black":      engine.ColorBlack,
	"white":      engine.ColorWhite,
	"red":        engine.ColorRed,
	"green":      engine.ColorGreen,
	"blue":       engine.ColorBlue,
	"yellow":     engine.ColorYellow,
	"magenta":    engine.ColorMagenta,
	"cyan":       engine.ColorCyan,
	"maroon":     engine.ColorMaroon,
	"dark-green": engine.ColorDarkGreen,
	"dark-blue":  engine.ColorDarkBlue,
	"olive":      engine.ColorOlive,
	"purple":     engine.ColorPurple,
	"teal":       engine.ColorTeal,
	"grey":       engine.ColorGrey,
	"gray":       engine.ColorGrey,
	"dark-grey":  engine.ColorDarkGrey,
	"dark-gray":  engine.ColorDarkGrey,
	"orange":     engine.ColorOrange,
}

// ColorIndex resolves a named color.
func ColorIndex(name string) (engine.Color, error) {
	c, ok := ColorIndices[name]
	if !ok {
		return engine.ColorAuto, &UnknownKeywordError{Registry: "color", Keyword: name}
	}
	return c, nil
}

// UnderlineIndices maps named underline kinds to engine underline codes.
var UnderlineIndices = map[string]engine.Underline{
	"none":              engine.UnderlineNone,
	"single":            engine.UnderlineSingle,
	"double":            engine.UnderlineDouble,
	"single-accounting": engine.UnderlineSingleAccounting,
	"double-accounting": engine.UnderlineDoubleAccounting,
}

// UnderlineIndex resolves a named underline kind.
func UnderlineIndex(name string) (engine.Underline, error) {
	u, ok := UnderlineIndices[name]
	if !ok {
		return engine.UnderlineNone, &UnknownKeywordError{Registry: "underline", Keyword: name}
	}
	return u, nil
}

// BorderStyles maps border-style keywords to engine border-line-style codes.
var BorderStyles = map[string]engine.BorderStyle{
	"none":          engine.BorderNone,
	"thin":          engine.BorderThin,
	"medium":        engine.BorderMedium,
	"dashed":        engine.BorderDashed,
	"dotted":        engine.BorderDotted,
	"thick":         engine.BorderThick,
	"double":        engine.BorderDouble,
	"hair":          engine.BorderHair,
	"medium-dashed": engine.BorderMediumDashed,
}

// BorderStyle resolves a border-style keyword.
func BorderStyle(name string) (engine.BorderStyle, error) {
	b, ok := BorderStyles[name]
	if !ok {
		return engine.BorderNone, &UnknownKeywordError{Registry: "border-style", Keyword: name}
	}
	return b, nil
}
