package engine

// BorderStyle is a border line style. The numeric values are the BIFF XF
// line-style codes; the zipped-XML engine maps them to the equivalent OOXML
// style names.
type BorderStyle int

const (
	BorderNone         BorderStyle = 0
	BorderThin         BorderStyle = 1
	BorderMedium       BorderStyle = 2
	BorderDashed       BorderStyle = 3
	BorderDotted       BorderStyle = 4
	BorderThick        BorderStyle = 5
	BorderDouble       BorderStyle = 6
	BorderHair         BorderStyle = 7
	BorderMediumDashed BorderStyle = 8
)

// Underline is a font underline kind, using the BIFF font codes.
type Underline int

const (
	UnderlineNone             Underline = 0x00
	UnderlineSingle           Underline = 0x01
	UnderlineDouble           Underline = 0x02
	UnderlineSingleAccounting Underline = 0x21
	UnderlineDoubleAccounting Underline = 0x22
)

// Pattern is a cell fill pattern, using the BIFF fill codes (1 = solid).
type Pattern int

const (
	PatternNone      Pattern = 0
	PatternSolid     Pattern = 1
	PatternGray50    Pattern = 2
	PatternGray75    Pattern = 3
	PatternGray25    Pattern = 4
	PatternHorStripe Pattern = 5
	PatternVerStripe Pattern = 6
)

// Color is a palette color index, using the BIFF8 standard palette. Zero
// means "automatic" (engine default).
type Color int

const (
	ColorAuto      Color = 0
	ColorBlack     Color = 8
	ColorWhite     Color = 9
	ColorRed       Color = 10
	ColorGreen     Color = 11
	ColorBlue      Color = 12
	ColorYellow    Color = 13
	ColorMagenta   Color = 14
	ColorCyan      Color = 15
	ColorMaroon    Color = 16
	ColorDarkGreen Color = 17
	ColorDarkBlue  Color = 18
	ColorOlive     Color = 19
	ColorPurple    Color = 20
	ColorTeal      Color = 21
	ColorGrey      Color = 22
	ColorDarkGrey  Color = 23
	ColorOrange    Color = 53
)

// paletteRGB maps the palette indexes above to RRGGBB hex strings for
// engines that store colors as RGB.
var paletteRGB = map[Color]string{
	ColorBlack:     "000000",
	ColorWhite:     "FFFFFF",
	ColorRed:       "FF0000",
	ColorGreen:     "00FF00",
	ColorBlue:      "0000FF",
	ColorYellow:    "FFFF00",
	ColorMagenta:   "FF00FF",
	ColorCyan:      "00FFFF",
	ColorMaroon:    "800000",
	ColorDarkGreen: "008000",
	ColorDarkBlue:  "000080",
	ColorOlive:     "808000",
	ColorPurple:    "800080",
	ColorTeal:      "008080",
	ColorGrey:      "C0C0C0",
	ColorDarkGrey:  "808080",
	ColorOrange:    "FF6600",
}

// RGB returns the RRGGBB hex string for a palette color, or "" for
// ColorAuto and unknown indexes.
func (c Color) RGB() string {
	return paletteRGB[c]
}
