package gridbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajack/gridbook/engine"
	"github.com/javajack/gridbook/engine/biff"
)

func TestResolveBorder_Shorthand(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want engine.BorderDef
	}{
		{
			"single keyword on all edges",
			"medium-dashed",
			engine.BorderDef{
				Top: engine.BorderMediumDashed, Right: engine.BorderMediumDashed,
				Bottom: engine.BorderMediumDashed, Left: engine.BorderMediumDashed,
			},
		},
		{
			"two edges: top/bottom then left/right",
			[]string{"none", "medium"},
			engine.BorderDef{Left: engine.BorderMedium, Right: engine.BorderMedium},
		},
		{
			"four edges clockwise from top",
			[]string{"none", "thin", "medium", "thick"},
			engine.BorderDef{
				Right: engine.BorderThin, Bottom: engine.BorderMedium, Left: engine.BorderThick,
			},
		},
		{
			"typed styles",
			[]engine.BorderStyle{engine.BorderHair, engine.BorderDouble},
			engine.BorderDef{
				Top: engine.BorderHair, Bottom: engine.BorderHair,
				Left: engine.BorderDouble, Right: engine.BorderDouble,
			},
		},
		{
			"mixed sequence",
			[]any{"thin", engine.BorderDotted},
			engine.BorderDef{
				Top: engine.BorderThin, Bottom: engine.BorderThin,
				Left: engine.BorderDotted, Right: engine.BorderDotted,
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveBorder(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestResolveBorder_BadArity(t *testing.T) {
	for _, in := range []any{
		[]string{"thin", "thin", "thin"},
		[]string{},
		[]string{"thin", "thin", "thin", "thin", "thin"},
	} {
		_, err := resolveBorder(in)
		assert.ErrorIs(t, err, ErrInvalidBorderSpec, "%v", in)
	}
}

func TestResolveBorder_UnknownKeyword(t *testing.T) {
	_, err := resolveBorder("wavy")
	var unknown *UnknownKeywordError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "border-style", unknown.Registry)
	assert.Equal(t, "wavy", unknown.Keyword)
}

func TestColorIndex(t *testing.T) {
	c, err := ColorIndex("red")
	require.NoError(t, err)
	assert.Equal(t, engine.ColorRed, c)

	// Both spellings resolve to the same index.
	grey, _ := ColorIndex("grey")
	gray, _ := ColorIndex("gray")
	assert.Equal(t, grey, gray)

	_, err = ColorIndex("chartreuse")
	var unknown *UnknownKeywordError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "color", unknown.Registry)
}

func TestFormatPattern(t *testing.T) {
	assert.Equal(t, "0", FormatPattern("integer"))
	assert.Equal(t, "m/d/yy h:mm", FormatPattern("date"))
	// Unknown names pass through as literal patterns.
	assert.Equal(t, "0.000%", FormatPattern("0.000%"))
}

func TestNewCellStyle_FillDefaultsSolid(t *testing.T) {
	wb := biff.New()
	style, err := NewCellStyle(wb, StyleSpec{ForegroundColor: "yellow"})
	require.NoError(t, err)
	assert.NotNil(t, style)
}

func TestNewCellStyle_ResolutionFailureCreatesNothing(t *testing.T) {
	wb := biff.New()
	_, err := NewCellStyle(wb, StyleSpec{
		Format: "integer",
		Border: []string{"thin", "thin", "thin"},
	})
	assert.ErrorIs(t, err, ErrInvalidBorderSpec)
}

func TestResolveFont(t *testing.T) {
	wb := biff.New()
	font, err := ResolveFont(wb, FontSpec{
		Font: "Verdana", Size: 12, Bold: true, Underline: "double", Color: "blue",
	})
	require.NoError(t, err)
	assert.NotNil(t, font)

	_, err = ResolveFont(wb, FontSpec{Underline: "wiggly"})
	var unknown *UnknownKeywordError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "underline", unknown.Registry)
}
