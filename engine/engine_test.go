package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariantString(t *testing.T) {
	assert.Equal(t, "legacy-binary", LegacyBinary.String())
	assert.Equal(t, "zipped-xml", ZippedXML.String())
	assert.Equal(t, "zipped-xml-streaming", ZippedXMLStreaming.String())
	assert.Equal(t, "unknown", Variant(42).String())
}

func TestColorRGB(t *testing.T) {
	assert.Equal(t, "FF0000", ColorRed.RGB())
	assert.Equal(t, "", ColorAuto.RGB(), "automatic has no fixed RGB")
	assert.Equal(t, "", Color(99).RGB())
}

func TestBuiltinNumFmtID_Inverse(t *testing.T) {
	for id, pattern := range BuiltinNumFmt {
		got, ok := BuiltinNumFmtID(pattern)
		assert.True(t, ok, "pattern %q", pattern)
		assert.Equal(t, id, got)
	}
	_, ok := BuiltinNumFmtID("0.000")
	assert.False(t, ok)
}
