package gridbook

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajack/gridbook/engine"
)

// saveReopen serializes a workbook and reconstructs it through format
// sniffing.
func saveReopen(t *testing.T, wb *Workbook) *Workbook {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, wb.Save(&buf))
	require.NoError(t, wb.Close())
	got, err := Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { got.Close() })
	return got
}

func TestBuild_RoundtripJagged(t *testing.T) {
	grids := []Grid{{
		Name: "one",
		Rows: [][]any{{1}, {2, 3}, {4, 5, 6}},
	}}

	for _, variant := range []engine.Variant{
		engine.LegacyBinary, engine.ZippedXML, engine.ZippedXMLStreaming,
	} {
		t.Run(variant.String(), func(t *testing.T) {
			wb, err := Build(variant, grids)
			require.NoError(t, err)
			got := saveReopen(t, wb)

			data, err := got.Data(Logical, nil)
			require.NoError(t, err)
			assert.Equal(t, map[string][][]any{
				"one": {
					{int64(1)},
					{int64(2), int64(3)},
					{int64(4), int64(5), int64(6)},
				},
			}, data, "row widths survive without padding")
		})
	}
}

func TestBuild_RoundtripMixedTypes(t *testing.T) {
	when := time.Date(2011, 3, 14, 15, 0, 0, 0, time.UTC)
	grids := []Grid{{
		Name: "mixed",
		Rows: [][]any{{"label", 3.14, 42, true, nil, when}},
	}}

	for _, variant := range []engine.Variant{
		engine.LegacyBinary, engine.ZippedXML, engine.ZippedXMLStreaming,
	} {
		t.Run(variant.String(), func(t *testing.T) {
			wb, err := Build(variant, grids)
			require.NoError(t, err)
			got := saveReopen(t, wb)

			data, err := got.Data(Logical, nil)
			require.NoError(t, err)
			row := data["mixed"][0]
			require.Len(t, row, 6)
			assert.Equal(t, "label", row[0])
			assert.Equal(t, 3.14, row[1])
			assert.Equal(t, int64(42), row[2])
			assert.Equal(t, true, row[3])
			assert.Nil(t, row[4])
			ts, ok := row[5].(time.Time)
			require.True(t, ok, "date cell decodes back to time.Time")
			assert.True(t, when.Equal(ts), "want %v, got %v", when, ts)
		})
	}
}

func TestBuild_NilRowIsAbsent(t *testing.T) {
	wb, err := Build(engine.LegacyBinary, []Grid{{
		Name: "gaps",
		Rows: [][]any{{1}, nil, {3}},
	}})
	require.NoError(t, err)
	got := saveReopen(t, wb)

	data, err := got.Data(Logical, nil)
	require.NoError(t, err)
	// The nil row was never created, so only two rows come back.
	assert.Equal(t, [][]any{{int64(1)}, {int64(3)}}, data["gaps"])
}

func TestBuild_SheetOrderPreserved(t *testing.T) {
	grids := []Grid{
		{Name: "zeta", Rows: [][]any{{1}}},
		{Name: "alpha", Rows: [][]any{{2}}},
		{Name: "mid", Rows: [][]any{{3}}},
	}
	wb, err := Build(engine.LegacyBinary, grids)
	require.NoError(t, err)
	got := saveReopen(t, wb)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, got.Engine().SheetNames())
}

func TestBuild_CompositeRoundtrip(t *testing.T) {
	grids := []Grid{{
		Name: "report",
		Rows: [][]any{{
			Spec{
				Value:   "documentation",
				URL:     "https://example.com/docs",
				Comment: &CommentSpec{Text: "entry point", Author: "build"},
			},
		}},
	}}

	for _, variant := range []engine.Variant{
		engine.LegacyBinary, engine.ZippedXML, engine.ZippedXMLStreaming,
	} {
		t.Run(variant.String(), func(t *testing.T) {
			wb, err := Build(variant, grids)
			require.NoError(t, err)
			got := saveReopen(t, wb)

			sheet, err := got.Engine().Sheet("report")
			require.NoError(t, err)
			row, ok := sheet.Row(0)
			require.True(t, ok)
			vals, err := CollectRow(row, Physical, Detail)
			require.NoError(t, err)
			require.Len(t, vals, 1)

			d, ok := vals[0].(CellDetail)
			require.True(t, ok)
			assert.Equal(t, "documentation", d.Value)
			assert.Equal(t, "https://example.com/docs", d.URL)
			assert.Contains(t, d.Comment, "entry point")
		})
	}
}

func TestBuild_FormulaSurvives(t *testing.T) {
	grids := []Grid{{
		Name: "calc",
		Rows: [][]any{{1, 2, Spec{Formula: "SUM(A1:B1)"}}},
	}}

	for _, variant := range []engine.Variant{engine.LegacyBinary, engine.ZippedXML} {
		t.Run(variant.String(), func(t *testing.T) {
			wb, err := Build(variant, grids)
			require.NoError(t, err)
			got := saveReopen(t, wb)

			sheet, err := got.Engine().Sheet("calc")
			require.NoError(t, err)
			row, ok := sheet.Row(0)
			require.True(t, ok)
			cell, ok := row.Cell(2)
			require.True(t, ok)
			assert.Equal(t, engine.TypeFormula, cell.Type())
			assert.Equal(t, "SUM(A1:B1)", cell.Formula())
		})
	}
}

func TestOpen_SniffsVariant(t *testing.T) {
	legacy, err := Build(engine.LegacyBinary, []Grid{{Name: "s", Rows: [][]any{{1}}}})
	require.NoError(t, err)
	assert.Equal(t, engine.LegacyBinary, saveReopen(t, legacy).Variant())

	zipped, err := Build(engine.ZippedXML, []Grid{{Name: "s", Rows: [][]any{{1}}}})
	require.NoError(t, err)
	assert.Equal(t, engine.ZippedXML, saveReopen(t, zipped).Variant())

	// The streaming variant produces the same container as the random-access
	// one, so it reopens as zipped-xml.
	streamed, err := Build(engine.ZippedXMLStreaming, []Grid{{Name: "s", Rows: [][]any{{1}}}})
	require.NoError(t, err)
	assert.Equal(t, engine.ZippedXML, saveReopen(t, streamed).Variant())
}

func TestOpen_UnrecognizedBytes(t *testing.T) {
	_, err := Open(strings.NewReader("neither container magic"))
	assert.ErrorIs(t, err, engine.ErrFormatRecognition)

	_, err = Open(bytes.NewReader(nil))
	assert.ErrorIs(t, err, engine.ErrFormatRecognition)
}

func TestBuild_EncodeErrorReleasesWorkbook(t *testing.T) {
	_, err := Build(engine.ZippedXML, []Grid{{
		Name: "bad",
		Rows: [][]any{{struct{}{}}},
	}})
	assert.ErrorIs(t, err, ErrUnsupportedValueKind)
}

func TestBuild_DuplicateSheet(t *testing.T) {
	_, err := Build(engine.LegacyBinary, []Grid{
		{Name: "dup", Rows: [][]any{{1}}},
		{Name: "dup", Rows: [][]any{{2}}},
	})
	assert.ErrorIs(t, err, engine.ErrSheetExists)
}

func TestNew_UnknownVariant(t *testing.T) {
	_, err := New(engine.Variant(99))
	assert.Error(t, err)
}
