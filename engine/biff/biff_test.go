package biff

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajack/gridbook/engine"
)

func roundtrip(t *testing.T, wb *Workbook) *Workbook {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, wb.Save(&buf))
	out, err := Open(buf.Bytes())
	require.NoError(t, err)
	return out
}

func mustCell(t *testing.T, wb *Workbook, sheet string, rowIdx, col int) engine.Cell {
	t.Helper()
	s, err := wb.Sheet(sheet)
	require.NoError(t, err)
	row, ok := s.Row(rowIdx)
	require.True(t, ok, "row %d", rowIdx)
	cell, ok := row.Cell(col)
	require.True(t, ok, "cell (%d,%d)", rowIdx, col)
	return cell
}

func TestRoundtrip_ScalarTypes(t *testing.T) {
	wb := New()
	sheet, err := wb.AddSheet("data")
	require.NoError(t, err)

	row, _ := sheet.AddRow(0)
	c0, _ := row.AddCell(0)
	require.NoError(t, c0.SetNumber(3.25))
	c1, _ := row.AddCell(1)
	require.NoError(t, c1.SetString("héllo"))
	c2, _ := row.AddCell(2)
	require.NoError(t, c2.SetBool(true))
	c3, _ := row.AddCell(3)
	require.NoError(t, c3.SetBlank())

	got := roundtrip(t, wb)
	assert.Equal(t, []string{"data"}, got.SheetNames())

	assert.Equal(t, 3.25, mustCell(t, got, "data", 0, 0).Number())
	assert.Equal(t, "héllo", mustCell(t, got, "data", 0, 1).Text())
	assert.True(t, mustCell(t, got, "data", 0, 2).Bool())
	assert.Equal(t, engine.TypeBlank, mustCell(t, got, "data", 0, 3).Type())
}

func TestRoundtrip_JaggedShape(t *testing.T) {
	wb := New()
	sheet, _ := wb.AddSheet("jagged")

	// Row 0 has one cell, row 2 has cells at columns 0 and 4 only.
	row0, _ := sheet.AddRow(0)
	c, _ := row0.AddCell(0)
	c.SetNumber(1)
	row2, _ := sheet.AddRow(2)
	a, _ := row2.AddCell(0)
	a.SetNumber(2)
	b, _ := row2.AddCell(4)
	b.SetNumber(3)

	got := roundtrip(t, wb)
	s, err := got.Sheet("jagged")
	require.NoError(t, err)

	_, ok := s.Row(1)
	assert.False(t, ok, "row 1 was never written")

	row, ok := s.Row(2)
	require.True(t, ok)
	assert.Equal(t, 4, row.LastCol())
	_, ok = row.Cell(2)
	assert.False(t, ok, "interior gap must stay absent")

	var cols []int
	for cell := range row.Cells() {
		cols = append(cols, cell.Column())
	}
	assert.Equal(t, []int{0, 4}, cols)
}

func TestRoundtrip_SharedStrings(t *testing.T) {
	wb := New()
	sheet, _ := wb.AddSheet("s")
	row, _ := sheet.AddRow(0)
	for col, s := range []string{"dup", "dup", "other", "dup"} {
		cell, _ := row.AddCell(col)
		require.NoError(t, cell.SetString(s))
	}

	got := roundtrip(t, wb)
	assert.Equal(t, "dup", mustCell(t, got, "s", 0, 0).Text())
	assert.Equal(t, "dup", mustCell(t, got, "s", 0, 1).Text())
	assert.Equal(t, "other", mustCell(t, got, "s", 0, 2).Text())
	assert.Equal(t, "dup", mustCell(t, got, "s", 0, 3).Text())
}

func TestRoundtrip_LargeStringTable(t *testing.T) {
	// A single long cell pushes the shared-string table well past one
	// record body; it must come back intact, not truncated.
	long := strings.Repeat("a", 40000)
	wb := New()
	sheet, _ := wb.AddSheet("big")
	row, _ := sheet.AddRow(0)
	c0, _ := row.AddCell(0)
	require.NoError(t, c0.SetString(long))
	c1, _ := row.AddCell(1)
	require.NoError(t, c1.SetString("small"))

	got := roundtrip(t, wb)
	assert.Equal(t, long, mustCell(t, got, "big", 0, 0).Text())
	assert.Equal(t, "small", mustCell(t, got, "big", 0, 1).Text())
}

func TestRecord_ContinueSplit(t *testing.T) {
	body := bytes.Repeat([]byte{0xAB}, 3*maxRecordBody+17)
	var rw recordWriter
	rw.record(recSST, body)

	sc := &recordScanner{data: rw.bytes()}
	id, got, ok := sc.next()
	require.True(t, ok)
	assert.Equal(t, uint16(recSST), id)
	assert.Equal(t, body, got)
	_, _, ok = sc.next()
	assert.False(t, ok, "continuation records are folded into the logical record")
}

func TestRoundtrip_NumberFormats(t *testing.T) {
	wb := New()
	sheet, _ := wb.AddSheet("fmt")

	intStyle, err := wb.NewStyle(engine.StyleDef{NumFmt: "0"})
	require.NoError(t, err)
	dateStyle, err := wb.NewStyle(engine.StyleDef{NumFmt: "m/d/yy h:mm"})
	require.NoError(t, err)
	customStyle, err := wb.NewStyle(engine.StyleDef{NumFmt: "0.000"})
	require.NoError(t, err)

	row, _ := sheet.AddRow(0)
	for col, style := range []engine.Style{intStyle, dateStyle, customStyle} {
		cell, _ := row.AddCell(col)
		require.NoError(t, cell.SetNumber(float64(col)+0.5))
		require.NoError(t, cell.SetStyle(style))
	}

	got := roundtrip(t, wb)
	assert.Equal(t, "0", mustCell(t, got, "fmt", 0, 0).NumberFormat())
	assert.Equal(t, "m/d/yy h:mm", mustCell(t, got, "fmt", 0, 1).NumberFormat())
	assert.Equal(t, "0.000", mustCell(t, got, "fmt", 0, 2).NumberFormat())
}

func TestNewStyle_Dedup(t *testing.T) {
	wb := New()
	a, err := wb.NewStyle(engine.StyleDef{NumFmt: "0.00"})
	require.NoError(t, err)
	b, err := wb.NewStyle(engine.StyleDef{NumFmt: "0.00"})
	require.NoError(t, err)
	assert.Equal(t, a.StyleID(), b.StyleID())
	assert.Len(t, wb.xfs, 1)
}

func TestRoundtrip_Formula(t *testing.T) {
	wb := New()
	sheet, _ := wb.AddSheet("f")
	row, _ := sheet.AddRow(0)
	cell, _ := row.AddCell(0)
	require.NoError(t, cell.SetFormula("SUM(A2:A9)"))

	got := roundtrip(t, wb)
	c := mustCell(t, got, "f", 0, 0)
	assert.Equal(t, engine.TypeFormula, c.Type())
	assert.Equal(t, "SUM(A2:A9)", c.Formula())
	assert.Equal(t, engine.TypeBlank, c.CachedType())
	assert.Nil(t, c.CachedValue())
}

func TestRoundtrip_Hyperlink(t *testing.T) {
	wb := New()
	sheet, _ := wb.AddSheet("links")
	row, _ := sheet.AddRow(1)
	cell, _ := row.AddCell(2)
	require.NoError(t, cell.SetString("site"))
	require.NoError(t, cell.SetHyperlink(engine.Hyperlink{Kind: engine.LinkURL, Target: "https://example.com/x"}))

	got := roundtrip(t, wb)
	link, ok := mustCell(t, got, "links", 1, 2).Hyperlink()
	require.True(t, ok)
	assert.Equal(t, engine.LinkURL, link.Kind)
	assert.Equal(t, "https://example.com/x", link.Target)
}

func TestRoundtrip_Comment(t *testing.T) {
	wb := New()
	sheet, _ := wb.AddSheet("notes")
	row, _ := sheet.AddRow(0)
	cell, _ := row.AddCell(0)
	require.NoError(t, cell.SetString("x"))
	require.NoError(t, cell.SetComment(engine.Comment{
		Author: "reviewer", Text: "check this", Width: 3, Height: 2,
	}))

	got := roundtrip(t, wb)
	comment, ok := mustCell(t, got, "notes", 0, 0).Comment()
	require.True(t, ok)
	assert.Equal(t, "reviewer", comment.Author)
	assert.Equal(t, "check this", comment.Text)
	assert.Equal(t, 3, comment.Width)
	assert.Equal(t, 2, comment.Height)
}

func TestRoundtrip_MultipleSheets(t *testing.T) {
	wb := New()
	for _, name := range []string{"alpha", "beta", "gamma"} {
		sheet, err := wb.AddSheet(name)
		require.NoError(t, err)
		row, _ := sheet.AddRow(0)
		cell, _ := row.AddCell(0)
		require.NoError(t, cell.SetString(name))
	}

	got := roundtrip(t, wb)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, got.SheetNames())
	for _, name := range got.SheetNames() {
		assert.Equal(t, name, mustCell(t, got, name, 0, 0).Text())
	}
}

func TestAddSheet_Duplicate(t *testing.T) {
	wb := New()
	_, err := wb.AddSheet("x")
	require.NoError(t, err)
	_, err = wb.AddSheet("x")
	assert.ErrorIs(t, err, engine.ErrSheetExists)
}

func TestOpen_Garbage(t *testing.T) {
	_, err := Open([]byte("not a compound document at all"))
	assert.ErrorIs(t, err, engine.ErrFormatRecognition)
}

func TestStringCodec(t *testing.T) {
	for _, s := range []string{"", "plain", "naïve", "日本語", "mixed ascii ünd more"} {
		got, n, err := parseString16(string16(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.Equal(t, len(string16(s)), n)
	}
}

func TestParseString_Compressed(t *testing.T) {
	// A compressed (single byte per character) string as legacy writers
	// produce for plain Latin-1 text.
	raw := append([]byte{5, 0x00}, []byte("caf\xe9s")...)
	got, n, err := parseString8(raw)
	require.NoError(t, err)
	assert.Equal(t, "cafés", got)
	assert.Equal(t, len(raw), n)
}
