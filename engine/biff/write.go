package biff

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/javajack/gridbook/engine"
	"github.com/javajack/gridbook/internal/compdoc"
)

// Moniker GUIDs used by hyperlink records.
var (
	guidStdLink = []byte{
		0xD0, 0xC9, 0xEA, 0x79, 0xF9, 0xBA, 0xCE, 0x11,
		0x8C, 0x82, 0x00, 0xAA, 0x00, 0x4B, 0xA9, 0x0B,
	}
	guidURLMoniker = []byte{
		0xE0, 0xC9, 0xEA, 0x79, 0xF9, 0xBA, 0xCE, 0x11,
		0x8C, 0x82, 0x00, 0xAA, 0x00, 0x4B, 0xA9, 0x0B,
	}
)

// write serializes the workbook globals and one substream per sheet, then
// wraps the whole stream in a compound document.
func (wb *Workbook) write(w io.Writer) error {
	sst := newStringTable(wb)

	streams := make([][]byte, len(wb.order))
	for i, name := range wb.order {
		stream, err := wb.writeSheet(wb.sheets[name], sst)
		if err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
		streams[i] = stream
	}

	globals, posOffsets := wb.writeGlobals(sst)

	// Patch each boundsheet's absolute substream position now that the
	// globals length is final.
	offset := len(globals)
	for i, stream := range streams {
		binary.LittleEndian.PutUint32(globals[posOffsets[i]:], uint32(offset))
		offset += len(stream)
	}

	out := make([]byte, 0, offset)
	out = append(out, globals...)
	for _, stream := range streams {
		out = append(out, stream...)
	}
	return compdoc.Write(w, "Workbook", out)
}

// writeGlobals builds the workbook-globals substream and returns it along
// with the byte offset of each boundsheet's position field.
func (wb *Workbook) writeGlobals(sst *stringTable) ([]byte, []int) {
	var rw recordWriter

	rw.record(recBOF, bofRecord(bofGlobals))
	rw.record(recCodePage, appendU16(nil, 0x04B0)) // UTF-16
	rw.record(recWindow1, window1Record())
	rw.record(recDateMode, appendU16(nil, 0)) // 1900 date system

	for i := 0; i < defaultFontRecords; i++ {
		rw.record(recFont, fontRecord(defaultFont))
	}
	for _, def := range wb.fonts {
		rw.record(recFont, fontRecord(def))
	}

	for i, pattern := range wb.formats {
		body := appendU16(nil, uint16(firstCustomFormat+i))
		body = append(body, string16(pattern)...)
		rw.record(recFormat, body)
	}

	for i := 0; i < defaultXFRecords; i++ {
		rw.record(recXF, xfRecord(xfDef{}, i != defaultCellXF))
	}
	for _, xf := range wb.xfs {
		rw.record(recXF, xfRecord(xf, false))
	}

	posOffsets := make([]int, len(wb.order))
	for i, name := range wb.order {
		posOffsets[i] = rw.len() + 4 // position field sits right after the record header
		body := appendU32(nil, 0)    // patched by the caller
		body = append(body, 0, 0)    // visible worksheet
		body = append(body, string8(name)...)
		rw.record(recBoundSheet, body)
	}

	if len(sst.strings) > 0 {
		body := appendU32(nil, uint32(sst.total))
		body = appendU32(body, uint32(len(sst.strings)))
		for _, s := range sst.strings {
			body = append(body, string16(s)...)
		}
		rw.record(recSST, body)
	}

	rw.record(recEOF, nil)
	return rw.bytes(), posOffsets
}

// writeSheet builds one worksheet substream.
func (wb *Workbook) writeSheet(sheet *Sheet, sst *stringTable) ([]byte, error) {
	var rw recordWriter
	rw.record(recBOF, bofRecord(bofWorksheet))
	rw.record(recDimensions, dimensionsRecord(sheet))

	for row := range sheet.Rows() {
		r := row.(*Row)
		rw.record(recRow, rowRecord(r))
	}

	var links, notes []*Cell
	for row := range sheet.Rows() {
		for cell := range row.Cells() {
			c := cell.(*Cell)
			if err := writeCell(&rw, c, sst); err != nil {
				return nil, err
			}
			if c.link != nil {
				links = append(links, c)
			}
			if c.comment != nil {
				notes = append(notes, c)
			}
		}
	}

	rw.record(recWindow2, window2Record())
	for _, c := range links {
		rw.record(recHyperlink, hyperlinkRecord(c))
	}
	for i, c := range notes {
		rw.record(recNote, noteRecord(c, i+1))
	}
	rw.record(recEOF, nil)
	return rw.bytes(), nil
}

func writeCell(rw *recordWriter, c *Cell, sst *stringTable) error {
	head := appendU16(nil, uint16(c.row.idx))
	head = appendU16(head, uint16(c.col))
	head = appendU16(head, uint16(c.xf))

	switch c.typ {
	case engine.TypeBlank:
		rw.record(recBlank, head)
	case engine.TypeBoolean:
		v := byte(0)
		if c.boolVal {
			v = 1
		}
		rw.record(recBoolErr, append(head, v, 0))
	case engine.TypeNumeric:
		rw.record(recNumber, appendF64(head, c.numVal))
	case engine.TypeString:
		rw.record(recLabelSST, appendU32(head, uint32(sst.index(c.strVal))))
	case engine.TypeFormula:
		body := head
		// No cached result: the non-numeric sentinel with the empty marker.
		body = append(body, 0x03, 0, 0, 0, 0, 0, 0xFF, 0xFF)
		body = appendU16(body, 0x0002) // recalculate on load
		body = appendU32(body, 0)
		rgce := append([]byte{ptgStr}, string8(c.formula)...)
		body = appendU16(body, uint16(len(rgce)))
		body = append(body, rgce...)
		rw.record(recFormula, body)
	default:
		return fmt.Errorf("unhandled cell type %v", c.typ)
	}
	return nil
}

func bofRecord(substream uint16) []byte {
	body := appendU16(nil, 0x0600) // BIFF8
	body = appendU16(body, substream)
	body = appendU16(body, 0x0DBB) // build id
	body = appendU16(body, 0x07CC) // build year
	body = appendU32(body, 0)
	body = appendU32(body, 0x0006)
	return body
}

func window1Record() []byte {
	body := appendU16(nil, 0x0168) // window position and extent
	body = appendU16(body, 0x010E)
	body = appendU16(body, 0x3A5C)
	body = appendU16(body, 0x225C)
	body = appendU16(body, 0x0038) // horizontal and vertical scrollbars, tabs
	body = appendU16(body, 0)
	body = appendU16(body, 0)
	body = appendU16(body, 1)
	body = appendU16(body, 0x0258)
	return body
}

func window2Record() []byte {
	body := appendU16(nil, 0x06B6) // gridlines, headings, zero values, selected
	body = appendU16(body, 0)
	body = appendU16(body, 0)
	body = appendU32(body, 0x40) // gridline color: automatic
	body = appendU16(body, 0)
	body = appendU16(body, 0)
	body = appendU32(body, 0)
	return body
}

func fontRecord(def engine.FontDef) []byte {
	size := def.Size
	if size == 0 {
		size = 10
	}
	var grbit uint16
	if def.Italic {
		grbit |= 0x0002
	}
	if def.Strikeout {
		grbit |= 0x0008
	}
	color := uint16(0x7FFF) // automatic
	if def.Color != 0 {
		color = uint16(def.Color)
	}
	weight := uint16(400)
	if def.Bold {
		weight = 700
	}
	name := def.Name
	if name == "" {
		name = defaultFont.Name
	}

	body := appendU16(nil, uint16(size*20)) // height in twips
	body = appendU16(body, grbit)
	body = appendU16(body, color)
	body = appendU16(body, weight)
	body = appendU16(body, 0) // no escapement
	body = append(body, byte(def.Underline), 0, 0, 0)
	body = append(body, string8(name)...)
	return body
}

// xfRecord lays out one extended-format entry. The border line styles and
// the fill pattern use the bit packing the format defines; border edges are
// drawn black when set.
func xfRecord(xf xfDef, styleXF bool) []byte {
	body := appendU16(nil, uint16(xf.fontIndex))
	body = appendU16(body, uint16(xf.fmtID))
	if styleXF {
		body = appendU16(body, 0xFFF5)
	} else {
		body = appendU16(body, 0x0001) // locked, parent style 0
	}
	body = append(body, 0x20, 0, 0) // general horizontal, bottom vertical
	if styleXF {
		body = append(body, 0x00)
	} else {
		body = append(body, 0xFC) // all attribute groups taken from this XF
	}

	var lines uint32
	var colors uint32
	if xf.hasBorder {
		const black = 8
		pack := func(style engine.BorderStyle, shift uint) (uint32, uint32) {
			if style == engine.BorderNone {
				return 0, 0
			}
			return uint32(style) & 0xF << shift, black
		}
		l, lc := pack(xf.border.Left, 0)
		r, rc := pack(xf.border.Right, 4)
		t, tc := pack(xf.border.Top, 8)
		b, bc := pack(xf.border.Bottom, 12)
		lines = l | r | t | b | lc<<16 | rc<<23
		colors = tc | bc<<7
	}
	colors |= uint32(xf.pattern) << 26
	body = appendU32(body, lines)
	body = appendU32(body, colors)

	var fill uint16
	if xf.pattern != engine.PatternNone {
		fill = uint16(xf.fillFg)&0x7F | 0x41<<7 // background: system window color
	}
	body = appendU16(body, fill)
	return body
}

func dimensionsRecord(sheet *Sheet) []byte {
	maxRow, maxCol := 0, 0
	for idx, row := range sheet.rows {
		if idx+1 > maxRow {
			maxRow = idx + 1
		}
		if last := row.LastCol(); last+1 > maxCol {
			maxCol = last + 1
		}
	}
	body := appendU32(nil, 0)
	body = appendU32(body, uint32(maxRow))
	body = appendU16(body, 0)
	body = appendU16(body, uint16(maxCol))
	body = appendU16(body, 0)
	return body
}

func rowRecord(r *Row) []byte {
	body := appendU16(nil, uint16(r.idx))
	body = appendU16(body, 0)
	body = appendU16(body, uint16(r.LastCol()+1))
	body = appendU16(body, 0x00FF) // default height
	body = appendU16(body, 0)
	body = appendU16(body, 0)
	body = appendU16(body, 0x0100)
	body = appendU16(body, uint16(defaultCellXF))
	return body
}

// hyperlinkRecord writes a single-cell link with an absolute URL moniker.
func hyperlinkRecord(c *Cell) []byte {
	body := appendU16(nil, uint16(c.row.idx))
	body = appendU16(body, uint16(c.row.idx))
	body = appendU16(body, uint16(c.col))
	body = appendU16(body, uint16(c.col))
	body = append(body, guidStdLink...)
	body = appendU32(body, 2)
	body = appendU32(body, 0x03) // has moniker, absolute
	body = append(body, guidURLMoniker...)
	target := utf16LE(c.link.Target)
	body = appendU32(body, uint32(len(target)+2))
	body = append(body, target...)
	body = append(body, 0, 0)
	return body
}

// noteRecord carries the comment text inline after the author string.
// Readers that expect the text in a separate text object see only the
// author, which degrades gracefully.
func noteRecord(c *Cell, objID int) []byte {
	body := appendU16(nil, uint16(c.row.idx))
	body = appendU16(body, uint16(c.col))
	body = appendU16(body, 0)
	body = appendU16(body, uint16(objID))
	body = append(body, string16(c.comment.Author)...)
	body = append(body, string16(c.comment.Text)...)
	body = appendU16(body, uint16(c.comment.Width))
	body = appendU16(body, uint16(c.comment.Height))
	return body
}

// stringTable is the shared-string table, deduplicated in first-use order.
type stringTable struct {
	strings []string
	byValue map[string]int
	total   int
}

// newStringTable collects every string cell across the workbook so the
// table can be written with the globals, before any cell record.
func newStringTable(wb *Workbook) *stringTable {
	t := &stringTable{byValue: make(map[string]int)}
	for _, name := range wb.order {
		for row := range wb.sheets[name].Rows() {
			for cell := range row.Cells() {
				if c := cell.(*Cell); c.typ == engine.TypeString {
					t.add(c.strVal)
				}
			}
		}
	}
	return t
}

func (t *stringTable) add(s string) {
	t.total++
	if _, ok := t.byValue[s]; !ok {
		t.byValue[s] = len(t.strings)
		t.strings = append(t.strings, s)
	}
}

func (t *stringTable) index(s string) int {
	return t.byValue[s]
}
