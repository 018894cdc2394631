package biff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/richardlehane/mscfb"

	"github.com/javajack/gridbook/engine"
)

// Open rebuilds a workbook from legacy-binary bytes. The compound-document
// container is walked with mscfb; the workbook stream inside it is parsed
// record by record.
func Open(data []byte) (*Workbook, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrFormatRecognition, err)
	}

	var stream []byte
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name != "Workbook" && entry.Name != "Book" {
			continue
		}
		stream = make([]byte, entry.Size)
		if _, err := io.ReadFull(entry, stream); err != nil {
			return nil, fmt.Errorf("read workbook stream: %w", err)
		}
		break
	}
	if stream == nil {
		return nil, fmt.Errorf("%w: no workbook stream in container", engine.ErrFormatRecognition)
	}
	return parseStream(stream)
}

// boundSheet is one sheet's directory entry in the globals.
type boundSheet struct {
	name string
	pos  int
}

func parseStream(stream []byte) (*Workbook, error) {
	wb := New()

	scan := &recordScanner{data: stream}
	id, _, ok := scan.next()
	if !ok || id != recBOF {
		return nil, fmt.Errorf("%w: workbook stream does not start with BOF", engine.ErrFormatRecognition)
	}

	var (
		sheets    []boundSheet
		sst       []string
		xfFmts    []int
		fontCount int
	)

globals:
	for {
		id, body, ok := scan.next()
		if !ok {
			return nil, fmt.Errorf("%w: truncated globals", engine.ErrFormatRecognition)
		}
		switch id {
		case recEOF:
			break globals
		case recFont:
			fileIdx := fontCount
			if fileIdx >= 4 {
				fileIdx++ // font index 4 is reserved
			}
			fontCount++
			if fileIdx >= firstCustomFont {
				def, err := parseFont(body)
				if err != nil {
					return nil, err
				}
				wb.fonts = append(wb.fonts, def)
			}
		case recFormat:
			if len(body) < 2 {
				return nil, fmt.Errorf("short format record")
			}
			ifmt := int(binary.LittleEndian.Uint16(body))
			pattern, _, err := parseString16(body[2:])
			if err != nil {
				return nil, fmt.Errorf("format %d: %w", ifmt, err)
			}
			if ifmt >= firstCustomFormat {
				for len(wb.formats) <= ifmt-firstCustomFormat {
					wb.formats = append(wb.formats, "")
				}
				wb.formats[ifmt-firstCustomFormat] = pattern
				wb.fmtIDs[pattern] = ifmt
			}
		case recXF:
			xf, err := parseXF(body)
			if err != nil {
				return nil, err
			}
			xfFmts = append(xfFmts, xf.fmtID)
			if len(xfFmts) > defaultXFRecords {
				wb.xfs = append(wb.xfs, xf)
			}
		case recSST:
			parsed, err := parseSST(body)
			if err != nil {
				return nil, err
			}
			sst = parsed
		case recBoundSheet:
			if len(body) < 8 {
				return nil, fmt.Errorf("short boundsheet record")
			}
			name, _, err := parseString8(body[6:])
			if err != nil {
				return nil, fmt.Errorf("boundsheet name: %w", err)
			}
			sheets = append(sheets, boundSheet{name: name, pos: int(binary.LittleEndian.Uint32(body))})
		}
	}

	for _, bs := range sheets {
		if bs.pos < 0 || bs.pos >= len(stream) {
			return nil, fmt.Errorf("%w: sheet %q position out of range", engine.ErrFormatRecognition, bs.name)
		}
		sheetIface, err := wb.AddSheet(bs.name)
		if err != nil {
			return nil, err
		}
		if err := parseSheet(sheetIface.(*Sheet), stream[bs.pos:], sst, xfFmts); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", bs.name, err)
		}
	}
	return wb, nil
}

func parseSheet(sheet *Sheet, sub []byte, sst []string, xfFmts []int) error {
	scan := &recordScanner{data: sub}
	id, _, ok := scan.next()
	if !ok || id != recBOF {
		return fmt.Errorf("%w: substream does not start with BOF", engine.ErrFormatRecognition)
	}

	wb := sheet.wb
	cellAt := func(body []byte) (*Cell, error) {
		if len(body) < 6 {
			return nil, fmt.Errorf("short cell record")
		}
		rowIdx := int(binary.LittleEndian.Uint16(body))
		col := int(binary.LittleEndian.Uint16(body[2:]))
		ix := int(binary.LittleEndian.Uint16(body[4:]))
		row, _ := sheet.AddRow(rowIdx)
		cellIface, _ := row.AddCell(col)
		cell := cellIface.(*Cell)
		if ix < len(xfFmts) {
			cell.xf = ix
			cell.numFmt = wb.formatPattern(xfFmts[ix])
		}
		return cell, nil
	}

	var pendingString *Cell
	for {
		id, body, ok := scan.next()
		if !ok {
			return fmt.Errorf("%w: truncated substream", engine.ErrFormatRecognition)
		}
		if id != recString {
			pendingString = nil
		}
		switch id {
		case recEOF:
			return nil
		case recBlank:
			cell, err := cellAt(body)
			if err != nil {
				return err
			}
			cell.typ = engine.TypeBlank
		case recNumber:
			cell, err := cellAt(body)
			if err != nil {
				return err
			}
			if len(body) < 14 {
				return fmt.Errorf("short number record")
			}
			cell.typ = engine.TypeNumeric
			cell.numVal = math.Float64frombits(binary.LittleEndian.Uint64(body[6:]))
		case recLabelSST:
			cell, err := cellAt(body)
			if err != nil {
				return err
			}
			if len(body) < 10 {
				return fmt.Errorf("short label record")
			}
			isst := int(binary.LittleEndian.Uint32(body[6:]))
			if isst >= len(sst) {
				return fmt.Errorf("shared string %d out of range", isst)
			}
			cell.typ = engine.TypeString
			cell.strVal = sst[isst]
		case recBoolErr:
			cell, err := cellAt(body)
			if err != nil {
				return err
			}
			if len(body) < 8 {
				return fmt.Errorf("short boolerr record")
			}
			if body[7] == 0 {
				cell.typ = engine.TypeBoolean
				cell.boolVal = body[6] != 0
			} else {
				cell.typ = engine.TypeBlank // error values decay to blank
			}
		case recFormula:
			cell, err := cellAt(body)
			if err != nil {
				return err
			}
			if err := parseFormula(cell, body); err != nil {
				return err
			}
			if cell.cachedTyp == engine.TypeString && cell.cachedVal == nil {
				pendingString = cell
			}
		case recString:
			if pendingString != nil {
				text, _, err := parseString16(body)
				if err != nil {
					return fmt.Errorf("formula result string: %w", err)
				}
				pendingString.cachedVal = text
				pendingString = nil
			}
		case recHyperlink:
			if err := parseHyperlink(sheet, body); err != nil {
				return err
			}
		case recNote:
			if err := parseNote(sheet, body); err != nil {
				return err
			}
		}
	}
}

// parseFormula fills in the expression text and the cached result. The
// expression is recovered only from the string-constant shape this engine
// writes; anything else yields an empty expression.
func parseFormula(cell *Cell, body []byte) error {
	if len(body) < 22 {
		return fmt.Errorf("short formula record")
	}
	cell.typ = engine.TypeFormula

	result := body[6:14]
	if binary.LittleEndian.Uint16(result[6:]) == 0xFFFF {
		switch result[0] {
		case 0: // string result in a following STRING record
			cell.cachedTyp = engine.TypeString
		case 1:
			cell.cachedTyp = engine.TypeBoolean
			cell.cachedVal = result[2] != 0
		default: // error or empty
			cell.cachedTyp = engine.TypeBlank
		}
	} else {
		cell.cachedTyp = engine.TypeNumeric
		cell.cachedVal = math.Float64frombits(binary.LittleEndian.Uint64(result))
	}

	cce := int(binary.LittleEndian.Uint16(body[20:]))
	rgce := body[22:]
	if cce > len(rgce) {
		return fmt.Errorf("short formula expression")
	}
	if cce > 0 && rgce[0] == ptgStr {
		expr, _, err := parseString8(rgce[1:])
		if err != nil {
			return fmt.Errorf("formula expression: %w", err)
		}
		cell.formula = expr
	}
	return nil
}

func parseHyperlink(sheet *Sheet, body []byte) error {
	if len(body) < 32 {
		return fmt.Errorf("short hyperlink record")
	}
	rowIdx := int(binary.LittleEndian.Uint16(body))
	col := int(binary.LittleEndian.Uint16(body[4:]))
	flags := binary.LittleEndian.Uint32(body[28:])
	if flags&0x01 == 0 {
		return nil
	}
	rest := body[32:]
	if len(rest) < 20 || !bytes.Equal(rest[:16], guidURLMoniker) {
		return nil // other moniker kinds are not carried
	}
	size := int(binary.LittleEndian.Uint32(rest[16:]))
	if size < 2 || len(rest) < 20+size {
		return fmt.Errorf("short hyperlink target")
	}
	target, _, err := parseStringBody(rest[20:20+size-2], (size-2)/2, 0x01, 0)
	if err != nil {
		return fmt.Errorf("hyperlink target: %w", err)
	}

	row, _ := sheet.AddRow(rowIdx)
	cellIface, _ := row.AddCell(col)
	cell := cellIface.(*Cell)
	cell.link = &engine.Hyperlink{Kind: linkKind(target), Target: target}
	return nil
}

func linkKind(target string) engine.HyperlinkKind {
	switch {
	case strings.HasPrefix(target, "mailto:"):
		return engine.LinkEmail
	case strings.HasPrefix(target, "file:"):
		return engine.LinkFile
	default:
		return engine.LinkURL
	}
}

func parseNote(sheet *Sheet, body []byte) error {
	if len(body) < 8 {
		return fmt.Errorf("short note record")
	}
	rowIdx := int(binary.LittleEndian.Uint16(body))
	col := int(binary.LittleEndian.Uint16(body[2:]))
	author, n, err := parseString16(body[8:])
	if err != nil {
		return fmt.Errorf("note author: %w", err)
	}

	comment := engine.Comment{Author: author}
	rest := body[8+n:]
	if len(rest) > 0 {
		text, m, err := parseString16(rest)
		if err != nil {
			return fmt.Errorf("note text: %w", err)
		}
		comment.Text = text
		if len(rest) >= m+4 {
			comment.Width = int(binary.LittleEndian.Uint16(rest[m:]))
			comment.Height = int(binary.LittleEndian.Uint16(rest[m+2:]))
		}
	}

	row, _ := sheet.AddRow(rowIdx)
	cellIface, _ := row.AddCell(col)
	cellIface.(*Cell).comment = &comment
	return nil
}

func parseFont(body []byte) (engine.FontDef, error) {
	if len(body) < 16 {
		return engine.FontDef{}, fmt.Errorf("short font record")
	}
	def := engine.FontDef{
		Size:      float64(binary.LittleEndian.Uint16(body)) / 20,
		Underline: engine.Underline(body[10]),
	}
	grbit := binary.LittleEndian.Uint16(body[2:])
	def.Italic = grbit&0x0002 != 0
	def.Strikeout = grbit&0x0008 != 0
	if color := binary.LittleEndian.Uint16(body[4:]); color != 0x7FFF {
		def.Color = engine.Color(color)
	}
	def.Bold = binary.LittleEndian.Uint16(body[6:]) >= 700
	name, _, err := parseString8(body[14:])
	if err != nil {
		return engine.FontDef{}, fmt.Errorf("font name: %w", err)
	}
	def.Name = name
	return def, nil
}

func parseXF(body []byte) (xfDef, error) {
	if len(body) < 20 {
		return xfDef{}, fmt.Errorf("short xf record")
	}
	xf := xfDef{
		fontIndex: int(binary.LittleEndian.Uint16(body)),
		fmtID:     int(binary.LittleEndian.Uint16(body[2:])),
	}
	lines := binary.LittleEndian.Uint32(body[10:])
	xf.border = engine.BorderDef{
		Left:   engine.BorderStyle(lines & 0xF),
		Right:  engine.BorderStyle(lines >> 4 & 0xF),
		Top:    engine.BorderStyle(lines >> 8 & 0xF),
		Bottom: engine.BorderStyle(lines >> 12 & 0xF),
	}
	xf.hasBorder = xf.border != engine.BorderDef{}
	colors := binary.LittleEndian.Uint32(body[14:])
	xf.pattern = engine.Pattern(colors >> 26)
	if xf.pattern != engine.PatternNone {
		xf.fillFg = engine.Color(binary.LittleEndian.Uint16(body[18:]) & 0x7F)
	}
	return xf, nil
}

func parseSST(body []byte) ([]string, error) {
	if len(body) < 8 {
		return nil, fmt.Errorf("short sst record")
	}
	unique := int(binary.LittleEndian.Uint32(body[4:]))
	out := make([]string, 0, unique)
	pos := 8
	for i := 0; i < unique; i++ {
		s, n, err := parseString16(body[pos:])
		if err != nil {
			return nil, fmt.Errorf("shared string %d: %w", i, err)
		}
		out = append(out, s)
		pos += n
	}
	return out, nil
}
