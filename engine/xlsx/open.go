package xlsx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/javajack/gridbook/engine"
)

// Open reconstructs a random-access workbook from .xlsx bytes. Cell values,
// styles, comments and hyperlinks are read through excelize; physical cell
// presence is taken from the worksheet XML itself, because the value API
// pads interior gaps and would erase the jagged shape.
func Open(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrFormatRecognition, err)
	}
	present, err := presentCells(data)
	if err != nil {
		f.Close()
		return nil, err
	}

	wb := &Workbook{
		file:   f,
		sheets: make(map[string]*Sheet),
		styles: newStyleTable(f),
	}
	for _, name := range f.GetSheetList() {
		sheet := &Sheet{wb: wb, name: name, rows: make(map[int]*Row)}
		wb.sheets[name] = sheet
		wb.order = append(wb.order, name)

		for _, pos := range present[name] {
			row, _ := sheet.AddRow(pos[0])
			cell, _ := row.AddCell(pos[1])
			if err := readCell(f, name, cell.(*Cell)); err != nil {
				f.Close()
				return nil, fmt.Errorf("sheet %q cell (%d,%d): %w", name, pos[0], pos[1], err)
			}
		}
		if err := attachComments(f, sheet); err != nil {
			f.Close()
			return nil, err
		}
	}
	return wb, nil
}

// readCell populates the in-memory mirror of one cell.
func readCell(f *excelize.File, sheet string, cell *Cell) error {
	ref := cell.ref()

	styleID, err := f.GetCellStyle(sheet, ref)
	if err != nil {
		return fmt.Errorf("cell style: %w", err)
	}
	cell.numFmt = numFmtPattern(f, styleID)

	raw, err := f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("cell value: %w", err)
	}
	ctype, err := f.GetCellType(sheet, ref)
	if err != nil {
		return fmt.Errorf("cell type: %w", err)
	}
	formula, err := f.GetCellFormula(sheet, ref)
	if err != nil {
		return fmt.Errorf("cell formula: %w", err)
	}

	switch {
	case formula != "":
		cell.typ = engine.TypeFormula
		cell.formula = formula
		cell.cachedTyp, cell.cachedVal = cachedResult(ctype, raw)
	case ctype == excelize.CellTypeBool:
		cell.typ = engine.TypeBoolean
		cell.boolVal = isTruthy(raw)
	case raw == "":
		// Blank cells written through the value API come back as empty
		// strings; they are blanks, not text.
		cell.typ = engine.TypeBlank
	case ctype == excelize.CellTypeSharedString || ctype == excelize.CellTypeInlineString:
		cell.typ = engine.TypeString
		cell.strVal = raw
	default:
		num, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			cell.typ = engine.TypeString
			cell.strVal = raw
			return nil
		}
		cell.typ = engine.TypeNumeric
		cell.numVal = num
	}

	if has, target, err := f.GetCellHyperLink(sheet, ref); err == nil && has {
		cell.link = &engine.Hyperlink{Kind: kindFromTarget(target), Target: target}
	}
	return nil
}

// cachedResult converts an engine-cached formula result into its dynamic
// type. An empty raw value means the engine holds no cached result.
func cachedResult(ctype excelize.CellType, raw string) (engine.CellType, any) {
	if raw == "" {
		return engine.TypeBlank, nil
	}
	switch ctype {
	case excelize.CellTypeBool:
		return engine.TypeBoolean, isTruthy(raw)
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return engine.TypeString, raw
	default:
		if num, err := strconv.ParseFloat(raw, 64); err == nil {
			return engine.TypeNumeric, num
		}
		return engine.TypeString, raw
	}
}

func isTruthy(raw string) bool {
	return raw == "1" || strings.EqualFold(raw, "true")
}

func kindFromTarget(target string) engine.HyperlinkKind {
	switch {
	case strings.HasPrefix(target, "mailto:"):
		return engine.LinkEmail
	case strings.HasPrefix(target, "file:"):
		return engine.LinkFile
	default:
		return engine.LinkURL
	}
}

// attachComments pairs the sheet's comments back onto their cells.
func attachComments(f *excelize.File, sheet *Sheet) error {
	comments, err := f.GetComments(sheet.name)
	if err != nil {
		return fmt.Errorf("sheet %q comments: %w", sheet.name, err)
	}
	for _, c := range comments {
		col, rowIdx, err := excelize.CellNameToCoordinates(c.Cell)
		if err != nil {
			continue
		}
		row, _ := sheet.AddRow(rowIdx - 1)
		cellIface, _ := row.AddCell(col - 1)
		cell := cellIface.(*Cell)
		cell.comment = &engine.Comment{
			Author: c.Author,
			Text:   c.Text,
			Width:  int(c.Width) / cellUnitWidth,
			Height: int(c.Height) / cellUnitHeight,
		}
	}
	return nil
}

// ── physical presence from the worksheet XML ─────────────────────────────

type xmlWorkbook struct {
	Sheets struct {
		Sheet []struct {
			Name string `xml:"name,attr"`
			RID  string `xml:"id,attr"`
		} `xml:"sheet"`
	} `xml:"sheets"`
}

type xmlRels struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type xmlWorksheet struct {
	SheetData struct {
		Rows []struct {
			R     int `xml:"r,attr"`
			Cells []struct {
				R string `xml:"r,attr"`
			} `xml:"c"`
		} `xml:"row"`
	} `xml:"sheetData"`
}

// presentCells lists the (row, col) positions physically stored per sheet,
// in document order.
func presentCells(data []byte) (map[string][][2]int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrFormatRecognition, err)
	}
	parts := make(map[string]*zip.File, len(zr.File))
	for _, zf := range zr.File {
		parts[zf.Name] = zf
	}

	var book xmlWorkbook
	if err := unmarshalPart(parts, "xl/workbook.xml", &book); err != nil {
		return nil, err
	}
	var rels xmlRels
	if err := unmarshalPart(parts, "xl/_rels/workbook.xml.rels", &rels); err != nil {
		return nil, err
	}
	targets := make(map[string]string, len(rels.Rels))
	for _, rel := range rels.Rels {
		targets[rel.ID] = rel.Target
	}

	out := make(map[string][][2]int, len(book.Sheets.Sheet))
	for _, meta := range book.Sheets.Sheet {
		target := targets[meta.RID]
		if target == "" || !strings.Contains(target, "worksheets") {
			continue
		}
		part := path.Clean("xl/" + strings.TrimPrefix(target, "/xl/"))
		var ws xmlWorksheet
		if err := unmarshalPart(parts, part, &ws); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", meta.Name, err)
		}

		var positions [][2]int
		lastRow := 0
		for _, row := range ws.SheetData.Rows {
			rowIdx := row.R
			if rowIdx == 0 {
				rowIdx = lastRow + 1
			}
			lastRow = rowIdx
			lastCol := 0
			for _, c := range row.Cells {
				colIdx := lastCol + 1
				if c.R != "" {
					col, _, err := excelize.CellNameToCoordinates(c.R)
					if err != nil {
						return nil, fmt.Errorf("sheet %q: bad cell ref %q: %w", meta.Name, c.R, err)
					}
					colIdx = col
				}
				lastCol = colIdx
				positions = append(positions, [2]int{rowIdx - 1, colIdx - 1})
			}
		}
		out[meta.Name] = positions
	}
	return out, nil
}

func unmarshalPart(parts map[string]*zip.File, name string, v any) error {
	zf, ok := parts[name]
	if !ok {
		return fmt.Errorf("%w: missing part %q", engine.ErrFormatRecognition, name)
	}
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("open part %q: %w", name, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read part %q: %w", name, err)
	}
	if err := xml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse part %q: %w", name, err)
	}
	return nil
}
