package biff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// BIFF8 record identifiers, as they appear in the workbook stream.
const (
	recBOF        = 0x0809
	recEOF        = 0x000A
	recCodePage   = 0x0042
	recDateMode   = 0x0022
	recWindow1    = 0x003D
	recWindow2    = 0x023E
	recFont       = 0x0031
	recFormat     = 0x041E
	recXF         = 0x00E0
	recBoundSheet = 0x0085
	recSST        = 0x00FC
	recDimensions = 0x0200
	recRow        = 0x0208
	recBlank      = 0x0201
	recNumber     = 0x0203
	recLabelSST   = 0x00FD
	recBoolErr    = 0x0205
	recFormula    = 0x0006
	recString     = 0x0207
	recHyperlink  = 0x01B8
	recNote       = 0x001C
	recContinue   = 0x003C
)

// maxRecordBody is the BIFF8 limit on a single record body; longer bodies
// spill into CONTINUE records.
const maxRecordBody = 8224

// BOF substream types.
const (
	bofGlobals   = 0x0005
	bofWorksheet = 0x0010
)

// ptgStr carries a string constant inside a formula expression.
const ptgStr = 0x17

// recordWriter accumulates the workbook stream record by record.
type recordWriter struct {
	buf bytes.Buffer
}

// record writes one logical record, splitting bodies past the record size
// limit into CONTINUE records. The scanner reassembles them, so oversized
// string tables survive the trip intact.
func (w *recordWriter) record(id uint16, data []byte) {
	chunk := data
	if len(chunk) > maxRecordBody {
		chunk = chunk[:maxRecordBody]
	}
	w.writeOne(id, chunk)
	for rest := data[len(chunk):]; len(rest) > 0; {
		chunk = rest
		if len(chunk) > maxRecordBody {
			chunk = chunk[:maxRecordBody]
		}
		w.writeOne(recContinue, chunk)
		rest = rest[len(chunk):]
	}
}

func (w *recordWriter) writeOne(id uint16, data []byte) {
	var hdr [4]byte
	binary.LittleEndian.PutUint16(hdr[0:], id)
	binary.LittleEndian.PutUint16(hdr[2:], uint16(len(data)))
	w.buf.Write(hdr[:])
	w.buf.Write(data)
}

func (w *recordWriter) len() int      { return w.buf.Len() }
func (w *recordWriter) bytes() []byte { return w.buf.Bytes() }

func appendU16(b []byte, v uint16) []byte { return binary.LittleEndian.AppendUint16(b, v) }
func appendU32(b []byte, v uint32) []byte { return binary.LittleEndian.AppendUint32(b, v) }
func appendF64(b []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
}

func utf16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, 2*len(units))
	for _, u := range units {
		out = appendU16(out, u)
	}
	return out
}

// string8 encodes a unicode string with an 8-bit character count. The
// uncompressed (UTF-16) form is always written.
func string8(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := []byte{byte(len(units)), 0x01}
	return append(out, utf16LE(s)...)
}

// string16 encodes a unicode string with a 16-bit character count.
func string16(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := appendU16(nil, uint16(len(units)))
	out = append(out, 0x01)
	return append(out, utf16LE(s)...)
}

// recordScanner walks a record stream.
type recordScanner struct {
	data []byte
	pos  int
}

// next yields the following logical record, folding any trailing CONTINUE
// records back into its body.
func (s *recordScanner) next() (id uint16, body []byte, ok bool) {
	id, body, ok = s.readOne()
	if !ok {
		return 0, nil, false
	}
	joined := false
	for {
		if s.pos+4 > len(s.data) || binary.LittleEndian.Uint16(s.data[s.pos:]) != recContinue {
			return id, body, true
		}
		_, more, ok := s.readOne()
		if !ok {
			return id, body, true
		}
		if !joined {
			body = append([]byte(nil), body...)
			joined = true
		}
		body = append(body, more...)
	}
}

func (s *recordScanner) readOne() (id uint16, body []byte, ok bool) {
	if s.pos+4 > len(s.data) {
		return 0, nil, false
	}
	id = binary.LittleEndian.Uint16(s.data[s.pos:])
	size := int(binary.LittleEndian.Uint16(s.data[s.pos+2:]))
	if s.pos+4+size > len(s.data) {
		return 0, nil, false
	}
	body = s.data[s.pos+4 : s.pos+4+size]
	s.pos += 4 + size
	return id, body, true
}

// parseString8 decodes a unicode string with an 8-bit character count,
// returning the string and the number of bytes consumed.
func parseString8(data []byte) (string, int, error) {
	if len(data) < 2 {
		return "", 0, fmt.Errorf("short string header")
	}
	return parseStringBody(data[2:], int(data[0]), data[1], 2)
}

// parseString16 decodes a unicode string with a 16-bit character count.
func parseString16(data []byte) (string, int, error) {
	if len(data) < 3 {
		return "", 0, fmt.Errorf("short string header")
	}
	cch := int(binary.LittleEndian.Uint16(data))
	return parseStringBody(data[3:], cch, data[2], 3)
}

// parseStringBody handles the option flags shared by both string shapes:
// compressed characters, rich-text runs and far-east extension blocks.
func parseStringBody(data []byte, cch int, flags byte, hdr int) (string, int, error) {
	compressed := flags&0x01 == 0
	rich := flags&0x08 != 0
	ext := flags&0x04 != 0

	n := 0
	runs, extLen := 0, 0
	if rich {
		if len(data) < n+2 {
			return "", 0, fmt.Errorf("short rich-text count")
		}
		runs = int(binary.LittleEndian.Uint16(data[n:]))
		n += 2
	}
	if ext {
		if len(data) < n+4 {
			return "", 0, fmt.Errorf("short extension length")
		}
		extLen = int(binary.LittleEndian.Uint32(data[n:]))
		n += 4
	}

	var text string
	if compressed {
		if len(data) < n+cch {
			return "", 0, fmt.Errorf("short compressed string")
		}
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data[n : n+cch])
		if err != nil {
			return "", 0, fmt.Errorf("decode compressed string: %w", err)
		}
		text = string(decoded)
		n += cch
	} else {
		if len(data) < n+2*cch {
			return "", 0, fmt.Errorf("short string")
		}
		units := make([]uint16, cch)
		for i := range units {
			units[i] = binary.LittleEndian.Uint16(data[n+2*i:])
		}
		text = string(utf16.Decode(units))
		n += 2 * cch
	}

	n += 4 * runs
	n += extLen
	if len(data) < n {
		return "", 0, fmt.Errorf("short string trailer")
	}
	return text, hdr + n, nil
}
