// Package compdoc writes a minimal OLE2 compound document holding a single
// stream. Reading is handled elsewhere through github.com/richardlehane/mscfb,
// which covers the general container layout; only the write side is needed
// here because no maintained Go library writes the format.
package compdoc

import (
	"encoding/binary"
	"io"
	"unicode/utf16"
)

const (
	sectorSize     = 512
	miniSectorSize = 64
	miniCutoff     = 4096

	endOfChain = 0xFFFFFFFE
	fatSector  = 0xFFFFFFFD
	freeSector = 0xFFFFFFFF
	noStream   = 0xFFFFFFFF
)

var signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Write serializes data as the named stream of a fresh compound document.
// Streams under the 4096-byte cutoff go through the mini stream, as the
// format requires; larger streams use regular sectors.
func Write(w io.Writer, streamName string, data []byte) error {
	var out []byte
	if len(data) < miniCutoff {
		out = buildMini(streamName, data)
	} else {
		out = buildRegular(streamName, data)
	}
	_, err := w.Write(out)
	return err
}

// buildRegular lays the file out as: data sectors, directory, FAT.
func buildRegular(streamName string, data []byte) []byte {
	dataSectors := sectorCount(len(data), sectorSize)
	dirSector := dataSectors
	// One directory sector holds four entries; two suffice here.
	fatStart := dirSector + 1

	fatSectors := 1
	for sectorCount((fatStart+fatSectors)*4, sectorSize) > fatSectors {
		fatSectors++
	}
	total := fatStart + fatSectors

	fat := make([]uint32, fatSectors*sectorSize/4)
	for i := range fat {
		fat[i] = freeSector
	}
	for i := 0; i < dataSectors-1; i++ {
		fat[i] = uint32(i + 1)
	}
	fat[dataSectors-1] = endOfChain
	fat[dirSector] = endOfChain
	for i := 0; i < fatSectors; i++ {
		fat[fatStart+i] = fatSector
	}

	out := make([]byte, 0, sectorSize*(1+total))
	out = append(out, header(fatStart, fatSectors, dirSector, int(noStream), 0)...)
	out = append(out, pad(data, dataSectors*sectorSize)...)
	out = append(out, directory(streamName, 0, uint32(len(data)), endOfChain, 0)...)
	for _, entry := range fat {
		out = binary.LittleEndian.AppendUint32(out, entry)
	}
	return out
}

// buildMini lays the file out as: mini-stream container sectors, mini-FAT,
// directory, FAT. The stream lives in 64-byte mini sectors chained through
// the mini-FAT; the root entry owns the container.
func buildMini(streamName string, data []byte) []byte {
	miniSectors := sectorCount(len(data), miniSectorSize)
	containerSize := miniSectors * miniSectorSize
	containerSectors := sectorCount(containerSize, sectorSize)
	miniFATSectors := sectorCount(miniSectors*4, sectorSize)

	miniFATStart := containerSectors
	dirSector := miniFATStart + miniFATSectors
	fatStart := dirSector + 1

	fatSectors := 1
	for sectorCount((fatStart+fatSectors)*4, sectorSize) > fatSectors {
		fatSectors++
	}

	fat := make([]uint32, fatSectors*sectorSize/4)
	for i := range fat {
		fat[i] = freeSector
	}
	for i := 0; i < containerSectors-1; i++ {
		fat[i] = uint32(i + 1)
	}
	fat[containerSectors-1] = endOfChain
	for i := 0; i < miniFATSectors-1; i++ {
		fat[miniFATStart+i] = uint32(miniFATStart + i + 1)
	}
	fat[dirSector-1] = endOfChain // last mini-FAT sector
	fat[dirSector] = endOfChain
	for i := 0; i < fatSectors; i++ {
		fat[fatStart+i] = fatSector
	}

	miniFAT := make([]uint32, miniFATSectors*sectorSize/4)
	for i := range miniFAT {
		miniFAT[i] = freeSector
	}
	for i := 0; i < miniSectors-1; i++ {
		miniFAT[i] = uint32(i + 1)
	}
	miniFAT[miniSectors-1] = endOfChain

	out := make([]byte, 0, sectorSize*(1+fatStart+fatSectors))
	out = append(out, header(fatStart, fatSectors, dirSector, miniFATStart, miniFATSectors)...)
	out = append(out, pad(data, containerSectors*sectorSize)...)
	for _, entry := range miniFAT {
		out = binary.LittleEndian.AppendUint32(out, entry)
	}
	out = append(out, directory(streamName, 0, uint32(len(data)), 0, uint32(containerSize))...)
	for _, entry := range fat {
		out = binary.LittleEndian.AppendUint32(out, entry)
	}
	return out
}

func header(fatStart, fatSectors, dirSector, miniFATStart, miniFATSectors int) []byte {
	h := make([]byte, sectorSize)
	copy(h, signature)
	le := binary.LittleEndian
	le.PutUint16(h[24:], 0x003E)  // minor version
	le.PutUint16(h[26:], 0x0003)  // major version 3
	le.PutUint16(h[28:], 0xFFFE)  // little-endian byte order
	le.PutUint16(h[30:], 9)       // sector shift: 512
	le.PutUint16(h[32:], 6)       // mini sector shift: 64
	le.PutUint32(h[44:], uint32(fatSectors))
	le.PutUint32(h[48:], uint32(dirSector))
	le.PutUint32(h[56:], miniCutoff)
	le.PutUint32(h[60:], uint32(miniFATStart))
	le.PutUint32(h[64:], uint32(miniFATSectors))
	le.PutUint32(h[68:], endOfChain) // no DIFAT chain
	le.PutUint32(h[72:], 0)
	for i := 0; i < 109; i++ {
		id := uint32(freeSector)
		if i < fatSectors {
			id = uint32(fatStart + i)
		}
		le.PutUint32(h[76+4*i:], id)
	}
	return h
}

// directory builds the single directory sector: root entry, the stream
// entry, and two free slots.
func directory(streamName string, streamStart, streamSize, rootStart, rootSize uint32) []byte {
	dir := make([]byte, sectorSize)
	entry := func(off int, name string, typ byte, left, right, child, start, size uint32) {
		le := binary.LittleEndian
		encoded := utf16.Encode([]rune(name))
		for i, r := range encoded {
			le.PutUint16(dir[off+2*i:], r)
		}
		le.PutUint16(dir[off+64:], uint16(2*len(encoded)+2)) // name length incl. terminator
		dir[off+66] = typ
		dir[off+67] = 1 // black
		le.PutUint32(dir[off+68:], left)
		le.PutUint32(dir[off+72:], right)
		le.PutUint32(dir[off+76:], child)
		le.PutUint32(dir[off+116:], start)
		le.PutUint32(dir[off+120:], size)
	}
	entry(0, "Root Entry", 5, noStream, noStream, 1, rootStart, rootSize)
	entry(128, streamName, 2, noStream, noStream, noStream, streamStart, streamSize)
	dir[256+66] = 0 // free
	dir[384+66] = 0
	return dir
}

func sectorCount(n, size int) int {
	if n == 0 {
		return 1
	}
	return (n + size - 1) / size
}

func pad(data []byte, size int) []byte {
	out := make([]byte, size)
	copy(out, data)
	return out
}
