package compdoc

import (
	"bytes"
	"io"
	"testing"

	"github.com/richardlehane/mscfb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBack(t *testing.T, doc []byte, name string) []byte {
	t.Helper()
	r, err := mscfb.New(bytes.NewReader(doc))
	require.NoError(t, err)
	for entry, err := r.Next(); err == nil; entry, err = r.Next() {
		if entry.Name != name {
			continue
		}
		out := make([]byte, entry.Size)
		_, err := io.ReadFull(entry, out)
		require.NoError(t, err)
		return out
	}
	t.Fatalf("stream %q not found", name)
	return nil
}

func TestWrite_MiniStream(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB, 0xCD, 0xEF}, 300) // 900 bytes, below the cutoff

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "Workbook", data))

	doc := buf.Bytes()
	assert.Equal(t, signature, doc[:8])
	assert.Zero(t, len(doc)%sectorSize)

	assert.Equal(t, data, readBack(t, doc, "Workbook"))
}

func TestWrite_RegularStream(t *testing.T) {
	data := make([]byte, 10000)
	for i := range data {
		data[i] = byte(i * 7)
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "Workbook", data))

	assert.Equal(t, data, readBack(t, buf.Bytes(), "Workbook"))
}

func TestWrite_CutoffBoundary(t *testing.T) {
	for _, size := range []int{miniCutoff - 1, miniCutoff, miniCutoff + 1} {
		data := bytes.Repeat([]byte{0x42}, size)
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, "Book", data))
		assert.Equal(t, data, readBack(t, buf.Bytes(), "Book"), "size %d", size)
	}
}
