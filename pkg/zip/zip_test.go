package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = string(content)
	}
	return out
}

func TestArchive(t *testing.T) {
	data := Archive([]Entry{
		{Filename: "paris.png", Data: []byte("a")},
		{Filename: "lyon.png", Data: []byte("b")},
		{Filename: "empty.png"},
	})
	files := readArchive(t, data)
	assert.Equal(t, map[string]string{"paris.png": "a", "lyon.png": "b"}, files)
}

func TestArchiveDeduplicatesNames(t *testing.T) {
	data := Archive([]Entry{
		{Filename: "poster.png", Data: []byte("one")},
		{Filename: "poster.png", Data: []byte("two")},
		{Filename: "poster.png", Data: []byte("three")},
	})
	files := readArchive(t, data)
	assert.Equal(t, map[string]string{
		"poster.png":   "one",
		"poster_1.png": "two",
		"poster_2.png": "three",
	}, files)
}
