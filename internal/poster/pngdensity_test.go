package poster

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

// pngDensity scans the chunk stream for pHYs and returns its fields.
func pngDensity(t *testing.T, data []byte) (x, y uint32, unit byte) {
	t.Helper()
	off := 8
	for off+12 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[off:]))
		if string(data[off+4:off+8]) == "pHYs" {
			require.Equal(t, 9, length)
			d := data[off+8:]
			return binary.BigEndian.Uint32(d), binary.BigEndian.Uint32(d[4:]), d[8]
		}
		off += 12 + length
	}
	t.Fatal("no pHYs chunk in PNG")
	return 0, 0, 0
}

func TestWithDensity(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))))

	out := withDensity(buf.Bytes(), 250)

	// 250 DPI is 9843 pixels per metre, applied on both axes.
	x, y, unit := pngDensity(t, out)
	require.Equal(t, uint32(9843), x)
	require.Equal(t, uint32(9843), y)
	require.Equal(t, byte(1), unit)

	// The stdlib decoder verifies chunk CRCs, so a clean decode proves the
	// splice kept the stream well formed.
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 4, img.Bounds().Dx())
}

func TestWithDensityZeroDPIIsUnchanged(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))))

	require.Equal(t, buf.Bytes(), withDensity(buf.Bytes(), 0))
}
