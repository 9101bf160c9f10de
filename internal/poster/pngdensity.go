package poster

import (
	"encoding/binary"
	"hash/crc32"
	"math"
)

// pngHeaderSize covers the 8-byte signature plus the fixed-size IHDR chunk,
// which the format requires to come first.
const pngHeaderSize = 8 + 25

const metersPerInch = 0.0254

// withDensity splices a pHYs chunk directly after IHDR so viewers and print
// drivers honor the preset's DPI. PNG expresses density in pixels per metre.
func withDensity(png []byte, dpi int) []byte {
	if dpi <= 0 || len(png) < pngHeaderSize {
		return png
	}
	ppm := uint32(math.Round(float64(dpi) / metersPerInch))

	chunk := make([]byte, 21)
	binary.BigEndian.PutUint32(chunk[0:], 9)
	copy(chunk[4:], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:], ppm)
	binary.BigEndian.PutUint32(chunk[12:], ppm)
	chunk[16] = 1 // unit is the metre
	binary.BigEndian.PutUint32(chunk[17:], crc32.ChecksumIEEE(chunk[4:17]))

	out := make([]byte, 0, len(png)+len(chunk))
	out = append(out, png[:pngHeaderSize]...)
	out = append(out, chunk...)
	out = append(out, png[pngHeaderSize:]...)
	return out
}
