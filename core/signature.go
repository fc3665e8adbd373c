package core

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Signature returns a content hash over the image geometry and pixel
// store.  Two images with identical attributes and pixel data share a
// signature; an image without pixels hashes its attributes only.
func (img *Image) Signature() uint64 {
	h := xxhash.New()

	var header [20]byte
	binary.LittleEndian.PutUint32(header[0:], uint32(img.Columns))
	binary.LittleEndian.PutUint32(header[4:], uint32(img.Rows))
	binary.LittleEndian.PutUint32(header[8:], uint32(img.Depth))
	if img.HasAlpha {
		header[12] = 1
	}
	binary.LittleEndian.PutUint32(header[16:], uint32(img.Orientation))
	_, _ = h.Write(header[:])

	if img.pixels != nil {
		row := make([]byte, img.Columns*16)
		for y := 0; y < img.Rows; y++ {
			base := y * img.Columns * 4
			for i := 0; i < img.Columns*4; i++ {
				binary.LittleEndian.PutUint32(row[i*4:], math.Float32bits(img.pixels[base+i]))
			}
			_, _ = h.Write(row)
		}
	}
	return h.Sum64()
}
