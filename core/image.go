// Package core defines the host-side image entity, its pixel store, and
// the coder registry.
package core

import (
	"errors"
	"fmt"
)

// maxPixelExtent bounds columns*rows so the float32 store cannot overflow
// int arithmetic on 32-bit platforms.
const maxPixelExtent = 1 << 28

// Image is the host-owned mutable image entity.  Pixels are kept as a
// normalized float32 RGBA interleaved store; Depth and HasAlpha describe
// how the pixels entered and how they should leave.
//
// An Image is not safe for concurrent mutation; callers must not run
// decode and encode on the same Image at the same time.
type Image struct {
	Filename    string
	Columns     int
	Rows        int
	Depth       int // bits per sample
	HasAlpha    bool
	Orientation Orientation
	Quality     int // requested encode quality 0-100; 0 = coder default

	pixels   []float32
	profiles map[string][]byte
}

// NewImage returns an empty Image attributed to filename.
func NewImage(filename string) *Image {
	return &Image{Filename: filename, Depth: 8}
}

// ErrNoPixels is returned when pixel data is accessed before SetExtent.
var ErrNoPixels = errors.New("image has no pixel store")

// SetExtent sets the image geometry and (re)allocates the pixel store.
// Existing pixel data is discarded.
func (img *Image) SetExtent(columns, rows int) error {
	if columns <= 0 || rows <= 0 {
		return fmt.Errorf("invalid extent %dx%d", columns, rows)
	}
	if columns > maxPixelExtent/rows {
		return fmt.Errorf("extent %dx%d exceeds pixel limit", columns, rows)
	}
	img.Columns = columns
	img.Rows = rows
	img.pixels = make([]float32, columns*rows*4)
	// Opaque until an alpha channel is imported.
	for i := 3; i < len(img.pixels); i += 4 {
		img.pixels[i] = 1
	}
	return nil
}

// HasPixels reports whether a pixel store has been allocated.
func (img *Image) HasPixels() bool { return img.pixels != nil }

// PixelAt returns the normalized RGBA value at (x, y).
func (img *Image) PixelAt(x, y int) (r, g, b, a float32, err error) {
	if img.pixels == nil {
		return 0, 0, 0, 0, ErrNoPixels
	}
	if x < 0 || y < 0 || x >= img.Columns || y >= img.Rows {
		return 0, 0, 0, 0, fmt.Errorf("pixel (%d,%d) outside %dx%d", x, y, img.Columns, img.Rows)
	}
	i := (y*img.Columns + x) * 4
	return img.pixels[i], img.pixels[i+1], img.pixels[i+2], img.pixels[i+3], nil
}

// SetProfile attaches a named metadata profile (e.g. "icc") to the image.
// The image takes ownership of data.
func (img *Image) SetProfile(name string, data []byte) {
	if img.profiles == nil {
		img.profiles = make(map[string][]byte, 1)
	}
	img.profiles[name] = data
}

// Profile returns the named profile, or nil when absent.
func (img *Image) Profile(name string) []byte { return img.profiles[name] }
