package core

import (
	"image"
	"image/color"
)

// ToImage converts the pixel store to a standard library image.  Images
// deeper than 8 bits map to NRGBA64, everything else to NRGBA.  The
// orientation attribute is not applied; see Normalize.
func (img *Image) ToImage() (image.Image, error) {
	if img.pixels == nil {
		return nil, ErrNoPixels
	}
	bounds := image.Rect(0, 0, img.Columns, img.Rows)

	if img.Depth > 8 {
		out := image.NewNRGBA64(bounds)
		for y := 0; y < img.Rows; y++ {
			for x := 0; x < img.Columns; x++ {
				i := (y*img.Columns + x) * 4
				out.SetNRGBA64(x, y, color.NRGBA64{
					R: quantize16(img.pixels[i]),
					G: quantize16(img.pixels[i+1]),
					B: quantize16(img.pixels[i+2]),
					A: quantize16(img.pixels[i+3]),
				})
			}
		}
		return out, nil
	}

	out := image.NewNRGBA(bounds)
	for y := 0; y < img.Rows; y++ {
		for x := 0; x < img.Columns; x++ {
			i := (y*img.Columns + x) * 4
			out.SetNRGBA(x, y, color.NRGBA{
				R: quantize8(img.pixels[i]),
				G: quantize8(img.pixels[i+1]),
				B: quantize8(img.pixels[i+2]),
				A: quantize8(img.pixels[i+3]),
			})
		}
	}
	return out, nil
}

// FromImage builds an Image from a standard library image, deriving depth
// and alpha presence from the source representation.
func FromImage(src image.Image, filename string) (*Image, error) {
	bounds := src.Bounds()
	img := NewImage(filename)
	img.Depth = sourceDepth(src)
	img.HasAlpha = sourceHasAlpha(src)
	img.Orientation = OrientationTopLeft
	if err := img.SetExtent(bounds.Dx(), bounds.Dy()); err != nil {
		return nil, err
	}

	for y := 0; y < img.Rows; y++ {
		for x := 0; x < img.Columns; x++ {
			c := color.NRGBA64Model.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA64)
			i := (y*img.Columns + x) * 4
			img.pixels[i] = float32(c.R) / 65535
			img.pixels[i+1] = float32(c.G) / 65535
			img.pixels[i+2] = float32(c.B) / 65535
			img.pixels[i+3] = float32(c.A) / 65535
		}
	}
	return img, nil
}

func quantize16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 65535
	}
	return uint16(v*65535 + 0.5)
}

func sourceDepth(src image.Image) int {
	switch src.(type) {
	case *image.NRGBA64, *image.RGBA64, *image.Gray16:
		return 16
	}
	return 8
}

func sourceHasAlpha(src image.Image) bool {
	if op, ok := src.(interface{ Opaque() bool }); ok {
		return !op.Opaque()
	}
	switch src.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64:
		return true
	}
	return false
}
