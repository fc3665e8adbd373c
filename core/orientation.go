package core

import (
	"image"

	"github.com/disintegration/imaging"
)

// Orientation is the host's 8-way EXIF-style orientation enumeration.
// Values match the EXIF orientation tag (1-8); zero means undefined.
type Orientation int

const (
	OrientationUndefined Orientation = iota
	OrientationTopLeft
	OrientationTopRight
	OrientationBottomRight
	OrientationBottomLeft
	OrientationLeftTop
	OrientationRightTop
	OrientationRightBottom
	OrientationLeftBottom
)

func (o Orientation) String() string {
	switch o {
	case OrientationTopLeft:
		return "top-left"
	case OrientationTopRight:
		return "top-right"
	case OrientationBottomRight:
		return "bottom-right"
	case OrientationBottomLeft:
		return "bottom-left"
	case OrientationLeftTop:
		return "left-top"
	case OrientationRightTop:
		return "right-top"
	case OrientationRightBottom:
		return "right-bottom"
	case OrientationLeftBottom:
		return "left-bottom"
	}
	return "undefined"
}

// Transposed reports whether the orientation swaps width and height on
// display.
func (o Orientation) Transposed() bool {
	switch o {
	case OrientationLeftTop, OrientationRightTop, OrientationRightBottom, OrientationLeftBottom:
		return true
	}
	return false
}

// Normalize returns src transformed so it displays upright.  Identity and
// undefined orientations return src unchanged.
func Normalize(src image.Image, o Orientation) image.Image {
	switch o {
	case OrientationTopRight:
		return imaging.FlipH(src)
	case OrientationBottomRight:
		return imaging.Rotate180(src)
	case OrientationBottomLeft:
		return imaging.FlipV(src)
	case OrientationLeftTop:
		return imaging.Transpose(src)
	case OrientationRightTop:
		return imaging.Rotate270(src)
	case OrientationRightBottom:
		return imaging.Transverse(src)
	case OrientationLeftBottom:
		return imaging.Rotate90(src)
	default:
		return src
	}
}
