package coder

import (
	"github.com/akorchagin/jxl-coder/core"
	"github.com/akorchagin/jxl-coder/jxl"
)

// MapOrientation translates the codec's orientation enumeration into the
// host's.  Unrecognized values map to top-left, never to an error.
func MapOrientation(orientation jxl.Orientation) core.Orientation {
	switch orientation {
	case jxl.OrientFlipHorizontal:
		return core.OrientationTopRight
	case jxl.OrientRotate180:
		return core.OrientationBottomRight
	case jxl.OrientFlipVertical:
		return core.OrientationBottomLeft
	case jxl.OrientTranspose:
		return core.OrientationLeftTop
	case jxl.OrientRotate90CW:
		return core.OrientationRightTop
	case jxl.OrientAntiTranspose:
		return core.OrientationRightBottom
	case jxl.OrientRotate90CCW:
		return core.OrientationLeftBottom
	default:
		return core.OrientationTopLeft
	}
}
