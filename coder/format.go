package coder

import (
	"github.com/akorchagin/jxl-coder/core"
	"github.com/akorchagin/jxl-coder/jxl"
)

// Negotiate derives the codec pixel layout from the host image's alpha
// presence and bit depth: four channels iff alpha is present, float
// samples iff the depth exceeds eight bits.
func Negotiate(hasAlpha bool, depth int) jxl.PixelFormat {
	format := jxl.PixelFormat{NumChannels: 3, DataType: jxl.TypeUint8}
	if hasAlpha {
		format.NumChannels = 4
	}
	if depth > 8 {
		format.DataType = jxl.TypeFloat
	}
	return format
}

// channelMap returns the host-side channel-order string for a negotiated
// layout.
func channelMap(format jxl.PixelFormat) string {
	if format.NumChannels == 4 {
		return "RGBA"
	}
	return "RGB"
}

// storageType returns the host-side sample representation for a
// negotiated layout.
func storageType(format jxl.PixelFormat) core.StorageType {
	if format.DataType == jxl.TypeFloat {
		return core.FloatPixel
	}
	return core.CharPixel
}
