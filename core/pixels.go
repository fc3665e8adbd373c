package core

import (
	"encoding/binary"
	"fmt"
	"math"
)

// StorageType selects the external sample representation used when pixels
// cross between the codec layout and the host layout.
type StorageType int

const (
	// CharPixel is an 8-bit unsigned integer sample.
	CharPixel StorageType = iota
	// FloatPixel is a 32-bit little-endian float sample.
	FloatPixel
)

// Size returns the sample size in bytes.
func (t StorageType) Size() int {
	if t == FloatPixel {
		return 4
	}
	return 1
}

func (t StorageType) String() string {
	if t == FloatPixel {
		return "float"
	}
	return "char"
}

// channelOffsets parses a channel-order map such as "RGB" or "RGBA" into
// store offsets.
func channelOffsets(channelMap string) ([]int, error) {
	if channelMap == "" {
		return nil, fmt.Errorf("empty channel map")
	}
	offsets := make([]int, len(channelMap))
	for i, c := range channelMap {
		switch c {
		case 'R':
			offsets[i] = 0
		case 'G':
			offsets[i] = 1
		case 'B':
			offsets[i] = 2
		case 'A':
			offsets[i] = 3
		default:
			return nil, fmt.Errorf("unsupported channel %q in map %q", c, channelMap)
		}
	}
	return offsets, nil
}

func (img *Image) checkRegion(x, y, width, height int) error {
	if img.pixels == nil {
		return ErrNoPixels
	}
	if x < 0 || y < 0 || width <= 0 || height <= 0 ||
		x+width > img.Columns || y+height > img.Rows {
		return fmt.Errorf("region %dx%d+%d+%d outside %dx%d",
			width, height, x, y, img.Columns, img.Rows)
	}
	return nil
}

// ImportPixels fills the rectangular region from data, interpreting it as
// interleaved samples in channel-map order.  When the map carries no alpha
// channel the region is made opaque.
func (img *Image) ImportPixels(x, y, width, height int, channelMap string, storage StorageType, data []byte) error {
	if err := img.checkRegion(x, y, width, height); err != nil {
		return err
	}
	offsets, err := channelOffsets(channelMap)
	if err != nil {
		return err
	}
	need := width * height * len(offsets) * storage.Size()
	if len(data) < need {
		return fmt.Errorf("pixel buffer too short: %d bytes, need %d", len(data), need)
	}

	hasAlpha := false
	for _, off := range offsets {
		if off == 3 {
			hasAlpha = true
		}
	}

	pos := 0
	for row := 0; row < height; row++ {
		base := ((y+row)*img.Columns + x) * 4
		for col := 0; col < width; col++ {
			pixel := base + col*4
			for _, off := range offsets {
				var v float32
				if storage == FloatPixel {
					v = math.Float32frombits(binary.LittleEndian.Uint32(data[pos:]))
					pos += 4
				} else {
					v = float32(data[pos]) / 255
					pos++
				}
				img.pixels[pixel+off] = v
			}
			if !hasAlpha {
				img.pixels[pixel+3] = 1
			}
		}
	}
	return nil
}

// ExportPixels serializes the rectangular region into dst as interleaved
// samples in channel-map order.
func (img *Image) ExportPixels(x, y, width, height int, channelMap string, storage StorageType, dst []byte) error {
	if err := img.checkRegion(x, y, width, height); err != nil {
		return err
	}
	offsets, err := channelOffsets(channelMap)
	if err != nil {
		return err
	}
	need := width * height * len(offsets) * storage.Size()
	if len(dst) < need {
		return fmt.Errorf("pixel buffer too short: %d bytes, need %d", len(dst), need)
	}

	pos := 0
	for row := 0; row < height; row++ {
		base := ((y+row)*img.Columns + x) * 4
		for col := 0; col < width; col++ {
			pixel := base + col*4
			for _, off := range offsets {
				v := img.pixels[pixel+off]
				if storage == FloatPixel {
					binary.LittleEndian.PutUint32(dst[pos:], math.Float32bits(v))
					pos += 4
				} else {
					dst[pos] = quantize8(v)
					pos++
				}
			}
		}
	}
	return nil
}

// quantize8 maps a normalized sample to an 8-bit value with rounding.
func quantize8(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}
