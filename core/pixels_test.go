package core_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/akorchagin/jxl-coder/core"
)

func newExtent(t *testing.T, columns, rows int) *core.Image {
	t.Helper()
	img := core.NewImage("test.jxl")
	if err := img.SetExtent(columns, rows); err != nil {
		t.Fatalf("SetExtent: %v", err)
	}
	return img
}

func TestImportExportChar(t *testing.T) {
	tests := []struct {
		name       string
		channelMap string
	}{
		{"rgb", "RGB"},
		{"rgba", "RGBA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := newExtent(t, 3, 2)
			channels := len(tt.channelMap)
			in := make([]byte, 3*2*channels)
			for i := range in {
				in[i] = byte(i * 11)
			}
			if err := img.ImportPixels(0, 0, 3, 2, tt.channelMap, core.CharPixel, in); err != nil {
				t.Fatalf("ImportPixels: %v", err)
			}

			out := make([]byte, len(in))
			if err := img.ExportPixels(0, 0, 3, 2, tt.channelMap, core.CharPixel, out); err != nil {
				t.Fatalf("ExportPixels: %v", err)
			}
			for i := range in {
				if in[i] != out[i] {
					t.Fatalf("sample %d: got %d, want %d", i, out[i], in[i])
				}
			}
		})
	}
}

func TestImportExportFloat(t *testing.T) {
	img := newExtent(t, 2, 1)
	samples := []float32{0.125, 0.25, 0.375, 0.5, 0.625, 0.75, 0.875, 1}
	in := make([]byte, len(samples)*4)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(in[i*4:], math.Float32bits(v))
	}
	if err := img.ImportPixels(0, 0, 2, 1, "RGBA", core.FloatPixel, in); err != nil {
		t.Fatalf("ImportPixels: %v", err)
	}

	out := make([]byte, len(in))
	if err := img.ExportPixels(0, 0, 2, 1, "RGBA", core.FloatPixel, out); err != nil {
		t.Fatalf("ExportPixels: %v", err)
	}
	for i := range samples {
		got := math.Float32frombits(binary.LittleEndian.Uint32(out[i*4:]))
		if got != samples[i] {
			t.Errorf("sample %d: got %v, want %v", i, got, samples[i])
		}
	}
}

func TestImportOpaqueFill(t *testing.T) {
	img := newExtent(t, 1, 1)
	if err := img.ImportPixels(0, 0, 1, 1, "RGB", core.CharPixel, []byte{255, 128, 0}); err != nil {
		t.Fatalf("ImportPixels: %v", err)
	}
	_, _, _, a, err := img.PixelAt(0, 0)
	if err != nil {
		t.Fatalf("PixelAt: %v", err)
	}
	if a != 1 {
		t.Errorf("alpha = %v, want 1 for an alpha-less channel map", a)
	}
}

func TestImportRegion(t *testing.T) {
	img := newExtent(t, 4, 4)
	if err := img.ImportPixels(1, 2, 2, 1, "RGB", core.CharPixel, []byte{255, 0, 0, 0, 255, 0}); err != nil {
		t.Fatalf("ImportPixels: %v", err)
	}
	r, _, _, _, _ := img.PixelAt(1, 2)
	_, g, _, _, _ := img.PixelAt(2, 2)
	if r != 1 || g != 1 {
		t.Errorf("region pixels = r %v, g %v, want 1 1", r, g)
	}
	// Outside the region stays untouched.
	r0, g0, b0, _, _ := img.PixelAt(0, 0)
	if r0 != 0 || g0 != 0 || b0 != 0 {
		t.Errorf("pixel outside region changed: %v %v %v", r0, g0, b0)
	}
}

func TestPixelErrors(t *testing.T) {
	img := newExtent(t, 2, 2)
	buf := make([]byte, 64)

	tests := []struct {
		name string
		call func() error
	}{
		{"bad channel", func() error { return img.ImportPixels(0, 0, 2, 2, "RGX", core.CharPixel, buf) }},
		{"empty map", func() error { return img.ImportPixels(0, 0, 2, 2, "", core.CharPixel, buf) }},
		{"region outside", func() error { return img.ImportPixels(1, 1, 2, 2, "RGB", core.CharPixel, buf) }},
		{"zero region", func() error { return img.ExportPixels(0, 0, 0, 0, "RGB", core.CharPixel, buf) }},
		{"short import", func() error { return img.ImportPixels(0, 0, 2, 2, "RGBA", core.FloatPixel, buf[:8]) }},
		{"short export", func() error { return img.ExportPixels(0, 0, 2, 2, "RGB", core.CharPixel, buf[:4]) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.call() == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPixelsWithoutStore(t *testing.T) {
	img := core.NewImage("bare.jxl")
	if err := img.ImportPixels(0, 0, 1, 1, "RGB", core.CharPixel, make([]byte, 3)); err != core.ErrNoPixels {
		t.Errorf("ImportPixels err = %v, want ErrNoPixels", err)
	}
	if err := img.ExportPixels(0, 0, 1, 1, "RGB", core.CharPixel, make([]byte, 3)); err != core.ErrNoPixels {
		t.Errorf("ExportPixels err = %v, want ErrNoPixels", err)
	}
	if _, _, _, _, err := img.PixelAt(0, 0); err != core.ErrNoPixels {
		t.Errorf("PixelAt err = %v, want ErrNoPixels", err)
	}
}
