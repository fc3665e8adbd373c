package coder_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/akorchagin/jxl-coder/coder"
	"github.com/akorchagin/jxl-coder/config"
	"github.com/akorchagin/jxl-coder/core"
	coderrors "github.com/akorchagin/jxl-coder/errors"
	"github.com/akorchagin/jxl-coder/jxl/jxltest"
)

func makeImage(t *testing.T, columns, rows int, hasAlpha bool, depth int) *core.Image {
	t.Helper()
	img := core.NewImage("made.jxl")
	img.Depth = depth
	img.HasAlpha = hasAlpha
	img.Orientation = core.OrientationTopLeft
	if err := img.SetExtent(columns, rows); err != nil {
		t.Fatalf("SetExtent: %v", err)
	}
	channels := 3
	if hasAlpha {
		channels = 4
	}
	pixels := make([]byte, columns*rows*channels)
	for i := range pixels {
		pixels[i] = byte(i * 7)
	}
	channelMap := "RGB"
	if hasAlpha {
		channelMap = "RGBA"
	}
	if err := img.ImportPixels(0, 0, columns, rows, channelMap, core.CharPixel, pixels); err != nil {
		t.Fatalf("ImportPixels: %v", err)
	}
	return img
}

func TestEncodeLosslessSelection(t *testing.T) {
	tests := []struct {
		name           string
		quality        int
		defaultQuality int
		lossless       bool
	}{
		{"lossy", 50, 92, false},
		{"lossless", 100, 92, true},
		{"default lossy", 0, 92, false},
		{"default lossless", 0, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := &jxltest.Codec{}
			c := newTestCoder(t, codec, func(cfg *config.Config) {
				cfg.DefaultQuality = tt.defaultQuality
			})
			img := makeImage(t, 2, 2, false, 8)
			img.Quality = tt.quality

			var buf bytes.Buffer
			if err := c.Encode(context.Background(), img, &buf, coderrors.NewSink()); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if codec.LastEncoder.Lossless != tt.lossless {
				t.Errorf("lossless = %v, want %v", codec.LastEncoder.Lossless, tt.lossless)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	stream, _ := rgb8Stream()
	c := newTestCoder(t, &jxltest.Codec{}, nil)

	first, err := c.Decode(context.Background(), bytes.NewReader(stream), core.DecodeOptions{}, coderrors.NewSink())
	if err != nil {
		t.Fatalf("first Decode: %v", err)
	}
	first.Quality = coder.LosslessQuality

	var buf bytes.Buffer
	if err := c.Encode(context.Background(), first, &buf, coderrors.NewSink()); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	second, err := c.Decode(context.Background(), bytes.NewReader(buf.Bytes()), core.DecodeOptions{}, coderrors.NewSink())
	if err != nil {
		t.Fatalf("second Decode: %v", err)
	}
	if first.Signature() != second.Signature() {
		t.Error("lossless round trip changed the image signature")
	}
}

func TestEncodeDecodeRoundTripFloatAlpha(t *testing.T) {
	c := newTestCoder(t, &jxltest.Codec{}, nil)
	img := makeImage(t, 3, 2, true, 16)
	img.Quality = coder.LosslessQuality

	var buf bytes.Buffer
	if err := c.Encode(context.Background(), img, &buf, coderrors.NewSink()); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := c.Decode(context.Background(), bytes.NewReader(buf.Bytes()), core.DecodeOptions{}, coderrors.NewSink())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.HasAlpha || got.Depth != 16 {
		t.Fatalf("depth=%d alpha=%v, want 16 true", got.Depth, got.HasAlpha)
	}
	if img.Signature() != got.Signature() {
		t.Error("float round trip changed the image signature")
	}
}

func TestEncodeRejectedDimensions(t *testing.T) {
	c := newTestCoder(t, &jxltest.Codec{}, nil)
	img := core.NewImage("empty.jxl")

	err := c.Encode(context.Background(), img, &bytes.Buffer{}, coderrors.NewSink())
	if err == nil {
		t.Fatal("zero-extent encode must fail")
	}
	if !coderrors.IsKind(err, coderrors.KindEncodeFailure) {
		t.Errorf("kind = %v, want encode_failure", err)
	}
}

func TestEncodeWithoutPixels(t *testing.T) {
	c := newTestCoder(t, &jxltest.Codec{}, nil)
	img := core.NewImage("hollow.jxl")
	img.Columns = 2
	img.Rows = 2

	err := c.Encode(context.Background(), img, &bytes.Buffer{}, coderrors.NewSink())
	if err == nil {
		t.Fatal("pixel-less encode must fail")
	}
	if !coderrors.IsKind(err, coderrors.KindExportFailure) {
		t.Errorf("kind = %v, want export_failure", err)
	}
	if !errors.Is(err, core.ErrNoPixels) {
		t.Errorf("err = %v, want ErrNoPixels in chain", err)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("sink closed") }

func TestEncodeWriteFailure(t *testing.T) {
	c := newTestCoder(t, &jxltest.Codec{}, nil)
	img := makeImage(t, 2, 2, false, 8)

	err := c.Encode(context.Background(), img, failWriter{}, coderrors.NewSink())
	if err == nil {
		t.Fatal("failing writer must fail the encode")
	}
	if !coderrors.IsKind(err, coderrors.KindEncodeFailure) {
		t.Errorf("kind = %v, want encode_failure", err)
	}
}

type countingWriter struct {
	buf    bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.buf.Write(p)
}

func TestEncodeChunkedDrain(t *testing.T) {
	c := newTestCoder(t, &jxltest.Codec{}, func(cfg *config.Config) {
		cfg.BufferExtent = 16
	})
	img := makeImage(t, 4, 4, false, 8)
	img.Quality = coder.LosslessQuality

	var w countingWriter
	if err := c.Encode(context.Background(), img, &w, coderrors.NewSink()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if w.writes < 2 {
		t.Errorf("writes = %d, want several with a 16-byte drain buffer", w.writes)
	}

	got, err := c.Decode(context.Background(), bytes.NewReader(w.buf.Bytes()), core.DecodeOptions{}, coderrors.NewSink())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Signature() != got.Signature() {
		t.Error("chunked drain corrupted the stream")
	}
}

func TestEncodeAllocationFailure(t *testing.T) {
	c := newTestCoder(t, &jxltest.Codec{}, func(cfg *config.Config) {
		cfg.MaxMemoryBytes = 8
	})
	img := makeImage(t, 2, 2, false, 8)

	err := c.Encode(context.Background(), img, &bytes.Buffer{}, coderrors.NewSink())
	if err == nil {
		t.Fatal("over-budget encode must fail")
	}
	if !coderrors.IsKind(err, coderrors.KindAllocationFailure) {
		t.Errorf("kind = %v, want allocation_failure", err)
	}
	if in := c.MemoryInUse(); in != 0 {
		t.Errorf("MemoryInUse = %d after failed encode, want 0", in)
	}
}

func TestEncodeContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCoder(t, &jxltest.Codec{}, nil)
	img := makeImage(t, 2, 2, false, 8)

	err := c.Encode(ctx, img, &bytes.Buffer{}, coderrors.NewSink())
	if err == nil {
		t.Fatal("cancelled encode must fail")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled in chain", err)
	}
}
