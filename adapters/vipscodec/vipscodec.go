// Package vipscodec binds the jxl codec API to libvips through govips,
// providing real JPEG XL bitstream decode and encode.
//
// libvips works on whole images, so the decoder accumulates input until a
// load succeeds and then replays the event protocol; pixel data moves
// through a lossless PNG intermediary on both sides.
package vipscodec

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/akorchagin/jxl-coder/jxl"
)

// floatSample converts a little-endian float32 sample to a 16-bit channel
// value with clamping.
func floatSample(b []byte) uint16 {
	v := math.Float32frombits(binary.LittleEndian.Uint32(b))
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 65535
	}
	return uint16(v*65535 + 0.5)
}

// Config configures the libvips backend.
type Config struct {
	// Quality is the lossy encode quality passed to libvips (1-100).
	Quality int
	// Effort selects the encoder effort level; 0 keeps the libvips
	// default.
	Effort int
}

// Codec implements jxl.Codec on top of libvips.  Call Shutdown when the
// process exits.
type Codec struct {
	cfg Config
}

// New initialises libvips and returns a ready Codec.
func New(cfg Config) *Codec {
	if cfg.Quality <= 0 {
		cfg.Quality = 75
	}
	govips.Startup(nil)
	return &Codec{cfg: cfg}
}

// Shutdown releases all libvips resources.  Call once at process exit.
func (c *Codec) Shutdown() {
	govips.Shutdown()
}

func (c *Codec) NewDecoder(mm *jxl.MemoryManager) jxl.Decoder {
	accum := mm.Alloc(64 * 1024)
	if accum == nil {
		return nil
	}
	return &decoder{mm: mm, accum: accum}
}

func (c *Codec) NewEncoder(mm *jxl.MemoryManager) jxl.Encoder {
	return &encoder{mm: mm, cfg: c.cfg}
}

var _ jxl.Codec = (*Codec)(nil)

// ── Decoder ──────────────────────────────────────────────────────────────────

const (
	phaseLoad = iota
	phaseBasicInfo
	phaseColorEncoding
	phaseOutBuffer
	phaseFullImage
	phaseDone
)

type decoder struct {
	mm     *jxl.MemoryManager
	events jxl.Event

	accum  []byte
	used   int
	dirty  bool // new bytes since the last load attempt
	failed bool
	phase  int

	info   jxl.BasicInfo
	pixels *image.NRGBA

	outBuf []byte
}

func (d *decoder) SubscribeEvents(events jxl.Event) jxl.DecoderStatus {
	d.events = events
	return jxl.DecoderSuccess
}

func (d *decoder) SetInput(data []byte) jxl.DecoderStatus {
	if d.failed {
		return jxl.DecoderError
	}
	need := d.used + len(data)
	if need > len(d.accum) {
		capacity := len(d.accum) * 2
		for capacity < need {
			capacity *= 2
		}
		grown := d.mm.Alloc(capacity)
		if grown == nil {
			d.failed = true
			return jxl.DecoderError
		}
		copy(grown, d.accum[:d.used])
		d.mm.Free(d.accum)
		d.accum = grown
	}
	copy(d.accum[d.used:], data)
	d.used = need
	d.dirty = true
	return jxl.DecoderSuccess
}

func (d *decoder) ProcessInput() jxl.DecoderStatus {
	if d.failed {
		return jxl.DecoderError
	}
	for {
		switch d.phase {
		case phaseLoad:
			if !d.dirty {
				return jxl.DecoderNeedMoreInput
			}
			d.dirty = false
			if !d.tryLoad() {
				// Treat an unloadable buffer as incomplete input; a
				// genuinely corrupt stream surfaces when the source is
				// exhausted.
				return jxl.DecoderNeedMoreInput
			}
			d.phase = phaseBasicInfo

		case phaseBasicInfo:
			d.phase = phaseColorEncoding
			if d.events&jxl.EventBasicInfo != 0 {
				return jxl.DecoderBasicInfo
			}

		case phaseColorEncoding:
			d.phase = phaseOutBuffer
			if d.events&jxl.EventColorEncoding != 0 {
				return jxl.DecoderColorEncoding
			}

		case phaseOutBuffer:
			if d.events&jxl.EventFullImage == 0 {
				d.phase = phaseDone
				continue
			}
			d.phase = phaseFullImage
			return jxl.DecoderNeedImageOutBuffer

		case phaseFullImage:
			if d.outBuf == nil || !d.fillOutput() {
				d.failed = true
				return jxl.DecoderError
			}
			d.phase = phaseDone
			return jxl.DecoderFullImage

		default:
			return jxl.DecoderSuccess
		}
	}
}

// tryLoad attempts a full decode of the accumulated bytes, extracting
// basic info and an 8-bit RGBA pixel plane on success.
func (d *decoder) tryLoad() bool {
	ref, err := govips.NewImageFromBuffer(d.accum[:d.used])
	if err != nil {
		return false
	}
	defer ref.Close()

	d.info = jxl.BasicInfo{
		XSize:         uint32(ref.Width()),
		YSize:         uint32(ref.Height()),
		BitsPerSample: 8,
		Orientation:   jxl.Orientation(ref.Orientation()),
		HaveAnimation: ref.Pages() > 1,
	}
	if ref.HasAlpha() {
		d.info.AlphaBits = 8
	}

	encoded, _, err := ref.ExportPng(govips.NewPngExportParams())
	if err != nil {
		return false
	}
	decoded, err := png.Decode(bytes.NewReader(encoded))
	if err != nil {
		return false
	}
	bounds := decoded.Bounds()
	d.pixels = image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			d.pixels.Set(x, y, decoded.At(x, y))
		}
	}
	return true
}

func (d *decoder) BasicInfo() (jxl.BasicInfo, jxl.DecoderStatus) {
	if d.pixels == nil {
		return jxl.BasicInfo{}, jxl.DecoderError
	}
	return d.info, jxl.DecoderSuccess
}

// ICCProfileSize reports zero: libvips folds the profile into its own
// color management, so no original profile is exposed here.
func (d *decoder) ICCProfileSize(*jxl.PixelFormat) (int, jxl.DecoderStatus) {
	if d.pixels == nil {
		return 0, jxl.DecoderError
	}
	return 0, jxl.DecoderSuccess
}

func (d *decoder) ICCProfile(*jxl.PixelFormat, []byte) jxl.DecoderStatus {
	return jxl.DecoderError
}

func (d *decoder) ImageOutBufferSize(format *jxl.PixelFormat) (int, jxl.DecoderStatus) {
	if d.pixels == nil || format.DataType != jxl.TypeUint8 {
		return 0, jxl.DecoderError
	}
	if format.NumChannels != 3 && format.NumChannels != 4 {
		return 0, jxl.DecoderError
	}
	return int(d.info.XSize) * int(d.info.YSize) * format.NumChannels, jxl.DecoderSuccess
}

func (d *decoder) SetImageOutBuffer(format *jxl.PixelFormat, buf []byte) jxl.DecoderStatus {
	size, st := d.ImageOutBufferSize(format)
	if st != jxl.DecoderSuccess || len(buf) < size {
		return jxl.DecoderError
	}
	d.outBuf = buf[:size]
	return jxl.DecoderSuccess
}

func (d *decoder) fillOutput() bool {
	width := int(d.info.XSize)
	height := int(d.info.YSize)
	channels := len(d.outBuf) / (width * height)
	pos := 0
	for y := 0; y < height; y++ {
		row := d.pixels.Pix[y*d.pixels.Stride:]
		for x := 0; x < width; x++ {
			copy(d.outBuf[pos:], row[x*4:x*4+channels])
			pos += channels
		}
	}
	return true
}

func (d *decoder) Destroy() {
	d.mm.Free(d.accum)
	d.accum = nil
	d.pixels = nil
}

// ── Encoder ──────────────────────────────────────────────────────────────────

type encoder struct {
	mm  *jxl.MemoryManager
	cfg Config

	xsize, ysize int
	dimsSet      bool
	lossless     bool

	stream    []byte
	streamLen int
	pos       int
	framed    bool
}

type frameSettings struct {
	enc *encoder
}

func (f *frameSettings) SetLossless(lossless bool) jxl.EncoderStatus {
	f.enc.lossless = lossless
	return jxl.EncoderSuccess
}

func (e *encoder) SetDimensions(xsize, ysize int) jxl.EncoderStatus {
	if xsize <= 0 || ysize <= 0 {
		return jxl.EncoderError
	}
	e.xsize = xsize
	e.ysize = ysize
	e.dimsSet = true
	return jxl.EncoderSuccess
}

func (e *encoder) FrameSettings() jxl.FrameSettings {
	return &frameSettings{enc: e}
}

func (e *encoder) AddImageFrame(settings jxl.FrameSettings, format *jxl.PixelFormat, pixels []byte) jxl.EncoderStatus {
	if settings == nil || !e.dimsSet || e.framed {
		return jxl.EncoderError
	}
	frame, ok := e.buildFrame(format, pixels)
	if !ok {
		return jxl.EncoderError
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return jxl.EncoderError
	}
	ref, err := govips.NewImageFromBuffer(buf.Bytes())
	if err != nil {
		return jxl.EncoderError
	}
	defer ref.Close()

	params := govips.NewJxlExportParams()
	params.Quality = e.cfg.Quality
	params.Lossless = e.lossless
	if e.cfg.Effort > 0 {
		params.Effort = e.cfg.Effort
	}
	encoded, _, err := ref.ExportJxl(params)
	if err != nil {
		return jxl.EncoderError
	}

	e.stream = e.mm.Alloc(len(encoded))
	if e.stream == nil {
		return jxl.EncoderError
	}
	copy(e.stream, encoded)
	e.streamLen = len(encoded)
	e.framed = true
	return jxl.EncoderSuccess
}

// buildFrame reassembles the submitted pixel buffer into a stdlib image
// for the PNG intermediary.  Float samples map to 16-bit channels.
func (e *encoder) buildFrame(format *jxl.PixelFormat, pixels []byte) (image.Image, bool) {
	if format.NumChannels != 3 && format.NumChannels != 4 {
		return nil, false
	}
	need := e.xsize * e.ysize * format.NumChannels * format.SampleSize()
	if len(pixels) < need {
		return nil, false
	}

	if format.DataType == jxl.TypeFloat {
		out := image.NewNRGBA64(image.Rect(0, 0, e.xsize, e.ysize))
		pos := 0
		for y := 0; y < e.ysize; y++ {
			for x := 0; x < e.xsize; x++ {
				c := color.NRGBA64{A: 65535}
				c.R = floatSample(pixels[pos:])
				c.G = floatSample(pixels[pos+4:])
				c.B = floatSample(pixels[pos+8:])
				if format.NumChannels == 4 {
					c.A = floatSample(pixels[pos+12:])
				}
				out.SetNRGBA64(x, y, c)
				pos += format.NumChannels * 4
			}
		}
		return out, true
	}

	out := image.NewNRGBA(image.Rect(0, 0, e.xsize, e.ysize))
	pos := 0
	for y := 0; y < e.ysize; y++ {
		for x := 0; x < e.xsize; x++ {
			c := color.NRGBA{R: pixels[pos], G: pixels[pos+1], B: pixels[pos+2], A: 255}
			if format.NumChannels == 4 {
				c.A = pixels[pos+3]
			}
			out.SetNRGBA(x, y, c)
			pos += format.NumChannels
		}
	}
	return out, true
}

func (e *encoder) ProcessOutput(buf []byte) (int, jxl.EncoderStatus) {
	if !e.framed {
		return 0, jxl.EncoderError
	}
	n := copy(buf, e.stream[e.pos:e.streamLen])
	e.pos += n
	if e.pos < e.streamLen {
		return n, jxl.EncoderNeedMoreOutput
	}
	return n, jxl.EncoderSuccess
}

func (e *encoder) Destroy() {
	e.mm.Free(e.stream)
	e.stream = nil
}
