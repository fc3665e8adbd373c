// Package jxltest provides an in-memory codec implementing the jxl
// event/buffer API.  It speaks a trivial length-delimited container, not
// the JPEG XL bitstream, and exists so the coder pipelines can be
// exercised without a native codec binding.
package jxltest

import (
	"bytes"
	"encoding/binary"

	"github.com/akorchagin/jxl-coder/jxl"
)

var streamMagic = [4]byte{'J', 'X', 'T', 'S'}

// HeaderSize is the fixed container header length in bytes.
const HeaderSize = 22

const headerSize = HeaderSize

const flagAnimated = 1 << 0

// StreamInfo describes one container stream.
type StreamInfo struct {
	XSize         uint32
	YSize         uint32
	BitsPerSample int
	AlphaBits     int
	Orientation   jxl.Orientation
	Animated      bool
	NumChannels   int
	DataType      jxl.DataType
}

func (s StreamInfo) payloadSize() int {
	size := 1
	if s.DataType == jxl.TypeFloat {
		size = 4
	}
	return int(s.XSize) * int(s.YSize) * s.NumChannels * size
}

// BuildStream serializes a container stream from its parts.  Tests use it
// to craft well-formed, truncated, or animated inputs.
func BuildStream(info StreamInfo, icc, pixels []byte) []byte {
	out := make([]byte, 0, headerSize+len(icc)+len(pixels))
	var header [headerSize]byte
	copy(header[:4], streamMagic[:])
	binary.LittleEndian.PutUint32(header[4:], info.XSize)
	binary.LittleEndian.PutUint32(header[8:], info.YSize)
	header[12] = byte(info.BitsPerSample)
	header[13] = byte(info.AlphaBits)
	orientation := info.Orientation
	if orientation == 0 {
		orientation = jxl.OrientIdentity
	}
	header[14] = byte(orientation)
	if info.Animated {
		header[15] |= flagAnimated
	}
	header[16] = byte(info.NumChannels)
	header[17] = byte(info.DataType)
	binary.LittleEndian.PutUint32(header[18:], uint32(len(icc)))
	out = append(out, header[:]...)
	out = append(out, icc...)
	out = append(out, pixels...)
	return out
}

// Codec implements jxl.Codec in memory.  ICCProfile and Orientation, when
// set, are embedded into every encoded stream.  LastDecoder and
// LastEncoder expose the most recent handles for test assertions.
type Codec struct {
	ICCProfile  []byte
	Orientation jxl.Orientation

	LastDecoder *Decoder
	LastEncoder *Encoder
}

func (c *Codec) NewDecoder(mm *jxl.MemoryManager) jxl.Decoder {
	accum := mm.Alloc(1024)
	if accum == nil {
		return nil
	}
	d := &Decoder{mm: mm, accum: accum}
	c.LastDecoder = d
	return d
}

func (c *Codec) NewEncoder(mm *jxl.MemoryManager) jxl.Encoder {
	e := &Encoder{mm: mm, codec: c}
	c.LastEncoder = e
	return e
}

var _ jxl.Codec = (*Codec)(nil)

// ── Decoder ──────────────────────────────────────────────────────────────────

const (
	phaseHeader = iota
	phaseBasicInfo
	phaseColorEncoding
	phaseOutBuffer
	phaseFullImage
	phaseDone
)

// Decoder consumes container bytes incrementally, reporting events in the
// order a pull decoder would: basic info, color encoding, output buffer
// request, full image, success.
type Decoder struct {
	mm     *jxl.MemoryManager
	events jxl.Event

	accum  []byte
	used   int
	failed bool
	phase  int

	parsed bool
	info   StreamInfo
	icc    int // profile byte count

	outBuf []byte
}

func (d *Decoder) SubscribeEvents(events jxl.Event) jxl.DecoderStatus {
	d.events = events
	return jxl.DecoderSuccess
}

func (d *Decoder) SetInput(data []byte) jxl.DecoderStatus {
	if d.failed {
		return jxl.DecoderError
	}
	if !d.absorb(data) {
		return jxl.DecoderError
	}
	return jxl.DecoderSuccess
}

// absorb copies the borrowed input window into the accumulation buffer,
// growing it through the memory manager when needed.
func (d *Decoder) absorb(data []byte) bool {
	need := d.used + len(data)
	if need > len(d.accum) {
		capacity := len(d.accum) * 2
		for capacity < need {
			capacity *= 2
		}
		grown := d.mm.Alloc(capacity)
		if grown == nil {
			d.failed = true
			return false
		}
		copy(grown, d.accum[:d.used])
		d.mm.Free(d.accum)
		d.accum = grown
	}
	copy(d.accum[d.used:], data)
	d.used = need
	return true
}

func (d *Decoder) total() int {
	return headerSize + d.icc + d.info.payloadSize()
}

func (d *Decoder) ProcessInput() jxl.DecoderStatus {
	if d.failed {
		return jxl.DecoderError
	}
	for {
		switch d.phase {
		case phaseHeader:
			if d.used < headerSize {
				return jxl.DecoderNeedMoreInput
			}
			if !d.parseHeader() {
				return jxl.DecoderError
			}
			d.phase = phaseBasicInfo

		case phaseBasicInfo:
			d.phase = phaseColorEncoding
			if d.events&jxl.EventBasicInfo != 0 {
				return jxl.DecoderBasicInfo
			}

		case phaseColorEncoding:
			if d.events&jxl.EventColorEncoding == 0 {
				d.phase = phaseOutBuffer
				continue
			}
			if d.used < headerSize+d.icc {
				return jxl.DecoderNeedMoreInput
			}
			d.phase = phaseOutBuffer
			return jxl.DecoderColorEncoding

		case phaseOutBuffer:
			if d.events&jxl.EventFullImage == 0 {
				d.phase = phaseDone
				continue
			}
			if d.used < d.total() {
				return jxl.DecoderNeedMoreInput
			}
			d.phase = phaseFullImage
			return jxl.DecoderNeedImageOutBuffer

		case phaseFullImage:
			if d.outBuf == nil {
				d.failed = true
				return jxl.DecoderError
			}
			copy(d.outBuf, d.accum[headerSize+d.icc:d.total()])
			d.phase = phaseDone
			return jxl.DecoderFullImage

		default:
			return jxl.DecoderSuccess
		}
	}
}

func (d *Decoder) parseHeader() bool {
	if !bytes.Equal(d.accum[:4], streamMagic[:]) {
		d.failed = true
		return false
	}
	d.info = StreamInfo{
		XSize:         binary.LittleEndian.Uint32(d.accum[4:]),
		YSize:         binary.LittleEndian.Uint32(d.accum[8:]),
		BitsPerSample: int(d.accum[12]),
		AlphaBits:     int(d.accum[13]),
		Orientation:   jxl.Orientation(d.accum[14]),
		Animated:      d.accum[15]&flagAnimated != 0,
		NumChannels:   int(d.accum[16]),
		DataType:      jxl.DataType(d.accum[17]),
	}
	d.icc = int(binary.LittleEndian.Uint32(d.accum[18:]))
	if d.info.NumChannels < 3 || d.info.NumChannels > 4 ||
		(d.info.DataType != jxl.TypeUint8 && d.info.DataType != jxl.TypeFloat) {
		d.failed = true
		return false
	}
	d.parsed = true
	return true
}

func (d *Decoder) BasicInfo() (jxl.BasicInfo, jxl.DecoderStatus) {
	if !d.parsed {
		return jxl.BasicInfo{}, jxl.DecoderError
	}
	return jxl.BasicInfo{
		XSize:         d.info.XSize,
		YSize:         d.info.YSize,
		BitsPerSample: d.info.BitsPerSample,
		AlphaBits:     d.info.AlphaBits,
		HaveAnimation: d.info.Animated,
		Orientation:   d.info.Orientation,
	}, jxl.DecoderSuccess
}

func (d *Decoder) ICCProfileSize(*jxl.PixelFormat) (int, jxl.DecoderStatus) {
	if !d.parsed {
		return 0, jxl.DecoderError
	}
	return d.icc, jxl.DecoderSuccess
}

func (d *Decoder) ICCProfile(_ *jxl.PixelFormat, dst []byte) jxl.DecoderStatus {
	if !d.parsed || d.used < headerSize+d.icc || len(dst) < d.icc {
		return jxl.DecoderError
	}
	copy(dst, d.accum[headerSize:headerSize+d.icc])
	return jxl.DecoderSuccess
}

func (d *Decoder) ImageOutBufferSize(format *jxl.PixelFormat) (int, jxl.DecoderStatus) {
	if !d.parsed || format.NumChannels != d.info.NumChannels || format.DataType != d.info.DataType {
		return 0, jxl.DecoderError
	}
	return d.info.payloadSize(), jxl.DecoderSuccess
}

func (d *Decoder) SetImageOutBuffer(format *jxl.PixelFormat, buf []byte) jxl.DecoderStatus {
	size, st := d.ImageOutBufferSize(format)
	if st != jxl.DecoderSuccess || len(buf) < size {
		return jxl.DecoderError
	}
	d.outBuf = buf
	return jxl.DecoderSuccess
}

func (d *Decoder) Destroy() {
	d.mm.Free(d.accum)
	d.accum = nil
	d.used = 0
}

var _ jxl.Decoder = (*Decoder)(nil)

// ── Encoder ──────────────────────────────────────────────────────────────────

// Encoder collects one frame and serves the container bytes back through
// the drain protocol.  The Lossless field records the last requested
// frame setting for assertions.
type Encoder struct {
	mm    *jxl.MemoryManager
	codec *Codec

	xsize, ysize int
	dimsSet      bool
	Lossless     bool

	stream    []byte
	streamLen int
	pos       int
	framed    bool
}

type frameSettings struct {
	enc *Encoder
}

func (f *frameSettings) SetLossless(lossless bool) jxl.EncoderStatus {
	f.enc.Lossless = lossless
	return jxl.EncoderSuccess
}

func (e *Encoder) SetDimensions(xsize, ysize int) jxl.EncoderStatus {
	if xsize <= 0 || ysize <= 0 {
		return jxl.EncoderError
	}
	e.xsize = xsize
	e.ysize = ysize
	e.dimsSet = true
	return jxl.EncoderSuccess
}

func (e *Encoder) FrameSettings() jxl.FrameSettings {
	return &frameSettings{enc: e}
}

func (e *Encoder) AddImageFrame(settings jxl.FrameSettings, format *jxl.PixelFormat, pixels []byte) jxl.EncoderStatus {
	if settings == nil || !e.dimsSet || e.framed {
		return jxl.EncoderError
	}
	if format.NumChannels < 3 || format.NumChannels > 4 {
		return jxl.EncoderError
	}
	info := StreamInfo{
		XSize:         uint32(e.xsize),
		YSize:         uint32(e.ysize),
		BitsPerSample: 8,
		Orientation:   e.codec.Orientation,
		NumChannels:   format.NumChannels,
		DataType:      format.DataType,
	}
	if format.DataType == jxl.TypeFloat {
		info.BitsPerSample = 16
	}
	if format.NumChannels == 4 {
		info.AlphaBits = 8
	}
	if len(pixels) < info.payloadSize() {
		return jxl.EncoderError
	}

	data := BuildStream(info, e.codec.ICCProfile, pixels[:info.payloadSize()])
	e.stream = e.mm.Alloc(len(data))
	if e.stream == nil {
		return jxl.EncoderError
	}
	copy(e.stream, data)
	e.streamLen = len(data)
	e.framed = true
	return jxl.EncoderSuccess
}

func (e *Encoder) ProcessOutput(buf []byte) (int, jxl.EncoderStatus) {
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

func (e *Encoder) Destroy() {
	e.mm.Free(e.stream)
	e.stream = nil
}

var _ jxl.Encoder = (*Encoder)(nil)
