// Package jxl declares the event/buffer API of the JPEG XL codec as
// consumed by the coder: a pull-style decoder that reports what it needs
// next, and a push-style encoder that is drained in bounded chunks.
// Implementations bind a real codec (see adapters) or an in-memory test
// codec (see jxltest); this module never implements the bitstream itself.
package jxl

// DecoderStatus is the decoder's answer to "what do you need next", plus
// the terminal success/error states.
type DecoderStatus int

const (
	DecoderSuccess DecoderStatus = iota
	DecoderError
	DecoderNeedMoreInput
	DecoderBasicInfo
	DecoderColorEncoding
	DecoderNeedImageOutBuffer
	DecoderFullImage
)

func (s DecoderStatus) String() string {
	switch s {
	case DecoderSuccess:
		return "success"
	case DecoderError:
		return "error"
	case DecoderNeedMoreInput:
		return "need-more-input"
	case DecoderBasicInfo:
		return "basic-info"
	case DecoderColorEncoding:
		return "color-encoding"
	case DecoderNeedImageOutBuffer:
		return "need-image-out-buffer"
	case DecoderFullImage:
		return "full-image"
	}
	return "unknown"
}

// EncoderStatus reports encoder call outcomes and the drain-loop state.
type EncoderStatus int

const (
	EncoderSuccess EncoderStatus = iota
	EncoderError
	EncoderNeedMoreOutput
)

// Event is a bitmask of decoder events a caller subscribes to.
type Event uint32

const (
	EventBasicInfo Event = 1 << iota
	EventColorEncoding
	EventFullImage
)

// DataType is the codec-side sample representation.
type DataType int

const (
	TypeUint8 DataType = iota
	TypeFloat
)

// PixelFormat describes the codec's pixel layout for one buffer exchange.
type PixelFormat struct {
	NumChannels int
	DataType    DataType
}

// SampleSize returns the bytes per sample.
func (f PixelFormat) SampleSize() int {
	if f.DataType == TypeFloat {
		return 4
	}
	return 1
}

// Orientation is the codec's EXIF-style orientation enumeration.
type Orientation int

const (
	OrientIdentity Orientation = iota + 1
	OrientFlipHorizontal
	OrientRotate180
	OrientFlipVertical
	OrientTranspose
	OrientRotate90CW
	OrientAntiTranspose
	OrientRotate90CCW
)

// BasicInfo is the codec-reported metadata available before any pixel
// data.
type BasicInfo struct {
	XSize         uint32
	YSize         uint32
	BitsPerSample int
	AlphaBits     int
	HaveAnimation bool
	Orientation   Orientation
}

// MemoryManager routes every codec allocation through the host.  Alloc
// returns nil on failure; implementations must already have reported the
// failure before returning.  Free releases a previously returned block
// and never fails.  The manager must be installed before the codec handle
// is created and stays valid for the handle's lifetime.
type MemoryManager struct {
	Alloc func(size int) []byte
	Free  func(block []byte)
}

// Decoder is the pull-style decode handle.  Callers drive it by calling
// ProcessInput repeatedly and reacting to the returned status until a
// terminal state is reached.
type Decoder interface {
	// SubscribeEvents selects which informative events ProcessInput may
	// report before completion.
	SubscribeEvents(events Event) DecoderStatus

	// ProcessInput advances the decoder and reports what it needs next.
	ProcessInput() DecoderStatus

	// SetInput hands the decoder a new input window.  The decoder only
	// borrows data until the next SetInput call.
	SetInput(data []byte) DecoderStatus

	// BasicInfo returns the stream metadata once EventBasicInfo fired.
	BasicInfo() (BasicInfo, DecoderStatus)

	// ICCProfileSize reports the size of the original ICC profile.
	ICCProfileSize(format *PixelFormat) (int, DecoderStatus)

	// ICCProfile copies the ICC profile bytes into dst.
	ICCProfile(format *PixelFormat, dst []byte) DecoderStatus

	// ImageOutBufferSize reports the byte size the output buffer must
	// have for the given pixel format.
	ImageOutBufferSize(format *PixelFormat) (int, DecoderStatus)

	// SetImageOutBuffer arms buf as the write target for decoded pixels.
	SetImageOutBuffer(format *PixelFormat, buf []byte) DecoderStatus

	// Destroy releases the handle and everything it allocated.
	Destroy()
}

// FrameSettings carries per-frame encoding options.
type FrameSettings interface {
	// SetLossless requests bit-exact reconstruction for the frame.
	SetLossless(lossless bool) EncoderStatus
}

// Encoder is the push-style encode handle: configure, submit one frame,
// then drain output until EncoderSuccess.
type Encoder interface {
	// SetDimensions declares the output geometry.
	SetDimensions(xsize, ysize int) EncoderStatus

	// FrameSettings creates per-frame options; nil signals an allocation
	// failure.
	FrameSettings() FrameSettings

	// AddImageFrame submits pixels as a single image frame.
	AddImageFrame(settings FrameSettings, format *PixelFormat, pixels []byte) EncoderStatus

	// ProcessOutput fills buf with as much compressed output as fits and
	// returns the byte count plus EncoderNeedMoreOutput while more output
	// remains, EncoderSuccess when the stream is complete.
	ProcessOutput(buf []byte) (int, EncoderStatus)

	// Destroy releases the handle and everything it allocated.
	Destroy()
}

// Codec creates decoder and encoder handles bound to a memory manager.
// A nil handle signals an allocation failure already reported through the
// manager.
type Codec interface {
	NewDecoder(mm *MemoryManager) Decoder
	NewEncoder(mm *MemoryManager) Encoder
}
