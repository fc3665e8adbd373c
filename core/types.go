package core

import (
	"context"
	"io"

	coderrors "github.com/akorchagin/jxl-coder/errors"
)

// Format identifies an image coder.
type Format string

// FormatJXL is the JPEG XL format identifier.
const FormatJXL Format = "JXL"

// DecodeOptions carries per-call decode parameters.
type DecodeOptions struct {
	// Filename attributes error records and trace logs; it is never used
	// to open anything.
	Filename string

	// Ping requests a metadata-only decode: geometry, depth, alpha and
	// orientation are populated, pixel data is skipped entirely.
	Ping bool
}

// Decoder reads one image from a byte stream opened by the caller.
// It returns either a fully populated Image or nil plus at least one
// fatal record in the sink.
type Decoder interface {
	Decode(ctx context.Context, r io.Reader, opts DecodeOptions, exc *coderrors.Sink) (*Image, error)
}

// Encoder writes one image to a byte stream opened by the caller.  On
// failure the destination is left in an indeterminate, non-committed state.
type Encoder interface {
	Encode(ctx context.Context, img *Image, w io.Writer, exc *coderrors.Sink) error
}

// CoderInfo is the capability descriptor a coder registers with the host.
type CoderInfo struct {
	Format      Format
	Description string

	// Adjoin reports whether multiple images may be written to one
	// stream.  Cleared for coders that hold exactly one image per file.
	Adjoin bool

	Decoder Decoder // nil when the coder cannot decode
	Encoder Encoder // nil when the coder cannot encode
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}
