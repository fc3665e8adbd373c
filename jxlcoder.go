// Package jxlcoder registers and constructs the JPEG XL coder: decode
// and encode entry points bridging an event-driven JPEG XL codec and the
// host's in-memory image representation.
package jxlcoder

import (
	"context"
	"os"

	"github.com/akorchagin/jxl-coder/coder"
	"github.com/akorchagin/jxl-coder/config"
	"github.com/akorchagin/jxl-coder/core"
	coderrors "github.com/akorchagin/jxl-coder/errors"
	"github.com/akorchagin/jxl-coder/jxl"
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// Capabilities returns the coder's capability descriptor.  The adjoin
// flag is cleared: each output file holds exactly one image.
func Capabilities() core.CoderInfo {
	return core.CoderInfo{
		Format:      core.FormatJXL,
		Description: "JPEG XL (ISO/IEC 18181)",
		Adjoin:      false,
	}
}

// New creates a Coder bound to the given codec backend.
func New(codec jxl.Codec, cfg config.Config) (*coder.Coder, error) {
	return coder.New(codec, cfg)
}

// Register builds a Coder backed by codec and adds it to the registry
// under its capability descriptor.
func Register(reg *core.CoderRegistry, codec jxl.Codec, cfg config.Config) (*coder.Coder, error) {
	c, err := coder.New(codec, cfg)
	if err != nil {
		return nil, err
	}
	info := Capabilities()
	info.Decoder = c
	info.Encoder = c
	reg.Register(info)
	return c, nil
}

// Unregister removes the JPEG XL coder from the registry.
func Unregister(reg *core.CoderRegistry) {
	reg.Unregister(core.FormatJXL)
}

// DecodeFile opens path in binary-read mode and decodes it.  A failure
// to open the file is recorded as a stream-open failure.
func DecodeFile(ctx context.Context, c *coder.Coder, path string, exc *coderrors.Sink) (*core.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, exc.Throw(coderrors.KindStreamOpenFailure, "jxl.open", path, err)
	}
	defer f.Close()
	return c.Decode(ctx, f, core.DecodeOptions{Filename: path}, exc)
}

// EncodeFile creates path and encodes img into it.  On encode failure the
// file is left in a non-committed state flagged by the returned error.
func EncodeFile(ctx context.Context, c *coder.Coder, img *core.Image, path string, exc *coderrors.Sink) error {
	f, err := os.Create(path)
	if err != nil {
		return exc.Throw(coderrors.KindStreamOpenFailure, "jxl.open", path, err)
	}
	if err := c.Encode(ctx, img, f, exc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return exc.Throw(coderrors.KindEncodeFailure, "jxl.close", path, err)
	}
	return nil
}
