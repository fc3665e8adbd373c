// Package coder implements the JPEG XL coder: a bidirectional adapter
// between the codec's event/buffer API and the host's in-memory image
// entity.
package coder

import (
	"errors"
	"fmt"

	"github.com/akorchagin/jxl-coder/config"
	"github.com/akorchagin/jxl-coder/core"
	coderrors "github.com/akorchagin/jxl-coder/errors"
	"github.com/akorchagin/jxl-coder/hooks"
	"github.com/akorchagin/jxl-coder/jxl"
	"github.com/akorchagin/jxl-coder/utils"
)

const (
	opDecode = "jxl.decode"
	opEncode = "jxl.encode"

	// LosslessQuality is the sentinel quality selecting lossless encoding.
	LosslessQuality = 100
)

var (
	errMemoryAllocation = errors.New("memory allocation failed")
	errInsufficientData = errors.New("insufficient image data in stream")
	errAnimated         = errors.New("animated images are not supported")
	errUnableToRead     = errors.New("unable to read image data")
	errUnableToWrite    = errors.New("unable to write image data")
)

// Coder drives one codec backend through complete decode and encode
// calls.  It holds no per-call state and is safe for concurrent use, as
// long as no two calls share an Image.
type Coder struct {
	codec jxl.Codec
	cfg   config.Config
	log   core.Logger
	alloc *utils.Allocator
}

// New creates a Coder bound to the given codec backend.
func New(codec jxl.Codec, cfg config.Config) (*Coder, error) {
	if codec == nil {
		return nil, fmt.Errorf("coder: codec must not be nil")
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return &Coder{
		codec: codec,
		cfg:   cfg,
		log:   hooks.Nop{},
		alloc: &utils.Allocator{MaxBytes: cfg.MaxMemoryBytes},
	}, nil
}

// MemoryInUse reports the outstanding codec buffer bytes across calls.
// It returns to zero after every completed call, successful or failed.
func (c *Coder) MemoryInUse() int64 { return c.alloc.InUse() }

// SetLogger attaches a structured logger for trace events.
func (c *Coder) SetLogger(l core.Logger) {
	if l != nil {
		c.log = l
	}
}

// fatalErr returns the sink's first fatal record, falling back when a
// failure path somehow recorded nothing.
func fatalErr(exc *coderrors.Sink, fallback error) error {
	if e := exc.Fatal(); e != nil {
		return e
	}
	return fallback
}

var (
	_ core.Decoder = (*Coder)(nil)
	_ core.Encoder = (*Coder)(nil)
)
