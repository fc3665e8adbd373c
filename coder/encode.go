package coder

import (
	"context"
	"fmt"
	"io"

	"github.com/akorchagin/jxl-coder/core"
	coderrors "github.com/akorchagin/jxl-coder/errors"
	"github.com/akorchagin/jxl-coder/jxl"
)

// Encode configures the push-style encoder, submits the image's exported
// pixel store as a single frame, then drains compressed output to w in
// bounded chunks until the encoder reports completion.  On failure the
// destination is left in an indeterminate, non-committed state.
func (c *Coder) Encode(ctx context.Context, img *core.Image, w io.Writer, exc *coderrors.Sink) error {
	c.log.Debug("jxl.encode.start", "filename", img.Filename,
		"columns", img.Columns, "rows", img.Rows, "quality", img.Quality)

	mm := newMemoryManager(&memoryManagerInfo{image: img, exc: exc, alloc: c.alloc})

	enc := c.codec.NewEncoder(mm)
	if enc == nil {
		return exc.Throw(coderrors.KindAllocationFailure, opEncode, img.Filename, errMemoryAllocation)
	}
	defer enc.Destroy()

	format := Negotiate(img.HasAlpha, img.Depth)
	if st := enc.SetDimensions(img.Columns, img.Rows); st != jxl.EncoderSuccess {
		return exc.Throw(coderrors.KindEncodeFailure, opEncode, img.Filename,
			fmt.Errorf("encoder rejected dimensions %dx%d", img.Columns, img.Rows))
	}

	settings := enc.FrameSettings()
	if settings == nil {
		return exc.Throw(coderrors.KindAllocationFailure, opEncode, img.Filename, errMemoryAllocation)
	}
	quality := img.Quality
	if quality == 0 {
		quality = c.cfg.DefaultQuality
	}
	if quality == LosslessQuality {
		if st := settings.SetLossless(true); st != jxl.EncoderSuccess {
			return exc.Throw(coderrors.KindEncodeFailure, opEncode, img.Filename, errUnableToWrite)
		}
	}

	bytesPerRow := img.Columns * format.NumChannels * format.SampleSize()
	input := mm.Alloc(bytesPerRow * img.Rows)
	if input == nil {
		return fatalErr(exc, errMemoryAllocation)
	}
	defer mm.Free(input)

	err := img.ExportPixels(0, 0, img.Columns, img.Rows, channelMap(format), storageType(format), input)
	if err != nil {
		return exc.Throw(coderrors.KindExportFailure, opEncode, img.Filename, err)
	}

	if st := enc.AddImageFrame(settings, &format, input); st != jxl.EncoderSuccess {
		return exc.Throw(coderrors.KindEncodeFailure, opEncode, img.Filename, errUnableToWrite)
	}

	// The output buffer is allocated once; each drain iteration presents
	// its full capacity to the encoder and flushes the filled portion.
	output := mm.Alloc(c.cfg.BufferExtent)
	if output == nil {
		return fatalErr(exc, errMemoryAllocation)
	}
	defer mm.Free(output)

	status := jxl.EncoderNeedMoreOutput
	for status == jxl.EncoderNeedMoreOutput {
		if err := ctx.Err(); err != nil {
			return exc.Throw(coderrors.KindEncodeFailure, opEncode, img.Filename, err)
		}
		n, st := enc.ProcessOutput(output)
		if n > 0 {
			if _, werr := w.Write(output[:n]); werr != nil {
				return exc.Throw(coderrors.KindEncodeFailure, opEncode, img.Filename, werr)
			}
		}
		status = st
	}
	if status != jxl.EncoderSuccess {
		return exc.Throw(coderrors.KindEncodeFailure, opEncode, img.Filename, errUnableToWrite)
	}

	c.log.Debug("jxl.encode.done", "filename", img.Filename)
	return nil
}
