package coder

import (
	"context"
	"io"

	"github.com/akorchagin/jxl-coder/core"
	coderrors "github.com/akorchagin/jxl-coder/errors"
	"github.com/akorchagin/jxl-coder/jxl"
)

// Decode drives the pull-style decoder through its event loop until a
// terminal state, feeding input chunks on demand and interpreting
// basic-info, color-profile, and image-buffer events.  It returns either
// a fully populated Image or nil plus at least one fatal record in exc.
func (c *Coder) Decode(ctx context.Context, r io.Reader, opts core.DecodeOptions, exc *coderrors.Sink) (*core.Image, error) {
	c.log.Debug("jxl.decode.start", "filename", opts.Filename, "ping", opts.Ping)

	img := core.NewImage(opts.Filename)
	mm := newMemoryManager(&memoryManagerInfo{image: img, exc: exc, alloc: c.alloc})

	dec := c.codec.NewDecoder(mm)
	if dec == nil {
		return nil, exc.Throw(coderrors.KindAllocationFailure, opDecode, img.Filename, errMemoryAllocation)
	}
	defer dec.Destroy()

	events := jxl.EventBasicInfo
	if !opts.Ping {
		events |= jxl.EventColorEncoding | jxl.EventFullImage
	}
	if st := dec.SubscribeEvents(events); st != jxl.DecoderSuccess {
		return nil, exc.Throw(coderrors.KindCorruptOrUnreadable, opDecode, img.Filename, errUnableToRead)
	}

	// The input buffer is allocated once and refilled across the whole
	// call; the decoder borrows a window into it until the next refill.
	input := mm.Alloc(c.cfg.BufferExtent)
	if input == nil {
		return nil, fatalErr(exc, errMemoryAllocation)
	}
	defer mm.Free(input)

	var (
		format jxl.PixelFormat
		output []byte
		armed  bool
		failed bool
	)
	defer func() {
		mm.Free(output)
	}()

	status := jxl.DecoderNeedMoreInput
	for status != jxl.DecoderSuccess && status != jxl.DecoderError && !failed {
		if err := ctx.Err(); err != nil {
			exc.Throw(coderrors.KindCorruptOrUnreadable, opDecode, img.Filename, err)
			failed = true
			break
		}

		status = dec.ProcessInput()
		switch status {
		case jxl.DecoderNeedMoreInput:
			n, _ := r.Read(input)
			if n <= 0 {
				exc.Throw(coderrors.KindInsufficientInputData, opDecode, img.Filename, errInsufficientData)
				failed = true
				break
			}
			dec.SetInput(input[:n])

		case jxl.DecoderBasicInfo:
			basic, st := dec.BasicInfo()
			if st != jxl.DecoderSuccess {
				status = jxl.DecoderError
				break
			}
			if basic.HaveAnimation {
				exc.Throw(coderrors.KindUnsupportedVariant, opDecode, img.Filename, errAnimated)
				failed = true
				break
			}
			img.Columns = int(basic.XSize)
			img.Rows = int(basic.YSize)
			img.Depth = basic.BitsPerSample
			if basic.AlphaBits != 0 {
				img.HasAlpha = true
			}
			img.Orientation = MapOrientation(basic.Orientation)
			c.log.Debug("jxl.decode.basic_info",
				"filename", img.Filename,
				"columns", img.Columns,
				"rows", img.Rows,
				"depth", img.Depth,
				"alpha", img.HasAlpha,
				"orientation", img.Orientation.String(),
			)

		case jxl.DecoderColorEncoding:
			size, st := dec.ICCProfileSize(&format)
			if st != jxl.DecoderSuccess {
				status = jxl.DecoderError
				break
			}
			if size == 0 {
				break
			}
			profile := make([]byte, size)
			if st := dec.ICCProfile(&format, profile); st != jxl.DecoderSuccess {
				status = jxl.DecoderError
				break
			}
			img.SetProfile("icc", profile)

		case jxl.DecoderNeedImageOutBuffer:
			format = Negotiate(img.HasAlpha, img.Depth)
			size, st := dec.ImageOutBufferSize(&format)
			if st != jxl.DecoderSuccess {
				status = jxl.DecoderError
				break
			}
			if err := img.SetExtent(img.Columns, img.Rows); err != nil {
				exc.Throw(coderrors.KindCorruptOrUnreadable, opDecode, img.Filename, err)
				failed = true
				break
			}
			// A backend may request a buffer more than once; drop the
			// previous one so its accounting is returned.
			mm.Free(output)
			output = mm.Alloc(size)
			if output == nil {
				failed = true
				break
			}
			if st := dec.SetImageOutBuffer(&format, output); st != jxl.DecoderSuccess {
				status = jxl.DecoderError
				break
			}
			armed = true
			// Arm, then immediately attempt to consume: the decoder may
			// already hold a completed frame for this buffer.
			if !c.consumeFullImage(img, format, output, exc) {
				status = jxl.DecoderError
			}

		case jxl.DecoderFullImage:
			if !armed {
				exc.Throw(coderrors.KindCorruptOrUnreadable, opDecode, img.Filename, errUnableToRead)
				failed = true
				break
			}
			if !c.consumeFullImage(img, format, output, exc) {
				status = jxl.DecoderError
			}

		case jxl.DecoderSuccess, jxl.DecoderError:
			// Terminal; the loop condition ends the call.

		default:
			status = jxl.DecoderError
		}
	}

	if failed || status == jxl.DecoderError {
		if status == jxl.DecoderError {
			exc.Throw(coderrors.KindCorruptOrUnreadable, opDecode, img.Filename, errUnableToRead)
		}
		return nil, fatalErr(exc, errUnableToRead)
	}

	c.log.Debug("jxl.decode.done", "filename", img.Filename,
		"columns", img.Columns, "rows", img.Rows)
	return img, nil
}

// consumeFullImage unpacks the armed output buffer into the image's pixel
// store using the negotiated channel order and sample type.
func (c *Coder) consumeFullImage(img *core.Image, format jxl.PixelFormat, output []byte, exc *coderrors.Sink) bool {
	err := img.ImportPixels(0, 0, img.Columns, img.Rows, channelMap(format), storageType(format), output)
	if err != nil {
		exc.Throw(coderrors.KindImportFailure, opDecode, img.Filename, err)
		return false
	}
	return true
}
