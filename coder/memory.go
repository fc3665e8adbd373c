package coder

import (
	"github.com/akorchagin/jxl-coder/core"
	coderrors "github.com/akorchagin/jxl-coder/errors"
	"github.com/akorchagin/jxl-coder/jxl"
	"github.com/akorchagin/jxl-coder/utils"
)

// memoryManagerInfo binds the image and the error sink carried through
// every allocation callback for the lifetime of one decode or encode
// call.  It never escapes the call that created it.
type memoryManagerInfo struct {
	image *core.Image
	exc   *coderrors.Sink
	alloc *utils.Allocator
}

// newMemoryManager builds the codec memory manager: allocations route
// through the host allocator, and a failed allocation is recorded against
// the image's filename at the point it happens, so the message is never
// generic.
func newMemoryManager(info *memoryManagerInfo) *jxl.MemoryManager {
	return &jxl.MemoryManager{
		Alloc: func(size int) []byte {
			block, err := info.alloc.Acquire(size)
			if err != nil {
				info.exc.Throw(coderrors.KindAllocationFailure, "jxl.alloc", info.image.Filename, err)
				return nil
			}
			return block
		},
		Free: func(block []byte) {
			info.alloc.Release(block)
		},
	}
}
