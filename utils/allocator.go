// Package utils provides the memory accounting shared by the coder
// pipelines.
package utils

import (
	"fmt"
	"sync/atomic"
)

// Allocator hands out byte buffers against an optional memory budget.
// It is the host-side allocation path every codec buffer goes through,
// so allocation failures surface as errors instead of aborting.
// Safe for concurrent use.
type Allocator struct {
	// MaxBytes caps the total outstanding allocation size; 0 means no cap.
	MaxBytes int64

	used atomic.Int64
}

// Acquire returns a zeroed buffer of n bytes, or an error when the budget
// would be exceeded.
func (a *Allocator) Acquire(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("allocator: negative size %d", n)
	}
	if a.MaxBytes > 0 {
		if used := a.used.Add(int64(n)); used > a.MaxBytes {
			a.used.Add(int64(-n))
			return nil, fmt.Errorf("allocator: %d bytes requested, %d of %d in use", n, used-int64(n), a.MaxBytes)
		}
	} else {
		a.used.Add(int64(n))
	}
	return make([]byte, n), nil
}

// Release returns b's accounting to the budget.  Callers must not use b
// afterwards.  Releasing nil is a no-op.
func (a *Allocator) Release(b []byte) {
	if b == nil {
		return
	}
	a.used.Add(int64(-cap(b)))
}

// InUse reports the outstanding accounted bytes.
func (a *Allocator) InUse() int64 { return a.used.Load() }
