package core

import "sync"

// CoderRegistry is a thread-safe table of registered coders keyed by
// format identifier.
type CoderRegistry struct {
	mu     sync.RWMutex
	coders map[Format]CoderInfo
}

// NewCoderRegistry returns an empty registry.
func NewCoderRegistry() *CoderRegistry {
	return &CoderRegistry{coders: make(map[Format]CoderInfo)}
}

// Register adds or replaces the coder for info.Format.
func (r *CoderRegistry) Register(info CoderInfo) {
	r.mu.Lock()
	r.coders[info.Format] = info
	r.mu.Unlock()
}

// Unregister removes the coder for the given format.
func (r *CoderRegistry) Unregister(f Format) {
	r.mu.Lock()
	delete(r.coders, f)
	r.mu.Unlock()
}

// Lookup returns the coder registered for f.
func (r *CoderRegistry) Lookup(f Format) (CoderInfo, bool) {
	r.mu.RLock()
	info, ok := r.coders[f]
	r.mu.RUnlock()
	return info, ok
}

// Formats returns the registered format identifiers in no particular order.
func (r *CoderRegistry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Format, 0, len(r.coders))
	for f := range r.coders {
		out = append(out, f)
	}
	return out
}
