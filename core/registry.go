package core

import "sync"

// ── Registry ──────────────────────────────────────────────────────────────────

// DefaultRegistry is a thread-safe implementation of Registry that preserves
// registration order.
type DefaultRegistry struct {
	mu       sync.RWMutex
	order    []Format
	decoders map[Format]Decoder
}

// NewRegistry returns an empty DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		decoders: make(map[Format]Decoder),
	}
}

func (r *DefaultRegistry) RegisterDecoder(f Format, d Decoder) {
	r.mu.Lock()
	if _, seen := r.decoders[f]; !seen {
		r.order = append(r.order, f)
	}
	r.decoders[f] = d
	r.mu.Unlock()
}

func (r *DefaultRegistry) DecoderFor(f Format) (Decoder, bool) {
	r.mu.RLock()
	d, ok := r.decoders[f]
	r.mu.RUnlock()
	return d, ok
}

// Decoders returns all registered decoders in registration order.
func (r *DefaultRegistry) Decoders() []Decoder {
	r.mu.RLock()
	out := make([]Decoder, 0, len(r.order))
	for _, f := range r.order {
		out = append(out, r.decoders[f])
	}
	r.mu.RUnlock()
	return out
}
