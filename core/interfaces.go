package core

import "context"

// Decoder converts raw bytes into an in-memory Image.
// Implementations live in adapters/decoder/.
type Decoder interface {
	// Decode parses data and returns a decoded Image.  A decoder that does
	// not recognise the payload returns an error wrapping
	// errors.ErrUnsupportedFormat; a composition then moves on to the next
	// candidate.
	Decode(ctx context.Context, data []byte, meta ResponseMeta) (*Image, error)
	// CanDecode reports whether this decoder handles the given format hint.
	CanDecode(format Format) bool
}

// Transform produces a new Image from an existing one (resize, grayscale,
// and so on).  Implementations must be safe for concurrent use and must not
// mutate their input.
//
// Transforms are plain comparable values: two transforms compare equal with
// == exactly when they would produce the same output for every input.
// Upstream pipelines rely on this to deduplicate processing work.
type Transform interface {
	Name() string
	Apply(ctx context.Context, img *Image) (*Image, error)
}

// Animator builds the heavyweight drivable animation object from an encoded
// byte stream.  The construction may be slow; callers run it off the
// synchronous path.  The playback engine behind it is opaque to this module.
type Animator interface {
	Animate(ctx context.Context, encoded []byte) (Animation, error)
}

// CostFunc estimates the resident byte cost of keeping img in memory.
type CostFunc func(img *Image) int64

// StorePolicy decides whether the cache may retain img at all.  Returning
// false makes the store a silent no-op.
type StorePolicy func(img *Image) bool

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// MetricsCollector receives cache performance observations.
type MetricsCollector interface {
	RecordHit()
	RecordMiss()
	RecordStore(cost int64)
	RecordEviction(cost int64)
	RecordRefusal()
	SetResidentCost(total int64)
}

// Hook is an optional observer of cache events.  Hooks are invoked outside
// the cache lock and must not block for long.
type Hook interface {
	OnStore(key RequestKey, img *Image, cost int64)
	OnEvict(key RequestKey, cost int64)
	OnHit(key RequestKey)
	OnMiss(key RequestKey)
}

// Registry holds decoders in registration order.  The order is significant:
// it determines format-detection precedence when building a composition.
type Registry interface {
	RegisterDecoder(format Format, d Decoder)
	DecoderFor(format Format) (Decoder, bool)
	Decoders() []Decoder
}
