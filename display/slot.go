package display

import (
	"context"
	"image"
	"sync"

	"github.com/imageloading/animatedcache/core"
)

// Renderer is the view-layer contract a Slot drives.  Implementations own
// the actual raster and animation drawing primitives.
type Renderer interface {
	ShowRaster(img image.Image)
	ShowAnimation(anim core.Animation)
	Clear()
}

// Slot manages a single display position.  Displaying an animated image
// shows its poster frame immediately and schedules construction of the full
// animation on the builder pool; the finished animation is swapped in only
// if the slot still shows the same image.  A completion that arrives after
// the slot moved on is discarded.
//
// Staleness is tracked with a generation token: every Display call advances
// the generation, and a completion applies only when its captured generation
// is still current.  The check and the swap run under the slot's lock, so a
// newer display request can never be clobbered by a stale build.
type Slot struct {
	renderer Renderer
	pool     *BuilderPool
	logger   core.Logger

	// exec marshals completions onto the context that owns the slot.
	// Defaults to running inline on the builder worker; UI hosts inject
	// their main-loop dispatcher here.
	exec func(func())

	mu  sync.Mutex
	gen uint64
}

// SlotOption configures a Slot.
type SlotOption func(*Slot)

// WithExecutor sets the function used to marshal build completions onto the
// execution context that owns the slot (a UI main loop, typically).
func WithExecutor(exec func(func())) SlotOption {
	return func(s *Slot) { s.exec = exec }
}

// WithSlotLogger attaches a structured logger.
func WithSlotLogger(l core.Logger) SlotOption {
	return func(s *Slot) { s.logger = l }
}

// NewSlot creates a Slot rendering through r and building animations on pool.
func NewSlot(r Renderer, pool *BuilderPool, opts ...SlotOption) *Slot {
	s := &Slot{
		renderer: r,
		pool:     pool,
		exec:     func(f func()) { f() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Display shows img in the slot.
//
// A nil img clears the slot.  A plain image shows its raster synchronously.
// An animated image shows its poster synchronously and schedules the full
// animation build off-path; in-flight builds for earlier images keep
// running but their results are discarded on completion.
func (s *Slot) Display(ctx context.Context, img *core.Image) {
	s.mu.Lock()
	s.gen++
	gen := s.gen

	if img == nil {
		s.renderer.Clear()
		s.mu.Unlock()
		return
	}

	s.renderer.ShowRaster(img.Raster())
	if !img.IsAnimated() {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	err := s.pool.submit(buildJob{
		ctx:     ctx,
		encoded: img.Encoded(),
		complete: func(anim core.Animation, err error) {
			s.exec(func() { s.applyAnimation(gen, anim, err) })
		},
	})
	if err != nil && s.logger != nil {
		// Poster stays up; the enhancement is best effort.
		s.logger.Warn("display.animation.skipped", "error", err.Error())
	}
}

// applyAnimation swaps in a finished animation unless the slot has since
// been assigned a different image.
func (s *Slot) applyAnimation(gen uint64, anim core.Animation, err error) {
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("display.animation.failed", "error", err.Error())
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// Superseded: a newer image owns the slot now.
		return
	}
	s.renderer.ShowAnimation(anim)
}
