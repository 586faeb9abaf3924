package display_test

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imageloading/animatedcache/core"
	"github.com/imageloading/animatedcache/display"
)

// ── Test doubles ──────────────────────────────────────────────────────────────

// recordingRenderer captures everything shown in order.
type recordingRenderer struct {
	mu         sync.Mutex
	rasters    int
	animations []core.Animation
	cleared    int
}

func (r *recordingRenderer) ShowRaster(image.Image) {
	r.mu.Lock()
	r.rasters++
	r.mu.Unlock()
}

func (r *recordingRenderer) ShowAnimation(a core.Animation) {
	r.mu.Lock()
	r.animations = append(r.animations, a)
	r.mu.Unlock()
}

func (r *recordingRenderer) Clear() {
	r.mu.Lock()
	r.cleared++
	r.mu.Unlock()
}

func (r *recordingRenderer) snapshot() (rasters int, anims []core.Animation, cleared int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rasters, append([]core.Animation(nil), r.animations...), r.cleared
}

// gateAnimator blocks each build until the matching gate channel is closed.
// The produced animation is the string form of the encoded payload.
type gateAnimator struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	err   error
}

func newGateAnimator() *gateAnimator {
	return &gateAnimator{gates: make(map[string]chan struct{})}
}

func (a *gateAnimator) gate(payload string) chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.gates[payload]; !ok {
		a.gates[payload] = make(chan struct{})
	}
	return a.gates[payload]
}

func (a *gateAnimator) Animate(ctx context.Context, encoded []byte) (core.Animation, error) {
	select {
	case <-a.gate(string(encoded)):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if a.err != nil {
		return nil, a.err
	}
	return "anim:" + string(encoded), nil
}

func newAnimated(t *testing.T, payload string) *core.Image {
	t.Helper()
	img, err := core.NewAnimated(
		image.NewPaletted(image.Rect(0, 0, 4, 4), nil),
		[]byte(payload),
		core.Metadata{Format: core.FormatGIF},
	)
	require.NoError(t, err)
	return img
}

func newPool(t *testing.T, a core.Animator) *display.BuilderPool {
	t.Helper()
	pool := display.NewBuilderPool(a, 2, 8, 0)
	pool.Start()
	t.Cleanup(pool.Stop)
	return pool
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestSlot_AnimatedShowsPosterThenAnimation(t *testing.T) {
	animator := newGateAnimator()
	renderer := &recordingRenderer{}
	slot := display.NewSlot(renderer, newPool(t, animator))

	slot.Display(context.Background(), newAnimated(t, "x"))

	rasters, anims, _ := renderer.snapshot()
	assert.Equal(t, 1, rasters, "poster must show synchronously")
	assert.Empty(t, anims, "animation must not be built inline")

	close(animator.gate("x"))
	waitFor(t, func() bool { _, a, _ := renderer.snapshot(); return len(a) == 1 })

	_, anims, _ = renderer.snapshot()
	assert.Equal(t, core.Animation("anim:x"), anims[0])
}

func TestSlot_SupersededBuildDiscarded(t *testing.T) {
	animator := newGateAnimator()
	renderer := &recordingRenderer{}
	slot := display.NewSlot(renderer, newPool(t, animator))

	x := newAnimated(t, "x")
	y := newAnimated(t, "y")

	slot.Display(context.Background(), x)
	slot.Display(context.Background(), y) // supersede before x's build completes

	// Finish the stale build first, then the current one.
	close(animator.gate("x"))
	close(animator.gate("y"))
	waitFor(t, func() bool { _, a, _ := renderer.snapshot(); return len(a) >= 1 })

	// Allow any stray stale completion to land.
	time.Sleep(20 * time.Millisecond)

	_, anims, _ := renderer.snapshot()
	require.Len(t, anims, 1, "exactly one animation may be swapped in")
	assert.Equal(t, core.Animation("anim:y"), anims[0], "the stale build must be discarded")
}

func TestSlot_PlainIsSynchronous(t *testing.T) {
	animator := newGateAnimator()
	renderer := &recordingRenderer{}
	slot := display.NewSlot(renderer, newPool(t, animator))

	plain := core.NewPlain(image.NewRGBA(image.Rect(0, 0, 2, 2)), core.Metadata{})
	slot.Display(context.Background(), plain)

	rasters, anims, _ := renderer.snapshot()
	assert.Equal(t, 1, rasters)
	assert.Empty(t, anims)
}

func TestSlot_NilClears(t *testing.T) {
	renderer := &recordingRenderer{}
	slot := display.NewSlot(renderer, newPool(t, newGateAnimator()))

	slot.Display(context.Background(), nil)

	_, _, cleared := renderer.snapshot()
	assert.Equal(t, 1, cleared)
}

func TestSlot_PlainSupersedesAnimated(t *testing.T) {
	animator := newGateAnimator()
	renderer := &recordingRenderer{}
	pool := newPool(t, animator)
	slot := display.NewSlot(renderer, pool)

	slot.Display(context.Background(), newAnimated(t, "x"))
	plain := core.NewPlain(image.NewRGBA(image.Rect(0, 0, 2, 2)), core.Metadata{})
	slot.Display(context.Background(), plain)

	close(animator.gate("x"))
	waitFor(t, func() bool { return pool.BuiltCount() == 1 })
	time.Sleep(20 * time.Millisecond)

	_, anims, _ := renderer.snapshot()
	assert.Empty(t, anims, "a plain display must invalidate the pending animation")
}

func TestSlot_BuildFailureKeepsPoster(t *testing.T) {
	animator := newGateAnimator()
	animator.err = errors.New("engine exploded")
	renderer := &recordingRenderer{}
	pool := newPool(t, animator)
	slot := display.NewSlot(renderer, pool)

	slot.Display(context.Background(), newAnimated(t, "x"))
	close(animator.gate("x"))

	waitFor(t, func() bool { return pool.ErrorCount() == 1 })

	rasters, anims, _ := renderer.snapshot()
	assert.Equal(t, 1, rasters)
	assert.Empty(t, anims, "failed build must not surface")
}

func TestSlot_ExecutorReceivesCompletions(t *testing.T) {
	animator := newGateAnimator()
	renderer := &recordingRenderer{}

	var execMu sync.Mutex
	execCalls := 0
	exec := func(f func()) {
		execMu.Lock()
		execCalls++
		execMu.Unlock()
		f()
	}

	slot := display.NewSlot(renderer, newPool(t, animator), display.WithExecutor(exec))
	slot.Display(context.Background(), newAnimated(t, "x"))
	close(animator.gate("x"))

	waitFor(t, func() bool { _, a, _ := renderer.snapshot(); return len(a) == 1 })

	execMu.Lock()
	defer execMu.Unlock()
	assert.Equal(t, 1, execCalls, "completion must be marshalled through the executor")
}
