// Package animatedcache wires format-aware decoding, a cost-accounted
// in-memory image cache, and asynchronous animation finalisation into one
// entry point.  Animated GIF payloads decode to a poster frame immediately;
// the full animation is built off-path and swapped in when ready.
package animatedcache

import (
	"context"
	"io"
	"sync"

	"github.com/imageloading/animatedcache/adapters/decoder"
	"github.com/imageloading/animatedcache/cache"
	"github.com/imageloading/animatedcache/config"
	"github.com/imageloading/animatedcache/core"
	"github.com/imageloading/animatedcache/display"
	apperrors "github.com/imageloading/animatedcache/errors"
	"github.com/imageloading/animatedcache/utils"
)

// Re-export Format constants for convenience.
const (
	GIF  = core.FormatGIF
	JPEG = core.FormatJPEG
	PNG  = core.FormatPNG
	WebP = core.FormatWebP
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// Loader is the primary entry point.  It owns the decoder composition, the
// image cache, and the animation builder pool, all safe for concurrent use.
type Loader struct {
	cfg      config.Config
	reg      *core.DefaultRegistry
	cache    *cache.Cache
	pool     *display.BuilderPool
	logger   core.Logger
	animator core.Animator

	mu        sync.RWMutex
	composite *decoder.Composite
}

// Option configures a Loader.
type Option func(*loaderOptions)

type loaderOptions struct {
	logger   core.Logger
	metrics  core.MetricsCollector
	hooks    []core.Hook
	animator core.Animator
	costFn   core.CostFunc
}

// WithLogger attaches a structured logger.
func WithLogger(l core.Logger) Option { return func(o *loaderOptions) { o.logger = l } }

// WithMetrics attaches a metrics collector to the cache.
func WithMetrics(m core.MetricsCollector) Option { return func(o *loaderOptions) { o.metrics = m } }

// WithCacheHook registers an observer for cache events.
func WithCacheHook(h core.Hook) Option { return func(o *loaderOptions) { o.hooks = append(o.hooks, h) } }

// WithAnimator supplies the external animation construction engine.  Without
// one, NewSlot returns an error.
func WithAnimator(a core.Animator) Option { return func(o *loaderOptions) { o.animator = a } }

// WithCostFunc overrides the cache cost estimate.
func WithCostFunc(f core.CostFunc) Option { return func(o *loaderOptions) { o.costFn = f } }

// New creates a fully wired Loader with the GIF, JPEG, PNG, and WebP
// decoders registered, GIF first so animated payloads always take the
// animated path.  It rejects inconsistent configurations.  Call Start()
// before creating display slots; call Stop() when done.
func New(cfg config.Config, opts ...Option) (*Loader, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConfig, "loader.new", err)
	}
	var o loaderOptions
	for _, opt := range opts {
		opt(&o)
	}

	reg := core.NewRegistry()
	reg.RegisterDecoder(core.FormatGIF, decoder.NewGIF())
	reg.RegisterDecoder(core.FormatJPEG, decoder.NewJPEG())
	reg.RegisterDecoder(core.FormatPNG, decoder.NewPNG())
	reg.RegisterDecoder(core.FormatWebP, decoder.NewWebP())

	costFn := o.costFn
	if costFn == nil {
		costFn = cache.AnimatedAwareCost
	}
	policy := cache.AllowAll
	if !cfg.AllowAnimatedStorage {
		policy = cache.DenyAnimated
	}

	cacheOpts := []cache.Option{
		cache.WithCostFunc(costFn),
		cache.WithStorePolicy(policy),
	}
	if o.logger != nil {
		cacheOpts = append(cacheOpts, cache.WithLogger(o.logger))
	}
	if o.metrics != nil {
		cacheOpts = append(cacheOpts, cache.WithMetrics(o.metrics))
	}
	for _, h := range o.hooks {
		cacheOpts = append(cacheOpts, cache.WithHook(h))
	}

	l := &Loader{
		cfg:      cfg,
		reg:      reg,
		cache:    cache.New(cfg.CacheCapacityBytes, cacheOpts...),
		logger:   o.logger,
		animator: o.animator,
	}
	if o.animator != nil {
		l.pool = display.NewBuilderPool(o.animator, cfg.BuilderCount, cfg.BuildQueueSize, cfg.BuildTimeout)
	}
	l.rebuildComposite()
	return l, nil
}

// Start launches the animation builder pool.  It is idempotent and a no-op
// when no animator was configured.
func (l *Loader) Start() {
	if l.pool != nil {
		l.pool.Start()
	}
}

// Stop shuts down the builder pool.
func (l *Loader) Stop() {
	if l.pool != nil {
		l.pool.Stop()
	}
}

// RegisterDecoder registers a custom decoder for the given format and
// rebuilds the composition.  Registration order is precedence order for
// formats registered after construction.
func (l *Loader) RegisterDecoder(f core.Format, d core.Decoder) {
	l.reg.RegisterDecoder(f, d)
	l.rebuildComposite()
}

func (l *Loader) rebuildComposite() {
	comp := decoder.NewComposite(l.reg.Decoders()...)
	l.mu.Lock()
	l.composite = comp
	l.mu.Unlock()
}

// Decode parses raw bytes into an Image using the first matching decoder.
func (l *Loader) Decode(ctx context.Context, data []byte, meta core.ResponseMeta) (*core.Image, error) {
	l.mu.RLock()
	comp := l.composite
	l.mu.RUnlock()
	return comp.Decode(ctx, data, meta)
}

// DecodeReader drains r (respecting MaxImageBytes) and decodes the result.
func (l *Loader) DecodeReader(ctx context.Context, r io.Reader, meta core.ResponseMeta) (*core.Image, error) {
	if l.cfg.MaxImageBytes > 0 {
		r = &utils.LimitedReader{R: r, Max: l.cfg.MaxImageBytes}
	}
	buf, err := utils.DrainReader(ctx, r, l.cfg.ChunkSize)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryInput, "decode.drain", err)
	}
	data := utils.CloneBytes(buf.Bytes())
	utils.ReleaseBuffer(buf)
	return l.Decode(ctx, data, meta)
}

// Process applies transforms in order and returns the final Image.  Wrap
// raster transforms in transform.Bypass when animated images may flow
// through, so their encoded buffers survive.
func (l *Loader) Process(ctx context.Context, img *core.Image, transforms ...core.Transform) (*core.Image, error) {
	current := img
	for _, t := range transforms {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryTransform, t.Name(), err)
		}
		next, err := t.Apply(ctx, current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// Cache returns the underlying image cache.
func (l *Loader) Cache() *cache.Cache { return l.cache }

// NewSlot creates a display slot rendering through r and sharing the
// loader's builder pool.
func (l *Loader) NewSlot(r display.Renderer, opts ...display.SlotOption) (*display.Slot, error) {
	if l.pool == nil {
		return nil, apperrors.New(apperrors.CategoryDisplay, "slot.new",
			apperrors.ErrNoAnimator)
	}
	if l.logger != nil {
		opts = append([]display.SlotOption{display.WithSlotLogger(l.logger)}, opts...)
	}
	return display.NewSlot(r, l.pool, opts...), nil
}

// Stats returns the resident entry count and summed cost in bytes.
func (l *Loader) Stats() (entries int, costBytes int64) {
	return l.cache.Len(), l.cache.Cost()
}
