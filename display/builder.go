// Package display turns decoded images into on-screen state: posters shown
// synchronously, full animations built off-path and swapped in when ready.
package display

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/imageloading/animatedcache/core"
	apperrors "github.com/imageloading/animatedcache/errors"
)

// buildJob is a single animation construction request.
type buildJob struct {
	ctx      context.Context //nolint:containedctx // intentional for async jobs
	encoded  []byte
	complete func(core.Animation, error)
}

// BuilderPool runs animation construction on a fixed set of worker
// goroutines so the heavyweight work never executes on a caller's path.
// There is no cancellation of in-flight builds; superseded results are
// discarded by the slot that requested them.
type BuilderPool struct {
	animator    core.Animator
	timeout     time.Duration
	workerCount int

	jobQueue chan buildJob
	wg       sync.WaitGroup
	once     sync.Once
	stopOnce sync.Once
	shutdown chan struct{}

	builtCount int64
	errorCount int64
}

// NewBuilderPool creates a pool over animator.  workerCount defaults to
// runtime.NumCPU() and queueSize to 64 when non-positive.  Call Start()
// before submitting; call Stop() when done.
func NewBuilderPool(animator core.Animator, workerCount, queueSize int, timeout time.Duration) *BuilderPool {
	if queueSize <= 0 {
		queueSize = 64
	}
	p := &BuilderPool{
		animator: animator,
		timeout:  timeout,
		jobQueue: make(chan buildJob, queueSize),
		shutdown: make(chan struct{}),
	}
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	p.workerCount = workerCount
	return p
}

// Start launches the workers.  It is idempotent.
func (p *BuilderPool) Start() {
	p.once.Do(func() {
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker()
		}
	})
}

// Stop shuts down all workers.  Queued jobs that have not started are
// dropped; their completions never fire.
func (p *BuilderPool) Stop() {
	p.stopOnce.Do(func() {
		close(p.shutdown)
	})
	p.wg.Wait()
}

// submit enqueues a build.  Returns ErrQueueFull when the queue is at
// capacity; the caller keeps showing the poster in that case.
func (p *BuilderPool) submit(job buildJob) error {
	select {
	case <-p.shutdown:
		return apperrors.New(apperrors.CategoryDisplay, "builder.submit", apperrors.ErrPoolStopped)
	default:
	}
	select {
	case p.jobQueue <- job:
		return nil
	default:
		return apperrors.New(apperrors.CategoryDisplay, "builder.submit", apperrors.ErrQueueFull)
	}
}

func (p *BuilderPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.shutdown:
			return
		case job := <-p.jobQueue:
			p.build(job)
		}
	}
}

func (p *BuilderPool) build(job buildJob) {
	ctx := job.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	anim, err := p.animator.Animate(ctx, job.encoded)
	if err != nil {
		atomic.AddInt64(&p.errorCount, 1)
	} else {
		atomic.AddInt64(&p.builtCount, 1)
	}
	job.complete(anim, err)
}

// BuiltCount returns the total number of animations constructed.
func (p *BuilderPool) BuiltCount() int64 { return atomic.LoadInt64(&p.builtCount) }

// ErrorCount returns the total number of failed constructions.
func (p *BuilderPool) ErrorCount() int64 { return atomic.LoadInt64(&p.errorCount) }
