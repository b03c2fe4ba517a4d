package worker

import (
	"context"
	"log"
	"runtime"
	"sync"
)

// Job is one unit of work. It runs on a pool goroutine.
type Job func(ctx context.Context)

// Pool is a fixed-size worker pool with a 1-slot input queue (strict back-pressure).
// With size 1 jobs run in submission order.
type Pool struct {
	jobs chan task
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

type task struct {
	ctx context.Context
	fn  Job
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan task, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for t := range p.jobs {
				if err := t.ctx.Err(); err != nil {
					log.Printf("Worker: skipping job, context done: %v", err)
					continue
				}
				run(t)
			}
		}()
	}
}

func run(t task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Worker: job panicked: %v", r)
		}
	}()
	t.fn(t.ctx)
}

// Submit enqueues a job if the single-slot queue is free. Returns false if
// dropped or if the pool is closed.
func (p *Pool) Submit(ctx context.Context, fn Job) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- task{ctx: ctx, fn: fn}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work. It is safe to call twice.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
