// Package render drives the periodic capture, process and display cycle.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"screen-mirror/src/screenshot"
	"screen-mirror/src/worker"
)

// State is the loop's lifecycle state.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Surface receives each displayable bitmap. Implementations must not block
// for long; the GUI surface hands the bitmap to the UI thread and returns.
type Surface interface {
	SetFrame(img image.Image)
}

// ProcessFunc transforms a captured frame into the image to display. It may
// draw on f.Image.
type ProcessFunc func(f *screenshot.Frame) (image.Image, error)

// Options configures a Loop.
type Options struct {
	Name    string
	Source  screenshot.Source
	Target  func() screenshot.Target
	Process ProcessFunc
	Surface Surface
	Period  time.Duration
}

// Loop is a fixed-period capture loop. Ticks are handed to a single worker
// with a one-slot queue, so frames are displayed in capture order and ticks
// that arrive while one is running and one is queued are dropped.
type Loop struct {
	opts Options
	pool *worker.Pool

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	lastMu sync.Mutex
	last   image.Image
}

func New(opts Options) (*Loop, error) {
	if opts.Source == nil {
		return nil, errors.New("render: nil source")
	}
	if opts.Surface == nil {
		return nil, errors.New("render: nil surface")
	}
	if opts.Target == nil {
		return nil, errors.New("render: nil target")
	}
	if opts.Period <= 0 {
		return nil, fmt.Errorf("render: period must be positive, got %v", opts.Period)
	}
	if opts.Name == "" {
		opts.Name = "render"
	}
	return &Loop{opts: opts, pool: worker.New(1)}, nil
}

// Start arms the timer and fires the first tick immediately. It reports
// false if the loop was already running.
func (l *Loop) Start(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Running {
		return false
	}
	tctx, cancel := context.WithCancel(ctx)
	l.state = Running
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(ctx, tctx, l.done)
	log.Printf("%s: started, period %v, source %s", l.opts.Name, l.opts.Period, l.opts.Source.Name())
	return true
}

// Stop disarms the timer. A capture already in flight finishes and is
// displayed; nothing further is scheduled.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.state != Running {
		l.mu.Unlock()
		return
	}
	l.state = Idle
	l.cancel()
	done := l.done
	l.mu.Unlock()
	<-done
	log.Printf("%s: stopped", l.opts.Name)
}

// Close stops the loop and waits for the worker to drain.
func (l *Loop) Close() {
	l.Stop()
	l.pool.Close()
}

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Last returns the most recently displayed bitmap, or nil.
func (l *Loop) Last() image.Image {
	l.lastMu.Lock()
	defer l.lastMu.Unlock()
	return l.last
}

// run submits ticks until tctx ends. Jobs run with the parent ctx so that
// stopping the timer does not abort a capture in progress.
func (l *Loop) run(ctx, tctx context.Context, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(l.opts.Period)
	defer t.Stop()

	submit := func() {
		l.pool.Submit(ctx, func(ctx context.Context) {
			if l.State() != Running {
				return
			}
			_ = l.Tick(ctx)
		})
	}

	submit()
	for {
		select {
		case <-tctx.Done():
			return
		case <-t.C:
			submit()
		}
	}
}

// Tick performs one capture-process-display cycle synchronously. On failure
// the error is logged and returned, and the surface keeps its current image.
func (l *Loop) Tick(ctx context.Context) error {
	target := l.opts.Target()
	frame, err := l.opts.Source.Capture(ctx, target)
	if err != nil {
		log.Printf("%s: capture of %s failed, keeping last frame: %v", l.opts.Name, target, err)
		return err
	}

	var out image.Image = frame.Image
	if l.opts.Process != nil {
		out, err = l.opts.Process(frame)
		if err != nil {
			log.Printf("%s: processing failed, keeping last frame: %v", l.opts.Name, err)
			return err
		}
	}

	if out == nil {
		return fmt.Errorf("%s: processing produced no image", l.opts.Name)
	}
	bmp := Bitmap(out)
	l.lastMu.Lock()
	l.last = bmp
	l.lastMu.Unlock()
	l.opts.Surface.SetFrame(bmp)
	return nil
}
