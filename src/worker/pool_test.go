package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolSubmitDropWhenBusy(t *testing.T) {
	p := New(1)
	defer p.Close()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	if !p.Submit(ctx, func(context.Context) { close(started); <-release }) {
		t.Fatal("first submit should succeed")
	}
	<-started

	// The worker is busy; one job fits in the queue, the next must drop.
	if !p.Submit(ctx, func(context.Context) {}) {
		t.Fatal("second submit should fill the queue slot")
	}
	if p.Submit(ctx, func(context.Context) {}) {
		t.Fatal("third submit should drop with a full queue and a busy worker")
	}
	close(release)
}

func TestPoolRunsInOrder(t *testing.T) {
	p := New(1)
	var got []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		for !p.Submit(context.Background(), func(context.Context) {
			got = append(got, i)
			if i == 4 {
				close(done)
			}
		}) {
			time.Sleep(time.Millisecond)
		}
	}
	<-done
	p.Close()
	for i, v := range got {
		if v != i {
			t.Fatalf("jobs ran out of order: %v", got)
		}
	}
}

func TestPoolSkipsCancelledJobs(t *testing.T) {
	p := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran atomic.Bool
	p.Submit(ctx, func(context.Context) { ran.Store(true) })
	p.Close()
	if ran.Load() {
		t.Fatal("job with cancelled context ran")
	}
}

func TestPoolRecoversFromPanic(t *testing.T) {
	p := New(1)
	p.Submit(context.Background(), func(context.Context) { panic("boom") })
	var ran atomic.Bool
	for !p.Submit(context.Background(), func(context.Context) { ran.Store(true) }) {
		time.Sleep(time.Millisecond)
	}
	p.Close()
	if !ran.Load() {
		t.Fatal("pool stopped after a panicking job")
	}
}

func TestPoolSubmitAfterClose(t *testing.T) {
	p := New(1)
	p.Close()
	if p.Submit(context.Background(), func(context.Context) {}) {
		t.Fatal("submit after close should fail")
	}
	p.Close()
}
