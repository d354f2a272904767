// Package uiloop provides the single logical UI thread that owns all session
// state.
//
// Work arrives from other goroutines (the web backend's connection readers,
// the terminal event poller, the config watcher) as functions posted to the
// loop. The loop runs them one at a time on its own goroutine, so session
// state never needs locks.
package uiloop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dshills/codeshell/internal/logging"
)

// ErrStopped is returned by Call once the loop has stopped.
var ErrStopped = errors.New("ui loop stopped")

// ErrAlreadyRunning is returned by Run when the loop is already running.
var ErrAlreadyRunning = errors.New("ui loop already running")

// DefaultBuffer is the queue length used when New is given zero.
const DefaultBuffer = 256

// Loop is a serial executor.
type Loop struct {
	queue   chan func()
	done    chan struct{}
	stop    sync.Once
	running atomic.Bool
	log     *logging.Logger
}

// New creates a loop with the given queue length.
func New(buffer int, log *logging.Logger) *Loop {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Loop{
		queue: make(chan func(), buffer),
		done:  make(chan struct{}),
		log:   log.Component("uiloop"),
	}
}

// Run executes posted functions until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.queue:
			l.exec(fn)
		}
	}
}

// exec runs fn, recovering a panic so one faulty callback cannot take the
// session down.
func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("posted function panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

// Post queues fn for execution on the loop. It never blocks: it reports
// false when the loop is stopped or its queue is full.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	default:
		l.log.Warn("queue full, dropping posted function")
		return false
	}
}

// PostWait queues fn, waiting for room in the queue. It fails with
// ErrStopped once the loop is stopped, or with ctx's error.
func (l *Loop) PostWait(ctx context.Context, fn func()) error {
	if fn == nil {
		return nil
	}
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.queue <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}
	select {
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	case l.queue <- wrapped:
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop ends Run. Queued functions that have not started are discarded.
func (l *Loop) Stop() {
	l.stop.Do(func() { close(l.done) })
}

// Done is closed once the loop is stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Running reports whether Run is executing.
func (l *Loop) Running() bool {
	return l.running.Load()
}
