package store

import (
	"context"
	"sync"
)

// Future is the deferred result of an asynchronous action. An action that
// returns a *Future has its after and error callbacks fired when the future
// settles.
type Future struct {
	done chan struct{}

	mu      sync.Mutex
	settled bool
	value   any
	err     error
	waiters []func()
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// NewFuture returns a pending future with its resolve and reject functions.
// Only the first call to either has an effect.
func NewFuture() (f *Future, resolve func(any), reject func(error)) {
	f = newFuture()
	return f, func(v any) { f.settle(v, nil) }, func(err error) { f.settle(nil, err) }
}

// Async runs fn on a new goroutine and settles the future with its result.
// A panic in fn rejects the future.
func Async(fn func() (any, error)) *Future {
	f := newFuture()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.settle(nil, asError(r))
			}
		}()
		v, err := fn()
		f.settle(v, err)
	}()
	return f
}

// Resolved returns a future fulfilled with v.
func Resolved(v any) *Future {
	f := newFuture()
	f.settle(v, nil)
	return f
}

// Rejected returns a future rejected with err.
func Rejected(err error) *Future {
	f := newFuture()
	f.settle(nil, err)
	return f
}

// settle records the outcome and runs continuations on the calling
// goroutine, in the order they were attached.
func (f *Future) settle(v any, err error) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.value, f.err = v, err
	waiters := f.waiters
	f.waiters = nil
	close(f.done)
	f.mu.Unlock()

	for _, w := range waiters {
		w()
	}
	return true
}

// whenSettled runs fn once the future settles, immediately if it already has.
func (f *Future) whenSettled(fn func()) {
	f.mu.Lock()
	if !f.settled {
		f.waiters = append(f.waiters, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	fn()
}

// Done is closed when the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has a result.
func (f *Future) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Result returns the outcome. Both are nil while the future is pending.
func (f *Future) Result() (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// Await blocks until the future settles or ctx is done.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Then returns a future settled by onValue or onError, whichever matches the
// outcome of f. A nil handler passes the outcome through unchanged. A
// panicking handler rejects the returned future.
func (f *Future) Then(onValue func(any) (any, error), onError func(error) (any, error)) *Future {
	next := newFuture()
	f.whenSettled(func() {
		defer func() {
			if r := recover(); r != nil {
				next.settle(nil, asError(r))
			}
		}()
		v, err := f.Result()
		switch {
		case err == nil && onValue != nil:
			v, err = onValue(v)
		case err != nil && onError != nil:
			v, err = onError(err)
		}
		next.settle(v, err)
	})
	return next
}
