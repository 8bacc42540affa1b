package reactive

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// maxEffectReruns bounds how many queued re-runs one owner pass performs.
const maxEffectReruns = 100

// Effect represents a reactive side effect that runs when its dependencies change.
//
// Effects run immediately when created, and re-run synchronously whenever any
// signal or memo they read during execution changes (once per outermost
// Batch). They can return a Cleanup function that will be called before the
// effect re-runs or when the effect is disposed.
//
// Writes the effect body makes to its own dependencies do not re-run it. A
// change that arrives while the effect is running, from a watch callback or
// from another goroutine, queues another run on the goroutine that is
// already running it, so the last run always sees the latest values.
type Effect struct {
	id uint64

	fn      func() Cleanup
	cleanup Cleanup

	sources   []*signalBase
	sourcesMu sync.Mutex

	// running is held by the goroutine executing the run loop.
	running atomic.Bool
	// pending records a change not yet seen by a run.
	pending atomic.Bool

	disposed atomic.Bool
}

// MarkDirty re-runs the effect. Implements the Listener interface.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}
	e.run()
}

// ID returns the unique identifier for this effect.
func (e *Effect) ID() uint64 {
	return e.id
}

// Disposed reports whether the effect has been stopped.
func (e *Effect) Disposed() bool {
	return e.disposed.Load()
}

// run executes the effect function with fresh dependency tracking. If the
// effect is already running, the change is queued for the running goroutine.
func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}
	if current := getCurrentListener(); current != nil && current.ID() == e.id {
		return
	}
	e.pending.Store(true)

	for {
		if !e.running.CompareAndSwap(false, true) {
			return
		}
		reruns := 0
		for e.pending.Swap(false) && !e.disposed.Load() {
			if reruns == maxEffectReruns {
				slog.Warn("reactive: effect re-run limit reached", "effect", e.id, "limit", maxEffectReruns)
				break
			}
			reruns++
			e.execute()
		}
		e.running.Store(false)

		// A change queued between the last Swap and the release above has
		// no owner yet.
		if !e.pending.Load() || e.disposed.Load() {
			return
		}
	}
}

func (e *Effect) execute() {
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.dropSources()

	WithListener(e, func() {
		e.cleanup = e.fn()
	})
}

func (e *Effect) addSource(source *signalBase) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}

func (e *Effect) dropSources() {
	e.sourcesMu.Lock()
	sources := e.sources
	e.sources = nil
	e.sourcesMu.Unlock()

	for _, source := range sources {
		source.unsubscribe(e)
	}
}

// Dispose stops the effect, runs its last cleanup and unsubscribes it from
// all sources. Safe to call more than once.
func (e *Effect) Dispose() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.dropSources()
}

// CreateEffect creates and runs a new effect within the current scope.
// The effect function runs immediately and re-runs when any signal or memo
// it reads changes.
//
//	CreateEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return nil
//	})
func CreateEffect(fn func() Cleanup) *Effect {
	e := &Effect{
		id: nextID(),
		fn: fn,
	}

	if scope := getCurrentScope(); scope != nil {
		if !scope.adopt(e.Dispose) {
			// Stopped scope: the effect is born disposed.
			e.disposed.Store(true)
			return e
		}
	}

	e.run()
	return e
}

var _ sourceTracker = (*Effect)(nil)
