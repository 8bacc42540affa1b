package reactive

import (
	"sync"
	"sync/atomic"
)

// Memo is a cached computation that automatically tracks its dependencies.
// When any dependency changes, the memo is invalidated and will recompute
// on the next read.
//
// Memos are lazy: they only compute their value when Get() is called.
// If multiple signals change before a read, the memo only recomputes once.
//
// Memos can also be subscribed to, behaving like signals themselves.
type Memo[T any] struct {
	base signalBase

	compute func() T

	value   T
	valueMu sync.RWMutex

	// valid indicates whether the cached value is current.
	valid atomic.Bool

	sources   []*signalBase
	sourcesMu sync.Mutex

	// computing prevents infinite recursion in circular dependencies.
	computing atomic.Bool

	// released memos no longer subscribe to their sources.
	released atomic.Bool
}

// NewMemo creates a new memo with the given computation function.
// The computation is not run immediately; it runs lazily on first Get().
// A memo created while a Scope is active is released with that scope.
func NewMemo[T any](compute func() T) *Memo[T] {
	memo := &Memo[T]{
		base:    signalBase{id: nextID()},
		compute: compute,
	}

	if scope := getCurrentScope(); scope != nil {
		if !scope.adopt(memo.release) {
			memo.release()
		}
	}

	return memo
}

// Get returns the memo's value, recomputing if necessary.
// Creates a dependency on this memo for the current listener.
func (m *Memo[T]) Get() T {
	if m.released.Load() {
		// Released: answer from a fresh untracked computation.
		var value T
		Untracked(func() { value = m.compute() })
		return value
	}

	m.base.track()

	if !m.valid.Load() {
		m.recompute()
	}

	m.valueMu.RLock()
	value := m.value
	m.valueMu.RUnlock()
	return value
}

// Peek returns the memo's value without subscribing.
// Still triggers recomputation if the value is invalid.
func (m *Memo[T]) Peek() T {
	var value T
	Untracked(func() { value = m.Get() })
	return value
}

// Unref implements Ref. It is a tracked read.
func (m *Memo[T]) Unref() any {
	return m.Get()
}

// MarkDirty invalidates the memo and propagates to subscribers.
func (m *Memo[T]) MarkDirty() {
	if m.valid.CompareAndSwap(true, false) {
		m.base.notifySubscribers()
	}
}

// ID returns the unique identifier for this memo.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

// Released reports whether the memo's owning scope has been stopped.
func (m *Memo[T]) Released() bool {
	return m.released.Load()
}

func (m *Memo[T]) addSource(source *signalBase) {
	m.sourcesMu.Lock()
	defer m.sourcesMu.Unlock()

	for _, s := range m.sources {
		if s == source {
			return
		}
	}
	m.sources = append(m.sources, source)
}

func (m *Memo[T]) dropSources() {
	m.sourcesMu.Lock()
	sources := m.sources
	m.sources = nil
	m.sourcesMu.Unlock()

	for _, source := range sources {
		source.unsubscribe(m)
	}
}

// recompute runs the computation and updates the cached value.
func (m *Memo[T]) recompute() {
	if m.computing.Swap(true) {
		// Circular dependency: keep the stale value.
		return
	}
	defer m.computing.Store(false)

	m.dropSources()

	var newValue T
	WithListener(m, func() {
		newValue = m.compute()
	})

	m.valueMu.Lock()
	m.value = newValue
	m.valueMu.Unlock()

	m.valid.Store(true)
}

// release unsubscribes from every source and stops caching.
func (m *Memo[T]) release() {
	if m.released.Swap(true) {
		return
	}
	m.dropSources()
	m.valid.Store(false)
}

var _ sourceTracker = (*Memo[int])(nil)
