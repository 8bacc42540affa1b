package reactive

import (
	"sync"
	"sync/atomic"
)

// Scope is a lifecycle arena that owns reactive subscriptions. Effects,
// watchers and memos created while a scope is current are registered in its
// disposer list; stopping the scope releases all of them together, along
// with every child scope.
//
// Scopes form a hierarchy. A detached scope has no parent and is never
// stopped implicitly by an enclosing scope.
type Scope struct {
	id uint64

	// parent is nil for detached (root) scopes.
	parent *Scope

	children   []*Scope
	childrenMu sync.Mutex

	// disposers are released in reverse registration order on Stop.
	disposers   []func()
	disposersMu sync.Mutex

	// values stores provided values for Lookup/Inject.
	values   map[any]any
	valuesMu sync.RWMutex

	stopped atomic.Bool
}

// NewScope creates a scope nested under parent. A nil parent creates a
// detached scope.
func NewScope(parent *Scope) *Scope {
	s := &Scope{
		id:     nextID(),
		parent: parent,
	}

	if parent != nil && !parent.addChild(s) {
		// Children of a stopped scope are stopped on arrival.
		s.stopped.Store(true)
	}

	return s
}

// NewDetachedScope creates a root scope whose disposers survive the
// disposal of whatever scope happens to be current.
func NewDetachedScope() *Scope {
	return NewScope(nil)
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the parent scope, or nil for a detached scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Active reports whether the scope has not been stopped.
func (s *Scope) Active() bool {
	return !s.stopped.Load()
}

// Run executes fn with s as the current scope, so effects and memos created
// by fn are owned by s. It returns false without calling fn when the scope
// has been stopped.
func (s *Scope) Run(fn func()) bool {
	if s.stopped.Load() {
		return false
	}
	old := setCurrentScope(s)
	defer setCurrentScope(old)
	fn()
	return true
}

// OnCleanup registers fn to run when the scope is stopped. If the scope is
// already stopped, fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if !s.adopt(fn) {
		fn()
	}
}

// adopt appends a disposer. Returns false when the scope is already stopped.
func (s *Scope) adopt(fn func()) bool {
	s.disposersMu.Lock()
	defer s.disposersMu.Unlock()

	if s.stopped.Load() {
		return false
	}
	s.disposers = append(s.disposers, fn)
	return true
}

// Len reports how many disposers the scope currently holds.
func (s *Scope) Len() int {
	s.disposersMu.Lock()
	defer s.disposersMu.Unlock()
	return len(s.disposers)
}

func (s *Scope) addChild(child *Scope) bool {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()

	if s.stopped.Load() {
		return false
	}
	s.children = append(s.children, child)
	return true
}

func (s *Scope) removeChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()

	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// Stop stops every child scope (last created first), releases the scope's
// disposers in reverse registration order and detaches it from its parent.
// Stop is idempotent.
func (s *Scope) Stop() {
	s.disposersMu.Lock()
	if s.stopped.Swap(true) {
		s.disposersMu.Unlock()
		return
	}
	disposers := s.disposers
	s.disposers = nil
	s.disposersMu.Unlock()

	s.childrenMu.Lock()
	children := s.children
	s.children = nil
	s.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Stop()
	}

	for i := len(disposers) - 1; i >= 0; i-- {
		disposers[i]()
	}

	if s.parent != nil {
		s.parent.removeChild(s)
	}
}

// Provide stores a value on this scope, visible to Lookup on this scope and
// its descendants.
func (s *Scope) Provide(key, value any) {
	s.valuesMu.Lock()
	defer s.valuesMu.Unlock()

	if s.values == nil {
		s.values = make(map[any]any)
	}
	s.values[key] = value
}

// Lookup retrieves a value from this scope or its nearest ancestor.
func (s *Scope) Lookup(key any) (any, bool) {
	s.valuesMu.RLock()
	val, ok := s.values[key]
	s.valuesMu.RUnlock()
	if ok {
		return val, true
	}

	if s.parent != nil {
		return s.parent.Lookup(key)
	}
	return nil, false
}

// OnScopeDispose registers fn on the current scope. It reports whether a
// scope was active.
func OnScopeDispose(fn func()) bool {
	scope := getCurrentScope()
	if scope == nil {
		return false
	}
	scope.OnCleanup(fn)
	return true
}

// Provide sets a value on the current scope. It is a no-op outside a scope.
func Provide(key, value any) {
	if scope := getCurrentScope(); scope != nil {
		scope.Provide(key, value)
	}
}

// Inject retrieves a value from the current scope hierarchy.
// Returns nil if no scope is active or nothing was provided under key.
func Inject(key any) any {
	scope := getCurrentScope()
	if scope == nil {
		return nil
	}
	val, _ := scope.Lookup(key)
	return val
}
