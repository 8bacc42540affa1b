package store

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/depot/pkg/pubsub"
	"github.com/vango-dev/depot/pkg/reactive"
)

// Store is a live store. Its state fields alias the container's shared
// entry for its id, so every write through the store is a write to the
// shared entry and the other way round.
type Store struct {
	id        string
	container *Container
	scope     *reactive.Scope
	entry     *reactive.Record
	logger    *slog.Logger

	hooks pubsub.List[*ActionContext]

	mu         sync.RWMutex
	getters    map[string]Ref
	actions    map[string]func(args ...any) (any, error)
	properties map[string]any
	ops        Operations

	disposed atomic.Bool
}

func newStore(c *Container, id string) *Store {
	s := &Store{
		id:         id,
		container:  c,
		scope:      reactive.NewScope(c.scope),
		entry:      c.entry(id),
		logger:     c.logger.With("store", id),
		getters:    make(map[string]Ref),
		actions:    make(map[string]func(args ...any) (any, error)),
		properties: make(map[string]any),
	}
	s.ops = Operations{
		Patch:     s.patch,
		PatchWith: s.patchWith,
		Subscribe: s.subscribe,
		OnAction:  s.onAction,
		Dispose:   s.dispose,
		Reset: func() error {
			return newError("D005", "store %q", s.id)
		},
	}
	return s
}

// ID returns the store id.
func (s *Store) ID() string { return s.id }

// Container returns the container that built the store.
func (s *Store) Container() *Container { return s.container }

// Scope returns the store scope.
func (s *Store) Scope() *reactive.Scope { return s.scope }

// Logger returns the store logger.
func (s *Store) Logger() *slog.Logger { return s.logger }

// Disposed reports whether Dispose has run.
func (s *Store) Disposed() bool { return s.disposed.Load() }

// State returns the shared state entry.
func (s *Store) State() *reactive.Record { return s.entry }

// Get returns the value under key: a state field, then a getter, then a
// plugin property. Reads of state and getters are tracked.
func (s *Store) Get(key string) any {
	if f, ok := s.entry.Field(key); ok {
		return f.Get()
	}
	if v, ok := s.Getter(key); ok {
		return v
	}
	v, _ := s.Property(key)
	return v
}

// Set writes a state field. Writing an unknown key adds it to the state.
// Getters, actions and plugin properties are read-only.
func (s *Store) Set(key string, value any) error {
	if s.readOnly(key) {
		return newError("D004", "%q on store %q", key, s.id)
	}
	s.entry.Set(key, value)
	return nil
}

// Ref returns the state field ref for key.
func (s *Store) Ref(key string) (*Signal, bool) {
	return s.entry.Field(key)
}

// Has reports whether key is a state field, getter, action or property.
func (s *Store) Has(key string) bool {
	if s.entry.Has(key) {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.getters[key]; ok {
		return true
	}
	if _, ok := s.actions[key]; ok {
		return true
	}
	_, ok := s.properties[key]
	return ok
}

// Keys returns the names of state fields, getters and actions, sorted.
func (s *Store) Keys() []string {
	keys := s.entry.Keys()
	s.mu.RLock()
	for k := range s.getters {
		keys = append(keys, k)
	}
	for k := range s.actions {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	slices.Sort(keys)
	return slices.Compact(keys)
}

// GetterNames returns the getter names, sorted.
func (s *Store) GetterNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedNames(s.getters)
}

// ActionNames returns the action names, sorted.
func (s *Store) ActionNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedNames(s.actions)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Getter returns the current value of a getter.
func (s *Store) Getter(name string) (any, bool) {
	s.mu.RLock()
	ref, ok := s.getters[name]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return ref.Unref(), true
}

// Action returns the intercepted action.
func (s *Store) Action(name string) (func(args ...any) (any, error), bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn, ok := s.actions[name]
	return fn, ok
}

// Call invokes the action name.
func (s *Store) Call(name string, args ...any) (any, error) {
	fn, ok := s.Action(name)
	if !ok {
		return nil, newError("D007", "%q on store %q", name, s.id)
	}
	return fn(args...)
}

// Property returns a property added by a plugin.
func (s *Store) Property(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.properties[name]
	return v, ok
}

// Operations returns the current standard operations. Plugins use it to
// wrap the operations installed before them.
func (s *Store) Operations() Operations {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ops
}

// SetState replaces the state values in one mutation. Field identities are
// kept; keys missing from state are left untouched.
func (s *Store) SetState(state map[string]any) {
	s.PatchWith(func(st *Store) {
		st.entry.Assign(state)
	})
}

// Patch merges partial into the state as one mutation.
func (s *Store) Patch(partial map[string]any) error {
	return s.Operations().Patch(partial)
}

// PatchWith calls fn with the store; every write fn makes is delivered to
// subscribers as one mutation.
func (s *Store) PatchWith(fn func(s *Store)) {
	s.Operations().PatchWith(fn)
}

// Subscribe calls cb after every change of the store state. The
// subscription lives in the store scope and ends with Dispose. Options are
// passed to reactive.Watch.
func (s *Store) Subscribe(cb SubscribeFunc, opts ...reactive.WatchOption) (unsubscribe func()) {
	return s.Operations().Subscribe(cb, opts...)
}

// OnAction registers hook to run before every action invocation.
func (s *Store) OnAction(hook ActionHook) (unsubscribe func()) {
	return s.Operations().OnAction(hook)
}

// Dispose stops the store scope, drops its action hooks and removes it
// from the container cache. The shared state is kept, so using the
// definition again builds a new store over it.
func (s *Store) Dispose() {
	s.Operations().Dispose()
}

// Reset restores an options store to a fresh initial state.
func (s *Store) Reset() error {
	return s.Operations().Reset()
}

func (s *Store) readOnly(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.getters[key]; ok {
		return true
	}
	if _, ok := s.actions[key]; ok {
		return true
	}
	_, ok := s.properties[key]
	return ok
}

func (s *Store) patch(partial map[string]any) error {
	for key := range partial {
		if s.readOnly(key) {
			return newError("D004", "cannot patch %q on store %q", key, s.id)
		}
	}
	mergeRecord(s.entry, partial)
	return nil
}

func (s *Store) patchWith(fn func(s *Store)) {
	reactive.Batch(func() { fn(s) })
}

func (s *Store) subscribe(cb SubscribeFunc, opts ...reactive.WatchOption) func() {
	var w *reactive.Watcher
	ran := s.scope.Run(func() {
		w = reactive.Watch(s.entry.Snapshot, func(state, _ map[string]any) {
			cb(Mutation{Type: MutationDirect, StoreID: s.id}, state)
		}, opts...)
	})
	if !ran {
		return func() {}
	}
	return w.Stop
}

func (s *Store) onAction(hook ActionHook) func() {
	return s.hooks.Add(hook)
}

func (s *Store) dispose() {
	if s.disposed.Swap(true) {
		return
	}
	s.scope.Stop()
	s.hooks.Clear()
	s.container.forget(s)
	s.logger.Debug("store disposed")
}
