package store

import (
	"github.com/vango-dev/depot/pkg/reactive"
)

// Signal is a state field: a ref aliasing one key of a store's shared state.
type Signal = reactive.Signal[any]

// Ref is any live reactive value.
type Ref = reactive.Ref

// SetupFunc builds the surface of a setup-style store. It runs once per
// construction inside the store scope, so effects and watchers it creates
// are stopped when the store is disposed.
type SetupFunc func(sc *SetupContext) (Setup, error)

// Setup is the declared surface of a store.
type Setup struct {
	// State fields. Refs created with SetupContext.State already alias the
	// shared entry; other signals are adopted into it under their key.
	State map[string]*Signal

	// Getters are derived values, usually created with SetupContext.Computed.
	Getters map[string]Ref

	Actions map[string]ActionFunc
}

// SetupContext gives a SetupFunc access to the store being built.
type SetupContext struct {
	store *Store
}

// ID returns the id of the store being built.
func (sc *SetupContext) ID() string {
	return sc.store.id
}

// State declares key in the store's shared state and returns its ref.
// initial is used only when the key is absent, so hydrated state wins.
func (sc *SetupContext) State(key string, initial any) *Signal {
	return sc.store.entry.Ensure(key, initial)
}

// Computed creates a memo owned by the store scope.
func (sc *SetupContext) Computed(fn func() any) *reactive.Memo[any] {
	var m *reactive.Memo[any]
	if !sc.store.scope.Run(func() { m = reactive.NewMemo(fn) }) {
		m = reactive.NewMemo(fn)
	}
	return m
}

// Store returns the store under construction. Its surface is complete only
// after setup returns, so use it from getters and actions, not directly.
func (sc *SetupContext) Store() *Store {
	return sc.store
}

// Container returns the container the store is built in.
func (sc *SetupContext) Container() *Container {
	return sc.store.container
}

// Scope returns the store scope.
func (sc *SetupContext) Scope() *reactive.Scope {
	return sc.store.scope
}
