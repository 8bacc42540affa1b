package store

import (
	"github.com/vango-dev/depot/pkg/reactive"
)

// PluginContext is handed to a plugin once per store construction.
type PluginContext struct {
	Store     *Store
	Container *Container

	// App is the application the container was installed into, or nil.
	App App
}

// Plugin extends every store built by a container. Plugins run in
// registration order after the standard operations exist, so a plugin may
// wrap them (read them with Store.Operations) or replace them.
type Plugin func(ctx PluginContext) Extension

// Extension is what a plugin adds to a store. For every name, the last
// plugin to set it wins.
type Extension struct {
	Properties map[string]any

	// Actions are added to the store, replacing declared actions of the same
	// name. They are intercepted by OnAction hooks like declared actions.
	Actions map[string]ActionFunc

	// Operations replaces the non-nil standard operations.
	Operations *Operations
}

// MutationType describes how state was changed.
type MutationType string

// MutationDirect is reported for every observed state change.
const MutationDirect MutationType = "direct"

// Mutation describes a state change delivered to subscribers.
type Mutation struct {
	Type    MutationType
	StoreID string
}

// SubscribeFunc receives a mutation and a snapshot of the new state.
type SubscribeFunc func(m Mutation, state map[string]any)

// ActionHook observes an action invocation before the action runs.
type ActionHook func(ctx *ActionContext)

// Operations are the standard store operations. Every Store method of the
// same name dispatches through them.
type Operations struct {
	Patch     func(partial map[string]any) error
	PatchWith func(fn func(s *Store))
	Subscribe func(cb SubscribeFunc, opts ...reactive.WatchOption) (unsubscribe func())
	OnAction  func(hook ActionHook) (unsubscribe func())
	Dispose   func()
	Reset     func() error
}

// override replaces the operations set in o.
func (ops *Operations) override(o *Operations) {
	if o == nil {
		return
	}
	if o.Patch != nil {
		ops.Patch = o.Patch
	}
	if o.PatchWith != nil {
		ops.PatchWith = o.PatchWith
	}
	if o.Subscribe != nil {
		ops.Subscribe = o.Subscribe
	}
	if o.OnAction != nil {
		ops.OnAction = o.OnAction
	}
	if o.Dispose != nil {
		ops.Dispose = o.Dispose
	}
	if o.Reset != nil {
		ops.Reset = o.Reset
	}
}
