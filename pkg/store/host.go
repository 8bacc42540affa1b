package store

import (
	"sync"

	"github.com/vango-dev/depot/pkg/reactive"
)

// App is the host application a container is installed into.
type App interface {
	// Provide makes value available to code running under the application
	// under key.
	Provide(key, value any)
}

// GlobalSetter is implemented by hosts that expose named globals.
type GlobalSetter interface {
	SetGlobal(name string, value any)
}

// GlobalName is the global under which Install exposes the container.
const GlobalName = "$depot"

// Host is a minimal App. Values provided to a Host are injectable from
// code run with Host.Run, or from any scope created under Host.Scope.
type Host struct {
	scope *reactive.Scope

	mu      sync.RWMutex
	globals map[string]any
}

// NewHost creates an empty host.
func NewHost() *Host {
	return &Host{
		scope:   reactive.NewDetachedScope(),
		globals: make(map[string]any),
	}
}

// Provide implements App.
func (h *Host) Provide(key, value any) {
	h.scope.Provide(key, value)
}

// Inject returns the value provided under key, or nil.
func (h *Host) Inject(key any) any {
	v, _ := h.scope.Lookup(key)
	return v
}

// SetGlobal implements GlobalSetter.
func (h *Host) SetGlobal(name string, value any) {
	h.mu.Lock()
	h.globals[name] = value
	h.mu.Unlock()
}

// Global returns the global registered under name, or nil.
func (h *Host) Global(name string) any {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.globals[name]
}

// Scope returns the host's root scope. Component scopes created under it
// can inject anything provided to the host.
func (h *Host) Scope() *reactive.Scope {
	return h.scope
}

// Run calls fn with the host scope current.
func (h *Host) Run(fn func()) bool {
	return h.scope.Run(fn)
}

// Close stops the host scope.
func (h *Host) Close() {
	h.scope.Stop()
}
