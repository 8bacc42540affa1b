package store

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/vango-dev/depot/pkg/reactive"
)

// Container is the registry of one application's stores. It owns the
// shared state of every store id, the cache of built stores, the plugin
// list and a detached root scope that every store scope is nested under.
type Container struct {
	logger *slog.Logger
	scope  *reactive.Scope

	// state maps store id to that store's *reactive.Record.
	state *reactive.Record

	mu       sync.Mutex
	app      App
	plugins  []Plugin
	stores   map[string]*Store
	building map[string]*construction
	disposed bool
}

// construction marks a store id being built.
type construction struct {
	done chan struct{}
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the container logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPlugins registers plugins at creation time.
func WithPlugins(plugins ...Plugin) Option {
	return func(c *Container) {
		c.plugins = append(c.plugins, plugins...)
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		logger:   slog.Default(),
		scope:    reactive.NewDetachedScope(),
		state:    reactive.NewRecord(nil),
		stores:   make(map[string]*Store),
		building: make(map[string]*construction),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.scope.Provide(ContainerKey, c)
	return c
}

// Install binds the container to app: it is provided under ContainerKey,
// exposed as the "$depot" global when app supports globals, and becomes the
// ambient active container.
func (c *Container) Install(app App) {
	c.mu.Lock()
	c.app = app
	c.mu.Unlock()

	if app != nil {
		app.Provide(ContainerKey, c)
		if g, ok := app.(GlobalSetter); ok {
			g.SetGlobal(GlobalName, c)
		}
	}
	SetActive(c)
	c.logger.Debug("container installed")
}

// Use appends plugins. Plugins apply to stores built afterwards, in
// registration order.
func (c *Container) Use(plugins ...Plugin) *Container {
	c.mu.Lock()
	c.plugins = append(c.plugins, plugins...)
	c.mu.Unlock()
	return c
}

// App returns the application set by Install, or nil.
func (c *Container) App() App {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.app
}

// Logger returns the container logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Scope returns the container root scope.
func (c *Container) Scope() *reactive.Scope {
	return c.scope
}

// State returns the root state record, keyed by store id.
func (c *Container) State() *reactive.Record {
	return c.state
}

// StateOf returns the shared state entry for id.
func (c *Container) StateOf(id string) (*reactive.Record, bool) {
	f, ok := c.state.Field(id)
	if !ok {
		return nil, false
	}
	rec, ok := f.Peek().(*reactive.Record)
	return rec, ok
}

// entry returns the shared state entry for id, creating an empty one.
func (c *Container) entry(id string) *reactive.Record {
	if rec, ok := c.StateOf(id); ok {
		return rec
	}
	f := c.state.Ensure(id, reactive.NewRecord(nil))
	return f.Peek().(*reactive.Record)
}

// Snapshot returns a plain deep copy of every store's state, keyed by id.
func (c *Container) Snapshot() map[string]any {
	return c.state.PeekSnapshot()
}

// Hydrate assigns state entries from a snapshot. Entries for ids without a
// built store are kept and picked up when the store is built.
func (c *Container) Hydrate(snapshot map[string]any) {
	reactive.Batch(func() {
		for id, v := range snapshot {
			values, ok := v.(map[string]any)
			if !ok {
				continue
			}
			c.entry(id).Assign(values)
		}
	})
}

// Lookup returns the built store for id.
func (c *Container) Lookup(id string) (*Store, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stores[id]
	return s, ok
}

// IDs returns the ids of the built stores, sorted.
func (c *Container) IDs() []string {
	c.mu.Lock()
	ids := make([]string, 0, len(c.stores))
	for id := range c.stores {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	slices.Sort(ids)
	return ids
}

// Dispose disposes every store and stops the root scope. Shared state is
// kept so it can still be snapshotted.
func (c *Container) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	stores := make([]*Store, 0, len(c.stores))
	for _, s := range c.stores {
		stores = append(stores, s)
	}
	c.mu.Unlock()

	for _, s := range stores {
		s.Dispose()
	}
	c.scope.Stop()

	if Active() == c {
		SetActive(nil)
	}
	c.logger.Debug("container disposed", "stores", len(stores))
}

// forget removes s from the cache if it is the cached store for its id.
func (c *Container) forget(s *Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stores[s.id] == s {
		delete(c.stores, s.id)
	}
}

func (c *Container) pluginList() []Plugin {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.plugins)
}
