package store

import (
	"slices"

	derrors "github.com/vango-dev/depot/internal/errors"
	"github.com/vango-dev/depot/pkg/reactive"
)

// buildStackKey is provided on a store scope while the store is built. Its
// value lists the ids under construction on the current call path.
type buildStackKey struct{}

func buildStack() []string {
	stack, _ := reactive.Inject(buildStackKey{}).([]string)
	return stack
}

// obtain returns the cached store for d or builds it. A request for an id
// already being built on the same call path fails; a request from another
// goroutine waits for that construction to finish.
func (c *Container) obtain(d *Definition) (*Store, error) {
	for {
		c.mu.Lock()
		if s, ok := c.stores[d.id]; ok {
			c.mu.Unlock()
			return s, nil
		}
		if c.disposed {
			c.mu.Unlock()
			return nil, newError("D010", "cannot build store %q", d.id)
		}
		if cons, ok := c.building[d.id]; ok {
			c.mu.Unlock()
			if slices.Contains(buildStack(), d.id) {
				return nil, newError("D002", "store %q", d.id)
			}
			<-cons.done
			continue
		}
		cons := &construction{done: make(chan struct{})}
		c.building[d.id] = cons
		c.mu.Unlock()

		return c.build(d, cons)
	}
}

// build runs setup and plugins inside a new store scope. The store is
// cached only when both succeed; otherwise its scope is stopped.
func (c *Container) build(d *Definition, cons *construction) (*Store, error) {
	stack := append(slices.Clone(buildStack()), d.id)
	s := newStore(c, d.id)
	s.scope.Provide(buildStackKey{}, stack)

	built := false
	defer func() {
		s.scope.Provide(buildStackKey{}, nil)

		c.mu.Lock()
		delete(c.building, d.id)
		if built {
			c.stores[d.id] = s
		}
		c.mu.Unlock()
		close(cons.done)

		if !built {
			s.disposed.Store(true)
			s.scope.Stop()
		}
	}()

	var (
		setup Setup
		err   error
	)
	sc := &SetupContext{store: s}
	if !s.scope.Run(func() { setup, err = d.setup(sc) }) {
		return nil, newError("D010", "cannot build store %q", d.id)
	}
	if err != nil {
		c.logger.Debug("store setup failed", "store", d.id, "error", err)
		return nil, derrors.New("D009").WithDetailf("store %q", d.id).Wrap(err)
	}
	if err := s.install(setup); err != nil {
		return nil, err
	}
	if d.options != nil {
		s.ops.Reset = s.resetTo(d.options.State)
	}

	plugins := c.pluginList()
	app := c.App()
	for _, plugin := range plugins {
		var ext Extension
		s.scope.Run(func() {
			ext = plugin(PluginContext{Store: s, Container: c, App: app})
		})
		s.extend(ext)
	}

	built = true
	c.logger.Debug("store built", "store", d.id, "plugins", len(plugins))
	return s, nil
}

// install exposes the declared surface on s.
func (s *Store) install(setup Setup) error {
	for key, ref := range setup.State {
		if ref == nil {
			continue
		}
		if owner := s.container.ownerOf(ref, s.id); owner != "" {
			return newError("D006", "field %q of store %q belongs to store %q", key, s.id, owner)
		}
		s.entry.Adopt(key, ref)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for name, ref := range setup.Getters {
		if ref == nil {
			continue
		}
		if s.entry.Has(name) {
			return newError("D003", "getter %q of store %q shadows a state field", name, s.id)
		}
		s.getters[name] = ref
	}
	for name, fn := range setup.Actions {
		if fn == nil {
			continue
		}
		if s.entry.Has(name) {
			return newError("D003", "action %q of store %q shadows a state field", name, s.id)
		}
		if _, ok := s.getters[name]; ok {
			return newError("D003", "action %q of store %q shadows a getter", name, s.id)
		}
		s.actions[name] = s.wrapAction(name, fn)
	}
	return nil
}

// extend applies a plugin extension. Later plugins override earlier ones.
func (s *Store) extend(ext Extension) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, v := range ext.Properties {
		s.properties[name] = v
	}
	for name, fn := range ext.Actions {
		if fn != nil {
			s.actions[name] = s.wrapAction(name, fn)
		}
	}
	s.ops.override(ext.Operations)
}

// resetTo returns a Reset operation that assigns a fresh initial state in
// one patch, keeping field identities.
func (s *Store) resetTo(initial func() map[string]any) func() error {
	return func() error {
		var fresh map[string]any
		if initial != nil {
			fresh = initial()
		}
		s.PatchWith(func(st *Store) {
			st.entry.Assign(fresh)
		})
		return nil
	}
}

// ownerOf returns the id of another store whose shared entry holds ref.
func (c *Container) ownerOf(ref *Signal, except string) string {
	for id, f := range c.state.Fields() {
		if id == except {
			continue
		}
		rec, ok := f.Peek().(*reactive.Record)
		if !ok {
			continue
		}
		for _, field := range rec.Fields() {
			if field == ref {
				return id
			}
		}
	}
	return ""
}
