package store

import (
	"context"
)

// Definition is a declared store. It builds at most one *Store per
// container, lazily, on first use.
type Definition struct {
	id      string
	setup   SetupFunc
	options *Options
}

// UseFunc returns a store on demand. Definition.Bind produces one.
type UseFunc func() (*Store, error)

// DefineOptions declares an options-style store. It panics when id is empty.
func DefineOptions(id string, opts Options) *Definition {
	if id == "" {
		panic(newError("D008", "DefineOptions called with an empty id"))
	}
	opts.ID = id
	return &Definition{
		id:      id,
		setup:   optionsSetup(opts),
		options: &opts,
	}
}

// Define declares an options-style store whose id is opts.ID.
func Define(opts Options) *Definition {
	if opts.ID == "" {
		panic(newError("D008", "Define called with Options.ID unset"))
	}
	return DefineOptions(opts.ID, opts)
}

// DefineSetup declares a setup-style store. It panics when id is empty or
// setup is nil.
func DefineSetup(id string, setup SetupFunc) *Definition {
	if id == "" {
		panic(newError("D008", "DefineSetup called with an empty id"))
	}
	if setup == nil {
		panic(newError("D008", "store %q declared with a nil setup function", id))
	}
	return &Definition{id: id, setup: setup}
}

// ID returns the store id.
func (d *Definition) ID() string {
	return d.id
}

// Use returns the store for this definition in c, building it on first use.
// Every call for the same container returns the same *Store until it is
// disposed.
func (d *Definition) Use(c *Container) (*Store, error) {
	if c == nil {
		return nil, ErrNoContainer
	}
	return c.obtain(d)
}

// UseContext resolves the container with Resolve and calls Use.
func (d *Definition) UseContext(ctx context.Context) (*Store, error) {
	c, err := Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return d.Use(c)
}

// MustUse is like Use but panics on error.
func (d *Definition) MustUse(c *Container) *Store {
	s, err := d.Use(c)
	if err != nil {
		panic(err)
	}
	return s
}

// Bind returns a UseFunc bound to c.
func (d *Definition) Bind(c *Container) UseFunc {
	return func() (*Store, error) {
		return d.Use(c)
	}
}
