package declare

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	derrors "github.com/vango-dev/depot/internal/errors"
	"github.com/vango-dev/depot/pkg/reactive"
	"github.com/vango-dev/depot/pkg/store"
)

// File is a parsed definition file.
type File struct {
	// Path is the file the definitions were loaded from, if any.
	Path   string      `yaml:"-"`
	Stores []StoreSpec `yaml:"stores"`
}

// StoreSpec declares one store.
type StoreSpec struct {
	ID      string                `yaml:"id"`
	State   map[string]any        `yaml:"state"`
	Getters map[string]*Expr      `yaml:"getters"`
	Actions map[string]ActionSpec `yaml:"actions"`
}

// ActionSpec declares one action.
type ActionSpec struct {
	// Set maps state fields to the expressions assigned to them.
	Set map[string]*Expr `yaml:"set"`

	// Return is the action result, evaluated after Set is applied.
	Return *Expr `yaml:"return"`
}

// Load reads and compiles the definition file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, derrors.New("D020").WithDetailf("reading %s", path).Wrap(err)
	}
	return parse(data, path)
}

// Parse reads and compiles a definition file from data.
func Parse(data []byte) (*File, error) {
	return parse(data, "")
}

func parse(data []byte, path string) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	f := &File{Path: path}
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, derrors.New("D020").Wrap(err)
	}
	if err := f.compile(); err != nil {
		return nil, err
	}
	return f, nil
}

// compile validates the ids and compiles every expression.
func (f *File) compile() error {
	seen := make(map[string]bool, len(f.Stores))
	for i := range f.Stores {
		spec := &f.Stores[i]
		if spec.ID == "" {
			return derrors.New("D020").WithDetailf("store #%d has no id", i+1)
		}
		if seen[spec.ID] {
			return derrors.New("D020").WithDetailf("store %q is declared twice", spec.ID)
		}
		seen[spec.ID] = true

		for _, name := range sortedKeys(spec.Getters) {
			if err := f.compileExpr(spec.ID, "getter "+name, spec.Getters[name]); err != nil {
				return err
			}
		}
		for _, name := range sortedKeys(spec.Actions) {
			action := spec.Actions[name]
			for _, field := range sortedKeys(action.Set) {
				if err := f.compileExpr(spec.ID, fmt.Sprintf("action %s set %s", name, field), action.Set[field]); err != nil {
					return err
				}
			}
			if action.Return != nil {
				if err := f.compileExpr(spec.ID, "action "+name+" return", action.Return); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (f *File) compileExpr(id, what string, e *Expr) error {
	if e == nil {
		return derrors.New("D021").WithDetailf("store %q %s: expression must not be empty", id, what)
	}
	if err := e.compile(); err != nil {
		derr := derrors.New("D021").WithDetailf("store %q %s", id, what).Wrap(err)
		if f.Path != "" {
			derr = derr.WithLocation(f.Path, e.Line, e.Column)
		}
		return derr
	}
	return nil
}

// Definitions returns one options definition per declared store, in file
// order.
func (f *File) Definitions() []*store.Definition {
	defs := make([]*store.Definition, 0, len(f.Stores))
	for i := range f.Stores {
		defs = append(defs, f.Stores[i].Definition())
	}
	return defs
}

// Definition builds the options definition of spec.
func (spec *StoreSpec) Definition() *store.Definition {
	initial := spec.State

	opts := store.Options{
		State: func() map[string]any {
			state, _ := reactive.DeepCopy(initial).(map[string]any)
			if state == nil {
				state = map[string]any{}
			}
			return state
		},
		Getters: make(map[string]store.GetterFunc, len(spec.Getters)),
		Actions: make(map[string]store.ActionFunc, len(spec.Actions)),
	}
	for name, e := range spec.Getters {
		opts.Getters[name] = getter(spec.ID, name, e)
	}
	for name, action := range spec.Actions {
		opts.Actions[name] = action.fn(spec.ID, name)
	}
	return store.DefineOptions(spec.ID, opts)
}

// getter evaluates e against the tracked state. A failing getter logs and
// yields nil.
func getter(id, name string, e *Expr) store.GetterFunc {
	return func(s *store.Store) any {
		v, err := e.eval(environment(s.State().Snapshot(), nil))
		if err != nil {
			s.Logger().Warn("getter failed", "getter", name, "error", evalError(id, "getter "+name, err))
			return nil
		}
		return v
	}
}

func (a ActionSpec) fn(id, name string) store.ActionFunc {
	fields := sortedKeys(a.Set)
	return func(s *store.Store, args ...any) (any, error) {
		env := environment(s.State().PeekSnapshot(), args)

		updates := make(map[string]any, len(fields))
		for _, field := range fields {
			v, err := a.Set[field].eval(env)
			if err != nil {
				return nil, evalError(id, fmt.Sprintf("action %s set %s", name, field), err)
			}
			updates[field] = v
		}

		var setErr error
		s.PatchWith(func(st *store.Store) {
			for _, field := range fields {
				if err := st.Set(field, updates[field]); err != nil {
					setErr = err
					return
				}
			}
		})
		if setErr != nil {
			return nil, setErr
		}

		if a.Return == nil {
			return nil, nil
		}
		v, err := a.Return.eval(environment(s.State().PeekSnapshot(), args))
		if err != nil {
			return nil, evalError(id, "action "+name+" return", err)
		}
		return v, nil
	}
}

func evalError(id, what string, err error) error {
	return derrors.New("D022").WithDetailf("store %q %s", id, what).Wrap(err)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
