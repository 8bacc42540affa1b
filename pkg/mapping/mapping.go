// Package mapping projects store fields and actions into plain function
// maps, for consumers that want to expose a store surface under their own
// names.
//
// Every accessor resolves the store through its UseFunc on each call, so a
// disposed store is transparently rebuilt.
package mapping

import (
	"github.com/vango-dev/depot/pkg/store"
)

// Getter reads a mapped state field or getter.
type Getter func() (any, error)

// Action calls a mapped action.
type Action func(args ...any) (any, error)

// Writable reads and writes a mapped state field.
type Writable struct {
	Get func() (any, error)
	Set func(value any) error
}

// MapState maps state fields or getters under their own names.
func MapState(use store.UseFunc, keys ...string) map[string]Getter {
	return MapStateAs(use, identity(keys))
}

// MapStateAs maps state fields or getters, keyed by local name.
func MapStateAs(use store.UseFunc, names map[string]string) map[string]Getter {
	out := make(map[string]Getter, len(names))
	for local, key := range names {
		key := key
		out[local] = func() (any, error) {
			s, err := use()
			if err != nil {
				return nil, err
			}
			return s.Get(key), nil
		}
	}
	return out
}

// MapStateFunc maps values derived from the store by fns, keyed by local
// name.
func MapStateFunc(use store.UseFunc, fns map[string]func(s *store.Store) any) map[string]Getter {
	out := make(map[string]Getter, len(fns))
	for local, fn := range fns {
		fn := fn
		out[local] = func() (any, error) {
			s, err := use()
			if err != nil {
				return nil, err
			}
			return fn(s), nil
		}
	}
	return out
}

// MapActions maps actions under their own names.
func MapActions(use store.UseFunc, names ...string) map[string]Action {
	return MapActionsAs(use, identity(names))
}

// MapActionsAs maps actions, keyed by local name. The arguments of a mapped
// call are passed to the action unchanged.
func MapActionsAs(use store.UseFunc, names map[string]string) map[string]Action {
	out := make(map[string]Action, len(names))
	for local, name := range names {
		name := name
		out[local] = func(args ...any) (any, error) {
			s, err := use()
			if err != nil {
				return nil, err
			}
			return s.Call(name, args...)
		}
	}
	return out
}

// MapWritableState maps state fields for reading and writing.
func MapWritableState(use store.UseFunc, keys ...string) map[string]Writable {
	return MapWritableStateAs(use, identity(keys))
}

// MapWritableStateAs maps state fields for reading and writing, keyed by
// local name.
func MapWritableStateAs(use store.UseFunc, names map[string]string) map[string]Writable {
	out := make(map[string]Writable, len(names))
	for local, key := range names {
		key := key
		out[local] = Writable{
			Get: func() (any, error) {
				s, err := use()
				if err != nil {
					return nil, err
				}
				return s.Get(key), nil
			},
			Set: func(value any) error {
				s, err := use()
				if err != nil {
					return err
				}
				return s.Set(key, value)
			},
		}
	}
	return out
}

func identity(keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = k
	}
	return out
}
