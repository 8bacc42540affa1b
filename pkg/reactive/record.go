package reactive

import (
	"sort"
	"sync"
)

// Record is a reactive keyed object. Every key is backed by its own
// *Signal[any], so fields can be read and watched independently while all
// of them alias the same record. Adding a key notifies readers of the key
// set (Keys, Snapshot).
//
// Values are replaced, never mutated in place: a nested map changed in
// place and written back compares equal and does not notify.
type Record struct {
	shape signalBase

	mu     sync.RWMutex
	fields map[string]*Signal[any]
}

// NewRecord creates a record holding the entries of init.
func NewRecord(init map[string]any) *Record {
	r := &Record{
		shape:  signalBase{id: nextID()},
		fields: make(map[string]*Signal[any], len(init)),
	}
	for k, v := range init {
		r.fields[k] = NewSignal[any](v)
	}
	return r
}

// Get returns the value under key, tracking both the field and, when the
// key is absent, the key set.
func (r *Record) Get(key string) any {
	if f, ok := r.Field(key); ok {
		return f.Get()
	}
	r.shape.track()
	return nil
}

// Lookup is Get with an explicit presence result.
func (r *Record) Lookup(key string) (any, bool) {
	if f, ok := r.Field(key); ok {
		return f.Get(), true
	}
	r.shape.track()
	return nil, false
}

// Has reports whether key exists. It is untracked.
func (r *Record) Has(key string) bool {
	_, ok := r.Field(key)
	return ok
}

// Set writes value under key, creating the field if needed.
func (r *Record) Set(key string, value any) {
	r.mu.Lock()
	f, ok := r.fields[key]
	if !ok {
		r.fields[key] = NewSignal[any](value)
	}
	r.mu.Unlock()

	if ok {
		f.Set(value)
		return
	}
	r.shape.notifySubscribers()
}

// Ensure creates key with value only when key is absent and returns the
// field backing key.
func (r *Record) Ensure(key string, value any) *Signal[any] {
	r.mu.Lock()
	f, ok := r.fields[key]
	if !ok {
		f = NewSignal[any](value)
		r.fields[key] = f
	}
	r.mu.Unlock()

	if !ok {
		r.shape.notifySubscribers()
	}
	return f
}

// Adopt installs f as the field backing key. When key already holds a
// different field, f takes over its current value first, so a record
// hydrated before f existed keeps its data. Readers of the key set are
// notified whenever the field changes identity.
func (r *Record) Adopt(key string, f *Signal[any]) {
	r.mu.Lock()
	prev, ok := r.fields[key]
	if ok && prev == f {
		r.mu.Unlock()
		return
	}
	r.fields[key] = f
	r.mu.Unlock()

	if ok {
		f.Set(prev.Peek())
	}
	r.shape.notifySubscribers()
}

// Field returns the signal backing key: a ref that reads and writes the
// record itself.
func (r *Record) Field(key string) (*Signal[any], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fields[key]
	return f, ok
}

// Fields returns every field ref keyed by name.
func (r *Record) Fields() map[string]*Signal[any] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Signal[any], len(r.fields))
	for k, f := range r.fields {
		out[k] = f
	}
	return out
}

// Keys returns the sorted key set and tracks it.
func (r *Record) Keys() []string {
	r.shape.track()
	return r.sortedKeys()
}

func (r *Record) sortedKeys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	r.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys. It is untracked.
func (r *Record) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fields)
}

// Assign overwrites every key of values in one batch. Keys not in values are
// left untouched.
func (r *Record) Assign(values map[string]any) {
	Batch(func() {
		for k, v := range values {
			r.Set(k, v)
		}
	})
}

// Snapshot returns a deep plain copy of the record, tracking every field
// and the key set. Nested records become maps.
func (r *Record) Snapshot() map[string]any {
	r.shape.track()
	keys := r.sortedKeys()
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if f, ok := r.Field(k); ok {
			out[k] = deepCopy(f.Get())
		}
	}
	return out
}

// PeekSnapshot is Snapshot without tracking.
func (r *Record) PeekSnapshot() map[string]any {
	var out map[string]any
	Untracked(func() { out = r.Snapshot() })
	return out
}

// Unref implements Ref; it returns Snapshot().
func (r *Record) Unref() any {
	return r.Snapshot()
}

// ID returns the unique identifier of the record's key set.
func (r *Record) ID() uint64 {
	return r.shape.id
}

// DeepCopy returns a copy of v in which maps, slices and records are
// duplicated recursively.
func DeepCopy(v any) any {
	return deepCopy(v)
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return t
		}
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopy(item)
		}
		return out
	case *Record:
		return t.Snapshot()
	default:
		return v
	}
}
