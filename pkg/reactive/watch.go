package reactive

import "reflect"

// WatchOptions configures a watcher.
type WatchOptions struct {
	// Immediate fires the callback once on creation with a zero old value.
	Immediate bool

	// Deep compares successive values structurally and skips the callback
	// when nothing changed. Without it, a new value that is not ==-equal
	// to the previous one (including any map or slice) fires the callback.
	Deep bool

	// Once stops the watcher after the first callback.
	Once bool
}

// WatchOption is a functional option for Watch.
type WatchOption func(*WatchOptions)

// Immediate fires the watch callback on creation.
func Immediate() WatchOption {
	return func(o *WatchOptions) { o.Immediate = true }
}

// Deep enables structural comparison of watched values.
func Deep() WatchOption {
	return func(o *WatchOptions) { o.Deep = true }
}

// Once stops the watcher after its first callback.
func Once() WatchOption {
	return func(o *WatchOptions) { o.Once = true }
}

// ApplyWatchOptions folds opts into a WatchOptions value.
func ApplyWatchOptions(opts []WatchOption) WatchOptions {
	var o WatchOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Watcher is a running watch. Stop it to release its subscriptions.
type Watcher struct {
	effect *Effect
}

// Stop releases the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	if w.effect != nil {
		w.effect.Dispose()
	}
}

// Stopped reports whether the watcher has been released.
func (w *Watcher) Stopped() bool {
	return w.effect == nil || w.effect.Disposed()
}

// Watch tracks every reactive read made by source and calls cb with the new
// and previous values whenever one of them changes. The callback itself runs
// untracked. A watcher created inside a Scope is stopped with it.
//
//	w := Watch(func() int { return count.Get() }, func(v, old int) {
//	    fmt.Println(old, "->", v)
//	})
//	defer w.Stop()
func Watch[T any](source func() T, cb func(value, old T), opts ...WatchOption) *Watcher {
	cfg := ApplyWatchOptions(opts)
	w := &Watcher{}

	var (
		old   T
		first = true
		done  bool
	)

	fire := func(value, prev T) {
		Untracked(func() { cb(value, prev) })
		if cfg.Once {
			done = true
			if w.effect != nil {
				w.effect.Dispose()
			}
		}
	}

	w.effect = CreateEffect(func() Cleanup {
		if done {
			return nil
		}
		value := source()

		if first {
			first = false
			old = value
			if cfg.Immediate {
				var zero T
				fire(value, zero)
			}
			return nil
		}

		if sameValue(old, value, cfg.Deep) {
			return nil
		}
		prev := old
		old = value
		fire(value, prev)
		return nil
	})

	if done {
		w.effect.Dispose()
	}
	return w
}

func sameValue[T any](a, b T, deep bool) bool {
	if deep {
		return reflect.DeepEqual(a, b)
	}
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}
	ta := reflect.TypeOf(av)
	if ta != reflect.TypeOf(bv) || !ta.Comparable() {
		return false
	}
	return av == bv
}
