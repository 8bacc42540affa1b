// Package reactive provides the fine-grained reactive engine used by depot
// stores.
//
// Dependencies are tracked automatically at runtime: reading a Signal,
// Memo or Record field while an effect, watcher or memo is computing
// subscribes it to that value.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := NewSignal(0)
//	value := count.Get()  // Read (subscribes current listener)
//	count.Set(5)          // Write (notifies subscribers)
//
// Memo[T] is a cached derived computation:
//
//	doubled := NewMemo(func() int { return count.Get() * 2 })
//
// Watch calls back when a tracked source changes:
//
//	w := Watch(func() int { return count.Get() }, func(v, old int) {})
//	defer w.Stop()
//
// Record is a reactive keyed object whose fields are individual signals.
//
// # Scopes
//
// A Scope owns the effects, watchers and memos created while it is current
// (see Scope.Run). Stopping it releases all of them and every child scope:
//
//	scope := NewDetachedScope()
//	scope.Run(func() {
//	    Watch(func() int { return count.Get() }, onChange)
//	})
//	scope.Stop() // watcher released
//
// # Thread Safety
//
// All reactive primitives are safe for concurrent use. The tracking context
// is per goroutine, so a goroutine that should create effects in a scope
// must enter it with Scope.Run.
package reactive
