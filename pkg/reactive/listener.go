package reactive

// Listener is anything that can be notified when a dependency changes.
// Memos and effects implement it.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies has changed.
	// For memos, this invalidates the cached value.
	// For effects, this re-runs the effect (after the outermost batch, if any).
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// Cleanup is a function returned by effects to clean up resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

// Ref is a live reactive reference: a value cell whose current value can be
// read without knowing its static type. Signals and memos are refs.
type Ref interface {
	Unref() any
}

// IsRef reports whether v is a live reactive reference.
func IsRef(v any) bool {
	_, ok := v.(Ref)
	return ok
}

// Unref returns the current value of v if it is a Ref, or v itself otherwise.
func Unref(v any) any {
	if r, ok := v.(Ref); ok {
		return r.Unref()
	}
	return v
}
