package store

import (
	"github.com/vango-dev/depot/pkg/reactive"
)

// Merge applies partial onto target and returns target. A key recurses only
// when target holds a plain map and partial holds a live ref whose value is
// a map; any other value, including a plain map, overwrites. Keys absent
// from partial are kept.
func Merge(target, partial map[string]any) map[string]any {
	if target == nil {
		target = make(map[string]any, len(partial))
	}
	for key, value := range partial {
		if nested, sub, ok := mergeable(target[key], value); ok {
			target[key] = Merge(nested, sub)
			continue
		}
		target[key] = value
	}
	return target
}

// mergeable reports whether value should be merged into current rather than
// replace it.
func mergeable(current, value any) (map[string]any, map[string]any, bool) {
	nested, ok := current.(map[string]any)
	if !ok {
		return nil, nil, false
	}
	ref, ok := value.(reactive.Ref)
	if !ok {
		return nil, nil, false
	}
	var sub map[string]any
	reactive.Untracked(func() {
		sub, ok = ref.Unref().(map[string]any)
	})
	if !ok {
		return nil, nil, false
	}
	return nested, sub, true
}

// mergeRecord applies partial onto a state record. Nested maps are merged
// into a copy so the field observes a new value. Refs that do not merge are
// stored by value.
func mergeRecord(rec *reactive.Record, partial map[string]any) {
	reactive.Batch(func() {
		for key, value := range partial {
			var current any
			if f, ok := rec.Field(key); ok {
				current = f.Peek()
			}
			if nested, sub, ok := mergeable(current, value); ok {
				copied, _ := reactive.DeepCopy(nested).(map[string]any)
				rec.Set(key, Merge(copied, sub))
				continue
			}
			if ref, ok := value.(reactive.Ref); ok {
				reactive.Untracked(func() { value = ref.Unref() })
			}
			rec.Set(key, value)
		}
	})
}
