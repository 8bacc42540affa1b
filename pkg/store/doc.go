// Package store builds reactive stores on top of package reactive.
//
// A store is declared once, either from Options (initial state, getters and
// actions) or from a SetupFunc, and built lazily per Container:
//
//	var Counter = store.DefineOptions("counter", store.Options{
//	    State: func() map[string]any { return map[string]any{"count": 0} },
//	    Getters: map[string]store.GetterFunc{
//	        "double": func(s *store.Store) any { return s.Get("count").(int) * 2 },
//	    },
//	    Actions: map[string]store.ActionFunc{
//	        "increment": func(s *store.Store, _ ...any) (any, error) {
//	            return nil, s.Set("count", s.Get("count").(int)+1)
//	        },
//	    },
//	})
//
//	c := store.New()
//	s, err := Counter.Use(c)
//	_, err = s.Call("increment")
//
// The state of every store lives in the container, keyed by store id, so a
// disposed store can be rebuilt over the same state and the whole container
// can be snapshotted or hydrated at once.
//
// Actions are intercepted: OnAction hooks run before each call and may
// register After and OnError callbacks for it. An action returning a
// *Future is asynchronous; its callbacks fire when the future settles.
//
// Plugins run once per store construction and may add properties and
// actions or replace the standard operations.
package store
