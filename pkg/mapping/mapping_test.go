package mapping

import (
	"errors"
	"testing"

	"github.com/vango-dev/depot/pkg/store"
)

var counter = store.DefineOptions("counter", store.Options{
	State: func() map[string]any { return map[string]any{"count": 1, "name": "c"} },
	Getters: map[string]store.GetterFunc{
		"double": func(s *store.Store) any { return s.Get("count").(int) * 2 },
	},
	Actions: map[string]store.ActionFunc{
		"add": func(s *store.Store, args ...any) (any, error) {
			next := s.Get("count").(int) + args[0].(int)
			return next, s.Set("count", next)
		},
	},
})

func TestMapState(t *testing.T) {
	use := counter.Bind(store.New())

	state := MapState(use, "count", "double")
	if len(state) != 2 {
		t.Fatalf("len = %d, want 2", len(state))
	}
	if v, err := state["count"](); err != nil || v != 1 {
		t.Errorf("count = %v, %v", v, err)
	}
	if v, _ := state["double"](); v != 2 {
		t.Errorf("double = %v", v)
	}

	renamed := MapStateAs(use, map[string]string{"total": "count"})
	if v, _ := renamed["total"](); v != 1 {
		t.Errorf("total = %v", v)
	}

	derived := MapStateFunc(use, map[string]func(*store.Store) any{
		"label": func(s *store.Store) any { return s.Get("name").(string) + "!" },
	})
	if v, _ := derived["label"](); v != "c!" {
		t.Errorf("label = %v", v)
	}
}

func TestMapActions(t *testing.T) {
	use := counter.Bind(store.New())

	actions := MapActions(use, "add")
	if v, err := actions["add"](4); err != nil || v != 5 {
		t.Errorf("add(4) = %v, %v", v, err)
	}

	renamed := MapActionsAs(use, map[string]string{"plus": "add"})
	if v, _ := renamed["plus"](2, "ignored"); v != 7 {
		t.Errorf("plus(2) = %v, arguments should pass through", v)
	}

	missing := MapActions(use, "nope")
	if _, err := missing["nope"](); !errors.Is(err, store.ErrUnknownAction) {
		t.Errorf("nope() error = %v, want ErrUnknownAction", err)
	}
}

func TestMapWritableState(t *testing.T) {
	c := store.New()
	use := counter.Bind(c)

	w := MapWritableState(use, "count")["count"]
	if err := w.Set(9); err != nil {
		t.Fatal(err)
	}
	if v, _ := w.Get(); v != 9 {
		t.Errorf("count = %v, want 9", v)
	}

	s, _ := use()
	if s.Get("count") != 9 {
		t.Error("writes should reach the store")
	}

	ro := MapWritableStateAs(use, map[string]string{"twice": "double"})["twice"]
	if err := ro.Set(1); !errors.Is(err, store.ErrReadOnly) {
		t.Errorf("Set(getter) error = %v, want ErrReadOnly", err)
	}
}

func TestMappingPropagatesResolutionErrors(t *testing.T) {
	use := counter.Bind(nil)

	if _, err := MapState(use, "count")["count"](); !errors.Is(err, store.ErrNoContainer) {
		t.Errorf("state error = %v", err)
	}
	if _, err := MapActions(use, "add")["add"](1); !errors.Is(err, store.ErrNoContainer) {
		t.Errorf("action error = %v", err)
	}
	if err := MapWritableState(use, "count")["count"].Set(1); !errors.Is(err, store.ErrNoContainer) {
		t.Errorf("writable error = %v", err)
	}
}

func TestMappingFollowsRebuild(t *testing.T) {
	c := store.New()
	use := counter.Bind(c)
	get := MapState(use, "count")["count"]

	s, _ := use()
	_ = s.Set("count", 3)
	s.Dispose()

	if v, err := get(); err != nil || v != 3 {
		t.Errorf("count after rebuild = %v, %v", v, err)
	}
}
