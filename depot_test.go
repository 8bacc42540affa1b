package depot

import (
	"errors"
	"testing"
)

func TestPublicAPI(t *testing.T) {
	useCounter := DefineOptions("counter", Options{
		State: func() map[string]any { return map[string]any{"count": 0} },
		Getters: map[string]GetterFunc{
			"double": func(s *Store) any { return s.Get("count").(int) * 2 },
		},
		Actions: map[string]ActionFunc{
			"increment": func(s *Store, _ ...any) (any, error) {
				return nil, s.Set("count", s.Get("count").(int)+1)
			},
		},
	})

	c := New()
	defer c.Dispose()
	counter, err := useCounter.Use(c)
	if err != nil {
		t.Fatal(err)
	}

	actions := MapActions(useCounter.Bind(c), "increment")
	if _, err := actions["increment"](); err != nil {
		t.Fatal(err)
	}
	state := MapState(useCounter.Bind(c), "count", "double")
	if v, _ := state["double"](); v != 2 {
		t.Errorf("double = %v, want 2", v)
	}

	if err := counter.Set("double", 1); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Set(getter) = %v, want ErrReadOnly", err)
	}
}

func TestPublicSetupStore(t *testing.T) {
	useName := DefineSetup("name", func(sc *SetupContext) (Setup, error) {
		first := NewSignal("ada")
		return Setup{
			State: map[string]*Signal{"first": first},
			Actions: map[string]ActionFunc{
				"rename": func(s *Store, args ...any) (any, error) {
					return nil, s.Set("first", args[0])
				},
			},
		}, nil
	})

	s, err := useName.Use(New())
	if err != nil {
		t.Fatal(err)
	}
	var seen []any
	s.Subscribe(func(_ Mutation, state map[string]any) {
		seen = append(seen, state["first"])
	}, Immediate())

	_, _ = s.Call("rename", "grace")
	if len(seen) != 2 || seen[1] != "grace" {
		t.Errorf("seen = %v", seen)
	}
	if !errors.Is(s.Reset(), ErrResetUnsupported) {
		t.Error("setup stores cannot reset")
	}
}
