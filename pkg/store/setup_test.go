package store

import (
	"errors"
	"testing"

	"github.com/vango-dev/depot/pkg/reactive"
)

func todoDefinition(watched *[]int) *Definition {
	return DefineSetup("todos", func(sc *SetupContext) (Setup, error) {
		items := sc.State("items", []any{})
		filter := reactive.NewSignal[any]("all")

		count := sc.Computed(func() any { return len(items.Get().([]any)) })

		reactive.Watch(func() int { return count.Get().(int) }, func(n, _ int) {
			*watched = append(*watched, n)
		})

		return Setup{
			State:   map[string]*Signal{"items": items, "filter": filter},
			Getters: map[string]Ref{"count": count},
			Actions: map[string]ActionFunc{
				"add": func(s *Store, args ...any) (any, error) {
					next := append([]any{}, items.Peek().([]any)...)
					items.Set(append(next, args[0]))
					return nil, nil
				},
			},
		}, nil
	})
}

func TestSetupStore(t *testing.T) {
	c := New()
	var watched []int
	s := todoDefinition(&watched).MustUse(c)

	if _, err := s.Call("add", "milk"); err != nil {
		t.Fatal(err)
	}
	if got := s.Get("count"); got != 1 {
		t.Errorf("count = %v, want 1", got)
	}
	if len(watched) != 1 || watched[0] != 1 {
		t.Errorf("watcher saw %v, want [1]", watched)
	}

	entry, _ := c.StateOf("todos")
	if got := entry.Get("filter"); got != "all" {
		t.Errorf("adopted signal should live in the shared entry, got %v", got)
	}
	_ = s.Set("filter", "done")
	if got := entry.Get("filter"); got != "done" {
		t.Errorf("filter = %v, want done", got)
	}
}

func TestSetupWatchersStopWithStore(t *testing.T) {
	c := New()
	var watched []int
	s := todoDefinition(&watched).MustUse(c)

	s.Dispose()
	entry, _ := c.StateOf("todos")
	entry.Set("items", []any{"a", "b"})

	if len(watched) != 0 {
		t.Errorf("watcher created in setup fired after dispose: %v", watched)
	}
}

func TestSetupStoreRebuildKeepsAdoptedState(t *testing.T) {
	c := New()
	var watched []int
	def := todoDefinition(&watched)

	s := def.MustUse(c)
	_ = s.Set("filter", "open")
	s.Dispose()

	rebuilt := def.MustUse(c)
	if got := rebuilt.Get("filter"); got != "open" {
		t.Errorf("filter = %v, a new signal should take over the stored value", got)
	}
}

func TestSetupStoreResetUnsupported(t *testing.T) {
	var watched []int
	s := todoDefinition(&watched).MustUse(New())
	if err := s.Reset(); !errors.Is(err, ErrResetUnsupported) {
		t.Errorf("Reset() error = %v, want ErrResetUnsupported", err)
	}
}

func TestSetupErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(c *Container) SetupFunc
		want  error
	}{
		{
			name: "setup error is wrapped",
			setup: func(*Container) SetupFunc {
				return func(*SetupContext) (Setup, error) { return Setup{}, boom }
			},
			want: boom,
		},
		{
			name: "duplicate getter and state",
			setup: func(*Container) SetupFunc {
				return func(sc *SetupContext) (Setup, error) {
					v := sc.State("v", 1)
					return Setup{
						State:   map[string]*Signal{"v": v},
						Getters: map[string]Ref{"v": sc.Computed(func() any { return 2 })},
					}, nil
				}
			},
			want: ErrDuplicateKey,
		},
		{
			name: "duplicate action and getter",
			setup: func(*Container) SetupFunc {
				return func(sc *SetupContext) (Setup, error) {
					return Setup{
						Getters: map[string]Ref{"go": sc.Computed(func() any { return 2 })},
						Actions: map[string]ActionFunc{"go": func(*Store, ...any) (any, error) { return nil, nil }},
					}, nil
				}
			},
			want: ErrDuplicateKey,
		},
		{
			name: "foreign ref",
			setup: func(c *Container) SetupFunc {
				other := counterDefinition().MustUse(c)
				foreign, _ := other.Ref("count")
				return func(*SetupContext) (Setup, error) {
					return Setup{State: map[string]*Signal{"count": foreign}}, nil
				}
			},
			want: ErrForeignRef,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			def := DefineSetup("broken", tt.setup(c))

			_, err := def.Use(c)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Use() error = %v, want %v", err, tt.want)
			}
			if _, ok := c.Lookup("broken"); ok {
				t.Error("failed construction must not be cached")
			}
		})
	}
}

func TestSetupErrorStopsScope(t *testing.T) {
	c := New()
	var scope *reactive.Scope
	def := DefineSetup("failing", func(sc *SetupContext) (Setup, error) {
		scope = sc.Scope()
		return Setup{}, errors.New("nope")
	})

	if _, err := def.Use(c); !errors.Is(err, ErrSetupFailed) {
		t.Fatalf("Use() error = %v, want ErrSetupFailed", err)
	}
	if scope.Active() {
		t.Error("a failed construction should stop its scope")
	}
}

func TestSetupPanicPropagatesUncached(t *testing.T) {
	c := New()
	attempts := 0
	def := DefineSetup("flaky", func(sc *SetupContext) (Setup, error) {
		attempts++
		if attempts == 1 {
			panic("first build fails")
		}
		return Setup{State: map[string]*Signal{"ok": sc.State("ok", true)}}, nil
	})

	func() {
		defer func() {
			if r := recover(); r != "first build fails" {
				t.Errorf("recovered %v", r)
			}
		}()
		_, _ = def.Use(c)
	}()

	if _, ok := c.Lookup("flaky"); ok {
		t.Fatal("panicking construction must not be cached")
	}
	s, err := def.Use(c)
	if err != nil {
		t.Fatalf("second Use() error = %v", err)
	}
	if s.Get("ok") != true {
		t.Error("second build should succeed")
	}
}

func TestCircularConstruction(t *testing.T) {
	c := New()
	var self *Definition
	var inner error
	self = DefineSetup("self", func(sc *SetupContext) (Setup, error) {
		_, inner = self.Use(sc.Container())
		return Setup{}, nil
	})

	if _, err := self.Use(c); err != nil {
		t.Fatalf("outer Use() error = %v", err)
	}
	if !errors.Is(inner, ErrCircularConstruction) {
		t.Errorf("recursive Use() error = %v, want ErrCircularConstruction", inner)
	}
}

func TestCircularConstructionThroughAnotherStore(t *testing.T) {
	c := New()
	var a, b *Definition
	var inner error

	a = DefineSetup("a", func(sc *SetupContext) (Setup, error) {
		_, err := b.Use(sc.Container())
		return Setup{}, err
	})
	b = DefineSetup("b", func(sc *SetupContext) (Setup, error) {
		_, inner = a.Use(sc.Container())
		return Setup{}, nil
	})

	if _, err := a.Use(c); err != nil {
		t.Fatalf("Use(a) error = %v", err)
	}
	if !errors.Is(inner, ErrCircularConstruction) {
		t.Errorf("b requesting a error = %v, want ErrCircularConstruction", inner)
	}
	if _, ok := c.Lookup("b"); !ok {
		t.Error("b should be cached")
	}
}

func TestSetupStoreUsesOtherStore(t *testing.T) {
	c := New()
	counter := counterDefinition()
	summary := DefineSetup("summary", func(sc *SetupContext) (Setup, error) {
		cs, err := counter.Use(sc.Container())
		if err != nil {
			return Setup{}, err
		}
		return Setup{
			Getters: map[string]Ref{
				"text": sc.Computed(func() any {
					return cs.Get("label").(string)
				}),
			},
		}, nil
	})

	s := summary.MustUse(c)
	if s.Get("text") != "clicks" {
		t.Errorf("text = %v", s.Get("text"))
	}
	cs, _ := c.Lookup("counter")
	_ = cs.Set("label", "taps")
	if s.Get("text") != "taps" {
		t.Errorf("getter should follow the other store, got %v", s.Get("text"))
	}
}
