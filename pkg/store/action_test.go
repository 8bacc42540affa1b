package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestOnActionHooksRunBeforeAction(t *testing.T) {
	var order []string
	def := DefineOptions("ordered", Options{
		Actions: map[string]ActionFunc{
			"run": func(s *Store, args ...any) (any, error) {
				order = append(order, "action")
				return "ok", nil
			},
		},
	})
	s := def.MustUse(New())

	s.OnAction(func(ctx *ActionContext) {
		order = append(order, "hook1:"+ctx.Name)
		if ctx.Store != s {
			t.Error("hook should receive the store")
		}
		if !reflect.DeepEqual(ctx.Args, []any{1, "two"}) {
			t.Errorf("Args = %v", ctx.Args)
		}
	})
	s.OnAction(func(ctx *ActionContext) {
		order = append(order, "hook2")
	})

	if _, err := s.Call("run", 1, "two"); err != nil {
		t.Fatal(err)
	}
	want := []string{"hook1:run", "hook2", "action"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestOnActionUnsubscribe(t *testing.T) {
	s := counterDefinition().MustUse(New())

	var calls int
	stop := s.OnAction(func(*ActionContext) { calls++ })
	_, _ = s.Call("increment")
	stop()
	stop()
	_, _ = s.Call("increment")

	if calls != 1 {
		t.Errorf("hook calls = %d, want 1", calls)
	}
}

func TestActionContextIDsAreUnique(t *testing.T) {
	s := counterDefinition().MustUse(New())

	seen := map[string]bool{}
	s.OnAction(func(ctx *ActionContext) {
		seen[ctx.ID.String()] = true
	})
	for i := 0; i < 3; i++ {
		_, _ = s.Call("increment")
	}
	if len(seen) != 3 {
		t.Errorf("saw %d distinct ids, want 3", len(seen))
	}
}

func TestAsyncAfterHooksFireInOrderAfterResolution(t *testing.T) {
	f, resolve, _ := NewFuture()
	def := DefineOptions("async", Options{
		Actions: map[string]ActionFunc{
			"fetch": func(*Store, ...any) (any, error) { return f, nil },
		},
	})
	s := def.MustUse(New())

	var fired []string
	s.OnAction(func(ctx *ActionContext) {
		ctx.After(func(v any) { fired = append(fired, "first:"+v.(string)) })
		ctx.After(func(v any) { fired = append(fired, "second:"+v.(string)) })
	})

	out, err := s.Call("fetch")
	if err != nil {
		t.Fatal(err)
	}
	if len(fired) != 0 {
		t.Fatalf("after hooks fired before resolution: %v", fired)
	}

	resolve("data")
	want := []string{"first:data", "second:data"}
	if !reflect.DeepEqual(fired, want) {
		t.Errorf("fired = %v, want %v", fired, want)
	}

	v, err := out.(*Future).Await(context.Background())
	if err != nil || v != "data" {
		t.Errorf("Await() = %v, %v, want data", v, err)
	}
}

func TestAsyncRejectionReachesOnErrorOnce(t *testing.T) {
	boom := errors.New("error")
	def := DefineOptions("failing", Options{
		Actions: map[string]ActionFunc{
			"load": func(*Store, ...any) (any, error) {
				return Async(func() (any, error) {
					time.Sleep(time.Millisecond)
					return nil, boom
				}), nil
			},
		},
	})
	s := def.MustUse(New())

	errs := make(chan error, 4)
	var afters int
	s.OnAction(func(ctx *ActionContext) {
		ctx.OnError(func(err error) { errs <- err })
		ctx.After(func(any) { afters++ })
	})

	out, err := s.Call("load")
	if err != nil {
		t.Fatalf("Call() error = %v, the failure belongs to the future", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := out.(*Future).Await(ctx); !errors.Is(err, boom) {
		t.Fatalf("Await() error = %v, want %v", err, boom)
	}

	if got := <-errs; got != boom {
		t.Errorf("OnError got %v, want %v", got, boom)
	}
	select {
	case extra := <-errs:
		t.Errorf("OnError fired twice, second with %v", extra)
	default:
	}
	if afters != 0 {
		t.Errorf("after fired %d times for a rejected action", afters)
	}
}

func TestSyncErrorFiresOnErrorAndReturns(t *testing.T) {
	boom := errors.New("boom")
	def := DefineOptions("sync-error", Options{
		Actions: map[string]ActionFunc{
			"fail": func(*Store, ...any) (any, error) { return nil, boom },
		},
	})
	s := def.MustUse(New())

	var got []error
	s.OnAction(func(ctx *ActionContext) {
		ctx.OnError(func(err error) { got = append(got, err) })
		ctx.OnError(func(err error) { got = append(got, err) })
	})

	if _, err := s.Call("fail"); err != boom {
		t.Errorf("Call() error = %v, want the action's error", err)
	}
	if len(got) != 2 || got[0] != boom || got[1] != boom {
		t.Errorf("OnError callbacks got %v", got)
	}
}

func TestPanicFiresOnErrorAndRepanics(t *testing.T) {
	def := DefineOptions("panicky", Options{
		Actions: map[string]ActionFunc{
			"explode": func(*Store, ...any) (any, error) { panic("kaboom") },
		},
	})
	s := def.MustUse(New())

	var got error
	s.OnAction(func(ctx *ActionContext) {
		ctx.OnError(func(err error) { got = err })
	})

	func() {
		defer func() {
			if r := recover(); r != "kaboom" {
				t.Errorf("recovered %v, want the original panic value", r)
			}
		}()
		_, _ = s.Call("explode")
	}()

	var pe *PanicError
	if !errors.As(got, &pe) || pe.Value != "kaboom" {
		t.Errorf("OnError got %v, want *PanicError{kaboom}", got)
	}
}

func TestAfterFiresForSyncReturn(t *testing.T) {
	s := counterDefinition().MustUse(New())

	var results []any
	s.OnAction(func(ctx *ActionContext) {
		ctx.After(func(v any) { results = append(results, v) })
	})
	if _, err := s.Call("add", 3); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(results, []any{3}) {
		t.Errorf("after results = %v, want [3]", results)
	}
}

func TestAfterHookPanicIsNotReportedAsActionError(t *testing.T) {
	s := counterDefinition().MustUse(New())

	var errs int
	s.OnAction(func(ctx *ActionContext) {
		ctx.OnError(func(error) { errs++ })
		ctx.After(func(any) { panic("hook") })
	})

	func() {
		defer func() { _ = recover() }()
		_, _ = s.Call("increment")
	}()
	if errs != 0 {
		t.Errorf("OnError fired %d times for a panicking after hook", errs)
	}
	if s.Get("count") != 1 {
		t.Errorf("count = %v, the action itself completed", s.Get("count"))
	}
}
