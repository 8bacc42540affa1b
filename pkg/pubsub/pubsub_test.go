package pubsub

import "testing"

func TestListFiresInOrder(t *testing.T) {
	var l List[int]
	var got []string

	l.Add(func(v int) { got = append(got, "a") })
	l.Add(func(v int) { got = append(got, "b") })
	l.Add(func(v int) { got = append(got, "c") })

	l.Fire(1)

	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("expected [a b c], got %v", got)
	}
}

func TestListRemoveOnlyThatEntry(t *testing.T) {
	var l List[string]
	var got []string

	l.Add(func(v string) { got = append(got, "first:"+v) })
	removeSecond := l.Add(func(v string) { got = append(got, "second:"+v) })
	l.Add(func(v string) { got = append(got, "third:"+v) })

	removeSecond()
	removeSecond()

	l.Fire("x")

	if l.Len() != 2 {
		t.Errorf("expected 2 entries left, got %d", l.Len())
	}
	if len(got) != 2 || got[0] != "first:x" || got[1] != "third:x" {
		t.Errorf("unexpected callbacks: %v", got)
	}
}

func TestListAddDuringFire(t *testing.T) {
	var l List[int]
	calls := 0

	l.Add(func(int) {
		calls++
		l.Add(func(int) { calls += 10 })
	})

	l.Fire(0)
	if calls != 1 {
		t.Errorf("callback added while firing should wait for the next fire, got %d", calls)
	}

	l.Fire(0)
	if calls != 12 {
		t.Errorf("expected 12, got %d", calls)
	}
}

func TestListClear(t *testing.T) {
	var l List[int]
	called := false
	l.Add(func(int) { called = true })
	l.Clear()
	l.Fire(0)

	if called || l.Len() != 0 {
		t.Error("Clear should drop every callback")
	}
}

func TestListPanicPropagates(t *testing.T) {
	var l List[int]
	after := false
	l.Add(func(int) { panic("boom") })
	l.Add(func(int) { after = true })

	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("expected panic to propagate, got %v", r)
		}
		if after {
			t.Error("callbacks after a panicking one must not run")
		}
	}()
	l.Fire(0)
}
