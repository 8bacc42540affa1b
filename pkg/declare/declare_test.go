package declare

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	derrors "github.com/vango-dev/depot/internal/errors"
	"github.com/vango-dev/depot/pkg/store"
)

const cartYAML = `
stores:
  - id: cart
    state:
      items: 0
      price: 10
      owner: guest
    getters:
      total: items * price
      label: owner + " has " + string(items)
    actions:
      add:
        set:
          items: items + args[0]
        return: items
      swap:
        set:
          items: price
          price: items
      rename:
        set:
          owner: args[0]
  - id: flags
    state:
      dark: false
    actions:
      toggle:
        set:
          dark: not dark
`

func TestParseAndUse(t *testing.T) {
	f, err := Parse([]byte(cartYAML))
	if err != nil {
		t.Fatal(err)
	}
	defs := f.Definitions()
	if len(defs) != 2 || defs[0].ID() != "cart" || defs[1].ID() != "flags" {
		t.Fatalf("definitions = %v", defs)
	}

	c := store.New()
	cart := defs[0].MustUse(c)

	got, err := cart.Call("add", 3)
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Errorf("add returned %#v, want 3", got)
	}
	if total := cart.Get("total"); total != 30 {
		t.Errorf("total = %#v, want 30", total)
	}
	if label := cart.Get("label"); label != "guest has 3" {
		t.Errorf("label = %#v", label)
	}

	if _, err := cart.Call("swap"); err != nil {
		t.Fatal(err)
	}
	if cart.Get("items") != 10 || cart.Get("price") != 3 {
		t.Errorf("swap should read the state before the call: items=%v price=%v",
			cart.Get("items"), cart.Get("price"))
	}

	flags := defs[1].MustUse(c)
	_, _ = flags.Call("toggle")
	if flags.Get("dark") != true {
		t.Errorf("dark = %v", flags.Get("dark"))
	}
}

func TestActionIsOneMutation(t *testing.T) {
	f, err := Parse([]byte(cartYAML))
	if err != nil {
		t.Fatal(err)
	}
	cart := f.Definitions()[0].MustUse(store.New())

	var mutations int
	cart.Subscribe(func(store.Mutation, map[string]any) { mutations++ })
	_, _ = cart.Call("swap")
	if mutations != 1 {
		t.Errorf("mutations = %d, want 1", mutations)
	}
}

func TestResetRestoresDeclaredState(t *testing.T) {
	f, _ := Parse([]byte(cartYAML))
	cart := f.Definitions()[0].MustUse(store.New())
	_, _ = cart.Call("rename", "ann")
	if err := cart.Reset(); err != nil {
		t.Fatal(err)
	}
	if cart.Get("owner") != "guest" {
		t.Errorf("owner = %v after reset", cart.Get("owner"))
	}
}

func TestEvaluationError(t *testing.T) {
	f, err := Parse([]byte(`
stores:
  - id: calc
    state:
      n: 1
    actions:
      bad:
        set:
          n: n / args[0].missing
`))
	if err != nil {
		t.Fatal(err)
	}
	s := f.Definitions()[0].MustUse(store.New())
	_, err = s.Call("bad", 1)
	if !errors.Is(err, derrors.New("D022")) {
		t.Fatalf("err = %v, want D022", err)
	}
	if s.Get("n") != 1 {
		t.Errorf("failed action changed state: %v", s.Get("n"))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		code string
	}{
		{"malformed", "stores: [", "D020"},
		{"unknown field", "stores:\n  - id: a\n    colour: red\n", "D020"},
		{"missing id", "stores:\n  - state: {a: 1}\n", "D020"},
		{"duplicate id", "stores:\n  - id: a\n  - id: a\n", "D020"},
		{"bad getter", "stores:\n  - id: a\n    getters:\n      g: 1 +\n", "D021"},
		{"bad action", "stores:\n  - id: a\n    actions:\n      x:\n        set:\n          n: )(\n", "D021"},
		{"empty return", "stores:\n  - id: a\n    actions:\n      x:\n        return: \"\"\n", "D021"},
		{"nested expression", "stores:\n  - id: a\n    getters:\n      g: [1]\n", "D020"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			var de *derrors.DepotError
			if !errors.As(err, &de) || de.Code != tt.code {
				t.Errorf("Parse() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	f, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Definitions()) != 0 {
		t.Error("expected no definitions")
	}
}

func TestLoadReportsLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stores.yaml")
	content := "stores:\n  - id: a\n    getters:\n      g: 1 +\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var de *derrors.DepotError
	if !errors.As(err, &de) || de.Location == nil {
		t.Fatalf("Load() error = %v, want a located error", err)
	}
	if de.Location.File != path || de.Location.Line != 4 {
		t.Errorf("location = %+v", de.Location)
	}
	if !strings.Contains(de.Detail, `getter g`) {
		t.Errorf("detail = %q", de.Detail)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, derrors.New("D020")) {
		t.Errorf("Load(missing) = %v, want D020", err)
	}
}
