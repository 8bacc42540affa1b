package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "runtime error",
			code:    "D001",
			wantMsg: "No container available",
			wantCat: CategoryRuntime,
		},
		{
			name:    "definition error",
			code:    "D021",
			wantMsg: "Expression failed to compile",
			wantCat: CategoryDefinition,
		},
		{
			name:    "persistence error",
			code:    "D030",
			wantMsg: "Persistence backend is closed",
			wantCat: CategoryPersistence,
		},
		{
			name:    "unknown error code",
			code:    "D999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryConfig, "file %q not found", "depot.json")
	if err.Message != `file "depot.json" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryConfig {
		t.Errorf("Category = %q, want %q", err.Category, CategoryConfig)
	}
}

func TestDepotError_Error(t *testing.T) {
	err := New("D002").WithDetail(`store "cart"`)
	want := `D002: Store requested during its own construction: store "cart"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &DepotError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}

	wrapped := New("D032").Wrap(fmt.Errorf("disk full"))
	if !strings.HasSuffix(wrapped.Error(), ": disk full") {
		t.Errorf("Error() = %q, want cause suffix", wrapped.Error())
	}
}

func TestDepotError_IsMatchesByCode(t *testing.T) {
	sentinel := New("D004")
	fresh := New("D004").WithDetailf("getter %q", "double")

	if !stderrors.Is(fresh, sentinel) {
		t.Error("errors with the same code should match")
	}
	if stderrors.Is(New("D005"), sentinel) {
		t.Error("errors with different codes should not match")
	}

	chained := fmt.Errorf("patch: %w", fresh)
	if !stderrors.Is(chained, sentinel) {
		t.Error("wrapped error should still match by code")
	}

	var de *DepotError
	if !stderrors.As(chained, &de) || de.Detail != `getter "double"` {
		t.Errorf("errors.As should recover the DepotError, got %+v", de)
	}
}

func TestDepotError_WithLocation(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "stores.yaml")
	content := `stores:
  - id: counter
    state:
      count: 0
    getters:
      double: count *
`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("D021").WithLocation(tmpFile, 6, 15)

	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.Line != 6 || err.Location.Column != 15 {
		t.Errorf("Location = %v, want 6:15", err.Location)
	}
	if len(err.Context) == 0 {
		t.Error("Context should not be empty")
	}
}

func TestDepotError_Wrap(t *testing.T) {
	inner := New("D009")
	outer := New("D010").Wrap(inner)

	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(outer, inner) {
		t.Error("errors.Is should find the wrapped code")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "D032") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	de := New("D030")
	if FromError(de, "D032") != de {
		t.Error("FromError should return DepotError as-is")
	}

	stdErr := stderrors.New("boom")
	result := FromError(stdErr, "D032")
	if result.Wrapped != stdErr || result.Code != "D032" {
		t.Errorf("standard error should be wrapped under D032, got %+v", result)
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{name: "nil location", loc: nil, want: ""},
		{name: "with column", loc: &Location{File: "stores.yaml", Line: 10, Column: 5}, want: "stores.yaml:10:5"},
		{name: "without column", loc: &Location{File: "stores.yaml", Line: 10}, want: "stores.yaml:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tmpFile := filepath.Join(t.TempDir(), "stores.yaml")
	content := "stores:\n  - id: counter\n    getters:\n      double: count *\n"
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("D021").
		WithLocation(tmpFile, 4, 15).
		WithDetail("unexpected end of expression").
		WithSuggestion("Check the getter expression")

	formatted := err.Format()
	for _, want := range []string{"D021", "Expression failed to compile", tmpFile, "unexpected end", "Hint:", "Learn more:", "^"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format should contain %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("D021").WithLocation("stores.yaml", 10, 5)
	want := "stores.yaml:10:5: D021: Expression failed to compile"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("D001").WithDetail("use counter")

	var decoded map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &decoded); jerr != nil {
		t.Fatalf("FormatJSON produced invalid JSON: %v", jerr)
	}
	if decoded["code"] != "D001" {
		t.Errorf("code = %v, want D001", decoded["code"])
	}
	if decoded["category"] != "runtime" {
		t.Errorf("category = %v, want runtime", decoded["category"])
	}
	if decoded["detail"] != "use counter" {
		t.Errorf("detail = %v", decoded["detail"])
	}
	if _, ok := decoded["location"]; ok {
		t.Error("location should be omitted when unset")
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, New("D007").WithDetail("checkout"))
	if !strings.Contains(buf.String(), "ERROR D007: Unknown action") {
		t.Errorf("Fprint output = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("Fprint output = %q", buf.String())
	}
}

func TestCodesAndLookup(t *testing.T) {
	codes := Codes()
	if len(codes) == 0 {
		t.Fatal("Codes() should return codes")
	}
	for _, code := range codes {
		tmpl, ok := Lookup(code)
		if !ok {
			t.Errorf("Lookup(%q) failed", code)
		}
		if tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %q is incomplete: %+v", code, tmpl)
		}
	}
	if _, ok := Lookup("D999"); ok {
		t.Error("D999 should not exist")
	}
}

func TestRegister(t *testing.T) {
	Register("D999", ErrorTemplate{Category: CategoryRuntime, Message: "Custom test error"})
	defer delete(registry, "D999")

	if err := New("D999"); err.Message != "Custom test error" {
		t.Errorf("Message = %q, want %q", err.Message, "Custom test error")
	}
}

func TestWrapText(t *testing.T) {
	if got := wrapText("short text", 100); len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}
	if got := wrapText("this is a longer text that should be wrapped", 20); len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}
	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}
	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
