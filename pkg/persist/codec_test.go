package persist

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	derrors "github.com/vango-dev/depot/internal/errors"
)

func TestEncodeDecode(t *testing.T) {
	savedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snapshot := map[string]any{
		"counter": map[string]any{"count": 3, "ratio": 0.5, "tags": []any{"a", 2}},
		"user":    map[string]any{"profile": map[string]any{"age": 41}},
	}

	data, err := Encode(snapshot, savedAt)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(string(data), `"version":1`) {
		t.Errorf("encoded snapshot should carry the version: %s", data)
	}

	env, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !env.SavedAt.Equal(savedAt) {
		t.Errorf("SavedAt = %v, want %v", env.SavedAt, savedAt)
	}
	if !reflect.DeepEqual(env.Snapshot(), snapshot) {
		t.Errorf("Snapshot() = %#v, want %#v", env.Snapshot(), snapshot)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"version":`},
		{"missing version", `{"stores":{}}`},
		{"future version", `{"version":99,"stores":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, derrors.New("D031")) {
				t.Errorf("Decode() error = %v, want D031", err)
			}
		})
	}
}

func TestDecodeValue(t *testing.T) {
	v, err := DecodeValue(strings.NewReader(`[1, 2.5, {"n": 3}]`))
	if err != nil {
		t.Fatal(err)
	}
	want := []any{1, 2.5, map[string]any{"n": 3}}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("DecodeValue() = %#v, want %#v", v, want)
	}

	if _, err := DecodeValue(strings.NewReader(`{`)); err == nil {
		t.Error("expected an error for truncated input")
	}
}
