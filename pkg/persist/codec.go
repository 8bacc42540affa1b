package persist

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	derrors "github.com/vango-dev/depot/internal/errors"
)

// Version is the current snapshot format version. Increment it when making
// breaking changes to the format.
const Version = 1

// Envelope is the serialized form of a container snapshot.
type Envelope struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`

	// Stores maps store id to that store's state.
	Stores map[string]map[string]any `json:"stores"`
}

// Encode serializes a container snapshot as returned by
// store.Container.Snapshot.
func Encode(snapshot map[string]any, savedAt time.Time) ([]byte, error) {
	env := Envelope{
		Version: Version,
		SavedAt: savedAt.UTC(),
		Stores:  make(map[string]map[string]any, len(snapshot)),
	}
	for id, v := range snapshot {
		if state, ok := v.(map[string]any); ok {
			env.Stores[id] = state
		}
	}
	return json.Marshal(env)
}

// Decode parses an envelope. JSON numbers without a fractional part
// decode as int, the others as float64.
func Decode(data []byte) (*Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var env Envelope
	if err := dec.Decode(&env); err != nil {
		return nil, derrors.New("D031").Wrap(err)
	}
	if env.Version < 1 || env.Version > Version {
		return nil, derrors.New("D031").WithDetailf("unsupported snapshot version %d", env.Version)
	}
	for id, state := range env.Stores {
		for k, v := range state {
			state[k] = normalize(v)
		}
		env.Stores[id] = state
	}
	return &env, nil
}

// Snapshot returns the stores of env in the shape accepted by
// store.Container.Hydrate.
func (env *Envelope) Snapshot() map[string]any {
	out := make(map[string]any, len(env.Stores))
	for id, state := range env.Stores {
		out[id] = state
	}
	return out
}

// DecodeValue reads one JSON value from r with the number rules of Decode.
func DecodeValue(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	default:
		return v
	}
}
