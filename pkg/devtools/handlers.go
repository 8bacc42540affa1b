package devtools

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	derrors "github.com/vango-dev/depot/internal/errors"
	"github.com/vango-dev/depot/pkg/persist"
	"github.com/vango-dev/depot/pkg/store"
)

// StoreView is the JSON form of a store.
type StoreView struct {
	ID      string         `json:"id"`
	State   map[string]any `json:"state"`
	Getters map[string]any `json:"getters,omitempty"`
	Actions []string       `json:"actions,omitempty"`
}

func viewOf(s *store.Store) StoreView {
	v := StoreView{
		ID:      s.ID(),
		State:   s.State().PeekSnapshot(),
		Actions: s.ActionNames(),
	}
	if names := s.GetterNames(); len(names) > 0 {
		v.Getters = make(map[string]any, len(names))
		for _, name := range names {
			v.Getters[name], _ = s.Getter(name)
		}
	}
	return v
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := errorBody{Error: err.Error()}
	var de *derrors.DepotError
	if errors.As(err, &de) {
		body.Code = de.Code
	}
	writeJSON(w, status, body)
}

// statusOf maps store errors to HTTP status codes. Other errors are
// reported by the action and map to fallback.
func statusOf(err error, fallback int) int {
	switch {
	case errors.Is(err, store.ErrUnknownAction):
		return http.StatusNotFound
	case errors.Is(err, store.ErrReadOnly):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrResetUnsupported):
		return http.StatusConflict
	default:
		return fallback
	}
}

// lookup resolves the {id} route parameter, writing a 404 when the store
// has not been built.
func (i *Inspector) lookup(w http.ResponseWriter, r *http.Request) (*store.Store, bool) {
	id := chi.URLParam(r, "id")
	s, ok := i.container.Lookup(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "store " + id + " not found"})
		return nil, false
	}
	return s, true
}

func (i *Inspector) handleList(w http.ResponseWriter, r *http.Request) {
	views := []StoreView{}
	for _, id := range i.container.IDs() {
		if s, ok := i.container.Lookup(id); ok {
			views = append(views, viewOf(s))
		}
	}
	writeJSON(w, http.StatusOK, views)
}

func (i *Inspector) handleGet(w http.ResponseWriter, r *http.Request) {
	s, ok := i.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

func (i *Inspector) handlePatch(w http.ResponseWriter, r *http.Request) {
	s, ok := i.lookup(w, r)
	if !ok {
		return
	}
	body, err := persist.DecodeValue(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	partial, ok := body.(map[string]any)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "patch body must be a JSON object"})
		return
	}
	if err := s.Patch(partial); err != nil {
		writeError(w, statusOf(err, http.StatusInternalServerError), err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

func (i *Inspector) handleReset(w http.ResponseWriter, r *http.Request) {
	s, ok := i.lookup(w, r)
	if !ok {
		return
	}
	if err := s.Reset(); err != nil {
		writeError(w, statusOf(err, http.StatusInternalServerError), err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

type actionResult struct {
	Result any `json:"result"`
}

func (i *Inspector) handleAction(w http.ResponseWriter, r *http.Request) {
	s, ok := i.lookup(w, r)
	if !ok {
		return
	}

	var args []any
	body, err := persist.DecodeValue(r.Body)
	switch {
	case errors.Is(err, io.EOF):
	case err != nil:
		writeError(w, http.StatusBadRequest, err)
		return
	default:
		list, ok := body.([]any)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "action arguments must be a JSON array"})
			return
		}
		args = list
	}

	result, err := s.Call(chi.URLParam(r, "name"), args...)
	if f, ok := result.(*store.Future); ok && err == nil {
		result, err = f.Await(r.Context())
	}
	if err != nil {
		writeError(w, statusOf(err, http.StatusUnprocessableEntity), err)
		return
	}
	writeJSON(w, http.StatusOK, actionResult{Result: result})
}
