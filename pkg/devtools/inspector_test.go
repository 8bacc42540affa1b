package devtools

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/depot/pkg/store"
)

func newInspector(t *testing.T) (*Inspector, *store.Container) {
	t.Helper()
	c := store.New()
	insp := New(c)
	c.Use(insp.Plugin())

	store.DefineOptions("counter", store.Options{
		State: func() map[string]any { return map[string]any{"count": 0} },
		Getters: map[string]store.GetterFunc{
			"double": func(s *store.Store) any { return s.Get("count").(int) * 2 },
		},
		Actions: map[string]store.ActionFunc{
			"add": func(s *store.Store, args ...any) (any, error) {
				next := s.Get("count").(int) + args[0].(int)
				return next, s.Set("count", next)
			},
			"fail": func(*store.Store, ...any) (any, error) {
				return nil, errors.New("nope")
			},
			"later": func(*store.Store, ...any) (any, error) {
				return store.Async(func() (any, error) { return "done", nil }), nil
			},
		},
	}).MustUse(c)
	return insp, c
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestListAndGet(t *testing.T) {
	insp, _ := newInspector(t)

	rec := do(t, insp, http.MethodGet, "/stores", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /stores = %d", rec.Code)
	}
	views := decode[[]StoreView](t, rec)
	if len(views) != 1 || views[0].ID != "counter" {
		t.Fatalf("views = %+v", views)
	}
	if !reflect.DeepEqual(views[0].Actions, []string{"add", "fail", "later"}) {
		t.Errorf("actions = %v", views[0].Actions)
	}

	rec = do(t, insp, http.MethodGet, "/stores/counter", "")
	view := decode[StoreView](t, rec)
	if view.State["count"] != float64(0) || view.Getters["double"] != float64(0) {
		t.Errorf("view = %+v", view)
	}

	rec = do(t, insp, http.MethodGet, "/stores/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET unknown store = %d, want 404", rec.Code)
	}
}

func TestPatch(t *testing.T) {
	insp, c := newInspector(t)
	s, _ := c.Lookup("counter")

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"merge", `{"count": 4}`, http.StatusOK},
		{"getter is read-only", `{"double": 1}`, http.StatusBadRequest},
		{"not an object", `[1]`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, insp, http.MethodPatch, "/stores/counter", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
		})
	}

	if got := s.Get("count"); got != 4 {
		t.Errorf("count = %#v, want int 4", got)
	}

	rec := do(t, insp, http.MethodPatch, "/stores/counter", `{"double": 1}`)
	if body := decode[errorBody](t, rec); body.Code != "D004" {
		t.Errorf("error code = %q, want D004", body.Code)
	}
}

func TestReset(t *testing.T) {
	insp, c := newInspector(t)
	s, _ := c.Lookup("counter")
	_ = s.Set("count", 9)

	rec := do(t, insp, http.MethodPost, "/stores/counter/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reset = %d: %s", rec.Code, rec.Body)
	}
	if got := s.Get("count"); got != 0 {
		t.Errorf("count after reset = %v", got)
	}

	store.DefineSetup("plain", func(sc *store.SetupContext) (store.Setup, error) {
		return store.Setup{}, nil
	}).MustUse(c)
	rec = do(t, insp, http.MethodPost, "/stores/plain/reset", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("reset setup store = %d, want 409", rec.Code)
	}
}

func TestActions(t *testing.T) {
	insp, _ := newInspector(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		result any
	}{
		{"sync", "/stores/counter/actions/add", `[3]`, http.StatusOK, float64(3)},
		{"async", "/stores/counter/actions/later", ``, http.StatusOK, "done"},
		{"failure", "/stores/counter/actions/fail", `[]`, http.StatusUnprocessableEntity, nil},
		{"unknown", "/stores/counter/actions/missing", `[]`, http.StatusNotFound, nil},
		{"args not array", "/stores/counter/actions/add", `{"n": 1}`, http.StatusBadRequest, nil},
		{"unknown store", "/stores/missing/actions/add", `[1]`, http.StatusNotFound, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, insp, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			if tt.status == http.StatusOK {
				if got := decode[actionResult](t, rec).Result; got != tt.result {
					t.Errorf("result = %#v, want %#v", got, tt.result)
				}
			}
		})
	}
}

func TestPluginEvents(t *testing.T) {
	insp, c := newInspector(t)
	s, _ := c.Lookup("counter")

	var events []Event
	stop := insp.Subscribe(func(ev Event) { events = append(events, ev) })
	defer stop()

	_, _ = s.Call("add", 2)
	_, _ = s.Call("fail")
	s.Dispose()

	var types []EventType
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	want := []EventType{EventMutation, EventAction, EventActionError, EventDispose}
	if !reflect.DeepEqual(types, want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	if events[0].State["count"] != 2 || events[1].Result != 2 || events[2].Error == "" {
		t.Errorf("events = %+v", events)
	}
}

func TestWebSocketStream(t *testing.T) {
	insp, c := newInspector(t)
	srv := httptest.NewServer(insp)
	defer srv.Close()
	defer insp.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != EventSnapshot || ev.Store != "counter" {
		t.Fatalf("first event = %+v", ev)
	}
	if insp.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d", insp.ClientCount())
	}

	s, _ := c.Lookup("counter")
	_ = s.Set("count", 7)

	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != EventMutation || ev.State["count"] != float64(7) {
		t.Errorf("event = %+v", ev)
	}
}
