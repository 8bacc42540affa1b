package devtools

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/depot/pkg/pubsub"
	"github.com/vango-dev/depot/pkg/store"
)

// Inspector serves a container over HTTP and websocket.
type Inspector struct {
	container *store.Container
	logger    *slog.Logger
	router    chi.Router
	upgrader  websocket.Upgrader
	listeners pubsub.List[Event]
	now       func() time.Time

	clients map[*client]bool
	mu      sync.RWMutex
}

// client serializes writes to one connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (cl *client) write(data []byte) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.conn.WriteMessage(websocket.TextMessage, data)
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithLogger sets the inspector logger. The default is the container logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithCheckOrigin sets the websocket origin check. By default every origin
// is accepted.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(i *Inspector) {
		i.upgrader.CheckOrigin = fn
	}
}

// WithMiddleware adds router middleware in front of every route.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(i *Inspector) {
		i.router.Use(mw...)
	}
}

// New creates an inspector for c.
func New(c *store.Container, opts ...Option) *Inspector {
	i := &Inspector{
		container: c,
		logger:    c.Logger().With("component", "devtools"),
		router:    chi.NewRouter(),
		clients:   make(map[*client]bool),
		now:       time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	i.router.Use(middleware.Recoverer)
	for _, opt := range opts {
		opt(i)
	}
	i.routes()
	return i
}

func (i *Inspector) routes() {
	r := i.router
	r.Get("/stores", i.handleList)
	r.Route("/stores/{id}", func(r chi.Router) {
		r.Get("/", i.handleGet)
		r.Patch("/", i.handlePatch)
		r.Post("/reset", i.handleReset)
		r.Post("/actions/{name}", i.handleAction)
	})
	r.Get("/ws", i.HandleWebSocket)
}

// ServeHTTP implements http.Handler.
func (i *Inspector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	i.router.ServeHTTP(w, r)
}

// Plugin returns the plugin that broadcasts the events of every store the
// container builds.
func (i *Inspector) Plugin() store.Plugin {
	return func(ctx store.PluginContext) store.Extension {
		s := ctx.Store
		id := s.ID()

		i.Broadcast(Event{Type: EventStore, Store: id, State: s.State().PeekSnapshot()})
		s.Scope().OnCleanup(func() {
			i.Broadcast(Event{Type: EventDispose, Store: id})
		})

		s.Subscribe(func(_ store.Mutation, state map[string]any) {
			i.Broadcast(Event{Type: EventMutation, Store: id, State: state})
		})

		s.OnAction(func(actx *store.ActionContext) {
			actx.After(func(result any) {
				i.Broadcast(Event{Type: EventAction, Store: id, Action: actx.Name, Result: result})
			})
			actx.OnError(func(err error) {
				i.Broadcast(Event{Type: EventActionError, Store: id, Action: actx.Name, Error: err.Error()})
			})
		})
		return store.Extension{}
	}
}

// Subscribe registers fn to receive every broadcast event.
func (i *Inspector) Subscribe(fn func(Event)) (unsubscribe func()) {
	return i.listeners.Add(fn)
}

// Broadcast sends ev to the listeners and every websocket client.
func (i *Inspector) Broadcast(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = i.now()
	}
	i.listeners.Fire(ev)

	data, err := json.Marshal(ev)
	if err != nil {
		i.logger.Warn("event not serializable", "type", ev.Type, "store", ev.Store, "error", err)
		return
	}

	i.mu.RLock()
	clients := make([]*client, 0, len(i.clients))
	for cl := range i.clients {
		clients = append(clients, cl)
	}
	i.mu.RUnlock()

	for _, cl := range clients {
		if err := cl.write(data); err != nil {
			i.drop(cl)
		}
	}
}

// HandleWebSocket upgrades the connection, sends a snapshot event per built
// store and then streams events until the client disconnects.
func (i *Inspector) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := i.upgrader.Upgrade(w, r, nil)
	if err != nil {
		i.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	cl := &client{conn: conn}

	i.mu.Lock()
	i.clients[cl] = true
	i.mu.Unlock()

	for _, id := range i.container.IDs() {
		s, ok := i.container.Lookup(id)
		if !ok {
			continue
		}
		data, err := json.Marshal(Event{
			Type:  EventSnapshot,
			Store: id,
			State: s.State().PeekSnapshot(),
			Time:  i.now(),
		})
		if err != nil {
			continue
		}
		if err := cl.write(data); err != nil {
			i.drop(cl)
			return
		}
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	i.drop(cl)
}

func (i *Inspector) drop(cl *client) {
	i.mu.Lock()
	_, ok := i.clients[cl]
	delete(i.clients, cl)
	i.mu.Unlock()
	if ok {
		cl.conn.Close()
	}
}

// ClientCount returns the number of connected websocket clients.
func (i *Inspector) ClientCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.clients)
}

// Close closes all client connections.
func (i *Inspector) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()

	for cl := range i.clients {
		cl.conn.Close()
		delete(i.clients, cl)
	}
}
