package persist

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/depot/pkg/store"
)

// DefaultKey is the key snapshots are saved under unless WithKey is used.
const DefaultKey = "depot"

// Option configures the persistence plugin.
type Option func(*config)

type config struct {
	key     string
	logger  *slog.Logger
	timeout time.Duration
	onError func(storeID string, err error)
	now     func() time.Time
}

// WithKey sets the backend key of the container snapshot.
func WithKey(key string) Option {
	return func(c *config) { c.key = key }
}

// WithLogger sets the logger used to report failures when no error handler
// is set. The default is the container logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithTimeout bounds every backend call.
// Default: 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithErrorHandler receives load and save failures instead of the logger.
func WithErrorHandler(fn func(storeID string, err error)) Option {
	return func(c *config) { c.onError = fn }
}

func newConfig(opts []Option) *config {
	cfg := &config{
		key:     DefaultKey,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (cfg *config) context() (context.Context, context.CancelFunc) {
	if cfg.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), cfg.timeout)
}

func (cfg *config) report(c *store.Container, storeID, op string, err error) {
	if cfg.onError != nil {
		cfg.onError(storeID, err)
		return
	}
	logger := cfg.logger
	if logger == nil {
		logger = c.Logger()
	}
	logger.Warn("snapshot "+op+" failed", "store", storeID, "key", cfg.key, "error", err)
}

// Plugin restores every store from the saved container snapshot when it is
// built and saves the container snapshot after each of its mutations,
// merged over the stores already saved. Failures never fail store construction; they go to the error
// handler or the log.
func Plugin(backend Backend, opts ...Option) store.Plugin {
	cfg := newConfig(opts)

	return func(ctx store.PluginContext) store.Extension {
		s, c := ctx.Store, ctx.Container

		env, err := cfg.load(backend)
		if err != nil {
			cfg.report(c, s.ID(), "load", err)
		} else if env != nil {
			if state, ok := env.Stores[s.ID()]; ok {
				s.SetState(state)
			}
		}

		s.Subscribe(func(store.Mutation, map[string]any) {
			if err := cfg.save(backend, c); err != nil {
				cfg.report(c, s.ID(), "save", err)
			}
		})
		return store.Extension{}
	}
}

func (cfg *config) load(backend Backend) (*Envelope, error) {
	ctx, cancel := cfg.context()
	defer cancel()

	data, err := backend.Load(ctx, cfg.key)
	if err != nil || data == nil {
		return nil, err
	}
	return Decode(data)
}

func (cfg *config) save(backend Backend, c *store.Container) error {
	ctx, cancel := cfg.context()
	defer cancel()
	return save(ctx, backend, cfg.key, c.Snapshot(), cfg.now())
}

// save writes snapshot over the stores already saved under key, so stores
// that were not built in this container keep their saved state. An
// unreadable saved envelope is replaced.
func save(ctx context.Context, backend Backend, key string, snapshot map[string]any, now time.Time) error {
	stores := make(map[string]any, len(snapshot))

	data, err := backend.Load(ctx, key)
	if err != nil {
		return err
	}
	if data != nil {
		if env, err := Decode(data); err == nil {
			for id, state := range env.Snapshot() {
				stores[id] = state
			}
		}
	}
	for id, state := range snapshot {
		stores[id] = state
	}

	out, err := Encode(stores, now)
	if err != nil {
		return err
	}
	return backend.Save(ctx, key, out)
}

// Restore hydrates c from the snapshot saved under key. It reports whether
// a snapshot was found.
func Restore(ctx context.Context, c *store.Container, backend Backend, key string) (bool, error) {
	data, err := backend.Load(ctx, key)
	if err != nil || data == nil {
		return false, err
	}
	env, err := Decode(data)
	if err != nil {
		return false, err
	}
	c.Hydrate(env.Snapshot())
	return true, nil
}

// Persist saves the current snapshot of c under key. Saved stores that c
// has not built are kept.
func Persist(ctx context.Context, c *store.Container, backend Backend, key string) error {
	return save(ctx, backend, key, c.Snapshot(), time.Now())
}
