package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/depot/internal/config"
	"github.com/vango-dev/depot/internal/errors"
	"github.com/vango-dev/depot/pkg/declare"
	"github.com/vango-dev/depot/pkg/devtools"
	"github.com/vango-dev/depot/pkg/instrument"
	"github.com/vango-dev/depot/pkg/persist"
	"github.com/vango-dev/depot/pkg/store"
)

// loadConfig reads depot.json from path (a file or a directory), or from
// the nearest project root when path is empty, then applies the DEPOT_*
// environment and validates the result.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path == "":
		cfg, err = config.LoadFromWorkingDir()
	default:
		if st, statErr := os.Stat(path); statErr == nil && st.IsDir() {
			cfg, err = config.Load(path)
		} else {
			cfg, err = config.LoadFile(path)
		}
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the CLI logger from the log settings.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openBackend opens the configured persistence backend. It returns nil for
// the none backend.
func openBackend(ctx context.Context, cfg *config.Config) (persist.Backend, error) {
	switch cfg.Persist.Backend {
	case config.BackendMemory:
		return persist.NewMemoryBackend(), nil
	case config.BackendFile:
		return persist.NewFileBackend(cfg.SnapshotDir())
	case config.BackendSQLite:
		path := cfg.SQLitePath()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.New("D032").Wrap(err)
		}
		var opts []persist.SQLiteOption
		if cfg.Persist.SQLite.Table != "" {
			opts = append(opts, persist.WithTable(cfg.Persist.SQLite.Table))
		}
		return persist.OpenSQLite(ctx, path, opts...)
	case config.BackendS3:
		return persist.NewS3Backend(newS3Client(cfg.Persist.S3), cfg.Persist.S3.Bucket,
			persist.WithPrefix(cfg.Persist.S3.Prefix)), nil
	default:
		return nil, nil
	}
}

// newS3Client builds an S3 client from the configured region, endpoint and
// static credentials.
func newS3Client(sc config.S3Config) *s3.Client {
	opts := s3.Options{
		Region:       sc.Region,
		UsePathStyle: sc.PathStyle,
	}
	if sc.Endpoint != "" {
		opts.BaseEndpoint = aws.String(sc.Endpoint)
	}
	if sc.AccessKeyID != "" {
		creds := aws.Credentials{
			AccessKeyID:     sc.AccessKeyID,
			SecretAccessKey: sc.SecretAccessKey,
			Source:          "depot environment",
		}
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) { return creds, nil },
		))
	}
	return s3.New(opts)
}

// engine is a container wired with the configured plugins.
type engine struct {
	container *store.Container
	inspector *devtools.Inspector
	registry  *prometheus.Registry
	backend   persist.Backend
	defs      []*store.Definition
}

// newEngine loads the definitions and builds every store in a container
// carrying the persistence, metrics, tracing and inspector plugins that
// cfg enables.
func newEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*engine, error) {
	file, err := declare.Load(cfg.DefinitionsPath())
	if err != nil {
		return nil, err
	}
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rt := &engine{
		container: store.New(store.WithLogger(logger)),
		backend:   backend,
		defs:      file.Definitions(),
	}
	if backend != nil {
		rt.container.Use(persist.Plugin(backend,
			persist.WithKey(cfg.Persist.Key),
			persist.WithTimeout(cfg.PersistTimeout()),
			persist.WithLogger(logger),
		))
	}
	if cfg.Metrics.Enabled {
		rt.registry = prometheus.NewRegistry()
		rt.container.Use(instrument.Metrics(
			instrument.WithRegistry(rt.registry),
			instrument.WithNamespace(cfg.Metrics.Namespace),
		))
	}
	if cfg.Tracing.Enabled {
		rt.container.Use(instrument.Tracing(instrument.WithTracerName(cfg.Tracing.TracerName)))
	}
	if cfg.Devtools.Enabled {
		rt.inspector = devtools.New(rt.container, devtools.WithLogger(logger))
		rt.container.Use(rt.inspector.Plugin())
	}

	for _, def := range rt.defs {
		if _, err := def.Use(rt.container); err != nil {
			rt.Close()
			return nil, err
		}
	}
	return rt, nil
}

// Close disposes the container and closes the backend.
func (rt *engine) Close() error {
	if rt.inspector != nil {
		rt.inspector.Close()
	}
	rt.container.Dispose()
	if rt.backend != nil {
		return rt.backend.Close()
	}
	return nil
}
