package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores snapshots in a SQLite table:
//
//	CREATE TABLE depot_snapshots (
//	    snapshot_key TEXT PRIMARY KEY,
//	    data BLOB NOT NULL,
//	    updated_at INTEGER NOT NULL
//	);
//
// updated_at holds Unix milliseconds.
type SQLiteBackend struct {
	db     *sql.DB
	table  string
	ownsDB bool

	mu     sync.RWMutex
	closed bool
}

// SQLiteOption configures a SQLiteBackend.
type SQLiteOption func(*sqliteConfig)

type sqliteConfig struct {
	table string
}

// WithTable sets the snapshot table name.
// Default: "depot_snapshots".
func WithTable(name string) SQLiteOption {
	return func(c *sqliteConfig) {
		c.table = name
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// OpenSQLite opens (or creates) the database at path and prepares the
// snapshot table. The backend owns the handle and closes it on Close.
func OpenSQLite(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteBackend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	b, err := NewSQLiteBackend(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	b.ownsDB = true
	return b, nil
}

// NewSQLiteBackend uses an open database handle. The caller keeps
// ownership of db.
func NewSQLiteBackend(ctx context.Context, db *sql.DB, opts ...SQLiteOption) (*SQLiteBackend, error) {
	cfg := &sqliteConfig{table: "depot_snapshots"}
	for _, opt := range opts {
		opt(cfg)
	}
	if !identifierPattern.MatchString(cfg.table) {
		return nil, fmt.Errorf("invalid table name %q", cfg.table)
	}

	b := &SQLiteBackend{db: db, table: cfg.table}
	if err := b.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *SQLiteBackend) ensureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			snapshot_key TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`, b.table)
	if _, err := b.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create snapshot table: %w", err)
	}
	return nil
}

// Load implements Backend.
func (b *SQLiteBackend) Load(ctx context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrBackendClosed
	}

	query := fmt.Sprintf(`SELECT data FROM %s WHERE snapshot_key = ?`, b.table)
	var data []byte
	err := b.db.QueryRowContext(ctx, query, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, backendError("load", key, err)
	}
	return data, nil
}

// Save implements Backend.
func (b *SQLiteBackend) Save(ctx context.Context, key string, data []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBackendClosed
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (snapshot_key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(snapshot_key) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, b.table)
	if _, err := b.db.ExecContext(ctx, query, key, data, time.Now().UTC().UnixMilli()); err != nil {
		return backendError("save", key, err)
	}
	return nil
}

// Delete implements Backend.
func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBackendClosed
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE snapshot_key = ?`, b.table)
	if _, err := b.db.ExecContext(ctx, query, key); err != nil {
		return backendError("delete", key, err)
	}
	return nil
}

// UpdatedAt returns when key was last saved.
func (b *SQLiteBackend) UpdatedAt(ctx context.Context, key string) (time.Time, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return time.Time{}, false, ErrBackendClosed
	}

	query := fmt.Sprintf(`SELECT updated_at FROM %s WHERE snapshot_key = ?`, b.table)
	var millis int64
	err := b.db.QueryRowContext(ctx, query, key).Scan(&millis)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, backendError("load", key, err)
	}
	return time.UnixMilli(millis).UTC(), true, nil
}

// Close implements Backend. The database handle is closed only when the
// backend opened it.
func (b *SQLiteBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.ownsDB {
		return b.db.Close()
	}
	return nil
}
