package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	_ "modernc.org/sqlite"
)

// KV is the key-value substrate the builder persists into.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store is a SQLite-backed KV with an optional in-process read cache.
type Store struct {
	db    *sql.DB
	mu    sync.RWMutex
	cache *ristretto.Cache[string, []byte]
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	cacheMaxBytes int64
}

// WithCache enables a ristretto read cache bounded to maxBytes of values.
func WithCache(maxBytes int64) Option {
	return func(o *storeOptions) { o.cacheMaxBytes = maxBytes }
}

// NewStore creates a new SQLite-backed store at the given path
func NewStore(path string, opts ...Option) (*Store, error) {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &Store{db: db}

	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if o.cacheMaxBytes > 0 {
		c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
			NumCounters: o.cacheMaxBytes / 100 * 10,
			MaxCost:     o.cacheMaxBytes,
			BufferItems: 64,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
		s.cache = c
	}

	return s, nil
}

// init creates the kv table if it doesn't exist
func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	return err
}

// Get returns the value stored under key. A missing key is not an error.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return append([]byte(nil), v...), true, nil
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}

	data := []byte(value)
	if s.cache != nil {
		s.cache.Set(key, data, int64(len(data)))
	}
	return append([]byte(nil), data...), true, nil
}

// Set upserts value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
	`, key, string(value), now)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	if s.cache != nil {
		s.cache.Del(key)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if s.cache != nil {
		s.cache.Del(key)
	}
	return nil
}

// Close closes the database connection and the cache.
func (s *Store) Close() error {
	if s.cache != nil {
		s.cache.Close()
	}
	return s.db.Close()
}

// GetJSON decodes the value under key into v. It reports false, leaving v
// untouched, when the key is absent or holds an empty document.
func GetJSON(ctx context.Context, kv KV, key string, v any) (bool, error) {
	data, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if isEmptyJSON(data) {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, data)
}

func isEmptyJSON(data []byte) bool {
	s := string(data)
	return s == "" || s == "null"
}
