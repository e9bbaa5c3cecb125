package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// FreshnessWindow is how long a cached catalog may be reused.
const FreshnessWindow = 5 * time.Minute

// Cache stores normalized catalogs keyed by CacheKey(sourceURL).
//
// Get reports a miss for entries older than FreshnessWindow but leaves
// them in place. Put always replaces the existing entry.
type Cache interface {
	Get(ctx context.Context, key string) ([]Project, bool, error)
	Put(ctx context.Context, key string, projects []Project) error
}

// CacheKey derives the opaque cache key for a source URL.
func CacheKey(sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return hex.EncodeToString(sum[:])[:32]
}

func fresh(now, storedAt time.Time) bool {
	return now.Sub(storedAt) < FreshnessWindow
}

type cacheEntry struct {
	payload  []byte
	storedAt time.Time
}

// MemoryCache keeps serialized snapshots in process memory.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-memory cache. A nil clock uses time.Now.
func NewMemoryCache(now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{entries: make(map[string]cacheEntry), now: now}
}

// Get returns the stored catalog if it is still fresh.
func (c *MemoryCache) Get(_ context.Context, key string) ([]Project, bool, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()

	if !ok || !fresh(c.now(), entry.storedAt) {
		return nil, false, nil
	}
	var projects []Project
	if err := json.Unmarshal(entry.payload, &projects); err != nil {
		return nil, false, fmt.Errorf("decode cached catalog: %w", err)
	}
	return projects, true, nil
}

// Put overwrites the entry for key.
func (c *MemoryCache) Put(_ context.Context, key string, projects []Project) error {
	payload, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{payload: payload, storedAt: c.now()}
	c.mu.Unlock()
	return nil
}

// SQLiteCache persists snapshots in the catalog_cache table so a restart
// inside the freshness window does not refetch the sheet.
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteCache wraps an open database whose schema includes catalog_cache.
func NewSQLiteCache(db *sql.DB, now func() time.Time) *SQLiteCache {
	if now == nil {
		now = time.Now
	}
	return &SQLiteCache{db: db, now: now}
}

// Get returns the stored catalog if it is still fresh.
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]Project, bool, error) {
	var (
		payload  []byte
		storedAt int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT payload, stored_at FROM catalog_cache WHERE key = ?`, key,
	).Scan(&payload, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read catalog cache: %w", err)
	}

	if !fresh(c.now(), time.UnixMilli(storedAt)) {
		return nil, false, nil
	}
	var projects []Project
	if err := json.Unmarshal(payload, &projects); err != nil {
		return nil, false, fmt.Errorf("decode cached catalog: %w", err)
	}
	return projects, true, nil
}

// Put overwrites the entry for key.
func (c *SQLiteCache) Put(ctx context.Context, key string, projects []Project) error {
	payload, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO catalog_cache (key, payload, stored_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at
	`, key, payload, c.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("write catalog cache: %w", err)
	}
	return nil
}
