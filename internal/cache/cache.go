package cache

import (
	"database/sql"
	"fmt"
	"linklyst/internal/config"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Cache provides a SQLite-based caching mechanism for assembled public
// payloads. Entries expire by TTL and are also dropped explicitly when an
// owner mutates their hierarchy.
type Cache struct {
	db *sqlx.DB
}

// New creates a new Cache instance. It opens the SQLite database at the
// configured file path and ensures the cache table exists.
func New(cfg config.CacheConfig) (*Cache, error) {
	db, err := sqlx.Connect("sqlite", cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite cache: %w", err)
	}

	// WAL mode is generally better for concurrent readers.
	_, err = db.Exec("PRAGMA journal_mode=WAL;")
	if err != nil {
		return nil, fmt.Errorf("failed to set WAL mode on sqlite cache: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		value BLOB,
		expires_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_expires_at ON cache (expires_at);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Get retrieves an item from the cache. It returns nil if the item is not
// found or is expired.
func (c *Cache) Get(key string) ([]byte, error) {
	var item struct {
		Value     []byte `db:"value"`
		ExpiresAt int64  `db:"expires_at"`
	}
	query := `SELECT value, expires_at FROM cache WHERE key = ?`
	err := c.db.Get(&item, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Cache miss is not an error.
		}
		return nil, fmt.Errorf("failed to get item from cache: %w", err)
	}

	if time.Now().Unix() > item.ExpiresAt {
		// Expired; drop it best-effort and treat as a miss.
		_ = c.Delete(key)
		return nil, nil
	}

	return item.Value, nil
}

// Set adds an item to the cache with a specific TTL.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).Unix()
	query := `INSERT OR REPLACE INTO cache (key, value, expires_at) VALUES (?, ?, ?)`
	_, err := c.db.Exec(query, key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set item in cache: %w", err)
	}
	return nil
}

// Delete removes an item from the cache.
func (c *Cache) Delete(key string) error {
	query := `DELETE FROM cache WHERE key = ?`
	_, err := c.db.Exec(query, key)
	if err != nil {
		return fmt.Errorf("failed to delete item from cache: %w", err)
	}
	return nil
}

// DeletePrefix removes every item whose key starts with the given prefix.
func (c *Cache) DeletePrefix(prefix string) error {
	query := `DELETE FROM cache WHERE key LIKE ?`
	_, err := c.db.Exec(query, prefix+"%")
	if err != nil {
		return fmt.Errorf("failed to delete prefix from cache: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}
