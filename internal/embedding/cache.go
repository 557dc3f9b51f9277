// Package embedding provides a content-addressed cache in front of an
// embedding provider. Entries are keyed by a hash of the normalized input
// text, so a cached vector can never go stale.
package embedding

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/talentfit/cv-ranker/internal/ai"
)

// Cache wraps an ai.Embedder with a SQLite-backed vector store.
type Cache struct {
	db     *sql.DB
	source ai.Embedder
	logger *zap.Logger
}

// NewCache opens or creates the cache database at path. The source embedder is
// consulted on cache misses.
func NewCache(path string, source ai.Embedder, logger *zap.Logger) (*Cache, error) {
	if source == nil {
		return nil, errors.New("source embedder is required")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("cache path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS embeddings (
		key TEXT PRIMARY KEY,
		vector TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating embedding cache schema: %w", err)
	}

	return &Cache{db: db, source: source, logger: logger}, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Embed returns the cached vector for text, delegating to the source embedder
// on a miss. Cache write failures are logged and ignored: a broken cache must
// not fail an otherwise healthy embedding call.
func (c *Cache) Embed(ctx context.Context, text string) ([]float64, error) {
	key := cacheKey(text)

	var encoded string
	err := c.db.QueryRowContext(ctx, `SELECT vector FROM embeddings WHERE key = ?`, key).Scan(&encoded)
	switch {
	case err == nil:
		var vector []float64
		if jsonErr := json.Unmarshal([]byte(encoded), &vector); jsonErr == nil && len(vector) > 0 {
			return vector, nil
		}
		c.logger.Warn("discarding corrupt embedding cache entry", zap.String("key", key))
	case !errors.Is(err, sql.ErrNoRows):
		c.logger.Warn("embedding cache lookup failed", zap.Error(err))
	}

	vector, err := c.source.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	encodedVector, err := json.Marshal(vector)
	if err == nil {
		_, err = c.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO embeddings (key, vector) VALUES (?, ?)`,
			key, string(encodedVector),
		)
	}
	if err != nil {
		c.logger.Warn("storing embedding cache entry failed", zap.Error(err))
	}

	return vector, nil
}

// cacheKey hashes the normalized text: lowercase with collapsed whitespace, so
// trivially reformatted inputs share an entry.
func cacheKey(text string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", sum[:])
}
