package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"namecheck/internal/symbol"
)

// FactsCache keeps decoded symbol facts so that an unchanged SCIP index or
// C# tree is not decoded again. Entries are keyed by source path and only
// served while the caller's digest matches the stored one.
type FactsCache struct {
	db *DB
}

// NewFactsCache wraps an open database.
func NewFactsCache(db *DB) *FactsCache {
	return &FactsCache{db: db}
}

// CacheEntry describes a stored facts snapshot.
type CacheEntry struct {
	Source    string    `json:"source"`
	Digest    string    `json:"digest"`
	Format    string    `json:"format"`
	Symbols   int       `json:"symbols"`
	Bytes     int       `json:"bytes"`
	CreatedAt time.Time `json:"createdAt"`
}

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Get returns the cached symbols for source when digest matches. A stale
// entry is removed and reported as a miss.
func (c *FactsCache) Get(ctx context.Context, source, digest string) ([]*symbol.Symbol, bool, error) {
	var (
		stored string
		blob   []byte
	)
	err := c.db.conn.QueryRowContext(ctx,
		`SELECT digest, symbols_zst FROM facts_cache WHERE source = ?`, source,
	).Scan(&stored, &blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("facts cache lookup failed: %w", err)
	}

	if stored != digest {
		c.db.logger.Debug("Facts cache stale", "source", source)
		if err := c.Invalidate(ctx, source); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	raw, err := zstdDecoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt facts cache entry for %s: %w", source, err)
	}
	var symbols []*symbol.Symbol
	if err := json.Unmarshal(raw, &symbols); err != nil {
		return nil, false, fmt.Errorf("corrupt facts cache entry for %s: %w", source, err)
	}

	c.db.logger.Debug("Facts cache hit", "source", source, "symbols", len(symbols))
	return symbols, true, nil
}

// Put stores symbols for source under digest, replacing any previous entry.
func (c *FactsCache) Put(ctx context.Context, source, digest, format string, symbols []*symbol.Symbol) error {
	raw, err := json.Marshal(symbols)
	if err != nil {
		return fmt.Errorf("failed to encode facts: %w", err)
	}
	blob := zstdEncoder.EncodeAll(raw, nil)

	_, err = c.db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO facts_cache (source, digest, format, symbol_count, symbols_zst, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, source, digest, format, len(symbols), blob, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store facts cache entry: %w", err)
	}

	c.db.logger.Debug("Facts cached",
		"source", source,
		"symbols", len(symbols),
		"bytes", len(blob),
		"raw_bytes", len(raw),
	)
	return nil
}

// Invalidate removes the entry for source.
func (c *FactsCache) Invalidate(ctx context.Context, source string) error {
	_, err := c.db.conn.ExecContext(ctx, `DELETE FROM facts_cache WHERE source = ?`, source)
	return err
}

// Clear removes every entry and returns the number removed.
func (c *FactsCache) Clear(ctx context.Context) (int, error) {
	res, err := c.db.conn.ExecContext(ctx, `DELETE FROM facts_cache`)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Entries lists stored snapshots ordered by source.
func (c *FactsCache) Entries(ctx context.Context) ([]CacheEntry, error) {
	rows, err := c.db.conn.QueryContext(ctx, `
		SELECT source, digest, format, symbol_count, length(symbols_zst), created_at
		FROM facts_cache ORDER BY source
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CacheEntry
	for rows.Next() {
		var (
			e       CacheEntry
			created string
		)
		if err := rows.Scan(&e.Source, &e.Digest, &e.Format, &e.Symbols, &e.Bytes, &created); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, e)
	}
	return out, rows.Err()
}
