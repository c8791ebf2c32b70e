package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (Entry, error) {
	var (
		body []byte
		at   int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM catalog_cache WHERE key = ?`, key).Scan(&body, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, common.ErrorNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get cache[%s]: %w", key, err)
	}
	return Entry{Key: key, Body: body, FetchedAt: time.UnixMilli(at).UTC()}, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catalog_cache (key, body, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at
	`, e.Key, e.Body, e.FetchedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to put cache[%s]: %w", e.Key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM catalog_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache[%s]: %w", key, err)
	}
	return nil
}

// DeletePrefix drops every entry whose key starts with prefix and returns
// how many were removed.
func (r *SQLiteRepository) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM catalog_cache WHERE key LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache prefix %q: %w", prefix, err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) PurgeOlderThan(ctx context.Context, t time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM catalog_cache WHERE fetched_at < ?`, t.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return res.RowsAffected()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
