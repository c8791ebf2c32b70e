// Package catalog caches catalog documents (products, categories and their
// listings) in the local SQLite database.
package catalog

import (
	"context"
	"time"
)

// Entry is one cached document together with the time it was fetched.
type Entry struct {
	Key       string
	Body      []byte
	FetchedAt time.Time
}

// Repository stores raw JSON bodies by cache key. Get returns
// common.ErrorNotFound for an absent key.
type Repository interface {
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, e Entry) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
	PurgeOlderThan(ctx context.Context, t time.Time) (int64, error)
}
