// Package tokens persists the access/refresh token pair between runs.
//
// Presence of the access token is what decides whether a session resume is
// attempted at startup.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
)

// ErrNoTokens is returned by Load when no access token is persisted.
var ErrNoTokens = errors.New("no persisted tokens")

// Store is the durable token storage read by the transport on every request
// and written only by the session manager.
type Store interface {
	Load(ctx context.Context) (models.Tokens, error)
	Save(ctx context.Context, t models.Tokens) error
	Clear(ctx context.Context) error
}

// SQLiteStore keeps the pair in the metadata table under common.AccessTokenKey
// and common.RefreshTokenKey.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load(ctx context.Context) (models.Tokens, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	access, err := repo.Get(ctx, common.AccessTokenKey)
	if errors.Is(err, common.ErrorNotFound) || (err == nil && access == "") {
		return models.Tokens{}, ErrNoTokens
	}
	if err != nil {
		return models.Tokens{}, fmt.Errorf("load access token: %w", err)
	}

	refresh, err := repo.Get(ctx, common.RefreshTokenKey)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return models.Tokens{}, fmt.Errorf("load refresh token: %w", err)
	}

	return models.Tokens{AccessToken: access, RefreshToken: refresh, TokenType: common.BearerScheme}, nil
}

// Save writes both tokens in one transaction. An empty refresh token removes
// any previously stored one.
func (s *SQLiteStore) Save(ctx context.Context, t models.Tokens) error {
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.AccessTokenKey, t.AccessToken); err != nil {
			return err
		}
		if t.RefreshToken == "" {
			return repo.Delete(ctx, common.RefreshTokenKey)
		}
		return repo.Set(ctx, common.RefreshTokenKey, t.RefreshToken)
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.AccessTokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, common.RefreshTokenKey)
	})
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu     sync.Mutex
	tokens *models.Tokens
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (models.Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil || m.tokens.AccessToken == "" {
		return models.Tokens{}, ErrNoTokens
	}
	return *m.tokens, nil
}

func (m *MemoryStore) Save(_ context.Context, t models.Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = &t
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = nil
	return nil
}
