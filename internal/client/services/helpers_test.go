package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storefront/internal/client/client"
	"github.com/dmitrijs2005/storefront/internal/client/client/clienttest"
	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/repositories/catalog"
	"github.com/dmitrijs2005/storefront/internal/client/store"
	"github.com/dmitrijs2005/storefront/internal/client/tokens"
)

// fakeSession reports a fixed signed-in user (or none).
type fakeSession struct {
	user *models.User
}

func (f fakeSession) Snapshot() store.Snapshot {
	if f.user == nil {
		return store.Snapshot{Session: store.Session{State: store.Ready}}
	}
	u := *f.user
	return store.Snapshot{Session: store.Session{Token: "token", User: &u, State: store.Ready}}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type env struct {
	srv   *clienttest.Server
	http  *client.HTTPClient
	ts    *tokens.MemoryStore
	cache *catalog.SQLiteRepository
	clock *fakeClock
}

func newEnv(t *testing.T) *env {
	t.Helper()
	srv := clienttest.New(t)
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ts := tokens.NewMemoryStore()
	hc, err := client.NewHTTPClient(srv.URL, ts)
	require.NoError(t, err)
	return &env{srv: srv, http: hc, ts: ts, cache: catalog.NewSQLiteRepository(db), clock: newFakeClock()}
}

// signIn stores a token pair for u so the transport sends it, and returns
// the matching session.
func (e *env) signIn(t *testing.T, u models.User) fakeSession {
	t.Helper()
	require.NoError(t, e.ts.Save(context.Background(), e.srv.IssueTokens(u.ID)))
	return fakeSession{user: &u}
}

func (e *env) catalog(session SessionReader, opts ...CatalogOption) *CatalogService {
	opts = append([]CatalogOption{WithCatalogClock(e.clock.Now)}, opts...)
	return NewCatalogService(e.http, e.cache, session, opts...)
}
