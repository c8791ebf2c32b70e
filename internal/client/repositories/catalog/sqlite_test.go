package catalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storefront/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE catalog_cache (
  key        TEXT PRIMARY KEY,
  body       BLOB NOT NULL,
  fetched_at INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestPutGet_RoundTripsFetchTime(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.Put(ctx, Entry{Key: "product:1", Body: []byte(`{"id":1}`), FetchedAt: at}))

	e, err := r.Get(ctx, "product:1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(e.Body))
	assert.True(t, e.FetchedAt.Equal(at))

	require.NoError(t, r.Put(ctx, Entry{Key: "product:1", Body: []byte(`{"id":1,"name":"x"}`), FetchedAt: at.Add(time.Hour)}))
	e, err = r.Get(ctx, "product:1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"x"}`, string(e.Body))
	assert.True(t, e.FetchedAt.Equal(at.Add(time.Hour)))
}

func TestGet_Absent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	_, err := r.Get(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeletePrefix_OnlyMatchingKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now()

	for _, k := range []string{"products?skip=0", "products?skip=20", "product:1", "products_x", "productsZ"} {
		require.NoError(t, r.Put(ctx, Entry{Key: k, Body: []byte("[]"), FetchedAt: now}))
	}

	// "_" must not act as a wildcard
	n, err := r.DeletePrefix(ctx, "products_")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = r.DeletePrefix(ctx, "products?")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = r.Get(ctx, "product:1")
	require.NoError(t, err)
	_, err = r.Get(ctx, "productsZ")
	require.NoError(t, err)
}

func TestPurgeOlderThan(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.Put(ctx, Entry{Key: "old", Body: []byte("1"), FetchedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, r.Put(ctx, Entry{Key: "new", Body: []byte("2"), FetchedAt: now}))

	n, err := r.PurgeOlderThan(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = r.Get(ctx, "old")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete_ErrorIsWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM catalog_cache WHERE key = \?`).
		WithArgs("product:7").
		WillReturnError(errors.New("database is locked"))

	err = NewSQLiteRepository(db).Delete(context.Background(), "product:7")
	require.ErrorContains(t, err, "failed to delete cache[product:7]")
	require.ErrorContains(t, err, "database is locked")
	require.NoError(t, mock.ExpectationsWereMet())
}
