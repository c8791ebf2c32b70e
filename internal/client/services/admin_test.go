package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storefront/internal/client/client"
	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/store"
	"github.com/dmitrijs2005/storefront/internal/common"
)

func ptr[T any](v T) *T { return &v }

func TestAdmin_RejectedClientSide(t *testing.T) {
	e := newEnv(t)
	u := e.srv.AddUser("alice", "alice@example.com", "pw", false)
	ctx := context.Background()

	cases := []struct {
		name    string
		session SessionReader
		want    error
	}{
		{"anonymous", fakeSession{}, common.ErrorNotAuthenticated},
		{"customer", e.signIn(t, u), common.ErrorAdminOnly},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := e.catalog(tc.session)

			_, err := svc.CreateProduct(ctx, models.ProductCreate{Name: "X", Price: decimal.NewFromInt(1)})
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, store.IsKind(err, store.KindValidation))

			_, err = svc.UpdateProduct(ctx, 1, models.ProductUpdate{Name: ptr("Y")})
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, svc.DeleteProduct(ctx, 1), tc.want)

			_, err = svc.CreateCategory(ctx, models.CategoryCreate{Name: "C"})
			assert.ErrorIs(t, err, tc.want)
			_, err = svc.UpdateCategory(ctx, 1, models.CategoryUpdate{Name: ptr("D")})
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, svc.DeleteCategory(ctx, 1), tc.want)
		})
	}
	assert.Zero(t, e.srv.TotalHits())
}

func TestAdmin_FieldValidation(t *testing.T) {
	e := newEnv(t)
	admin := e.srv.AddUser("root", "root@example.com", "pw", true)
	svc := e.catalog(e.signIn(t, admin))
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, models.ProductCreate{Name: "  ", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, common.ErrorMissingName)

	_, err = svc.CreateProduct(ctx, models.ProductCreate{Name: "Kettle", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, common.ErrorNegativePrice)

	_, err = svc.UpdateProduct(ctx, 0, models.ProductUpdate{})
	assert.ErrorIs(t, err, common.ErrorInvalidID)

	_, err = svc.UpdateCategory(ctx, 3, models.CategoryUpdate{Name: ptr("")})
	assert.ErrorIs(t, err, common.ErrorMissingName)

	assert.Zero(t, e.srv.TotalHits())
}

func TestAdmin_ServerForbiddenIsRequestError(t *testing.T) {
	e := newEnv(t)
	u := e.srv.AddUser("alice", "alice@example.com", "pw", false)
	// the local session claims admin, the backend disagrees
	claimed := u
	claimed.IsAdmin = true
	require.NoError(t, e.ts.Save(context.Background(), e.srv.IssueTokens(u.ID)))
	svc := e.catalog(fakeSession{user: &claimed})

	_, err := svc.CreateCategory(context.Background(), models.CategoryCreate{Name: "Kitchen"})
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrForbidden)
	assert.True(t, store.IsKind(err, store.KindRequest))
}

func TestAdmin_ProductUpdateInvalidatesCache(t *testing.T) {
	e := newEnv(t)
	admin := e.srv.AddUser("root", "root@example.com", "pw", true)
	c := e.srv.AddCategory("Kitchen")
	p := e.srv.AddProduct("Kettle", "25.00", 3, c.ID)
	other := e.srv.AddProduct("Toaster", "40.00", 1, c.ID)
	svc := e.catalog(e.signIn(t, admin), WithCacheTTL(time.Hour))
	ctx := context.Background()

	_, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	_, err = svc.GetProduct(ctx, other.ID)
	require.NoError(t, err)
	_, err = svc.ListProducts(ctx, models.ProductQuery{Limit: 10})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, p.ID, models.ProductUpdate{
		Name:  ptr("Teapot"),
		Price: ptr(decimal.RequireFromString("19.90")),
	})
	require.NoError(t, err)
	assert.Equal(t, "Teapot", updated.Name)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Teapot", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("19.90")))

	list, err := svc.ListProducts(ctx, models.ProductQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Teapot", list[0].Name)

	// untouched products stay cached
	_, err = svc.GetProduct(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, e.srv.Hits(routeProduct))
	assert.Equal(t, 2, e.srv.Hits("GET /products"))
}

func TestAdmin_CategoryLifecycle(t *testing.T) {
	e := newEnv(t)
	admin := e.srv.AddUser("root", "root@example.com", "pw", true)
	svc := e.catalog(e.signIn(t, admin), WithCacheTTL(time.Hour))
	ctx := context.Background()

	before, err := svc.ListCategories(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, before)

	c, err := svc.CreateCategory(ctx, models.CategoryCreate{Name: "Kitchen"})
	require.NoError(t, err)

	after, err := svc.ListCategories(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "Kitchen", after[0].Name)

	_, err = svc.GetCategory(ctx, c.ID)
	require.NoError(t, err)

	renamed, err := svc.UpdateCategory(ctx, c.ID, models.CategoryUpdate{Name: ptr("Cookware")})
	require.NoError(t, err)
	assert.Equal(t, "Cookware", renamed.Name)

	got, err := svc.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cookware", got.Name)

	require.NoError(t, svc.DeleteCategory(ctx, c.ID))
	_, err = svc.GetCategory(ctx, c.ID)
	assert.True(t, store.IsKind(err, store.KindNotFound))

	err = svc.DeleteCategory(ctx, c.ID)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestAdmin_CreateAndDeleteProduct(t *testing.T) {
	e := newEnv(t)
	admin := e.srv.AddUser("root", "root@example.com", "pw", true)
	svc := e.catalog(e.signIn(t, admin), WithCacheTTL(time.Hour))
	ctx := context.Background()

	empty, err := svc.ListProducts(ctx, models.ProductQuery{})
	require.NoError(t, err)
	assert.Empty(t, empty)

	p, err := svc.CreateProduct(ctx, models.ProductCreate{Name: "Kettle", Price: decimal.RequireFromString("25.00"), Stock: 2})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	list, err := svc.ListProducts(ctx, models.ProductQuery{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.True(t, store.IsKind(err, store.KindNotFound))
}
