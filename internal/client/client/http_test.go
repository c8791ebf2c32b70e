package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storefront/internal/client/client/clienttest"
	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/tokens"
)

type fakeHooks struct {
	mu        sync.Mutex
	refreshN  int
	expireN   int
	onRefresh func(ctx context.Context) bool
}

func (f *fakeHooks) Refresh(ctx context.Context) bool {
	f.mu.Lock()
	f.refreshN++
	fn := f.onRefresh
	f.mu.Unlock()
	if fn == nil {
		return false
	}
	return fn(ctx)
}

func (f *fakeHooks) Expire(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expireN++
}

func (f *fakeHooks) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshN, f.expireN
}

func newTestClient(t *testing.T, srv *clienttest.Server, opts ...Option) (*HTTPClient, *tokens.MemoryStore) {
	t.Helper()
	ts := tokens.NewMemoryStore()
	c, err := NewHTTPClient(srv.URL, ts, opts...)
	require.NoError(t, err)
	return c, ts
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient("localhost:8000", tokens.NewMemoryStore())
	require.Error(t, err)

	_, err = NewHTTPClient("ftp://example.com", tokens.NewMemoryStore())
	require.Error(t, err)
}

func TestHTTPClient_InjectsBearerAndRequestID(t *testing.T) {
	srv := clienttest.New(t)
	u := srv.AddUser("alice", "alice@example.com", "pw", false)
	c, ts := newTestClient(t, srv)
	ctx := context.Background()

	pair := srv.IssueTokens(u.ID)
	require.NoError(t, ts.Save(ctx, pair))

	got, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	headers := srv.AuthHeaders()
	require.Len(t, headers, 1)
	assert.Equal(t, "Bearer "+pair.AccessToken, headers[0])

	ids := srv.RequestIDs()
	require.Len(t, ids, 1)
	_, err = uuid.Parse(ids[0])
	require.NoError(t, err)
}

func TestHTTPClient_PublicRequestsCarryNoToken(t *testing.T) {
	srv := clienttest.New(t)
	srv.AddUser("bob", "bob@example.com", "secret", false)
	c, ts := newTestClient(t, srv)
	ctx := context.Background()
	require.NoError(t, ts.Save(ctx, models.Tokens{AccessToken: "stale"}))

	pair, err := c.Login(ctx, "bob", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, []string{""}, srv.AuthHeaders())
}

func TestHTTPClient_ErrorMapping(t *testing.T) {
	srv := clienttest.New(t)
	u := srv.AddUser("carol", "carol@example.com", "pw", false)
	c, ts := newTestClient(t, srv)
	ctx := context.Background()
	require.NoError(t, ts.Save(ctx, srv.IssueTokens(u.ID)))

	_, err := c.GetProduct(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Product not found", apiErr.Detail)

	_, err = c.Register(ctx, models.UserCreate{Username: "carol", Email: "x@example.com", Password: "pw"})
	require.ErrorIs(t, err, ErrBadRequest)
	assert.Contains(t, err.Error(), "Username already registered")

	_, err = c.UpdateOrderStatus(ctx, 1, models.OrderStatusShipping)
	require.ErrorIs(t, err, ErrForbidden)
	require.NotErrorIs(t, err, ErrUnauthorized)

	srv.SetDown(true)
	_, err = c.ListProducts(ctx, models.ProductQuery{})
	require.ErrorIs(t, err, ErrServer)
}

func TestHTTPClient_NetworkFailureIsUnavailable(t *testing.T) {
	srv := clienttest.New(t)
	c, _ := newTestClient(t, srv)
	srv.Close()

	_, err := c.ListCategories(context.Background(), 0, 0)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_TimeoutIsUnavailable(t *testing.T) {
	srv := clienttest.New(t)
	release := make(chan struct{})
	srv.SetBefore(func(*http.Request) { <-release })
	defer close(release)

	c, _ := newTestClient(t, srv, WithTimeout(50*time.Millisecond))

	_, err := c.ListProducts(context.Background(), models.ProductQuery{})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_CallerCancellationIsNotUnavailable(t *testing.T) {
	srv := clienttest.New(t)
	c, _ := newTestClient(t, srv)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListProducts(ctx, models.ProductQuery{})
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrUnavailable)
}

func TestDecodeDetail(t *testing.T) {
	assert.Equal(t, "Cart is empty", decodeDetail([]byte(`{"detail":"Cart is empty","status_code":400}`)))
	assert.Equal(t, "field required; value is not a valid integer",
		decodeDetail([]byte(`{"detail":[{"loc":["body","quantity"],"msg":"field required"},{"msg":"value is not a valid integer"}]}`)))
	assert.Equal(t, "Bad Gateway", decodeDetail([]byte("Bad Gateway\n")))
}

func TestHTTPClient_CartUpdateUsesQueryParameter(t *testing.T) {
	var gotQuery, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		b := new(strings.Builder)
		_, _ = io.Copy(b, r.Body)
		gotBody = b.String()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[],"total":0}`))
	}))
	defer srv.Close()

	c, err := NewHTTPClient(srv.URL, tokens.NewMemoryStore())
	require.NoError(t, err)

	_, err = c.UpdateCartItem(context.Background(), 42, 3)
	require.NoError(t, err)
	assert.Equal(t, "product_id=42", gotQuery)
	assert.JSONEq(t, `{"quantity":3}`, gotBody)
}

func TestPolicyLogout_ExpiresOnce(t *testing.T) {
	srv := clienttest.New(t)
	u := srv.AddUser("dave", "dave@example.com", "pw", false)
	c, ts := newTestClient(t, srv)
	hooks := &fakeHooks{}
	c.SetSessionHooks(hooks)
	ctx := context.Background()

	pair := srv.IssueTokens(u.ID)
	require.NoError(t, ts.Save(ctx, pair))
	srv.RevokeAccess(pair.AccessToken)

	_, err := c.GetCart(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	refreshN, expireN := hooks.counts()
	assert.Equal(t, 0, refreshN)
	assert.Equal(t, 1, expireN)
	assert.Equal(t, 1, srv.Hits("GET /cart"))
}

func TestPolicy_PublicAndUnauthenticatedRequestsNeverExpire(t *testing.T) {
	srv := clienttest.New(t)
	c, _ := newTestClient(t, srv, WithPolicy(PolicyRefresh))
	hooks := &fakeHooks{}
	c.SetSessionHooks(hooks)
	ctx := context.Background()

	_, err := c.Login(ctx, "nobody", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)

	// no token persisted: nothing to refresh or clear
	_, err = c.GetCart(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	refreshN, expireN := hooks.counts()
	assert.Zero(t, refreshN)
	assert.Zero(t, expireN)
}

func TestPolicy_WithoutSessionHooks(t *testing.T) {
	srv := clienttest.New(t)
	u := srv.AddUser("erin", "erin@example.com", "pw", false)
	c, ts := newTestClient(t, srv)
	hooks := &fakeHooks{}
	c.SetSessionHooks(hooks)
	ctx := context.Background()

	pair := srv.IssueTokens(u.ID)
	require.NoError(t, ts.Save(ctx, pair))
	srv.RevokeAccess(pair.AccessToken)

	_, err := c.Profile(WithoutSessionHooks(ctx))
	require.ErrorIs(t, err, ErrUnauthorized)
	_, expireN := hooks.counts()
	assert.Zero(t, expireN)
}

func TestPolicyRefresh_RefreshesOnceAndRetriesOnce(t *testing.T) {
	srv := clienttest.New(t)
	u := srv.AddUser("frank", "frank@example.com", "pw", false)
	c, ts := newTestClient(t, srv, WithPolicy(PolicyRefresh))
	ctx := context.Background()

	pair := srv.IssueTokens(u.ID)
	require.NoError(t, ts.Save(ctx, pair))
	srv.RevokeAccess(pair.AccessToken)

	hooks := &fakeHooks{onRefresh: func(ctx context.Context) bool {
		cur, err := ts.Load(ctx)
		require.NoError(t, err)
		fresh, err := c.Refresh(ctx, cur.RefreshToken)
		if err != nil {
			return false
		}
		return ts.Save(ctx, fresh) == nil
	}}
	c.SetSessionHooks(hooks)

	got, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	refreshN, expireN := hooks.counts()
	assert.Equal(t, 1, refreshN)
	assert.Zero(t, expireN)
	assert.Equal(t, 2, srv.Hits("GET /profile"))
	assert.Equal(t, 1, srv.Hits("POST /refresh"))

	now, err := ts.Load(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, now.AccessToken)
}

func TestPolicyRefresh_FailedRefreshExpires(t *testing.T) {
	srv := clienttest.New(t)
	u := srv.AddUser("gina", "gina@example.com", "pw", false)
	c, ts := newTestClient(t, srv, WithPolicy(PolicyRefresh))
	hooks := &fakeHooks{onRefresh: func(context.Context) bool { return false }}
	c.SetSessionHooks(hooks)
	ctx := context.Background()

	pair := srv.IssueTokens(u.ID)
	require.NoError(t, ts.Save(ctx, pair))
	srv.RevokeAccess(pair.AccessToken)

	_, err := c.GetCart(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	refreshN, expireN := hooks.counts()
	assert.Equal(t, 1, refreshN)
	assert.Equal(t, 1, expireN)
	assert.Equal(t, 1, srv.Hits("GET /cart"))
}

func TestPolicyRefresh_SecondUnauthorizedExpires(t *testing.T) {
	srv := clienttest.New(t)
	u := srv.AddUser("hank", "hank@example.com", "pw", false)
	c, ts := newTestClient(t, srv, WithPolicy(PolicyRefresh))
	ctx := context.Background()

	pair := srv.IssueTokens(u.ID)
	require.NoError(t, ts.Save(ctx, pair))
	srv.RevokeAccess(pair.AccessToken)

	// "refreshes" to a token the server also rejects
	hooks := &fakeHooks{onRefresh: func(ctx context.Context) bool {
		return ts.Save(ctx, models.Tokens{AccessToken: pair.AccessToken}) == nil
	}}
	c.SetSessionHooks(hooks)

	_, err := c.GetCart(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	refreshN, expireN := hooks.counts()
	assert.Equal(t, 1, refreshN)
	assert.Equal(t, 1, expireN)
	assert.Equal(t, 2, srv.Hits("GET /cart"))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyLogout, p)

	p, err = ParsePolicy(" Refresh ")
	require.NoError(t, err)
	assert.Equal(t, PolicyRefresh, p)

	_, err = ParsePolicy("retry-forever")
	require.Error(t, err)
}

func TestAPIError_Unwrap(t *testing.T) {
	cases := map[int]error{
		http.StatusUnauthorized:        ErrUnauthorized,
		http.StatusForbidden:           ErrForbidden,
		http.StatusNotFound:            ErrNotFound,
		http.StatusConflict:            ErrConflict,
		http.StatusUnprocessableEntity: ErrBadRequest,
		http.StatusBadGateway:          ErrServer,
	}
	for code, want := range cases {
		err := error(&APIError{StatusCode: code})
		assert.True(t, errors.Is(err, want), "status %d", code)
	}
}
