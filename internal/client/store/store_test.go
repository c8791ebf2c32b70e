package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storefront/internal/client/client"
	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/common"
)

const (
	testWait = 2 * time.Second
	testTick = 5 * time.Millisecond
)

func TestSubscribe_DeliversInMutationOrder(t *testing.T) {
	s, api, _ := newTestStore(t)
	ctx := context.Background()
	api.cart = cartOf("2.00", line(1, 1, "2.00"))

	type got struct {
		ev    Event
		state LoadingState
		authn bool
		cart  bool
	}
	var seen []got
	unsubscribe := s.Subscribe(func(ev Event, snap Snapshot) {
		seen = append(seen, got{ev, snap.Session.State, snap.Session.Authenticated(), snap.Cart.Cart != nil})
	})

	login(t, s)
	unsubscribe()

	require.NotEmpty(t, seen)
	assert.Equal(t, got{EventSessionChanged, Loading, false, false}, seen[0])

	last := seen[len(seen)-1]
	assert.Equal(t, EventSessionChanged, last.ev)
	assert.Equal(t, Ready, last.state)
	assert.True(t, last.authn)
	assert.True(t, last.cart)

	// the cart arrives after the user is known
	userAt, cartAt := -1, -1
	for i, g := range seen {
		if g.authn && userAt < 0 {
			userAt = i
		}
		if g.ev == EventCartChanged && g.cart && cartAt < 0 {
			cartAt = i
		}
	}
	require.GreaterOrEqual(t, userAt, 0)
	require.Greater(t, cartAt, userAt)

	n := len(seen)
	require.NoError(t, s.Logout(ctx))
	assert.Len(t, seen, n, "unsubscribed callbacks must not run")
}

func TestSubscribe_SnapshotsAreIsolated(t *testing.T) {
	s, api, _ := newTestStore(t)
	api.cart = cartOf("2.00", line(1, 1, "2.00"))

	unsubscribe := s.Subscribe(func(_ Event, snap Snapshot) {
		if snap.Session.User != nil {
			snap.Session.User.Username = "mallory"
		}
		if snap.Cart.Cart != nil && len(snap.Cart.Cart.Items) > 0 {
			snap.Cart.Cart.Items[0].Quantity = 99
		}
	})
	defer unsubscribe()

	login(t, s)

	snap := s.Snapshot()
	assert.Equal(t, "alice", snap.Session.User.Username)
	assert.Equal(t, 1, snap.Cart.Cart.Items[0].Quantity)

	snap.Cart.Cart.Items[0].Quantity = 50
	assert.Equal(t, 1, s.Snapshot().Cart.Cart.Items[0].Quantity)
}

func TestSubscribe_CallbackMayCallActions(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	var once sync.Once
	var snapshotsSeen int
	unsubscribe := s.Subscribe(func(ev Event, _ Snapshot) {
		snapshotsSeen++
		_ = s.Snapshot()
		if ev == EventSessionExpired {
			once.Do(func() { _ = s.Logout(ctx) })
		}
	})
	defer unsubscribe()

	login(t, s)

	done := make(chan struct{})
	go func() {
		s.Expire(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(testWait):
		t.Fatal("Expire did not return; subscriber re-entry deadlocked")
	}
	assert.Positive(t, snapshotsSeen)
	assert.False(t, s.Snapshot().Session.Authenticated())
}

func TestLoadingState_NeverStuck(t *testing.T) {
	s, api, _ := newTestStore(t)
	ctx := context.Background()

	api.loginErr = errors.New("boom")
	require.Error(t, s.Login(ctx, models.Credentials{Username: "a", Password: "b"}))
	assert.Equal(t, Ready, s.Snapshot().Session.State)

	api.set(func(f *fakeBackend) { f.loginErr = nil })
	login(t, s)

	api.set(func(f *fakeBackend) { f.cartErr = client.ErrUnavailable })
	require.Error(t, s.AddItem(ctx, 1, 1))
	require.Error(t, s.ClearCart(ctx))
	assert.Equal(t, Ready, s.Snapshot().Session.State)
	assert.Empty(t, s.Snapshot().Cart.Pending)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify("x", nil))

	cases := []struct {
		err  error
		kind Kind
		msg  string
	}{
		{common.ErrorInvalidQuantity, KindValidation, "quantity must be at least 1"},
		{&client.APIError{StatusCode: 401, Detail: "nope"}, KindAuthentication, "nope"},
		{&client.APIError{StatusCode: 404}, KindNotFound, "api error: 404 Not Found"},
		{&client.APIError{StatusCode: 500, Detail: "db down"}, KindRequest, "db down"},
		{errors.Join(client.ErrUnavailable, errors.New("dial tcp: refused")), KindRequest, "server unavailable"},
	}
	for _, tc := range cases {
		err := Classify("op", tc.err)
		var ae *ActionError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, tc.kind, ae.Kind, "%v", tc.err)
		assert.Equal(t, tc.msg, ae.Message)
		assert.ErrorIs(t, err, tc.err)
	}

	first := Classify("inner", common.ErrorEmptyCart)
	assert.Same(t, first, Classify("outer", first))
}
