package store

import (
	"context"
	"net/http"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/storefront/internal/client/client"
	"github.com/dmitrijs2005/storefront/internal/client/models"
)

// fakeBackend is a hand-written Backend that records calls.
type fakeBackend struct {
	mu sync.Mutex

	loginTokens    models.Tokens
	loginErr       error
	lastLoginUser  string
	lastLoginEmail string
	loginCalls     int
	emailCalls     int

	registerErr  error
	lastRegister models.UserCreate

	profile      models.User
	profileErr   error
	profileCalls int
	// profileFn, when set, answers Profile instead of profile/profileErr.
	profileFn func(ctx context.Context) (models.User, error)

	updateUser models.User
	updateErr  error
	lastUpdate models.UserUpdate

	refreshTokens models.Tokens
	refreshErr    error
	refreshCalls  int

	cart    models.Cart
	cartErr error
	// cartFn, when set, answers every cart call instead of cart/cartErr.
	cartFn    func(ctx context.Context, op string, productID int64, qty int) (models.Cart, error)
	cartCalls map[string]int

	order      models.Order
	orderErr   error
	orderCalls int
	clearErr   error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		loginTokens: models.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"},
		profile:     models.User{ID: 1, Username: "alice", Email: "alice@example.com", IsActive: true},
		cartCalls:   map[string]int{},
	}
}

func (f *fakeBackend) Login(_ context.Context, username, _ string) (models.Tokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	f.lastLoginUser = username
	return f.loginTokens, f.loginErr
}

func (f *fakeBackend) LoginEmail(_ context.Context, email, _ string) (models.Tokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailCalls++
	f.lastLoginEmail = email
	return f.loginTokens, f.loginErr
}

func (f *fakeBackend) Register(_ context.Context, u models.UserCreate) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRegister = u
	if f.registerErr != nil {
		return models.User{}, f.registerErr
	}
	return models.User{ID: 99, Username: u.Username, Email: u.Email}, nil
}

func (f *fakeBackend) Refresh(context.Context, string) (models.Tokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	return f.refreshTokens, f.refreshErr
}

func (f *fakeBackend) Profile(ctx context.Context) (models.User, error) {
	f.mu.Lock()
	f.profileCalls++
	fn := f.profileFn
	user, err := f.profile, f.profileErr
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return user, err
}

func (f *fakeBackend) UpdateProfile(_ context.Context, u models.UserUpdate) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdate = u
	return f.updateUser, f.updateErr
}

func (f *fakeBackend) cartOp(ctx context.Context, op string, productID int64, qty int) (models.Cart, error) {
	f.mu.Lock()
	f.cartCalls[op]++
	fn := f.cartFn
	cart, err := f.cart, f.cartErr
	if op == "clear" && f.clearErr != nil {
		err = f.clearErr
	}
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, op, productID, qty)
	}
	return *cart.Clone(), err
}

func (f *fakeBackend) GetCart(ctx context.Context) (models.Cart, error) {
	return f.cartOp(ctx, "get", 0, 0)
}

func (f *fakeBackend) AddToCart(ctx context.Context, productID int64, qty int) (models.Cart, error) {
	return f.cartOp(ctx, "add", productID, qty)
}

func (f *fakeBackend) RemoveFromCart(ctx context.Context, productID int64) (models.Cart, error) {
	return f.cartOp(ctx, "remove", productID, 0)
}

func (f *fakeBackend) UpdateCartItem(ctx context.Context, productID int64, qty int) (models.Cart, error) {
	return f.cartOp(ctx, "update", productID, qty)
}

func (f *fakeBackend) ClearCart(ctx context.Context) (models.Cart, error) {
	return f.cartOp(ctx, "clear", 0, 0)
}

func (f *fakeBackend) CreateOrder(context.Context) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderCalls++
	return f.order, f.orderErr
}

func (f *fakeBackend) calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cartCalls[op]
}

func (f *fakeBackend) set(fn func(f *fakeBackend)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

var errUnauthorized = &client.APIError{StatusCode: http.StatusUnauthorized, Detail: "Could not validate credentials"}

func line(productID int64, qty int, price string) models.CartLine {
	return models.CartLine{
		ID:        productID * 10,
		ProductID: productID,
		Quantity:  qty,
		Product:   models.ProductSnapshot{ID: productID, Name: "product", Price: decimal.RequireFromString(price)},
	}
}

func cartOf(total string, lines ...models.CartLine) models.Cart {
	if lines == nil {
		lines = []models.CartLine{}
	}
	return models.Cart{Items: lines, Total: decimal.RequireFromString(total)}
}
