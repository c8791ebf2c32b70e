// Package clienttest runs an in-memory storefront backend on httptest for
// the transport, store, service and CLI tests.
package clienttest

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/storefront/internal/client/models"
)

type account struct {
	user     models.User
	password string
}

// Server is a fake backend. Its exported knobs may be changed between
// requests; they are read under the server lock.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	// AccessTTL is the lifetime of issued access tokens.
	AccessTTL time.Duration
	// CartDiscount is subtracted from every cart total, so a client that
	// recomputes totals locally gets them wrong.
	CartDiscount decimal.Decimal
	// Down makes every route answer 503.
	Down bool
	// Before, when set, runs at the start of every request, outside the lock.
	Before func(r *http.Request)

	accounts   map[int64]*account
	revoked    map[string]bool
	refreshes  map[string]bool
	products   map[int64]models.Product
	categories map[int64]models.Category
	carts      map[int64][]models.CartLine
	orders     map[int64]models.Order
	favorites  map[int64][]models.Favorite
	reviews    map[int64][]models.Review
	nextID     int64

	hits       map[string]int
	requestIDs []string
	authHeader []string
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		AccessTTL:  15 * time.Minute,
		accounts:   map[int64]*account{},
		revoked:    map[string]bool{},
		refreshes:  map[string]bool{},
		products:   map[int64]models.Product{},
		categories: map[int64]models.Category{},
		carts:      map[int64][]models.CartLine{},
		orders:     map[int64]models.Order{},
		favorites:  map[int64][]models.Favorite{},
		reviews:    map[int64][]models.Review{},
		hits:       map[string]int{},
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.maybeDown)

	r.Post("/login", s.login)
	r.Post("/login/email", s.loginEmail)
	r.Post("/register", s.register)
	r.Post("/refresh", s.refresh)

	r.Get("/products", s.listProducts)
	r.Get("/products/{id}", s.getProduct)
	r.Get("/categories", s.listCategories)
	r.Get("/categories/{id}", s.getCategory)
	r.Get("/categories/{id}/products", s.categoryProducts)
	r.Get("/reviews/{productID}", s.listReviews)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/profile", s.profile)
		r.Put("/users/me", s.updateMe)

		r.Get("/cart", s.getCart)
		r.Post("/cart/add", s.cartAdd)
		r.Post("/cart/remove", s.cartRemove)
		r.Post("/cart/update", s.cartUpdate)
		r.Post("/cart/clear", s.cartClear)

		r.Post("/orders", s.createOrder)
		r.Get("/orders", s.listOrders)
		r.Get("/orders/{id}", s.getOrder)
		r.Put("/orders/{id}", s.updateOrder)

		r.Post("/products", s.createProduct)
		r.Put("/products/{id}", s.updateProduct)
		r.Delete("/products/{id}", s.deleteProduct)
		r.Post("/categories", s.createCategory)
		r.Put("/categories/{id}", s.updateCategory)
		r.Delete("/categories/{id}", s.deleteCategory)

		r.Post("/reviews/{productID}", s.addReview)
		r.Delete("/reviews/{productID}", s.deleteReview)

		r.Get("/favorites", s.listFavorites)
		r.Post("/favorites/{productID}", s.addFavorite)
		r.Delete("/favorites/{productID}", s.removeFavorite)
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		before := s.Before
		s.requestIDs = append(s.requestIDs, r.Header.Get("X-Request-ID"))
		s.authHeader = append(s.authHeader, r.Header.Get("Authorization"))
		s.mu.Unlock()

		if before != nil {
			before(r)
		}

		next.ServeHTTP(w, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		s.mu.Lock()
		s.hits[r.Method+" "+pattern]++
		s.mu.Unlock()
	})
}

func (s *Server) maybeDown(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		down := s.Down
		s.mu.Unlock()
		if down {
			writeError(w, http.StatusServiceUnavailable, "maintenance")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Hits counts served requests by "METHOD /route/{pattern}".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// TotalHits counts every served request.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

// RequestIDs returns the X-Request-ID header of every request, in order.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// AuthHeaders returns the Authorization header of every request, in order.
func (s *Server) AuthHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authHeader...)
}

func (s *Server) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Down = down
}

func (s *Server) SetBefore(fn func(r *http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Before = fn
}

func (s *Server) SetCartDiscount(d decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CartDiscount = d
}

func (s *Server) SetAccessTTL(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AccessTTL = d
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

// AddUser registers an account directly.
func (s *Server) AddUser(username, email, password string, admin bool) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, email, password, admin)
}

func (s *Server) addUserLocked(username, email, password string, admin bool) models.User {
	u := models.User{
		ID:        s.id(),
		Email:     email,
		Username:  username,
		IsActive:  true,
		IsAdmin:   admin,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	s.accounts[u.ID] = &account{user: u, password: password}
	return u
}

// IssueTokens mints a token pair for userID as a login would.
func (s *Server) IssueTokens(userID int64) models.Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(userID)
}

func (s *Server) issueLocked(userID int64) models.Tokens {
	rt := mint(userID, typeRefresh, 24*time.Hour)
	s.refreshes[rt] = true
	return models.Tokens{
		AccessToken:  mint(userID, typeAccess, s.AccessTTL),
		RefreshToken: rt,
		TokenType:    "bearer",
	}
}

// RevokeAccess makes token answer 401 from now on.
func (s *Server) RevokeAccess(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = true
}

// RevokeRefresh makes every outstanding refresh token unusable.
func (s *Server) RevokeRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes = map[string]bool{}
}

func (s *Server) AddCategory(name string) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Category{ID: s.id(), Name: name, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	s.categories[c.ID] = c
	return c
}

// AddProduct creates a product; price is a decimal string such as "9.99".
func (s *Server) AddProduct(name, price string, stock int, categoryID int64) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC().Truncate(time.Second)
	p := models.Product{
		ID:         s.id(),
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: categoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.products[p.ID] = p
	return p
}

// RenameProduct edits a product behind the client's back.
func (s *Server) RenameProduct(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[id]
	p.Name = name
	s.products[id] = p
}

// SeedCart replaces a user's cart lines.
func (s *Server) SeedCart(userID int64, lines map[int64]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = nil
	ids := make([]int64, 0, len(lines))
	for id := range lines {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		s.carts[userID] = append(s.carts[userID], s.newLineLocked(userID, s.products[id], lines[id]))
	}
}

// Cart returns the server-side cart of userID.
func (s *Server) Cart(userID int64) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLocked(userID)
}

func (s *Server) Orders(userID int64) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) newLineLocked(userID int64, p models.Product, qty int) models.CartLine {
	now := time.Now().UTC().Truncate(time.Second)
	return models.CartLine{
		ID:        s.id(),
		ProductID: p.ID,
		Product:   p.Snapshot(),
		Quantity:  qty,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Server) cartLocked(userID int64) models.Cart {
	lines := append([]models.CartLine{}, s.carts[userID]...)
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	if len(lines) > 0 {
		total = total.Sub(s.CartDiscount)
	}
	return models.Cart{Items: lines, Total: total}
}
