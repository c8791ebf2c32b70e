package clienttest

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/storefront/internal/client/models"
)

type userKey struct{}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"detail": detail, "status_code": status})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid "+name)
		return 0, false
	}
	return id, true
}

func page(r *http.Request) (skip, limit int) {
	skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	return skip, limit
}

func window[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	end := min(skip+limit, len(items))
	return items[skip:end]
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		uid, err := parse(token, typeAccess)
		s.mu.Lock()
		_, known := s.accounts[uid]
		revoked := s.revoked[token]
		s.mu.Unlock()
		if err != nil || !known || revoked {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, uid)))
	})
}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userKey{}).(int64)
	return id
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	a := s.accounts[userID(r)]
	if a == nil || !a.user.IsAdmin {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return false
	}
	return true
}

// auth

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.user.Username == in.Username && a.password == in.Password {
			writeJSON(w, http.StatusOK, s.issueLocked(a.user.ID))
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Incorrect username or password")
}

func (s *Server) loginEmail(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, in.Email) && a.password == in.Password {
			writeJSON(w, http.StatusOK, s.issueLocked(a.user.ID))
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Incorrect email or password")
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in models.UserCreate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.user.Username == in.Username {
			writeError(w, http.StatusBadRequest, "Username already registered")
			return
		}
		if strings.EqualFold(a.user.Email, in.Email) {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	writeJSON(w, http.StatusOK, s.addUserLocked(in.Username, in.Email, in.Password, false))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, err := parse(in.RefreshToken, typeRefresh)
	if err != nil || !s.refreshes[in.RefreshToken] {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	delete(s.refreshes, in.RefreshToken)
	writeJSON(w, http.StatusOK, s.issueLocked(uid))
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.accounts[userID(r)].user)
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var in models.UserUpdate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[userID(r)]
	if in.Username != nil {
		for _, o := range s.accounts {
			if o != a && o.user.Username == *in.Username {
				writeError(w, http.StatusBadRequest, "Username already taken")
				return
			}
		}
		a.user.Username = *in.Username
	}
	if in.Email != nil {
		a.user.Email = *in.Email
	}
	if in.Password != nil {
		a.password = *in.Password
	}
	writeJSON(w, http.StatusOK, a.user)
}

// cart

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.cartLocked(userID(r)))
}

func (s *Server) cartAdd(w http.ResponseWriter, r *http.Request) {
	var in models.CartItemCreate
	if !decode(w, r, &in) {
		return
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "Quantity must be positive")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(r)
	p, ok := s.products[in.ProductID]
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	lines := s.carts[uid]
	for i := range lines {
		if lines[i].ProductID == in.ProductID {
			lines[i].Quantity += in.Quantity
			lines[i].UpdatedAt = time.Now().UTC().Truncate(time.Second)
			writeJSON(w, http.StatusOK, s.cartLocked(uid))
			return
		}
	}
	s.carts[uid] = append(lines, s.newLineLocked(uid, p, in.Quantity))
	writeJSON(w, http.StatusOK, s.cartLocked(uid))
}

func (s *Server) cartRemove(w http.ResponseWriter, r *http.Request) {
	var in models.CartItemRemove
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(r)
	lines := s.carts[uid]
	for i := range lines {
		if lines[i].ProductID == in.ProductID {
			s.carts[uid] = append(lines[:i:i], lines[i+1:]...)
			writeJSON(w, http.StatusOK, s.cartLocked(uid))
			return
		}
	}
	writeError(w, http.StatusNotFound, "Item not found in cart")
}

func (s *Server) cartUpdate(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.ParseInt(r.URL.Query().Get("product_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "product_id query parameter required")
		return
	}
	var in models.CartItemUpdate
	if !decode(w, r, &in) {
		return
	}
	if in.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "Quantity must be positive")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(r)
	lines := s.carts[uid]
	for i := range lines {
		if lines[i].ProductID == pid {
			lines[i].Quantity = in.Quantity
			lines[i].UpdatedAt = time.Now().UTC().Truncate(time.Second)
			writeJSON(w, http.StatusOK, s.cartLocked(uid))
			return
		}
	}
	writeError(w, http.StatusNotFound, "Item not found in cart")
}

func (s *Server) cartClear(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(r)
	delete(s.carts, uid)
	writeJSON(w, http.StatusOK, s.cartLocked(uid))
}

// orders

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(r)
	cart := s.cartLocked(uid)
	if len(cart.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Cart is empty")
		return
	}
	now := time.Now().UTC().Truncate(time.Second)
	o := models.Order{ID: s.id(), UserID: uid, Status: models.OrderStatusPending, Total: cart.Total, CreatedAt: now, UpdatedAt: now}
	for _, l := range cart.Items {
		o.Items = append(o.Items, models.OrderItem{
			ID:        s.id(),
			ProductID: l.ProductID,
			Product:   l.Product,
			Quantity:  l.Quantity,
			Price:     l.Product.Price,
			OrderID:   o.ID,
		})
	}
	s.orders[o.ID] = o
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	skip, limit := page(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(r)
	admin := s.accounts[uid].user.IsAdmin
	out := []models.Order{}
	for _, o := range s.orders {
		if admin || o.UserID == uid {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, window(out, skip, limit))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, found := s.orders[id]
	if !found || (o.UserID != userID(r) && !s.accounts[userID(r)].user.IsAdmin) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in models.OrderUpdate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireAdmin(w, r) {
		return
	}
	o, found := s.orders[id]
	if !found {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if _, err := models.ParseOrderStatus(string(in.Status)); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	o.Status = in.Status
	o.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	s.orders[id] = o
	writeJSON(w, http.StatusOK, o)
}

// catalog

func (s *Server) sortedProducts(categoryID int64) []models.Product {
	out := []models.Product{}
	for _, p := range s.products {
		if categoryID == 0 || p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	skip, limit := page(r)
	cid, _ := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, window(s.sortedProducts(cid), skip, limit))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, found := s.products[id]
	if !found {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if c, ok := s.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductCreate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireAdmin(w, r) {
		return
	}
	now := time.Now().UTC().Truncate(time.Second)
	p := models.Product{
		ID: s.id(), Name: in.Name, Description: in.Description, Price: in.Price,
		ImageURL: in.ImageURL, Stock: in.Stock, CategoryID: in.CategoryID,
		CreatedAt: now, UpdatedAt: now,
	}
	s.products[p.ID] = p
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in models.ProductUpdate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireAdmin(w, r) {
		return
	}
	p, found := s.products[id]
	if !found {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}
	p.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	s.products[id] = p
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireAdmin(w, r) {
		return
	}
	if _, found := s.products[id]; !found {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	delete(s.products, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	skip, limit := page(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Category{}
	for _, c := range s.categories {
		c.ProductsCount = len(s.sortedProducts(c.ID))
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, window(out, skip, limit))
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, found := s.categories[id]
	if !found {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) categoryProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	skip, limit := page(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.categories[id]; !found {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, window(s.sortedProducts(id), skip, limit))
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryCreate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireAdmin(w, r) {
		return
	}
	c := models.Category{ID: s.id(), Name: in.Name, Description: in.Description, ImageURL: in.ImageURL, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	s.categories[c.ID] = c
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in models.CategoryUpdate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireAdmin(w, r) {
		return
	}
	c, found := s.categories[id]
	if !found {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.ImageURL != nil {
		c.ImageURL = *in.ImageURL
	}
	s.categories[id] = c
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireAdmin(w, r) {
		return
	}
	if _, found := s.categories[id]; !found {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	delete(s.categories, id)
	w.WriteHeader(http.StatusNoContent)
}

// reviews and favorites

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	pid, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	skip, limit := page(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, window(append([]models.Review{}, s.reviews[pid]...), skip, limit))
}

func (s *Server) addReview(w http.ResponseWriter, r *http.Request) {
	pid, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	var in models.ReviewCreate
	if !decode(w, r, &in) {
		return
	}
	if in.Rating < 1 || in.Rating > 5 {
		writeError(w, http.StatusUnprocessableEntity, "Rating must be between 1 and 5")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.products[pid]; !found {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	uid := userID(r)
	for _, rv := range s.reviews[pid] {
		if rv.UserID == uid {
			writeError(w, http.StatusBadRequest, "You have already reviewed this product")
			return
		}
	}
	u := s.accounts[uid].user
	rv := models.Review{ID: s.id(), ProductID: pid, UserID: uid, User: &u, Rating: in.Rating, Comment: in.Comment, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	s.reviews[pid] = append(s.reviews[pid], rv)
	writeJSON(w, http.StatusOK, rv)
}

func (s *Server) deleteReview(w http.ResponseWriter, r *http.Request) {
	pid, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(r)
	list := s.reviews[pid]
	for i := range list {
		if list[i].UserID == uid {
			s.reviews[pid] = append(list[:i:i], list[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Review not found")
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.Favorite{}, s.favorites[userID(r)]...))
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	pid, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, found := s.products[pid]
	if !found {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	uid := userID(r)
	for _, f := range s.favorites[uid] {
		if f.ProductID == pid {
			writeError(w, http.StatusConflict, "Product already in favorites")
			return
		}
	}
	f := models.Favorite{ID: s.id(), ProductID: pid, Product: p.Snapshot(), UserID: uid, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	s.favorites[uid] = append(s.favorites[uid], f)
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	pid, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(r)
	list := s.favorites[uid]
	for i := range list {
		if list[i].ProductID == pid {
			s.favorites[uid] = append(list[:i:i], list[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Favorite not found")
}
