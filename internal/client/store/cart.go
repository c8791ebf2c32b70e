package store

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/common"
)

// IsPending reports whether a cart request for productID is in flight.
func (s *Store) IsPending(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[productID] > 0
}

// FetchCart replaces the cart with the server's. It does nothing for an
// anonymous session.
func (s *Store) FetchCart(ctx context.Context) error {
	s.mu.Lock()
	anonymous := s.user == nil
	s.mu.Unlock()
	if anonymous {
		return nil
	}
	return s.cartCall(ctx, "fetch_cart", 0, s.api.GetCart)
}

// AddItem adds quantity units of productID.
func (s *Store) AddItem(ctx context.Context, productID int64, quantity int) error {
	const op = "add_item"
	if quantity < 1 {
		return invalid(op, common.ErrorInvalidQuantity)
	}
	return s.cartCall(ctx, op, productID, func(ctx context.Context) (models.Cart, error) {
		return s.api.AddToCart(ctx, productID, quantity)
	})
}

func (s *Store) RemoveItem(ctx context.Context, productID int64) error {
	return s.cartCall(ctx, "remove_item", productID, func(ctx context.Context) (models.Cart, error) {
		return s.api.RemoveFromCart(ctx, productID)
	})
}

// UpdateQuantity sets the quantity of productID. Quantities below 1 are
// rejected before any request; use RemoveItem to drop a line.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	const op = "update_quantity"
	if quantity < 1 {
		return invalid(op, common.ErrorInvalidQuantity)
	}
	return s.cartCall(ctx, op, productID, func(ctx context.Context) (models.Cart, error) {
		return s.api.UpdateCartItem(ctx, productID, quantity)
	})
}

// Decrement lowers the quantity of productID by one, removing the line when
// it would reach zero.
func (s *Store) Decrement(ctx context.Context, productID int64) error {
	const op = "decrement"

	s.mu.Lock()
	anonymous := s.user == nil
	line, ok := s.cart.Line(productID)
	s.mu.Unlock()

	switch {
	case anonymous:
		return invalid(op, common.ErrorNotAuthenticated)
	case !ok:
		return invalid(op, common.ErrorNotFound)
	case line.Quantity <= 1:
		return s.RemoveItem(ctx, productID)
	default:
		return s.UpdateQuantity(ctx, productID, line.Quantity-1)
	}
}

// ClearCart empties the cart on the server and takes the server's answer as
// the new cart.
func (s *Store) ClearCart(ctx context.Context) error {
	return s.cartCall(ctx, "clear_cart", 0, s.api.ClearCart)
}

// Checkout places an order for the current cart and then clears it. When the
// order succeeds but the clear fails, the order is returned with the clear
// error.
func (s *Store) Checkout(ctx context.Context) (models.Order, error) {
	const op = "checkout"

	s.mu.Lock()
	anonymous := s.user == nil
	empty := s.cart == nil || len(s.cart.Items) == 0
	s.mu.Unlock()

	switch {
	case anonymous:
		return models.Order{}, invalid(op, common.ErrorNotAuthenticated)
	case empty:
		return models.Order{}, invalid(op, common.ErrorEmptyCart)
	}

	s.begin()
	order, err := s.api.CreateOrder(ctx)
	s.end()
	if err != nil {
		ae := Classify(op, err)
		s.mu.Lock()
		s.cartErr = ae.Error()
		s.dirty |= dirtyCart
		s.unlock()
		return models.Order{}, ae
	}

	s.log.Info(ctx, "order placed", "order_id", order.ID, "total", order.Total.String())

	if err := s.ClearCart(ctx); err != nil {
		s.log.Warn(ctx, "cart clear after checkout failed", "order_id", order.ID, "err", err)
		return order, err
	}
	return order, nil
}

// cartCall runs one cart request and applies its response. productID, when
// non-zero, is marked pending for the duration.
func (s *Store) cartCall(ctx context.Context, op string, productID int64, call func(context.Context) (models.Cart, error)) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return invalid(op, common.ErrorNotAuthenticated)
	}
	epoch := s.epoch
	if productID != 0 {
		s.pending[productID]++
		s.dirty |= dirtyCart
	}
	s.beginLocked()
	s.unlock()

	cart, err := call(ctx)

	s.mu.Lock()
	defer s.unlock()

	s.endLocked()
	if productID != 0 {
		if s.pending[productID]--; s.pending[productID] <= 0 {
			delete(s.pending, productID)
		}
		s.dirty |= dirtyCart
	}

	if err != nil {
		ae := Classify(op, err)
		if epoch == s.epoch {
			s.cartErr = ae.Error()
			s.dirty |= dirtyCart
		}
		s.log.Warn(ctx, "cart request failed", "op", op, "err", err)
		return ae
	}

	if epoch != s.epoch {
		s.log.Debug(ctx, "dropping cart response from a previous session", "op", op)
		return nil
	}

	s.cart = (&cart).Clone()
	if s.cart.Items == nil {
		s.cart.Items = []models.CartLine{}
	}
	s.cartErr = ""
	s.dirty |= dirtyCart
	return nil
}
