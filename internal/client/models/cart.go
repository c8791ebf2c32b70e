package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the server's view of the user's cart. Total is taken verbatim from
// the response and never recomputed on the client.
type Cart struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// CartLine is one product/quantity pairing. Quantity is at least 1 for every
// line the server returns.
type CartLine struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Product   ProductSnapshot `json:"product"`
	Quantity  int             `json:"quantity"`
	UserID    int64           `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := &Cart{Total: c.Total}
	if c.Items != nil {
		out.Items = make([]CartLine, len(c.Items))
		copy(out.Items, c.Items)
	}
	return out
}

// Line returns the line for productID.
func (c *Cart) Line(productID int64) (CartLine, bool) {
	if c == nil {
		return CartLine{}, false
	}
	for _, l := range c.Items {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

// Count is the total quantity across all lines.
func (c *Cart) Count() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

// CartItemCreate is the add-to-cart payload.
type CartItemCreate struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CartItemRemove is the remove-from-cart payload.
type CartItemRemove struct {
	ProductID int64 `json:"product_id"`
}

// CartItemUpdate is the update-quantity payload; the product is addressed by
// the product_id query parameter.
type CartItemUpdate struct {
	Quantity int `json:"quantity"`
}
