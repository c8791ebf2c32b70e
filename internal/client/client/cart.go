package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/storefront/internal/client/models"
)

func (c *HTTPClient) cartCall(ctx context.Context, r request) (models.Cart, error) {
	var cart models.Cart
	if err := c.do(ctx, r, &cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

func (c *HTTPClient) GetCart(ctx context.Context) (models.Cart, error) {
	return c.cartCall(ctx, request{method: http.MethodGet, path: "/cart"})
}

func (c *HTTPClient) AddToCart(ctx context.Context, productID int64, quantity int) (models.Cart, error) {
	return c.cartCall(ctx, request{
		method: http.MethodPost,
		path:   "/cart/add",
		body:   models.CartItemCreate{ProductID: productID, Quantity: quantity},
	})
}

func (c *HTTPClient) RemoveFromCart(ctx context.Context, productID int64) (models.Cart, error) {
	return c.cartCall(ctx, request{
		method: http.MethodPost,
		path:   "/cart/remove",
		body:   models.CartItemRemove{ProductID: productID},
	})
}

func (c *HTTPClient) UpdateCartItem(ctx context.Context, productID int64, quantity int) (models.Cart, error) {
	return c.cartCall(ctx, request{
		method: http.MethodPost,
		path:   "/cart/update",
		query:  url.Values{"product_id": {strconv.FormatInt(productID, 10)}},
		body:   models.CartItemUpdate{Quantity: quantity},
	})
}

func (c *HTTPClient) ClearCart(ctx context.Context) (models.Cart, error) {
	return c.cartCall(ctx, request{method: http.MethodPost, path: "/cart/clear"})
}
