package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/storefront/internal/client/models"
)

func pageQuery(skip, limit int) url.Values {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}

func (c *HTTPClient) CreateOrder(ctx context.Context) (models.Order, error) {
	var o models.Order
	err := c.do(ctx, request{method: http.MethodPost, path: "/orders"}, &o)
	return o, err
}

func (c *HTTPClient) ListOrders(ctx context.Context, skip, limit int) ([]models.Order, error) {
	var out []models.Order
	err := c.do(ctx, request{method: http.MethodGet, path: "/orders", query: pageQuery(skip, limit)}, &out)
	return out, err
}

func (c *HTTPClient) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	var o models.Order
	err := c.do(ctx, request{method: http.MethodGet, path: idPath("/orders", id)}, &o)
	return o, err
}

func (c *HTTPClient) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (models.Order, error) {
	var o models.Order
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   idPath("/orders", id),
		body:   models.OrderUpdate{Status: status},
	}, &o)
	return o, err
}
