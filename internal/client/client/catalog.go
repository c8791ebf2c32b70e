package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/storefront/internal/client/models"
)

func (c *HTTPClient) ListProducts(ctx context.Context, q models.ProductQuery) ([]models.Product, error) {
	query := pageQuery(q.Skip, q.Limit)
	if q.CategoryID > 0 {
		query.Set("category_id", strconv.FormatInt(q.CategoryID, 10))
	}
	var out []models.Product
	err := c.do(ctx, request{method: http.MethodGet, path: "/products", query: query}, &out)
	return out, err
}

func (c *HTTPClient) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	err := c.do(ctx, request{method: http.MethodGet, path: idPath("/products", id)}, &p)
	return p, err
}

func (c *HTTPClient) CreateProduct(ctx context.Context, in models.ProductCreate) (models.Product, error) {
	var p models.Product
	err := c.do(ctx, request{method: http.MethodPost, path: "/products", body: in}, &p)
	return p, err
}

func (c *HTTPClient) UpdateProduct(ctx context.Context, id int64, in models.ProductUpdate) (models.Product, error) {
	var p models.Product
	err := c.do(ctx, request{method: http.MethodPut, path: idPath("/products", id), body: in}, &p)
	return p, err
}

func (c *HTTPClient) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/products", id)}, nil)
}

func (c *HTTPClient) ListCategories(ctx context.Context, skip, limit int) ([]models.Category, error) {
	var out []models.Category
	err := c.do(ctx, request{method: http.MethodGet, path: "/categories", query: pageQuery(skip, limit)}, &out)
	return out, err
}

func (c *HTTPClient) GetCategory(ctx context.Context, id int64) (models.Category, error) {
	var cat models.Category
	err := c.do(ctx, request{method: http.MethodGet, path: idPath("/categories", id)}, &cat)
	return cat, err
}

func (c *HTTPClient) CategoryProducts(ctx context.Context, id int64, skip, limit int) ([]models.Product, error) {
	var out []models.Product
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   idPath("/categories", id) + "/products",
		query:  pageQuery(skip, limit),
	}, &out)
	return out, err
}

func (c *HTTPClient) CreateCategory(ctx context.Context, in models.CategoryCreate) (models.Category, error) {
	var cat models.Category
	err := c.do(ctx, request{method: http.MethodPost, path: "/categories", body: in}, &cat)
	return cat, err
}

func (c *HTTPClient) UpdateCategory(ctx context.Context, id int64, in models.CategoryUpdate) (models.Category, error) {
	var cat models.Category
	err := c.do(ctx, request{method: http.MethodPut, path: idPath("/categories", id), body: in}, &cat)
	return cat, err
}

func (c *HTTPClient) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/categories", id)}, nil)
}

func (c *HTTPClient) Reviews(ctx context.Context, productID int64, skip, limit int) ([]models.Review, error) {
	var out []models.Review
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   idPath("/reviews", productID),
		query:  pageQuery(skip, limit),
	}, &out)
	return out, err
}

func (c *HTTPClient) AddReview(ctx context.Context, in models.ReviewCreate) (models.Review, error) {
	var r models.Review
	err := c.do(ctx, request{method: http.MethodPost, path: idPath("/reviews", in.ProductID), body: in}, &r)
	return r, err
}

// DeleteReview removes the caller's review of productID.
func (c *HTTPClient) DeleteReview(ctx context.Context, productID int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/reviews", productID)}, nil)
}

func (c *HTTPClient) ListFavorites(ctx context.Context) ([]models.Favorite, error) {
	var out []models.Favorite
	err := c.do(ctx, request{method: http.MethodGet, path: "/favorites"}, &out)
	return out, err
}

func (c *HTTPClient) AddFavorite(ctx context.Context, productID int64) (models.Favorite, error) {
	var f models.Favorite
	err := c.do(ctx, request{method: http.MethodPost, path: idPath("/favorites", productID)}, &f)
	return f, err
}

func (c *HTTPClient) RemoveFavorite(ctx context.Context, productID int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/favorites", productID)}, nil)
}

var _ Client = (*HTTPClient)(nil)
