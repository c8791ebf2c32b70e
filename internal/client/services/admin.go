package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/store"
	"github.com/dmitrijs2005/storefront/internal/common"
)

// Admin catalog mutations. Each one is rejected before any request unless the
// signed-in user is an admin, and a successful one invalidates the cached
// documents it can have changed.

func validProductFields(name *string, price *decimal.Decimal) error {
	if name != nil && strings.TrimSpace(*name) == "" {
		return common.ErrorMissingName
	}
	if price != nil && price.IsNegative() {
		return common.ErrorNegativePrice
	}
	return nil
}

func validName(name *string) error {
	if name != nil && strings.TrimSpace(*name) == "" {
		return common.ErrorMissingName
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in models.ProductCreate) (models.Product, error) {
	const op = "create_product"
	if err := requireAdmin(s.session); err != nil {
		return models.Product{}, store.Classify(op, err)
	}
	if err := validProductFields(&in.Name, &in.Price); err != nil {
		return models.Product{}, store.Classify(op, err)
	}
	p, err := s.api.CreateProduct(ctx, in)
	if err != nil {
		return models.Product{}, store.Classify(op, err)
	}
	s.productChanged(ctx, p.ID)
	s.log.Info(ctx, "product created", "product_id", p.ID)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, in models.ProductUpdate) (models.Product, error) {
	const op = "update_product"
	if err := requireAdmin(s.session); err != nil {
		return models.Product{}, store.Classify(op, err)
	}
	if err := requireID(id); err != nil {
		return models.Product{}, store.Classify(op, err)
	}
	if err := validProductFields(in.Name, in.Price); err != nil {
		return models.Product{}, store.Classify(op, err)
	}
	p, err := s.api.UpdateProduct(ctx, id, in)
	if err != nil {
		return models.Product{}, store.Classify(op, err)
	}
	s.productChanged(ctx, id)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	const op = "delete_product"
	if err := requireAdmin(s.session); err != nil {
		return store.Classify(op, err)
	}
	if err := requireID(id); err != nil {
		return store.Classify(op, err)
	}
	if err := s.api.DeleteProduct(ctx, id); err != nil {
		return store.Classify(op, err)
	}
	s.productChanged(ctx, id)
	s.log.Info(ctx, "product deleted", "product_id", id)
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in models.CategoryCreate) (models.Category, error) {
	const op = "create_category"
	if err := requireAdmin(s.session); err != nil {
		return models.Category{}, store.Classify(op, err)
	}
	if err := validName(&in.Name); err != nil {
		return models.Category{}, store.Classify(op, err)
	}
	c, err := s.api.CreateCategory(ctx, in)
	if err != nil {
		return models.Category{}, store.Classify(op, err)
	}
	s.cache.evictPrefix(ctx, categoryListPrefix)
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, in models.CategoryUpdate) (models.Category, error) {
	const op = "update_category"
	if err := requireAdmin(s.session); err != nil {
		return models.Category{}, store.Classify(op, err)
	}
	if err := requireID(id); err != nil {
		return models.Category{}, store.Classify(op, err)
	}
	if err := validName(in.Name); err != nil {
		return models.Category{}, store.Classify(op, err)
	}
	c, err := s.api.UpdateCategory(ctx, id, in)
	if err != nil {
		return models.Category{}, store.Classify(op, err)
	}
	s.categoryChanged(ctx)
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	const op = "delete_category"
	if err := requireAdmin(s.session); err != nil {
		return store.Classify(op, err)
	}
	if err := requireID(id); err != nil {
		return store.Classify(op, err)
	}
	if err := s.api.DeleteCategory(ctx, id); err != nil {
		return store.Classify(op, err)
	}
	s.categoryChanged(ctx)
	s.log.Info(ctx, "category deleted", "category_id", id)
	return nil
}

// productChanged drops the product itself and every listing or category
// document (product counts) it can appear in.
func (s *CatalogService) productChanged(ctx context.Context, id int64) {
	s.cache.evict(ctx, productKey(id))
	s.cache.evictPrefix(ctx, productListPrefix, categoryListPrefix, categoryPrefix)
}

// categoryChanged drops everything: products embed their category.
func (s *CatalogService) categoryChanged(ctx context.Context) {
	s.cache.evictPrefix(ctx, "")
}
