package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storefront/internal/client/client"
	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/repositories/catalog"
	"github.com/dmitrijs2005/storefront/internal/client/store"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

// DefaultCatalogTTL is how long a cached catalog document counts as fresh.
const DefaultCatalogTTL = 5 * time.Minute

// CatalogService reads products, categories and reviews, and runs the admin
// catalog mutations.
//
// Product and category reads go through the local catalog cache. Reviews are
// always read from the backend.
type CatalogService struct {
	api     client.CatalogAPI
	session SessionReader
	cache   *catalogCache
	log     logging.Logger
}

type CatalogOption func(*CatalogService)

// WithCacheTTL sets the freshness window. Zero disables fresh hits; the
// cache is then used only as an offline fallback.
func WithCacheTTL(d time.Duration) CatalogOption {
	return func(s *CatalogService) { s.cache.ttl = d }
}

func WithCatalogLogger(l logging.Logger) CatalogOption {
	return func(s *CatalogService) { s.log = l }
}

func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(s *CatalogService) { s.cache.now = now }
}

// NewCatalogService builds a CatalogService. cache may be nil, in which case
// every read goes to the backend.
func NewCatalogService(api client.CatalogAPI, cache catalog.Repository, session SessionReader, opts ...CatalogOption) *CatalogService {
	s := &CatalogService{
		api:     api,
		session: session,
		cache:   &catalogCache{repo: cache, ttl: DefaultCatalogTTL, now: time.Now},
		log:     logging.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("component", "catalog")
	s.cache.log = s.log
	return s
}

func productKey(id int64) string  { return fmt.Sprintf("product:%d", id) }
func categoryKey(id int64) string { return fmt.Sprintf("category:%d", id) }

const (
	productListPrefix  = "products?"
	categoryListPrefix = "categories?"
	categoryPrefix     = "category:"
)

func (s *CatalogService) ListProducts(ctx context.Context, q models.ProductQuery) ([]models.Product, error) {
	key := fmt.Sprintf("%sskip=%d&limit=%d&category=%d", productListPrefix, q.Skip, q.Limit, q.CategoryID)
	out, err := readThrough(ctx, s.cache, key, func(ctx context.Context) ([]models.Product, error) {
		return s.api.ListProducts(ctx, q)
	})
	return out, store.Classify("list_products", err)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	const op = "get_product"
	if err := requireID(id); err != nil {
		return models.Product{}, store.Classify(op, err)
	}
	p, err := readThrough(ctx, s.cache, productKey(id), func(ctx context.Context) (models.Product, error) {
		return s.api.GetProduct(ctx, id)
	})
	return p, store.Classify(op, err)
}

func (s *CatalogService) ListCategories(ctx context.Context, skip, limit int) ([]models.Category, error) {
	key := fmt.Sprintf("%sskip=%d&limit=%d", categoryListPrefix, skip, limit)
	out, err := readThrough(ctx, s.cache, key, func(ctx context.Context) ([]models.Category, error) {
		return s.api.ListCategories(ctx, skip, limit)
	})
	return out, store.Classify("list_categories", err)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (models.Category, error) {
	const op = "get_category"
	if err := requireID(id); err != nil {
		return models.Category{}, store.Classify(op, err)
	}
	c, err := readThrough(ctx, s.cache, categoryKey(id), func(ctx context.Context) (models.Category, error) {
		return s.api.GetCategory(ctx, id)
	})
	return c, store.Classify(op, err)
}

func (s *CatalogService) ProductsByCategory(ctx context.Context, id int64, skip, limit int) ([]models.Product, error) {
	const op = "products_by_category"
	if err := requireID(id); err != nil {
		return nil, store.Classify(op, err)
	}
	key := fmt.Sprintf("%s/products?skip=%d&limit=%d", categoryKey(id), skip, limit)
	out, err := readThrough(ctx, s.cache, key, func(ctx context.Context) ([]models.Product, error) {
		return s.api.CategoryProducts(ctx, id, skip, limit)
	})
	return out, store.Classify(op, err)
}

func (s *CatalogService) Reviews(ctx context.Context, productID int64, skip, limit int) ([]models.Review, error) {
	const op = "reviews"
	if err := requireID(productID); err != nil {
		return nil, store.Classify(op, err)
	}
	out, err := s.api.Reviews(ctx, productID, skip, limit)
	return out, store.Classify(op, err)
}

// AddReview posts the signed-in user's review. Ratings run from 1 to 5.
func (s *CatalogService) AddReview(ctx context.Context, r models.ReviewCreate) (models.Review, error) {
	const op = "add_review"
	if err := requireUser(s.session); err != nil {
		return models.Review{}, store.Classify(op, err)
	}
	if err := requireID(r.ProductID); err != nil {
		return models.Review{}, store.Classify(op, err)
	}
	if r.Rating < 1 || r.Rating > 5 {
		return models.Review{}, store.Classify(op, common.ErrorInvalidRating)
	}
	out, err := s.api.AddReview(ctx, r)
	return out, store.Classify(op, err)
}

func (s *CatalogService) DeleteReview(ctx context.Context, productID int64) error {
	const op = "delete_review"
	if err := requireUser(s.session); err != nil {
		return store.Classify(op, err)
	}
	if err := requireID(productID); err != nil {
		return store.Classify(op, err)
	}
	return store.Classify(op, s.api.DeleteReview(ctx, productID))
}

// PruneCache drops cache entries fetched more than maxAge ago.
func (s *CatalogService) PruneCache(ctx context.Context, maxAge time.Duration) (int64, error) {
	if s.cache.repo == nil {
		return 0, nil
	}
	n, err := s.cache.repo.PurgeOlderThan(ctx, s.cache.now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("prune catalog cache: %w", err)
	}
	if n > 0 {
		s.log.Info(ctx, "catalog cache pruned", "entries", n)
	}
	return n, nil
}
