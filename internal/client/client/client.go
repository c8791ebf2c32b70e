package client

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/client/models"
)

// AuthAPI covers authentication and the current user's profile.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (models.Tokens, error)
	LoginEmail(ctx context.Context, email, password string) (models.Tokens, error)
	Register(ctx context.Context, u models.UserCreate) (models.User, error)
	Refresh(ctx context.Context, refreshToken string) (models.Tokens, error)
	Profile(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, u models.UserUpdate) (models.User, error)
}

// CartAPI mutations all answer with the full server cart.
type CartAPI interface {
	GetCart(ctx context.Context) (models.Cart, error)
	AddToCart(ctx context.Context, productID int64, quantity int) (models.Cart, error)
	RemoveFromCart(ctx context.Context, productID int64) (models.Cart, error)
	UpdateCartItem(ctx context.Context, productID int64, quantity int) (models.Cart, error)
	ClearCart(ctx context.Context) (models.Cart, error)
}

type OrdersAPI interface {
	CreateOrder(ctx context.Context) (models.Order, error)
	ListOrders(ctx context.Context, skip, limit int) ([]models.Order, error)
	GetOrder(ctx context.Context, id int64) (models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (models.Order, error)
}

type CatalogAPI interface {
	ListProducts(ctx context.Context, q models.ProductQuery) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	CreateProduct(ctx context.Context, p models.ProductCreate) (models.Product, error)
	UpdateProduct(ctx context.Context, id int64, p models.ProductUpdate) (models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListCategories(ctx context.Context, skip, limit int) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (models.Category, error)
	CategoryProducts(ctx context.Context, id int64, skip, limit int) ([]models.Product, error)
	CreateCategory(ctx context.Context, c models.CategoryCreate) (models.Category, error)
	UpdateCategory(ctx context.Context, id int64, c models.CategoryUpdate) (models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	Reviews(ctx context.Context, productID int64, skip, limit int) ([]models.Review, error)
	AddReview(ctx context.Context, r models.ReviewCreate) (models.Review, error)
	DeleteReview(ctx context.Context, productID int64) error
}

type FavoritesAPI interface {
	ListFavorites(ctx context.Context) ([]models.Favorite, error)
	AddFavorite(ctx context.Context, productID int64) (models.Favorite, error)
	RemoveFavorite(ctx context.Context, productID int64) error
}

// Client is the whole storefront REST surface.
type Client interface {
	AuthAPI
	CartAPI
	OrdersAPI
	CatalogAPI
	FavoritesAPI
}
