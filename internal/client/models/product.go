package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	ProductsCount int       `json:"products_count,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       int             `json:"stock"`
	CategoryID  int64           `json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Snapshot copies the product fields a cart or order line keeps.
func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
	}
}

// ProductSnapshot is the denormalized product embedded in cart and order
// lines. It is held by value and is not re-synced with later product edits.
type ProductSnapshot struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       int             `json:"stock"`
	CategoryID  int64           `json:"category_id"`
}

type ProductCreate struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       int             `json:"stock"`
	CategoryID  int64           `json:"category_id"`
}

type ProductUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	CategoryID  *int64           `json:"category_id,omitempty"`
}

type CategoryCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type CategoryUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// ProductQuery narrows a product listing. Zero Limit means the backend default.
type ProductQuery struct {
	Skip       int
	Limit      int
	CategoryID int64
}

type Review struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	UserID    int64     `json:"user_id"`
	User      *User     `json:"user,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type ReviewCreate struct {
	ProductID int64  `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type Favorite struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Product   ProductSnapshot `json:"product"`
	UserID    int64           `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
}
