package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	CategoryID   uuid.NullUUID   `json:"category_id" db:"category_id"`
	CategoryName *string         `json:"category_name" db:"category_name"`
	Description  string          `json:"description" db:"description"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Stock        int             `json:"stock" db:"stock"`
	ImageURL     *string         `json:"image_url" db:"image_url"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// Category represents a product category
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ProductFilter narrows a catalog listing
type ProductFilter struct {
	Query    string
	Category string
	Limit    int
	Offset   int
}
