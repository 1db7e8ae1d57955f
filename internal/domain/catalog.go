package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Product struct {
	ID              string
	Name            string
	Slug            string
	CategoryID      string
	Description     string
	Ingredients     string
	NutritionalInfo string
	Price           decimal.Decimal
	Available       bool
	Featured        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProductVariant is the purchasable unit (product + size). Its price is
// copied onto order items at purchase time and never recalculated.
type ProductVariant struct {
	ID        string
	ProductID string
	Size      string
	Price     decimal.Decimal
	SKU       string
}
