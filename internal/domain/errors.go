package domain

import "errors"

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrVariantNotFound     = errors.New("product variant not found")
	ErrBatchNotFound       = errors.New("batch not found")
	ErrInventoryNotFound   = errors.New("inventory item not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrNoItems             = errors.New("order requires at least one item")
	ErrSKUConflict         = errors.New("sku already exists")
	ErrInventoryConflict   = errors.New("inventory item already exists for variant and batch")
	ErrSlugExhausted       = errors.New("could not generate a unique slug")
	ErrOrderNotCancellable = errors.New("only pending or processing orders can be cancelled")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrUnknownStatus       = errors.New("invalid status")
	ErrInvalidPayMethod    = errors.New("invalid payment method")
	ErrInvalidID           = errors.New("invalid id")
)
