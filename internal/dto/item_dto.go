package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateItemRequest uses pointers so "missing" and "zero" stay distinguishable.
// Required fields are checked by the service so all of them are reported at once.
type CreateItemRequest struct {
	SKU        string           `json:"sku"         validate:"max=50"`
	ItemName   string           `json:"item_name"   validate:"max=255"`
	Quantity   *int             `json:"quantity"`
	Category   *string          `json:"category"    validate:"omitempty,max=100"`
	Price      *decimal.Decimal `json:"price"`
	SupplierID *string          `json:"supplier_id"`
}

// UpdateItemRequest is a partial update: nil fields are left untouched.
// SupplierID "" clears the supplier.
type UpdateItemRequest struct {
	SKU        *string          `json:"sku"         validate:"omitempty,max=50"`
	ItemName   *string          `json:"item_name"   validate:"omitempty,max=255"`
	Quantity   *int             `json:"quantity"`
	Category   *string          `json:"category"    validate:"omitempty,max=100"`
	Price      *decimal.Decimal `json:"price"`
	SupplierID *string          `json:"supplier_id"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ItemFilter struct {
	Category string `form:"category"`
	Supplier string `form:"supplier"`
	Search   string `form:"search"`
	Cursor   string `form:"cursor"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemResponse struct {
	ID           string    `json:"id"`
	SKU          string    `json:"sku"`
	ItemName     string    `json:"item_name"`
	Quantity     int       `json:"quantity"`
	Category     *string   `json:"category"`
	Price        string    `json:"price"`
	SupplierID   *string   `json:"supplier_id"`
	SupplierName *string   `json:"supplier_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ItemDetailResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Item    ItemResponse `json:"item"`
}
