package dto

import "time"

type CreateSupplierRequest struct {
	Name    string  `json:"name"    validate:"required,max=255"`
	Email   string  `json:"email"   validate:"required,email,max=254"`
	Phone   string  `json:"phone"   validate:"required,max=20"`
	Address *string `json:"address"`
}

type UpdateSupplierRequest struct {
	Name    *string `json:"name"    validate:"omitempty,max=255"`
	Email   *string `json:"email"   validate:"omitempty,email,max=254"`
	Phone   *string `json:"phone"   validate:"omitempty,max=20"`
	Address *string `json:"address"`
}

type SupplierFilter struct {
	Search string `form:"search"`
	Cursor string `form:"cursor"`
}

type SupplierResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   *string   `json:"address"`
	ItemCount int64     `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SupplierDetailResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Supplier SupplierResponse `json:"supplier"`
}

type SupplierDeleteResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	DeletedItems int    `json:"deleted_items"`
}
