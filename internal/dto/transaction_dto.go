package dto

import "time"

type TransactionFilter struct {
	Type   string `form:"type"   validate:"omitempty,oneof=add update delete"`
	Search string `form:"search"`
	Cursor string `form:"cursor"`
}

type TransactionResponse struct {
	ID              string    `json:"id"`
	TransactionType string    `json:"transaction_type"`
	ItemName        string    `json:"item_name"`
	UserName        string    `json:"user_name"`
	Details         string    `json:"details"`
	CreatedAt       time.Time `json:"created_at"`
}
