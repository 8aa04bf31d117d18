package service

import (
	"stockroom/internal/dto"
	"stockroom/internal/model"
)

func ToUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		DateJoined:  u.DateJoined,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}

func toItemResponse(i model.InventoryItem) dto.ItemResponse {
	resp := dto.ItemResponse{
		ID:        i.ID.String(),
		SKU:       i.SKU,
		ItemName:  i.ItemName,
		Quantity:  i.Quantity,
		Category:  i.Category,
		Price:     i.Price.StringFixed(2),
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
	if i.SupplierID != nil {
		id := i.SupplierID.String()
		resp.SupplierID = &id
	}
	if i.Supplier != nil {
		name := i.Supplier.Name
		resp.SupplierName = &name
	}
	return resp
}

func toSupplierResponse(s model.Supplier, itemCount int64) dto.SupplierResponse {
	return dto.SupplierResponse{
		ID:        s.ID.String(),
		Name:      s.Name,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
		ItemCount: itemCount,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toTransactionResponse(t model.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:              t.ID.String(),
		TransactionType: t.TransactionType,
		ItemName:        t.ItemName,
		UserName:        t.UserName,
		Details:         t.Details,
		CreatedAt:       t.CreatedAt,
	}
}
