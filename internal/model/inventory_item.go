package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSKURequired      = errors.New("SKU is required.")
	ErrItemNameRequired = errors.New("Item name is required.")
	ErrQuantityNegative = errors.New("Quantity must be greater than or equal to 0.")
	ErrPriceNegative    = errors.New("Price must be greater than or equal to 0.")
)

// InventoryItem is one stock-keeping unit.
type InventoryItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SKU        string          `gorm:"column:sku;uniqueIndex;size:50;not null"`
	ItemName   string          `gorm:"size:255;not null"`
	Quantity   int             `gorm:"not null"`
	Category   *string         `gorm:"size:100;index"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SupplierID *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt  time.Time       `gorm:"index"`
	UpdatedAt  time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE"`
}

func (i *InventoryItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Clean enforces the row-level invariants that must hold before any write.
func (i *InventoryItem) Clean() error {
	switch {
	case i.SKU == "":
		return ErrSKURequired
	case i.ItemName == "":
		return ErrItemNameRequired
	case i.Quantity < 0:
		return ErrQuantityNegative
	case i.Price.IsNegative():
		return ErrPriceNegative
	}
	return nil
}

// StockValue is price × quantity.
func (i *InventoryItem) StockValue() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i InventoryItem) CursorKey() (time.Time, uuid.UUID) { return i.CreatedAt, i.ID }
