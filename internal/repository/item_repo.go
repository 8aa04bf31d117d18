package repository

import (
	"context"

	"stockroom/internal/model"
	"stockroom/internal/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemQuery narrows an item listing. Empty fields are ignored.
type ItemQuery struct {
	Category string
	Supplier string
	Search   string
}

// ItemRepository defines the data access contract for inventory items.
// Mutations come in Tx form because every one of them is written together
// with its audit transaction.
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	SKUExists(ctx context.Context, sku string, exclude *uuid.UUID) (bool, error)
	List(ctx context.Context, q ItemQuery, pager pagination.CursorPager, cur *pagination.Cursor) ([]model.InventoryItem, error)
	ListAll(ctx context.Context) ([]model.InventoryItem, error)

	// Used inside transactions — callers must pass the tx instance
	CreateTx(tx *gorm.DB, item *model.InventoryItem) error
	UpdateTx(tx *gorm.DB, item *model.InventoryItem) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	FindBySupplierTx(tx *gorm.DB, supplierID uuid.UUID) ([]model.InventoryItem, error)
	DeleteBySupplierTx(tx *gorm.DB, supplierID uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type itemRepo struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) DB() *gorm.DB { return r.db }

func (r *itemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := r.db.WithContext(ctx).Preload("Supplier").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepo) SKUExists(ctx context.Context, sku string, exclude *uuid.UUID) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.InventoryItem{}).Where("sku = ?", sku)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

// List returns one cursor page (plus the look-ahead row) of matching items.
// Category and supplier name match exactly but case-insensitively; search
// is a substring match on name or SKU.
func (r *itemRepo) List(ctx context.Context, q ItemQuery, pager pagination.CursorPager, cur *pagination.Cursor) ([]model.InventoryItem, error) {
	db := r.db.WithContext(ctx).Model(&model.InventoryItem{}).Preload("Supplier")
	if q.Category != "" {
		db = db.Where("LOWER(inventory_items.category) = LOWER(?)", q.Category)
	}
	if q.Supplier != "" {
		suppliers := r.db.Model(&model.Supplier{}).Select("id").Where("LOWER(name) = LOWER(?)", q.Supplier)
		db = db.Where("inventory_items.supplier_id IN (?)", suppliers)
	}
	if q.Search != "" {
		like := likePattern(q.Search)
		db = db.Where("(LOWER(inventory_items.item_name) LIKE ? OR LOWER(inventory_items.sku) LIKE ?)", like, like)
	}

	var items []model.InventoryItem
	err := db.Scopes(pager.Scope(cur)).Find(&items).Error
	return items, err
}

// ListAll is the unpaginated, creation-ordered view used by reports.
func (r *itemRepo) ListAll(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.WithContext(ctx).Preload("Supplier").Order("created_at ASC, id ASC").Find(&items).Error
	return items, err
}

func (r *itemRepo) CreateTx(tx *gorm.DB, item *model.InventoryItem) error {
	return tx.Omit(clause.Associations).Create(item).Error
}

func (r *itemRepo) UpdateTx(tx *gorm.DB, item *model.InventoryItem) error {
	return tx.Omit(clause.Associations).Save(item).Error
}

func (r *itemRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Where("id = ?", id).Delete(&model.InventoryItem{}).Error
}

func (r *itemRepo) FindBySupplierTx(tx *gorm.DB, supplierID uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := tx.Where("supplier_id = ?", supplierID).Order("created_at ASC, id ASC").Find(&items).Error
	return items, err
}

func (r *itemRepo) DeleteBySupplierTx(tx *gorm.DB, supplierID uuid.UUID) error {
	return tx.Where("supplier_id = ?", supplierID).Delete(&model.InventoryItem{}).Error
}
