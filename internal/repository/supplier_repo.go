package repository

import (
	"context"
	"fmt"

	"stockroom/internal/model"
	"stockroom/internal/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier columns that carry a unique constraint.
const (
	SupplierName  = "name"
	SupplierEmail = "email"
	SupplierPhone = "phone"
)

type SupplierRepository interface {
	Create(ctx context.Context, s *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	Exists(ctx context.Context, column, value string, exclude *uuid.UUID) (bool, error)
	List(ctx context.Context, search string, pager pagination.CursorPager, cur *pagination.Cursor) ([]model.Supplier, error)
	ItemCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, s *model.Supplier) error

	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) DB() *gorm.DB { return r.db }

func (r *supplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Exists checks one of the unique columns, optionally ignoring the supplier
// being updated.
func (r *supplierRepo) Exists(ctx context.Context, column, value string, exclude *uuid.UUID) (bool, error) {
	switch column {
	case SupplierName, SupplierEmail, SupplierPhone:
	default:
		return false, fmt.Errorf("supplier: unknown unique column %q", column)
	}
	var n int64
	q := r.db.WithContext(ctx).Model(&model.Supplier{}).Where(column+" = ?", value)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *supplierRepo) List(ctx context.Context, search string, pager pagination.CursorPager, cur *pagination.Cursor) ([]model.Supplier, error) {
	db := r.db.WithContext(ctx).Model(&model.Supplier{})
	if search != "" {
		like := likePattern(search)
		db = db.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?)", like, like, like)
	}
	var suppliers []model.Supplier
	err := db.Scopes(pager.Scope(cur)).Find(&suppliers).Error
	return suppliers, err
}

// ItemCounts returns the number of items per supplier. Suppliers without
// items are absent from the map.
func (r *supplierRepo) ItemCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		SupplierID uuid.UUID
		Total      int64
	}
	err := r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Select("supplier_id, COUNT(*) AS total").
		Where("supplier_id IN ?", ids).
		Group("supplier_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.SupplierID] = row.Total
	}
	return counts, nil
}

func (r *supplierRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Supplier{}).Count(&n).Error
	return n, err
}

func (r *supplierRepo) Update(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *supplierRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Where("id = ?", id).Delete(&model.Supplier{}).Error
}
