package repository

import (
	"context"

	"stockroom/internal/model"
	"stockroom/internal/pagination"

	"gorm.io/gorm"
)

// TransactionQuery narrows the audit log. Type matches exactly; Search is a
// substring match on item name or details.
type TransactionQuery struct {
	Type   string
	Search string
}

// TransactionRepository is append-only: there is no update or delete.
type TransactionRepository interface {
	Create(ctx context.Context, t *model.Transaction) error
	CreateTx(tx *gorm.DB, t *model.Transaction) error
	List(ctx context.Context, q TransactionQuery, pager pagination.CursorPager, cur *pagination.Cursor) ([]model.Transaction, error)
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(ctx context.Context, t *model.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *transactionRepo) CreateTx(tx *gorm.DB, t *model.Transaction) error {
	return tx.Create(t).Error
}

func (r *transactionRepo) List(ctx context.Context, q TransactionQuery, pager pagination.CursorPager, cur *pagination.Cursor) ([]model.Transaction, error) {
	db := r.db.WithContext(ctx).Model(&model.Transaction{})
	if q.Type != "" {
		db = db.Where("transaction_type = ?", q.Type)
	}
	if q.Search != "" {
		like := likePattern(q.Search)
		db = db.Where("(LOWER(item_name) LIKE ? OR LOWER(details) LIKE ?)", like, like)
	}
	var rows []model.Transaction
	err := db.Scopes(pager.Scope(cur)).Find(&rows).Error
	return rows, err
}
