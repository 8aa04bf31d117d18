package repository

import (
	"context"

	"stockroom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenRepository persists bearer tokens. The user_id unique index is what
// keeps get-or-create from producing two tokens for one user.
type TokenRepository interface {
	Create(ctx context.Context, t *model.Token) error
	FindByKey(ctx context.Context, key string) (*model.Token, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Token, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type tokenRepo struct{ db *gorm.DB }

func NewTokenRepository(db *gorm.DB) TokenRepository { return &tokenRepo{db: db} }

func (r *tokenRepo) Create(ctx context.Context, t *model.Token) error {
	return r.db.WithContext(ctx).Omit("User").Create(t).Error
}

// FindByKey loads the token with its user.
func (r *tokenRepo) FindByKey(ctx context.Context, key string) (*model.Token, error) {
	var t model.Token
	if err := r.db.WithContext(ctx).Preload("User").Where("key = ?", key).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Token, error) {
	var t model.Token
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Token{}).Error
}
