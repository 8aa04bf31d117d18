package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier provides inventory items. Deleting a supplier deletes its items.
type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:255;not null"`
	Email     string    `gorm:"uniqueIndex;size:254;not null"`
	Phone     string    `gorm:"uniqueIndex;size:20;not null"`
	Address   *string
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (s *Supplier) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s Supplier) CursorKey() (time.Time, uuid.UUID) { return s.CreatedAt, s.ID }
