package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TransactionAdd    = "add"
	TransactionUpdate = "update"
	TransactionDelete = "delete"
)

// Transaction is an append-only audit row written on every inventory mutation.
// Item and user are stored by name so the log survives deletes.
type Transaction struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	TransactionType string    `gorm:"size:10;not null;index"`
	ItemName        string    `gorm:"size:255;not null"`
	UserName        string    `gorm:"size:150;not null"`
	Details         string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"index"`
}

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t Transaction) CursorKey() (time.Time, uuid.UUID) { return t.CreatedAt, t.ID }
