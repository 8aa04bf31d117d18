package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User stores an account. Staff / superuser flags are derived from the signup role:
// "admin" → staff + superuser, "manager" → staff.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;size:150;not null"`
	Email        string    `gorm:"uniqueIndex;size:254;not null"`
	PasswordHash string    `gorm:"not null"`
	FirstName    string    `gorm:"size:150"`
	IsActive     bool      `gorm:"not null"`
	IsStaff      bool      `gorm:"not null"`
	IsSuperuser  bool      `gorm:"not null"`
	LastLogin    *time.Time
	DateJoined   time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC()
	}
	return nil
}

// Token is the opaque bearer token of a user. At most one per user.
type Token struct {
	Key       string    `gorm:"primaryKey;size:40"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	CreatedAt time.Time

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
