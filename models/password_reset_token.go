package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetToken stores a bcrypt hash of a single-use reset token. The
// raw token only ever travels in the reset email.
type PasswordResetToken struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey;column:id" json:"id"`
	UserID    uuid.UUID `gorm:"type:char(36);column:user_id;not null;index" json:"user_id"`
	TokenHash string    `gorm:"column:token_hash;not null" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	Revoked   bool      `gorm:"column:revoked;default:false" json:"revoked"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

func (t *PasswordResetToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
