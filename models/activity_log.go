package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLog is an append-only audit record. Rows are written once and never
// updated or deleted by the application.
type ActivityLog struct {
	ID          uuid.UUID  `gorm:"type:char(36);primaryKey;column:id" json:"id"`
	Action      string     `gorm:"column:action;not null" json:"action"`
	Description string     `gorm:"column:description;type:text;not null" json:"description"`
	UserID      *uuid.UUID `gorm:"column:user_id;type:char(36)" json:"user_id,omitempty"`
	UserName    *string    `gorm:"column:user_name" json:"user_name,omitempty"`
	UserRole    *string    `gorm:"column:user_role" json:"user_role,omitempty"`
	TargetID    *uuid.UUID `gorm:"column:target_id;type:char(36)" json:"target_id,omitempty"`
	TargetType  *string    `gorm:"column:target_type" json:"target_type,omitempty"`
	Metadata    *string    `gorm:"column:metadata;type:json" json:"metadata,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
