package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole distinguishes the three platform roles.
type UserRole string

const (
	RoleContributor UserRole = "CONTRIBUTOR"
	RoleReviewer    UserRole = "REVIEWER"
	RoleAdmin       UserRole = "ADMIN"
)

type User struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey;column:id" json:"id"`
	Email        string    `gorm:"column:email;unique;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Role         UserRole  `gorm:"column:role;type:varchar(20);not null;default:'CONTRIBUTOR'" json:"role"`
	IsApproved   bool      `gorm:"column:is_approved;default:false" json:"is_approved"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Submissions        []Submission `gorm:"foreignKey:ContributorID" json:"submissions,omitempty"`
	ClaimedSubmissions []Submission `gorm:"foreignKey:ClaimedByID" json:"claimed_submissions,omitempty"`
	Reviews            []Review     `gorm:"foreignKey:ReviewerID" json:"reviews,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns the id and auto-approves contributors. Reviewers stay
// unapproved until an admin clears them.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == RoleContributor {
		u.IsApproved = true
	}
	return nil
}
