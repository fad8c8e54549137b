package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is one piece of reviewer feedback on a submission. A submission can
// accumulate any number of reviews; there is no uniqueness constraint per
// reviewer.
type Review struct {
	ID              uuid.UUID `gorm:"type:char(36);primaryKey;column:id" json:"id"`
	SubmissionID    uuid.UUID `gorm:"column:submission_id;type:char(36);not null" json:"submission_id"`
	ReviewerID      uuid.UUID `gorm:"column:reviewer_id;type:char(36);not null" json:"reviewer_id"`
	Feedback        string    `gorm:"column:feedback;type:text;not null" json:"feedback"`
	AccountPostedIn *string   `gorm:"column:account_posted_in" json:"account_posted_in,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Submission *Submission `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
	Reviewer   *User       `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
