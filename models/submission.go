package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus is the submission lifecycle state. Transitions move forward:
// PENDING -> CLAIMED -> ELIGIBLE -> APPROVED. The one exception is feedback
// marking a submission ELIGIBLE with no precondition; see services.WorkflowService.
type TaskStatus string

const (
	StatusPending  TaskStatus = "PENDING"
	StatusClaimed  TaskStatus = "CLAIMED"
	StatusEligible TaskStatus = "ELIGIBLE"
	StatusApproved TaskStatus = "APPROVED"
)

// ActiveStatuses are the states counted toward a reviewer's workload during
// auto-assignment: everything short of terminal APPROVED.
var ActiveStatuses = []TaskStatus{StatusPending, StatusClaimed, StatusEligible}

type Submission struct {
	ID            uuid.UUID  `gorm:"type:char(36);primaryKey;column:id" json:"id"`
	Title         string     `gorm:"column:title;not null" json:"title"`
	Domain        string     `gorm:"column:domain;not null" json:"domain"`
	Language      string     `gorm:"column:language;not null" json:"language"`
	FileKey       string     `gorm:"column:file_key;not null" json:"file_key"`
	FileName      string     `gorm:"column:file_name;not null" json:"file_name"`
	Status        TaskStatus `gorm:"column:status;type:varchar(20);not null;default:'PENDING'" json:"status"`
	ClaimedByID   *uuid.UUID `gorm:"column:claimed_by_id;type:char(36)" json:"claimed_by_id,omitempty"`
	AssignedAt    *time.Time `gorm:"column:assigned_at" json:"assigned_at,omitempty"`
	ContributorID uuid.UUID  `gorm:"column:contributor_id;type:char(36);not null" json:"contributor_id"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Contributor *User    `gorm:"foreignKey:ContributorID" json:"contributor,omitempty"`
	ClaimedBy   *User    `gorm:"foreignKey:ClaimedByID" json:"claimed_by,omitempty"`
	Reviews     []Review `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
