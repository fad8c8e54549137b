package repository

import (
	"encoding/json"

	"gorm.io/gorm"

	"task-review-api/models"
	"task-review-api/services"
)

// ActivityLogRepo is the GORM-backed services.ActivityStore. Entries are
// append-only; nothing here updates or deletes rows.
type ActivityLogRepo struct {
	db *gorm.DB
}

func NewActivityLogRepo(db *gorm.DB) *ActivityLogRepo {
	return &ActivityLogRepo{db: db}
}

func (r *ActivityLogRepo) Append(entry services.ActivityEntry) error {
	var metadata *string
	if entry.Metadata != nil {
		if raw, err := json.Marshal(entry.Metadata); err == nil {
			s := string(raw)
			metadata = &s
		}
	}

	record := models.ActivityLog{
		Action:      entry.Action,
		Description: entry.Description,
		UserID:      entry.UserID,
		UserName:    entry.UserName,
		UserRole:    entry.UserRole,
		TargetID:    entry.TargetID,
		TargetType:  entry.TargetType,
		Metadata:    metadata,
	}
	return r.db.Create(&record).Error
}

// Recent returns the newest entries, most recent first.
func (r *ActivityLogRepo) Recent(limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []models.ActivityLog
	err := r.db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
