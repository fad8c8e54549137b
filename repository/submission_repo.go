package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-review-api/models"
)

// SubmissionRepo is the GORM-backed services.SubmissionStore.
type SubmissionRepo struct {
	db *gorm.DB
}

func NewSubmissionRepo(db *gorm.DB) *SubmissionRepo {
	return &SubmissionRepo{db: db}
}

func (r *SubmissionRepo) FindByID(id uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.Preload("Contributor").Preload("Reviews").
		First(&submission, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepo) FindPendingUnassigned() ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.
		Where("status = ? AND claimed_by_id IS NULL", models.StatusPending).
		Order("created_at ASC").
		Find(&submissions).Error
	return submissions, err
}

func (r *SubmissionRepo) OldestPendingUnassigned() (*models.Submission, error) {
	var submission models.Submission
	err := r.db.Preload("Contributor").Preload("Reviews").Preload("Reviews.Reviewer").
		Where("status = ? AND claimed_by_id IS NULL", models.StatusPending).
		Order("created_at ASC").
		First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepo) FindActiveForReviewer(reviewerID uuid.UUID) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.
		Where("claimed_by_id = ? AND status IN ?", reviewerID, models.ActiveStatuses).
		Order("assigned_at DESC").
		Find(&submissions).Error
	return submissions, err
}

// ClaimIfPending performs the guarded claim write. The WHERE clause is the
// concurrency control: if another caller already claimed the row, zero rows
// match and the caller learns it lost.
func (r *SubmissionRepo) ClaimIfPending(id, reviewerID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.Model(&models.Submission{}).
		Where("id = ? AND status = ? AND claimed_by_id IS NULL", id, models.StatusPending).
		Updates(map[string]interface{}{
			"claimed_by_id": reviewerID,
			"assigned_at":   at,
			"status":        models.StatusClaimed,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *SubmissionRepo) UpdateIfStatus(id uuid.UUID, expect models.TaskStatus, fields map[string]interface{}) (bool, error) {
	result := r.db.Model(&models.Submission{}).
		Where("id = ? AND status = ?", id, expect).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *SubmissionRepo) SetStatus(id uuid.UUID, status models.TaskStatus) error {
	return r.db.Model(&models.Submission{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes the submission and its reviews in one transaction so no
// orphaned review can survive a partial failure.
func (r *SubmissionRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Submission{}, "id = ?", id).Error
	})
}

func (r *SubmissionRepo) CountForReviewer(reviewerID uuid.UUID, statuses ...models.TaskStatus) (int64, error) {
	query := r.db.Model(&models.Submission{}).Where("claimed_by_id = ?", reviewerID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *SubmissionRepo) CountByStatus() (map[models.TaskStatus]int64, error) {
	var rows []struct {
		Status models.TaskStatus `gorm:"column:status"`
		Total  int64             `gorm:"column:total"`
	}
	err := r.db.Model(&models.Submission{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
