package repository

import (
	"gorm.io/gorm"

	"task-review-api/models"
)

// UserRepo is the GORM-backed services.UserStore.
type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// FindApprovedReviewers returns users able to review, ordered by creation
// time so the auto-assignment tie-break stays stable across calls.
func (r *UserRepo) FindApprovedReviewers() ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("role IN ? AND is_approved = ?", []models.UserRole{models.RoleReviewer, models.RoleAdmin}, true).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}
