package repository

import (
	"gorm.io/gorm"

	"task-review-api/models"
)

// ReviewRepo is the GORM-backed services.ReviewStore.
type ReviewRepo struct {
	db *gorm.DB
}

func NewReviewRepo(db *gorm.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

func (r *ReviewRepo) Create(review *models.Review) error {
	return r.db.Create(review).Error
}
