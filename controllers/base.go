package controllers

import (
	"gorm.io/gorm"

	"task-review-api/repository"
	"task-review-api/services"
	"task-review-api/storage"
)

var (
	workflow    *services.WorkflowService
	submissions *repository.SubmissionRepo
	activityLog *repository.ActivityLogRepo
	files       *storage.MinioStore
)

// Setup wires the workflow engine and its stores. Must run before any route
// is served.
func Setup(db *gorm.DB, store *storage.MinioStore) {
	submissions = repository.NewSubmissionRepo(db)
	activityLog = repository.NewActivityLogRepo(db)
	files = store
	workflow = services.NewWorkflowService(
		submissions,
		repository.NewUserRepo(db),
		repository.NewReviewRepo(db),
		activityLog,
		store,
	)
}
