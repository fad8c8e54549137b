package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-review-api/config"
	"task-review-api/middleware"
	"task-review-api/models"
	"task-review-api/services"
	"task-review-api/utils"
)

const maxUploadSize = 50 << 20 // 50 MB

// CreateSubmission handles a contributor's archive upload.
// POST /api/v1/submissions (multipart: file, title, domain, language)
func CreateSubmission(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	title := utils.SanitizeInput(c.PostForm("title"))
	domain := utils.SanitizeInput(c.PostForm("domain"))
	language := utils.SanitizeInput(c.PostForm("language"))
	if title == "" || domain == "" || language == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, domain and language are required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".zip") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .zip files are allowed"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 50MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	key, err := files.Upload(c.Request.Context(), data, fileHeader.Filename, "application/zip")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	submission := models.Submission{
		Title:         title,
		Domain:        domain,
		Language:      language,
		FileKey:       key,
		FileName:      fileHeader.Filename,
		ContributorID: userID,
	}
	if err := config.DB.Create(&submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create submission"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "File uploaded successfully",
		"submission": submission,
	})
}

// ListSubmissions returns submissions scoped by the caller's role:
// contributors see their own, reviewers see the PENDING and CLAIMED queue,
// admins see everything (optionally filtered by ?status=).
func ListSubmissions(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	role, _ := middleware.CurrentUserRole(c)

	query := config.DB.
		Preload("Contributor").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Reviews.Reviewer").
		Order("created_at DESC")

	switch role {
	case models.RoleContributor:
		query = query.Where("contributor_id = ?", userID)
	case models.RoleReviewer:
		query = query.Where("status IN ?", []models.TaskStatus{models.StatusPending, models.StatusClaimed})
	case models.RoleAdmin:
		if status := c.Query("status"); status != "" && status != "all" {
			query = query.Where("status = ?", models.TaskStatus(status))
		}
	}

	var submissions []models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

// DownloadSubmission returns a short-lived signed URL for the archive.
func DownloadSubmission(c *gin.Context) {
	submissionID, ok := parseSubmissionID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)
	role, _ := middleware.CurrentUserRole(c)

	var submission models.Submission
	if err := config.DB.First(&submission, "id = ?", submissionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	if role == models.RoleContributor && submission.ContributorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only download your own submissions"})
		return
	}

	url, err := files.SignedURL(c.Request.Context(), submission.FileKey, time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create download URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "file_name": submission.FileName})
}

// DeleteSubmission removes a submission, its reviews and its archive.
func DeleteSubmission(c *gin.Context) {
	submissionID, ok := parseSubmissionID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)
	role, _ := middleware.CurrentUserRole(c)

	deletedID, err := workflow.Delete(submissionID, userID, role)
	if err != nil {
		workflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Submission deleted successfully",
		"deleted_id": deletedID,
	})
}

// ClaimSubmission lets a reviewer take a pending task.
func ClaimSubmission(c *gin.Context) {
	submissionID, ok := parseSubmissionID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	submission, err := workflow.Claim(submissionID, userID)
	if err != nil {
		workflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Submission claimed successfully",
		"submission": submission,
	})
}

type FeedbackRequest struct {
	Feedback        string  `json:"feedback" binding:"required"`
	IsEligible      bool    `json:"is_eligible"`
	AccountPostedIn *string `json:"account_posted_in"`
}

// SubmitFeedback records a review and optionally marks the submission
// eligible for approval.
func SubmitFeedback(c *gin.Context) {
	submissionID, ok := parseSubmissionID(c)
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := workflow.SubmitFeedback(submissionID, userID, req.Feedback, req.AccountPostedIn, req.IsEligible)
	if err != nil {
		workflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Feedback submitted successfully",
		"review":  review,
	})
}

// ApproveSubmission moves an eligible submission to its terminal state.
func ApproveSubmission(c *gin.Context) {
	submissionID, ok := parseSubmissionID(c)
	if !ok {
		return
	}

	submission, err := workflow.Approve(submissionID)
	if err != nil {
		workflowError(c, err)
		return
	}

	var contributor models.User
	if err := config.DB.First(&contributor, "id = ?", submission.ContributorID).Error; err == nil {
		go services.NotifyApproved(&contributor, submission)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Submission approved successfully",
		"submission": submission,
	})
}

// NextTask suggests the oldest unclaimed task and the least-loaded reviewer.
func NextTask(c *gin.Context) {
	next, err := workflow.SuggestNextTask()
	if err != nil {
		workflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submission":         next.Submission,
		"suggested_reviewer": next.SuggestedReviewerID,
	})
}

type AutoAssignRequest struct {
	SubmissionID *uuid.UUID `json:"submission_id"`
}

// AutoAssign assigns one submission when an id is given, otherwise sweeps
// every pending unassigned submission.
func AutoAssign(c *gin.Context) {
	var req AutoAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.SubmissionID != nil {
		reviewerID, err := workflow.AutoAssignOne(*req.SubmissionID)
		if err != nil {
			workflowError(c, err)
			return
		}
		if reviewerID == nil {
			c.JSON(http.StatusOK, gin.H{
				"message":  "No approved reviewers available",
				"assigned": false,
			})
			return
		}

		notifyAssignment(*req.SubmissionID, *reviewerID)
		c.JSON(http.StatusOK, gin.H{
			"message":     "Submission auto-assigned",
			"assigned":    true,
			"reviewer_id": reviewerID,
		})
		return
	}

	assignments, err := workflow.AutoAssignAllPending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Auto-assignment failed"})
		return
	}

	// Batch assignments notify reviewers the same as single ones.
	for _, assignment := range assignments {
		notifyAssignment(assignment.SubmissionID, assignment.ReviewerID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Auto-assignment complete",
		"assigned_count": len(assignments),
	})
}

// MyWorkload lists the caller's active review tasks.
func MyWorkload(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	tasks, err := workflow.ReviewerWorkload(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch workload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_tasks": len(tasks),
		"tasks":       tasks,
	})
}

func notifyAssignment(submissionID, reviewerID uuid.UUID) {
	var reviewer models.User
	var submission models.Submission
	if err := config.DB.First(&reviewer, "id = ?", reviewerID).Error; err != nil {
		return
	}
	if err := config.DB.First(&submission, "id = ?", submissionID).Error; err != nil {
		return
	}
	go services.NotifyAssigned(&reviewer, &submission)
}

func parseSubmissionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return uuid.Nil, false
	}
	return id, true
}

// workflowError maps engine outcomes onto HTTP statuses so clients get a
// precise failure instead of a generic 500.
func workflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
	case errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": "Submission is not in a valid state for this operation"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to perform this action"})
	case errors.Is(err, services.ErrNoReviewers), errors.Is(err, services.ErrNoPendingTasks):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
