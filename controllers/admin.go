package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"task-review-api/config"
	"task-review-api/models"
)

// GetAdminStats returns the platform overview plus per-contributor and
// per-reviewer aggregates.
// GET /api/v1/admin/stats
func GetAdminStats(c *gin.Context) {
	var contributors []models.User
	if err := config.DB.Preload("Submissions").
		Where("role = ?", models.RoleContributor).
		Find(&contributors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	contributorStats := make([]gin.H, 0, len(contributors))
	for _, contributor := range contributors {
		counts := map[models.TaskStatus]int{}
		for _, s := range contributor.Submissions {
			counts[s.Status]++
		}
		total := len(contributor.Submissions)
		approvalRate := "0"
		if total > 0 {
			approvalRate = fmt.Sprintf("%.1f", float64(counts[models.StatusApproved])/float64(total)*100)
		}
		contributorStats = append(contributorStats, gin.H{
			"id":            contributor.ID,
			"name":          contributor.Name,
			"email":         contributor.Email,
			"joined_at":     contributor.CreatedAt,
			"total":         total,
			"pending":       counts[models.StatusPending],
			"claimed":       counts[models.StatusClaimed],
			"eligible":      counts[models.StatusEligible],
			"approved":      counts[models.StatusApproved],
			"approval_rate": approvalRate,
		})
	}

	// Scoped to REVIEWER accounts only. Approved admins can also hold claims
	// via auto-assignment, but they are deliberately kept out of the reviewer
	// roster here; their claims still show up in the status overview below.
	var reviewers []models.User
	if err := config.DB.Preload("ClaimedSubmissions").Preload("Reviews").
		Where("role = ?", models.RoleReviewer).
		Find(&reviewers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	approvedReviewers := 0
	reviewerStats := make([]gin.H, 0, len(reviewers))
	for _, reviewer := range reviewers {
		if reviewer.IsApproved {
			approvedReviewers++
		}
		counts := map[models.TaskStatus]int{}
		for _, s := range reviewer.ClaimedSubmissions {
			counts[s.Status]++
		}
		pendingReview := counts[models.StatusClaimed] + counts[models.StatusPending]
		reviewerStats = append(reviewerStats, gin.H{
			"id":               reviewer.ID,
			"name":             reviewer.Name,
			"email":            reviewer.Email,
			"is_approved":      reviewer.IsApproved,
			"joined_at":        reviewer.CreatedAt,
			"assigned_tasks":   len(reviewer.ClaimedSubmissions),
			"pending_review":   pendingReview,
			"eligible":         counts[models.StatusEligible],
			"approved":         counts[models.StatusApproved],
			"reviewed":         len(reviewer.Reviews),
			"current_workload": pendingReview,
		})
	}

	statusCounts, err := submissions.CountByStatus()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	var totalSubmissions int64
	for _, n := range statusCounts {
		totalSubmissions += n
	}

	var totalUsers int64
	if err := config.DB.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"overview": gin.H{
			"total_users":        totalUsers,
			"total_contributors": len(contributors),
			"total_reviewers":    len(reviewers),
			"approved_reviewers": approvedReviewers,
			"pending_reviewers":  len(reviewers) - approvedReviewers,
			"total_submissions":  totalSubmissions,
			"status_counts":      statusCounts,
		},
		"contributors": contributorStats,
		"reviewers":    reviewerStats,
	})
}

// GetLeaderboard ranks contributors by eligible plus approved submissions.
// Visible to any authenticated user.
func GetLeaderboard(c *gin.Context) {
	var rows []struct {
		UserID        uuid.UUID `gorm:"column:user_id" json:"user_id"`
		UserName      string    `gorm:"column:user_name" json:"user_name"`
		Email         string    `gorm:"column:email" json:"email"`
		EligibleCount int       `gorm:"column:eligible_count" json:"eligible_count"`
		ApprovedCount int       `gorm:"column:approved_count" json:"approved_count"`
		TotalCount    int       `gorm:"-" json:"total_count"`
	}

	err := config.DB.Model(&models.User{}).
		Select(`users.id AS user_id, users.name AS user_name, users.email,
			SUM(CASE WHEN submissions.status = ? THEN 1 ELSE 0 END) AS eligible_count,
			SUM(CASE WHEN submissions.status = ? THEN 1 ELSE 0 END) AS approved_count`,
			models.StatusEligible, models.StatusApproved).
		Joins("LEFT JOIN submissions ON submissions.contributor_id = users.id").
		Where("users.role = ?", models.RoleContributor).
		Group("users.id, users.name, users.email").
		Order("eligible_count + approved_count DESC, approved_count DESC").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
		return
	}

	for i := range rows {
		rows[i].TotalCount = rows[i].EligibleCount + rows[i].ApprovedCount
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": rows})
}

// GetActivityLogs returns the most recent audit entries.
// GET /api/v1/admin/logs?limit=100
func GetActivityLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	logs, err := activityLog.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// ApproveReviewer clears a reviewer for assignment.
// POST /api/v1/admin/approve-reviewer
func ApproveReviewer(c *gin.Context) {
	var req struct {
		UserID uuid.UUID `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", req.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := config.DB.Model(&user).Update("is_approved", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve reviewer"})
		return
	}
	user.IsApproved = true

	c.JSON(http.StatusOK, gin.H{
		"message": "Reviewer approved successfully",
		"user":    user,
	})
}

// ListPendingReviewers returns reviewer accounts still waiting for approval.
func ListPendingReviewers(c *gin.Context) {
	var reviewers []models.User
	if err := config.DB.
		Where("role = ? AND is_approved = ?", models.RoleReviewer, false).
		Order("created_at ASC").
		Find(&reviewers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviewers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviewers": reviewers})
}
