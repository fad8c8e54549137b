package services

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"task-review-api/config"
	"task-review-api/models"
)

// Notifications are best-effort, same policy as the activity log: a failed
// send is logged and forgotten, it never affects the triggering operation.
// Callers run these from the request path after the workflow operation has
// already committed.

// NotifyAssigned emails a reviewer about a submission assigned to them.
func NotifyAssigned(reviewer *models.User, submission *models.Submission) {
	if reviewer == nil || submission == nil || reviewer.Email == "" {
		return
	}
	subject := fmt.Sprintf("New task assigned: %s", submission.Title)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>The task <strong>%s</strong> (%s / %s) has been assigned to you for review.</p>",
		reviewer.Name, submission.Title, submission.Domain, submission.Language,
	)
	if err := config.SendMail([]string{reviewer.Email}, subject, body); err != nil {
		log.WithError(err).WithField("reviewer_id", reviewer.ID).Warn("failed to send assignment email")
	}
}

// NotifyApproved emails a contributor that their submission was approved.
func NotifyApproved(contributor *models.User, submission *models.Submission) {
	if contributor == nil || submission == nil || contributor.Email == "" {
		return
	}
	subject := fmt.Sprintf("Submission approved: %s", submission.Title)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your submission <strong>%s</strong> has been approved. Nice work!</p>",
		contributor.Name, submission.Title,
	)
	if err := config.SendMail([]string{contributor.Email}, subject, body); err != nil {
		log.WithError(err).WithField("contributor_id", contributor.ID).Warn("failed to send approval email")
	}
}
