package services

import (
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"task-review-api/models"
)

// AutoAssignOne assigns a PENDING submission to the approved reviewer with
// the fewest active tasks (anything not yet APPROVED). Ties go to the first
// reviewer in store order. Returns (nil, nil) when no reviewer is available;
// that is a business outcome, not a fault.
//
// Workload counts are independent queries per reviewer, so two assignments
// racing each other may both see the same counts. The claim write itself is
// conditional, so a submission still cannot be assigned twice.
func (s *WorkflowService) AutoAssignOne(submissionID uuid.UUID) (*uuid.UUID, error) {
	submission, err := s.Submissions.FindByID(submissionID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, ErrNotFound
	}
	if submission.Status != models.StatusPending || submission.ClaimedByID != nil {
		return nil, ErrInvalidState
	}

	reviewers, err := s.Users.FindApprovedReviewers()
	if err != nil {
		return nil, err
	}
	if len(reviewers) == 0 {
		return nil, nil
	}

	selected := reviewers[0]
	var minCount int64 = -1
	for _, reviewer := range reviewers {
		count, err := s.Submissions.CountForReviewer(reviewer.ID, models.ActiveStatuses...)
		if err != nil {
			return nil, err
		}
		if minCount < 0 || count < minCount {
			minCount = count
			selected = reviewer
		}
	}

	claimed, err := s.Submissions.ClaimIfPending(submissionID, selected.ID, s.now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrInvalidState
	}

	system := "System"
	systemRole := "SYSTEM"
	targetType := "submission"
	s.logActivity(ActivityEntry{
		Action:      "AUTO_ASSIGN",
		Description: fmt.Sprintf("Task %q auto-assigned to %s", submission.Title, selected.Name),
		UserName:    &system,
		UserRole:    &systemRole,
		TargetID:    &submissionID,
		TargetType:  &targetType,
		Metadata: map[string]interface{}{
			"reviewerId":   selected.ID.String(),
			"reviewerName": selected.Name,
		},
	})

	return &selected.ID, nil
}

// Assignment records one submission handed to one reviewer during a batch
// sweep, so callers can notify the reviewers afterwards.
type Assignment struct {
	SubmissionID uuid.UUID
	ReviewerID   uuid.UUID
}

// AutoAssignAllPending walks every unclaimed PENDING submission, oldest
// first, and auto-assigns each in turn. A submission that cannot be assigned
// is skipped; the batch never aborts. Returns the assignments actually made.
func (s *WorkflowService) AutoAssignAllPending() ([]Assignment, error) {
	pending, err := s.Submissions.FindPendingUnassigned()
	if err != nil {
		return nil, err
	}

	var assigned []Assignment
	for _, submission := range pending {
		reviewerID, err := s.AutoAssignOne(submission.ID)
		if err != nil {
			log.WithError(err).WithField("submission_id", submission.ID).
				Warn("skipping submission during batch auto-assignment")
			continue
		}
		if reviewerID == nil {
			// No reviewers right now; later submissions won't fare better,
			// but keep walking in case the pool changes mid-batch.
			continue
		}
		assigned = append(assigned, Assignment{SubmissionID: submission.ID, ReviewerID: *reviewerID})
	}
	return assigned, nil
}
