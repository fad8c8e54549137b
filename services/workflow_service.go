package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"task-review-api/models"
)

// WorkflowService drives the submission lifecycle: claiming, feedback,
// approval, deletion and load-balanced auto-assignment. It talks to storage
// only through the injected store interfaces so the whole engine runs against
// in-memory fakes in tests.
type WorkflowService struct {
	Submissions SubmissionStore
	Users       UserStore
	Reviews     ReviewStore
	Activity    ActivityStore
	Files       FileStore

	now func() time.Time
}

func NewWorkflowService(submissions SubmissionStore, users UserStore, reviews ReviewStore, activity ActivityStore, files FileStore) *WorkflowService {
	return &WorkflowService{
		Submissions: submissions,
		Users:       users,
		Reviews:     reviews,
		Activity:    activity,
		Files:       files,
		now:         time.Now,
	}
}

// NextTask is the advisory result of SuggestNextTask. It performs no
// assignment; callers decide whether to act on it.
type NextTask struct {
	Submission          *models.Submission `json:"submission"`
	SuggestedReviewerID uuid.UUID          `json:"suggested_reviewer_id"`
}

// Claim moves a PENDING submission to CLAIMED on behalf of a reviewer. The
// write is conditional on the row still being PENDING, so of two concurrent
// claimers exactly one wins and the other gets ErrInvalidState.
func (s *WorkflowService) Claim(submissionID, reviewerID uuid.UUID) (*models.Submission, error) {
	submission, err := s.Submissions.FindByID(submissionID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, ErrNotFound
	}
	if submission.Status != models.StatusPending {
		return nil, ErrInvalidState
	}

	at := s.now()
	claimed, err := s.Submissions.ClaimIfPending(submissionID, reviewerID, at)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Someone else claimed it between our read and write.
		return nil, ErrInvalidState
	}

	submission.Status = models.StatusClaimed
	submission.ClaimedByID = &reviewerID
	submission.AssignedAt = &at
	return submission, nil
}

// SubmitFeedback records a review. When markEligible is set the submission is
// moved to ELIGIBLE with no precondition on its current status; an APPROVED
// submission can be pulled back to ELIGIBLE by a later review. That matches
// the shipped behavior and is kept on purpose until product decides otherwise.
func (s *WorkflowService) SubmitFeedback(submissionID, reviewerID uuid.UUID, feedback string, accountPostedIn *string, markEligible bool) (*models.Review, error) {
	submission, err := s.Submissions.FindByID(submissionID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, ErrNotFound
	}

	review := &models.Review{
		SubmissionID:    submissionID,
		ReviewerID:      reviewerID,
		Feedback:        feedback,
		AccountPostedIn: accountPostedIn,
	}
	if err := s.Reviews.Create(review); err != nil {
		return nil, err
	}

	if markEligible {
		if err := s.Submissions.SetStatus(submissionID, models.StatusEligible); err != nil {
			return nil, err
		}
	}
	return review, nil
}

// Approve moves an ELIGIBLE submission to APPROVED.
func (s *WorkflowService) Approve(submissionID uuid.UUID) (*models.Submission, error) {
	submission, err := s.Submissions.FindByID(submissionID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, ErrNotFound
	}
	if submission.Status != models.StatusEligible {
		return nil, ErrInvalidState
	}

	updated, err := s.Submissions.UpdateIfStatus(submissionID, models.StatusEligible, map[string]interface{}{
		"status": models.StatusApproved,
	})
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrInvalidState
	}

	submission.Status = models.StatusApproved
	return submission, nil
}

// Delete removes a submission along with its reviews. Contributors may only
// delete their own submissions; admins may delete any. The stored archive is
// cleaned up best-effort: a storage fault is logged and the record deletion
// proceeds regardless.
func (s *WorkflowService) Delete(submissionID, actorID uuid.UUID, actorRole models.UserRole) (uuid.UUID, error) {
	submission, err := s.Submissions.FindByID(submissionID)
	if err != nil {
		return uuid.Nil, err
	}
	if submission == nil {
		return uuid.Nil, ErrNotFound
	}

	switch actorRole {
	case models.RoleAdmin:
	case models.RoleContributor:
		if submission.ContributorID != actorID {
			return uuid.Nil, ErrForbidden
		}
	default:
		return uuid.Nil, ErrForbidden
	}

	if submission.FileKey != "" {
		if err := s.Files.Remove(submission.FileKey); err != nil {
			log.WithError(err).WithField("file_key", submission.FileKey).
				Warn("failed to remove stored archive, continuing with deletion")
		}
	}

	if err := s.Submissions.Delete(submissionID); err != nil {
		return uuid.Nil, err
	}

	role := string(actorRole)
	targetType := "submission"
	s.logActivity(ActivityEntry{
		Action:      "DELETE",
		Description: fmt.Sprintf("Submission %q deleted", submission.Title),
		UserID:      &actorID,
		UserRole:    &role,
		TargetID:    &submissionID,
		TargetType:  &targetType,
		Metadata: map[string]interface{}{
			"title":       submission.Title,
			"contributor": submission.ContributorID.String(),
			"reviewCount": len(submission.Reviews),
		},
	})

	return submissionID, nil
}

// SuggestNextTask returns the oldest unclaimed PENDING submission together
// with the approved reviewer holding the fewest claimed submissions. Unlike
// auto-assignment, the workload metric here counts claims in every status,
// APPROVED included; the two metrics have always differed and the difference
// is kept deliberately.
func (s *WorkflowService) SuggestNextTask() (*NextTask, error) {
	reviewers, err := s.Users.FindApprovedReviewers()
	if err != nil {
		return nil, err
	}
	if len(reviewers) == 0 {
		return nil, ErrNoReviewers
	}

	suggested := reviewers[0].ID
	var minCount int64 = -1
	for _, reviewer := range reviewers {
		count, err := s.Submissions.CountForReviewer(reviewer.ID)
		if err != nil {
			return nil, err
		}
		if minCount < 0 || count < minCount {
			minCount = count
			suggested = reviewer.ID
		}
	}

	submission, err := s.Submissions.OldestPendingUnassigned()
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, ErrNoPendingTasks
	}

	return &NextTask{Submission: submission, SuggestedReviewerID: suggested}, nil
}

// ReviewerWorkload lists a reviewer's active (not yet APPROVED) submissions.
func (s *WorkflowService) ReviewerWorkload(reviewerID uuid.UUID) ([]models.Submission, error) {
	return s.Submissions.FindActiveForReviewer(reviewerID)
}

// logActivity appends an audit entry. The audit trail is best-effort: a
// failed append must never fail the operation that triggered it.
func (s *WorkflowService) logActivity(entry ActivityEntry) {
	if s.Activity == nil {
		return
	}
	if err := s.Activity.Append(entry); err != nil {
		log.WithError(err).WithField("action", entry.Action).Warn("failed to append activity log entry")
	}
}
