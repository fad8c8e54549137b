package services

import (
	"time"

	"github.com/google/uuid"

	"task-review-api/models"
)

// SubmissionStore is the persistence contract the workflow engine needs for
// submissions. Lookups return (nil, nil) when the id does not resolve; only
// infrastructure faults come back as errors.
//
// Status transitions go through the conditional writers so that two
// concurrent claims cannot both win: the store applies the write only when
// the row still matches the expected prior state and reports whether a row
// was affected.
type SubmissionStore interface {
	FindByID(id uuid.UUID) (*models.Submission, error)

	// FindPendingUnassigned returns every PENDING submission with no
	// claimer, oldest first.
	FindPendingUnassigned() ([]models.Submission, error)

	// OldestPendingUnassigned returns the single oldest PENDING unclaimed
	// submission, or nil when none exists.
	OldestPendingUnassigned() (*models.Submission, error)

	// FindActiveForReviewer returns the reviewer's claimed submissions that
	// are not yet APPROVED, most recently assigned first.
	FindActiveForReviewer(reviewerID uuid.UUID) ([]models.Submission, error)

	// ClaimIfPending sets claimed_by_id, assigned_at and status=CLAIMED in
	// one write, guarded on status=PENDING and claimed_by_id IS NULL.
	// Returns false when the guard did not match any row.
	ClaimIfPending(id, reviewerID uuid.UUID, at time.Time) (bool, error)

	// UpdateIfStatus applies fields only while the submission's status still
	// equals expect. Returns false when no row matched.
	UpdateIfStatus(id uuid.UUID, expect models.TaskStatus, fields map[string]interface{}) (bool, error)

	// SetStatus writes the status unconditionally.
	SetStatus(id uuid.UUID, status models.TaskStatus) error

	// Delete removes the submission and its reviews.
	Delete(id uuid.UUID) error

	// CountForReviewer counts submissions claimed by the reviewer. With no
	// statuses given it counts across all statuses.
	CountForReviewer(reviewerID uuid.UUID, statuses ...models.TaskStatus) (int64, error)

	// CountByStatus returns submission totals grouped by status.
	CountByStatus() (map[models.TaskStatus]int64, error)
}

// UserStore is the engine's view of user records.
type UserStore interface {
	// FindApprovedReviewers returns every approved user able to review,
	// i.e. role REVIEWER or ADMIN with is_approved set. Order is stable
	// across calls; auto-assignment ties break on it.
	FindApprovedReviewers() ([]models.User, error)
}

// ReviewStore persists reviewer feedback records.
type ReviewStore interface {
	Create(review *models.Review) error
}

// ActivityEntry is one append-only audit record.
type ActivityEntry struct {
	Action      string
	Description string
	UserID      *uuid.UUID
	UserName    *string
	UserRole    *string
	TargetID    *uuid.UUID
	TargetType  *string
	Metadata    map[string]interface{}
}

// ActivityStore appends audit records. The engine treats it as best-effort:
// append failures are logged and swallowed, never surfaced to callers.
type ActivityStore interface {
	Append(entry ActivityEntry) error
}

// FileStore removes stored submission archives. Used only for best-effort
// cleanup during deletion.
type FileStore interface {
	Remove(key string) error
}
