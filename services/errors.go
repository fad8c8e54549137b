package services

import "errors"

// Workflow outcomes callers are expected to branch on with errors.Is. The
// API layer maps each to a distinct HTTP status.
var (
	// ErrNotFound means the submission or user id did not resolve.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidState means the operation's status precondition was not met,
	// including losing a conditional write to a concurrent caller.
	ErrInvalidState = errors.New("submission is not in a valid state for this operation")

	// ErrForbidden means the actor is not allowed to perform the operation.
	ErrForbidden = errors.New("operation not permitted for this user")

	// ErrNoReviewers means no approved reviewer exists to suggest.
	ErrNoReviewers = errors.New("no approved reviewers available")

	// ErrNoPendingTasks means there is no unclaimed pending submission.
	ErrNoPendingTasks = errors.New("no pending tasks available")
)
