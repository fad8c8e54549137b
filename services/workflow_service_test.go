package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-review-api/models"
)

func TestClaimPendingSubmission(t *testing.T) {
	f := newFakeStore()
	contributor := f.addUser("alice", models.RoleContributor, true)
	reviewer := f.addUser("bob", models.RoleReviewer, true)
	id := f.addSubmission(models.StatusPending, contributor, nil, time.Now())

	svc := newTestService(f)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	submission, err := svc.Claim(id, reviewer)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClaimed, submission.Status)
	require.NotNil(t, submission.ClaimedByID)
	assert.Equal(t, reviewer, *submission.ClaimedByID)
	require.NotNil(t, submission.AssignedAt)
	assert.Equal(t, at, *submission.AssignedAt)

	stored := f.submissions[id]
	assert.Equal(t, models.StatusClaimed, stored.Status)
	assert.NotNil(t, stored.ClaimedByID)
}

func TestClaimUnknownSubmission(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)

	_, err := svc.Claim(uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClaimNonPendingSubmissionLeavesRecordUnchanged(t *testing.T) {
	for _, status := range []models.TaskStatus{models.StatusClaimed, models.StatusEligible, models.StatusApproved} {
		t.Run(string(status), func(t *testing.T) {
			f := newFakeStore()
			contributor := f.addUser("alice", models.RoleContributor, true)
			holder := f.addUser("carol", models.RoleReviewer, true)
			id := f.addSubmission(status, contributor, &holder, time.Now())

			svc := newTestService(f)
			_, err := svc.Claim(id, f.addUser("bob", models.RoleReviewer, true))
			assert.ErrorIs(t, err, ErrInvalidState)

			stored := f.submissions[id]
			assert.Equal(t, status, stored.Status)
			assert.Equal(t, holder, *stored.ClaimedByID)
		})
	}
}

func TestClaimLosesRace(t *testing.T) {
	f := newFakeStore()
	contributor := f.addUser("alice", models.RoleContributor, true)
	id := f.addSubmission(models.StatusPending, contributor, nil, time.Now())

	// The conditional write reports zero rows even though our read saw
	// PENDING, as happens when another claim lands in between.
	f.forceClaimFail = true

	svc := newTestService(f)
	_, err := svc.Claim(id, f.addUser("bob", models.RoleReviewer, true))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPendingIffUnclaimed(t *testing.T) {
	f := newFakeStore()
	contributor := f.addUser("alice", models.RoleContributor, true)
	reviewer := f.addUser("bob", models.RoleReviewer, true)
	pending := f.addSubmission(models.StatusPending, contributor, nil, time.Now())
	claimed := f.addSubmission(models.StatusPending, contributor, nil, time.Now())

	svc := newTestService(f)
	_, err := svc.Claim(claimed, reviewer)
	require.NoError(t, err)

	for id, submission := range f.submissions {
		if submission.Status == models.StatusPending {
			assert.Nil(t, submission.ClaimedByID, "pending submission %s must be unclaimed", id)
		} else {
			assert.NotNil(t, submission.ClaimedByID, "non-pending submission %s must be claimed", id)
		}
	}
	assert.Equal(t, models.StatusPending, f.submissions[pending].Status)
}

func TestSubmitFeedbackWithoutEligibility(t *testing.T) {
	f := newFakeStore()
	contributor := f.addUser("alice", models.RoleContributor, true)
	reviewer := f.addUser("bob", models.RoleReviewer, true)
	id := f.addSubmission(models.StatusClaimed, contributor, &reviewer, time.Now())

	svc := newTestService(f)
	review, err := svc.SubmitFeedback(id, reviewer, "needs work", nil, false)
	require.NoError(t, err)
	assert.Equal(t, id, review.SubmissionID)
	assert.Equal(t, reviewer, review.ReviewerID)
	assert.Len(t, f.reviews, 1)

	// Status untouched.
	assert.Equal(t, models.StatusClaimed, f.submissions[id].Status)
}

func TestSubmitFeedbackMarksEligibleFromAnyStatus(t *testing.T) {
	// Includes APPROVED: feedback can pull a submission back to ELIGIBLE.
	// Current shipped behavior, kept until product says otherwise.
	for _, status := range []models.TaskStatus{models.StatusPending, models.StatusClaimed, models.StatusEligible, models.StatusApproved} {
		t.Run(string(status), func(t *testing.T) {
			f := newFakeStore()
			contributor := f.addUser("alice", models.RoleContributor, true)
			reviewer := f.addUser("bob", models.RoleReviewer, true)
			id := f.addSubmission(status, contributor, &reviewer, time.Now())

			svc := newTestService(f)
			_, err := svc.SubmitFeedback(id, reviewer, "ship it", nil, true)
			require.NoError(t, err)
			assert.Equal(t, models.StatusEligible, f.submissions[id].Status)
			assert.Len(t, f.reviews, 1)
		})
	}
}

func TestSubmitFeedbackUnknownSubmission(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)

	_, err := svc.SubmitFeedback(uuid.New(), uuid.New(), "hello", nil, true)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.reviews)
}

func TestApproveEligibleSubmission(t *testing.T) {
	f := newFakeStore()
	contributor := f.addUser("alice", models.RoleContributor, true)
	reviewer := f.addUser("bob", models.RoleReviewer, true)
	id := f.addSubmission(models.StatusEligible, contributor, &reviewer, time.Now())

	svc := newTestService(f)
	submission, err := svc.Approve(id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, submission.Status)
	assert.Equal(t, models.StatusApproved, f.submissions[id].Status)
}

func TestApproveNonEligibleLeavesRecordUnchanged(t *testing.T) {
	for _, status := range []models.TaskStatus{models.StatusPending, models.StatusClaimed, models.StatusApproved} {
		t.Run(string(status), func(t *testing.T) {
			f := newFakeStore()
			contributor := f.addUser("alice", models.RoleContributor, true)
			id := f.addSubmission(status, contributor, nil, time.Now())

			svc := newTestService(f)
			_, err := svc.Approve(id)
			assert.ErrorIs(t, err, ErrInvalidState)
			assert.Equal(t, status, f.submissions[id].Status)
		})
	}
}

func TestApproveUnknownSubmission(t *testing.T) {
	svc := newTestService(newFakeStore())
	_, err := svc.Approve(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCascadesReviewsAndRemovesFile(t *testing.T) {
	f := newFakeStore()
	contributor := f.addUser("alice", models.RoleContributor, true)
	reviewer := f.addUser("bob", models.RoleReviewer, true)
	id := f.addSubmission(models.StatusClaimed, contributor, &reviewer, time.Now())
	other := f.addSubmission(models.StatusClaimed, contributor, &reviewer, time.Now())
	f.addReview(id, reviewer)
	f.addReview(id, reviewer)
	f.addReview(other, reviewer)

	svc := newTestService(f)
	deletedID, err := svc.Delete(id, contributor, models.RoleContributor)
	require.NoError(t, err)
	assert.Equal(t, id, deletedID)

	_, exists := f.submissions[id]
	assert.False(t, exists)
	for _, review := range f.reviews {
		assert.NotEqual(t, id, review.SubmissionID, "no review may reference the deleted submission")
	}
	assert.Len(t, f.reviews, 1)
	assert.Equal(t, []string{"archive.zip"}, f.removedKeys)

	require.Len(t, f.entries, 1)
	assert.Equal(t, "DELETE", f.entries[0].Action)
}

func TestDeletePermissions(t *testing.T) {
	f := newFakeStore()
	owner := f.addUser("alice", models.RoleContributor, true)
	stranger := f.addUser("eve", models.RoleContributor, true)
	reviewer := f.addUser("bob", models.RoleReviewer, true)
	admin := f.addUser("root", models.RoleAdmin, true)
	id := f.addSubmission(models.StatusPending, owner, nil, time.Now())

	svc := newTestService(f)

	_, err := svc.Delete(id, stranger, models.RoleContributor)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Delete(id, reviewer, models.RoleReviewer)
	assert.ErrorIs(t, err, ErrForbidden)

	_, exists := f.submissions[id]
	assert.True(t, exists)

	_, err = svc.Delete(id, admin, models.RoleAdmin)
	require.NoError(t, err)
}

func TestDeleteProceedsWhenFileRemovalFails(t *testing.T) {
	f := newFakeStore()
	contributor := f.addUser("alice", models.RoleContributor, true)
	id := f.addSubmission(models.StatusPending, contributor, nil, time.Now())
	f.removeErr = errors.New("bucket unavailable")

	svc := newTestService(f)
	_, err := svc.Delete(id, contributor, models.RoleContributor)
	require.NoError(t, err)

	_, exists := f.submissions[id]
	assert.False(t, exists)
}

func TestDeleteSwallowsActivityLogFailure(t *testing.T) {
	f := newFakeStore()
	contributor := f.addUser("alice", models.RoleContributor, true)
	id := f.addSubmission(models.StatusPending, contributor, nil, time.Now())
	f.appendErr = errors.New("log sink down")

	svc := newTestService(f)
	_, err := svc.Delete(id, contributor, models.RoleContributor)
	require.NoError(t, err)
}

func TestSuggestNextTask(t *testing.T) {
	f := newFakeStore()
	contributor := f.addUser("alice", models.RoleContributor, true)
	busy := f.addUser("busy", models.RoleReviewer, true)
	idle := f.addUser("idle", models.RoleReviewer, true)

	// busy holds two claims, one of them already APPROVED. The suggestion
	// metric counts both, so idle (zero claims) wins.
	f.addSubmission(models.StatusApproved, contributor, &busy, time.Now().Add(-3*time.Hour))
	f.addSubmission(models.StatusClaimed, contributor, &busy, time.Now().Add(-2*time.Hour))

	oldest := f.addSubmission(models.StatusPending, contributor, nil, time.Now().Add(-time.Hour))
	f.addSubmission(models.StatusPending, contributor, nil, time.Now())

	svc := newTestService(f)
	next, err := svc.SuggestNextTask()
	require.NoError(t, err)
	assert.Equal(t, oldest, next.Submission.ID)
	assert.Equal(t, idle, next.SuggestedReviewerID)
}

func TestSuggestNextTaskNoReviewers(t *testing.T) {
	f := newFakeStore()
	contributor := f.addUser("alice", models.RoleContributor, true)
	f.addSubmission(models.StatusPending, contributor, nil, time.Now())

	svc := newTestService(f)
	_, err := svc.SuggestNextTask()
	assert.ErrorIs(t, err, ErrNoReviewers)
}

func TestSuggestNextTaskNothingPending(t *testing.T) {
	f := newFakeStore()
	f.addUser("bob", models.RoleReviewer, true)

	svc := newTestService(f)
	_, err := svc.SuggestNextTask()
	assert.ErrorIs(t, err, ErrNoPendingTasks)
}

func TestReviewerWorkloadExcludesApproved(t *testing.T) {
	f := newFakeStore()
	contributor := f.addUser("alice", models.RoleContributor, true)
	reviewer := f.addUser("bob", models.RoleReviewer, true)
	f.addSubmission(models.StatusClaimed, contributor, &reviewer, time.Now())
	f.addSubmission(models.StatusEligible, contributor, &reviewer, time.Now())
	f.addSubmission(models.StatusApproved, contributor, &reviewer, time.Now())

	svc := newTestService(f)
	tasks, err := svc.ReviewerWorkload(reviewer)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}
