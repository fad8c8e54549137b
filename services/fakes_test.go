package services

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"task-review-api/models"
)

// fakeStore is an in-memory implementation of every store interface the
// workflow engine consumes. One instance backs all of them so cross-entity
// behavior (review cascade on delete) can be asserted.
type fakeStore struct {
	users       []models.User
	submissions map[uuid.UUID]*models.Submission
	reviews     []models.Review
	entries     []ActivityEntry
	removedKeys []string

	appendErr      error
	removeErr      error
	forceClaimFail bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{submissions: make(map[uuid.UUID]*models.Submission)}
}

func (f *fakeStore) addUser(name string, role models.UserRole, approved bool) uuid.UUID {
	user := models.User{
		ID:         uuid.New(),
		Email:      name + "@example.org",
		Name:       name,
		Role:       role,
		IsApproved: approved,
		CreatedAt:  time.Now(),
	}
	f.users = append(f.users, user)
	return user.ID
}

func (f *fakeStore) addSubmission(status models.TaskStatus, contributorID uuid.UUID, claimedBy *uuid.UUID, createdAt time.Time) uuid.UUID {
	submission := &models.Submission{
		ID:            uuid.New(),
		Title:         "task-" + createdAt.Format("150405.000"),
		Domain:        "general",
		Language:      "go",
		FileKey:       "archive.zip",
		FileName:      "archive.zip",
		Status:        status,
		ContributorID: contributorID,
		ClaimedByID:   claimedBy,
		CreatedAt:     createdAt,
	}
	if claimedBy != nil {
		at := createdAt
		submission.AssignedAt = &at
	}
	f.submissions[submission.ID] = submission
	return submission.ID
}

func (f *fakeStore) addReview(submissionID, reviewerID uuid.UUID) {
	f.reviews = append(f.reviews, models.Review{
		ID:           uuid.New(),
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		Feedback:     "looks fine",
	})
}

// SubmissionStore

func (f *fakeStore) FindByID(id uuid.UUID) (*models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return nil, nil
	}
	cp := *submission
	return &cp, nil
}

func (f *fakeStore) pendingUnassigned() []models.Submission {
	var out []models.Submission
	for _, submission := range f.submissions {
		if submission.Status == models.StatusPending && submission.ClaimedByID == nil {
			out = append(out, *submission)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (f *fakeStore) FindPendingUnassigned() ([]models.Submission, error) {
	return f.pendingUnassigned(), nil
}

func (f *fakeStore) OldestPendingUnassigned() (*models.Submission, error) {
	pending := f.pendingUnassigned()
	if len(pending) == 0 {
		return nil, nil
	}
	return &pending[0], nil
}

func (f *fakeStore) FindActiveForReviewer(reviewerID uuid.UUID) ([]models.Submission, error) {
	var out []models.Submission
	for _, submission := range f.submissions {
		if submission.ClaimedByID == nil || *submission.ClaimedByID != reviewerID {
			continue
		}
		for _, status := range models.ActiveStatuses {
			if submission.Status == status {
				out = append(out, *submission)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ClaimIfPending(id, reviewerID uuid.UUID, at time.Time) (bool, error) {
	if f.forceClaimFail {
		return false, nil
	}
	submission, ok := f.submissions[id]
	if !ok || submission.Status != models.StatusPending || submission.ClaimedByID != nil {
		return false, nil
	}
	submission.Status = models.StatusClaimed
	submission.ClaimedByID = &reviewerID
	submission.AssignedAt = &at
	return true, nil
}

func (f *fakeStore) UpdateIfStatus(id uuid.UUID, expect models.TaskStatus, fields map[string]interface{}) (bool, error) {
	submission, ok := f.submissions[id]
	if !ok || submission.Status != expect {
		return false, nil
	}
	if status, ok := fields["status"]; ok {
		submission.Status = status.(models.TaskStatus)
	}
	return true, nil
}

func (f *fakeStore) SetStatus(id uuid.UUID, status models.TaskStatus) error {
	submission, ok := f.submissions[id]
	if !ok {
		return errors.New("missing submission")
	}
	submission.Status = status
	return nil
}

func (f *fakeStore) Delete(id uuid.UUID) error {
	delete(f.submissions, id)
	kept := f.reviews[:0]
	for _, review := range f.reviews {
		if review.SubmissionID != id {
			kept = append(kept, review)
		}
	}
	f.reviews = kept
	return nil
}

func (f *fakeStore) CountForReviewer(reviewerID uuid.UUID, statuses ...models.TaskStatus) (int64, error) {
	var count int64
	for _, submission := range f.submissions {
		if submission.ClaimedByID == nil || *submission.ClaimedByID != reviewerID {
			continue
		}
		if len(statuses) == 0 {
			count++
			continue
		}
		for _, status := range statuses {
			if submission.Status == status {
				count++
				break
			}
		}
	}
	return count, nil
}

func (f *fakeStore) CountByStatus() (map[models.TaskStatus]int64, error) {
	counts := make(map[models.TaskStatus]int64)
	for _, submission := range f.submissions {
		counts[submission.Status]++
	}
	return counts, nil
}

// UserStore

func (f *fakeStore) FindApprovedReviewers() ([]models.User, error) {
	var out []models.User
	for _, user := range f.users {
		if (user.Role == models.RoleReviewer || user.Role == models.RoleAdmin) && user.IsApproved {
			out = append(out, user)
		}
	}
	return out, nil
}

// ReviewStore

func (f *fakeStore) Create(review *models.Review) error {
	review.ID = uuid.New()
	f.reviews = append(f.reviews, *review)
	return nil
}

// ActivityStore

func (f *fakeStore) Append(entry ActivityEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

// FileStore

func (f *fakeStore) Remove(key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removedKeys = append(f.removedKeys, key)
	return nil
}

func newTestService(f *fakeStore) *WorkflowService {
	return NewWorkflowService(f, f, f, f, f)
}
