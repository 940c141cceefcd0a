package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPostRepo struct {
	post     *models.ScheduledPost
	retried  bool
	retryErr error
}

func (s *stubPostRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	return s.post, nil
}

func (s *stubPostRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledPost, error) {
	return nil, nil
}

func (s *stubPostRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	return nil, nil
}

func (s *stubPostRepo) Claim(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func (s *stubPostRepo) UpdatePostStatus(ctx context.Context, status string, postID int64) error {
	return nil
}

func (s *stubPostRepo) UpdateOutcome(ctx context.Context, status string, postID int64, publishedAt time.Time) error {
	return nil
}

func (s *stubPostRepo) Retry(ctx context.Context, id, userID int64) (bool, error) {
	return s.retried, s.retryErr
}

func TestPostService_RetryNotRetryable(t *testing.T) {
	s := NewPostService(&stubPostRepo{retried: false})

	err := s.Retry(context.Background(), 7, 1)

	assert.ErrorIs(t, err, ErrPostNotRetryable)
}

func TestPostService_RetryPropagatesRepositoryError(t *testing.T) {
	repoErr := errors.New("pq: connection refused")
	s := NewPostService(&stubPostRepo{retryErr: repoErr})

	err := s.Retry(context.Background(), 7, 1)

	assert.ErrorIs(t, err, repoErr)
	assert.NotErrorIs(t, err, ErrPostNotRetryable)
}

func TestPostService_PostInfoEnforcesOwnership(t *testing.T) {
	post := &models.ScheduledPost{ID: 1, UserID: 7}
	s := NewPostService(&stubPostRepo{post: post})

	found, err := s.PostInfo(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, post, found)

	_, err = s.PostInfo(context.Background(), 1, 8)
	assert.Error(t, err)
}
