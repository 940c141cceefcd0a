package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/models"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/repository"
)

// PostService is the read/retry surface the management API exposes over
// scheduled posts. Composing posts happens upstream; only retrying a failed or
// partially published post mutates state from here.
type PostService interface {
	List(ctx context.Context, userID int64) ([]*models.ScheduledPost, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.ScheduledPost, error)
	Retry(ctx context.Context, userID, postID int64) error
}

var ErrPostNotRetryable = errors.New("post is not in a retryable state")

type postService struct {
	pr repository.ScheduledPostRepository
}

func NewPostService(pr repository.ScheduledPostRepository) PostService {
	return &postService{pr: pr}
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	return s.pr.ListByUserID(ctx, userID)
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.ScheduledPost, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.UserID != userID {
		return nil, errors.New("post not found")
	}
	return post, nil
}

func (s *postService) Retry(ctx context.Context, userID, postID int64) error {
	retried, err := s.pr.Retry(ctx, postID, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if !retried {
		return ErrPostNotRetryable
	}
	return nil
}
