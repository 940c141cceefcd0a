package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/models"
)

type ScheduledPostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledPost, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error)
	Claim(ctx context.Context, id int64) (bool, error)
	UpdatePostStatus(ctx context.Context, status string, postID int64) error
	UpdateOutcome(ctx context.Context, status string, postID int64, publishedAt time.Time) error
	Retry(ctx context.Context, id, userID int64) (bool, error)
}

type scheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) ScheduledPostRepository {
	return &scheduledPostRepository{db: db}
}

const postColumns = `id, user_id, team_id, content, media_urls, media_kind, providers, scheduled_at, status, published_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.ScheduledPost, error) {
	var post models.ScheduledPost
	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.TeamID,
		&post.Content,
		&post.MediaURLs,
		&post.MediaKind,
		&post.Providers,
		&post.ScheduledAt,
		&post.Status,
		&post.PublishedAt,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *scheduledPostRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + ` FROM scheduled_posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *scheduledPostRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + ` FROM scheduled_posts WHERE status = $1 AND scheduled_at <= $2 ORDER BY scheduled_at ASC LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, models.PostStatusScheduled, now, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (r *scheduledPostRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + postColumns + ` FROM scheduled_posts WHERE user_id = $1 ORDER BY scheduled_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Claim flips a post from scheduled to processing. It reports false when another
// invocation already took the post, so overlapping sweeps never double-publish.
func (r *scheduledPostRepository) Claim(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusProcessing, time.Now(), id, models.PostStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	return affected == 1, nil
}

func (r *scheduledPostRepository) UpdatePostStatus(ctx context.Context, status string, postID int64) error {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduledPostRepository) UpdateOutcome(ctx context.Context, status string, postID int64, publishedAt time.Time) error {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			published_at = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, status, publishedAt, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Retry puts a failed or partially published post of the given user back into the
// scheduled state. It reports false when the post is not in a retryable status.
func (r *scheduledPostRepository) Retry(ctx context.Context, id, userID int64) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			published_at = NULL,
			updated_at = $2
		WHERE id = $3 AND user_id = $4 AND status = ANY($5)
	`
	retryable := pq.StringArray{models.PostStatusFailed, models.PostStatusPartialSuccess}
	result, err := r.db.ExecContext(ctx, query, models.PostStatusScheduled, time.Now(), id, userID, retryable)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	return affected == 1, nil
}
