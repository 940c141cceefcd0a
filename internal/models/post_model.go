package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type ScheduledPost struct {
	ID          int64          `db:"id" json:"id"`
	UserID      int64          `db:"user_id" json:"user_id"`
	TeamID      sql.NullInt64  `db:"team_id" json:"team_id"`
	Content     sql.NullString `db:"content" json:"content"`
	MediaURLs   pq.StringArray `db:"media_urls" json:"media_urls"`
	MediaKind   sql.NullString `db:"media_kind" json:"media_kind"` // image, video
	Providers   pq.StringArray `db:"providers" json:"providers"`
	ScheduledAt time.Time      `db:"scheduled_at" json:"scheduled_at"`
	Status      string         `db:"status" json:"status"`
	PublishedAt sql.NullTime   `db:"published_at" json:"published_at"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusScheduled      = "scheduled"
	PostStatusProcessing     = "processing"
	PostStatusPublished      = "published"
	PostStatusPartialSuccess = "partial_success"
	PostStatusFailed         = "failed"
	PostStatusError          = "error"
)

const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)
