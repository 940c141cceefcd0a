package models

import "time"

type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	TeamID    int64     `db:"team_id" json:"team_id"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	NotificationPostPublished = "post_published"
	NotificationPostFailed    = "post_failed"
)
