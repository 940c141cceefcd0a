package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) (int64, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Notification, error)
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) (int64, error) {
	query := `
		INSERT INTO notifications (user_id, team_id, message, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, n.UserID, n.TeamID, n.Message, n.Type).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *notificationRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Notification, error) {
	query := `SELECT id, user_id, team_id, message, type, created_at FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.TeamID, &n.Message, &n.Type, &n.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, nil
}
