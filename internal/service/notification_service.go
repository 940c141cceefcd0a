package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/models"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/repository"
)

// NotificationService records one user-facing outcome per publish attempt.
// Writing a notification must never affect the publishing outcome: every
// failure here is logged and swallowed.
type NotificationService interface {
	NotifyAttempt(ctx context.Context, post *models.ScheduledPost, provider string, success bool, attemptErr error)
	NotifySystemFailure(ctx context.Context, post *models.ScheduledPost, message string)
	List(ctx context.Context, userID int64) ([]*models.Notification, error)
}

type notificationService struct {
	nr  repository.NotificationRepository
	loc *time.Location
}

func NewNotificationService(nr repository.NotificationRepository, timeZone string) NotificationService {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		slog.Info(err.Error())
		loc = time.UTC
	}
	return &notificationService{nr: nr, loc: loc}
}

// Provider error payloads can be arbitrarily large; notifications keep an
// excerpt only.
const maxErrorExcerptLen = 180

func (s *notificationService) NotifyAttempt(ctx context.Context, post *models.ScheduledPost, provider string, success bool, attemptErr error) {
	display := providerDisplayName(provider)
	stamp := time.Now().In(s.loc).Format("02/01/2006 15:04")

	var message, notifType string
	if success {
		message = fmt.Sprintf("✅ La publicació a %s s'ha enviat correctament (%s).", display, stamp)
		notifType = models.NotificationPostPublished
	} else {
		detail := ""
		if attemptErr != nil {
			detail = truncate(attemptErr.Error(), maxErrorExcerptLen)
		}
		message = fmt.Sprintf("❌ No s'ha pogut publicar a %s (%s): %s", display, stamp, detail)
		notifType = models.NotificationPostFailed
	}

	s.write(ctx, post, message, notifType)
}

func (s *notificationService) NotifySystemFailure(ctx context.Context, post *models.ScheduledPost, message string) {
	s.write(ctx, post, "❌ "+message, models.NotificationPostFailed)
}

func (s *notificationService) write(ctx context.Context, post *models.ScheduledPost, message, notifType string) {
	if post.UserID == 0 {
		slog.Info("notification skipped: post has no recipient", "post_id", post.ID)
		return
	}

	notification := models.Notification{
		UserID:  post.UserID,
		TeamID:  post.TeamID.Int64,
		Message: message,
		Type:    notifType,
	}
	if _, err := s.nr.Create(ctx, &notification); err != nil {
		slog.Info("error saving notification", "post_id", post.ID, "error", err.Error())
	}
}

func (s *notificationService) List(ctx context.Context, userID int64) ([]*models.Notification, error) {
	return s.nr.ListByUserID(ctx, userID)
}

func providerDisplayName(provider string) string {
	switch provider {
	case models.ProviderLinkedin:
		return "LinkedIn"
	case models.ProviderFacebook:
		return "Facebook"
	case models.ProviderInstagram:
		return "Instagram"
	default:
		if provider == "" {
			return "desconegut"
		}
		return strings.ToUpper(provider[:1]) + provider[1:]
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
