package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/models"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/repository"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/service"
)

type TokenRefreshJob struct {
	cr repository.CredentialRepository
	li service.LinkedinService
	fb service.FacebookService
	ig service.InstagramService
}

func NewTokenRefreshJob(
	cr repository.CredentialRepository,
	li service.LinkedinService,
	fb service.FacebookService,
	ig service.InstagramService) *TokenRefreshJob {
	return &TokenRefreshJob{
		cr: cr,
		li: li,
		fb: fb,
		ig: ig,
	}
}

// RefreshTokens refreshes every credential expiring within the next half hour.
// The publish path never refreshes; it expects tokens kept valid from here.
func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	creds, err := c.cr.ListByExpiryInterval(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, cred := range creds {

		wg.Add(1)
		semaphore <- struct{}{}

		go func(cred *models.ProviderCredential) {
			defer wg.Done()
			defer func() { <-semaphore }()

			switch cred.Provider {
			case models.ProviderLinkedin:
				if err := c.li.RefreshLinkedinToken(ctx, cred); err != nil {
					slog.Info("Unable to refresh token for LinkedIn", "team_id", cred.TeamID)
				}

			case models.ProviderFacebook:
				if err := c.fb.RefreshFacebookToken(ctx, cred); err != nil {
					slog.Info("Unable to refresh token for Facebook", "team_id", cred.TeamID)
				}

			case models.ProviderInstagram:
				if err := c.ig.RefreshInstagramToken(ctx, cred); err != nil {
					slog.Info("Unable to refresh token for Instagram", "team_id", cred.TeamID)
				}
			}
		}(cred)
	}

	wg.Wait()
}
