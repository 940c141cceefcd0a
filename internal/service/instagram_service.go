package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	config "github.com/ribotflowdeveloper-hub/ribotflow-sub005/configs"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/models"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/repository"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/transfer"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/pkg/utils"
)

type InstagramService interface {
	ProviderPublisher
	RefreshInstagramToken(ctx context.Context, cred *models.ProviderCredential) error
}

type instagramService struct {
	cfg    config.Config
	cr     repository.CredentialRepository
	client *http.Client
	media  MediaService
}

func NewInstagramService(cfg config.Config, cr repository.CredentialRepository, client *http.Client, media MediaService) InstagramService {
	return &instagramService{
		cfg:    cfg,
		cr:     cr,
		client: client,
		media:  media,
	}
}

func (s *instagramService) DisplayName() string {
	return "Instagram"
}

// Publish creates one or more media containers for the post, waits until the
// container is ready and publishes it. Instagram has no text-only posts, so a
// post without media fails before any network call.
func (s *instagramService) Publish(ctx context.Context, post *models.ScheduledPost, cred *models.ProviderCredential) error {
	if !cred.AccountID.Valid || cred.AccountID.String == "" {
		return errors.New("instagram credential is missing the business account id")
	}

	accessToken, err := utils.Decrypt(cred.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return fmt.Errorf("error decrypting instagram access token: %w", err)
	}

	if len(post.MediaURLs) == 0 {
		return errors.New("instagram posts need at least one media item")
	}

	accountID := cred.AccountID.String
	caption := post.Content.String

	var containerID string
	if len(post.MediaURLs) == 1 {
		containerID, err = s.createItemContainer(ctx, accountID, accessToken, post.MediaURLs[0], post.MediaKind.String, caption, false)
	} else {
		containerID, err = s.createCarouselContainer(ctx, accountID, accessToken, post, caption)
	}
	if err != nil {
		return err
	}

	err = WaitForMedia(ctx, func(ctx context.Context) (MediaStatus, string, error) {
		return s.containerStatus(ctx, containerID, accessToken)
	}, mediaPollInterval, mediaPollMaxAttempts)
	if err != nil {
		return err
	}

	return s.publishContainer(ctx, accountID, containerID, accessToken)
}

// createItemContainer submits one media container. For carousels the item
// containers carry no caption; the parent does.
func (s *instagramService) createItemContainer(ctx context.Context, accountID, accessToken, mediaURL, mediaKind, caption string, carouselItem bool) (string, error) {
	resolvedURL, err := s.media.ResolveURL(ctx, mediaURL)
	if err != nil {
		return "", err
	}

	payload := map[string]interface{}{
		"access_token": accessToken,
	}
	if mediaKind == models.MediaKindVideo {
		payload["media_type"] = "VIDEO"
		payload["video_url"] = resolvedURL
	} else {
		payload["image_url"] = resolvedURL
	}
	if carouselItem {
		payload["is_carousel_item"] = true
	} else if caption != "" {
		payload["caption"] = caption
	}

	return s.postForContainer(ctx, fmt.Sprintf("%s/%s/media", s.cfg.GraphAPIBaseURL, accountID), payload)
}

func (s *instagramService) createCarouselContainer(ctx context.Context, accountID, accessToken string, post *models.ScheduledPost, caption string) (string, error) {
	children := make([]string, 0, len(post.MediaURLs))
	for _, mediaURL := range post.MediaURLs {
		childID, err := s.createItemContainer(ctx, accountID, accessToken, mediaURL, post.MediaKind.String, "", true)
		if err != nil {
			return "", err
		}
		children = append(children, childID)
	}

	payload := map[string]interface{}{
		"media_type":   "CAROUSEL",
		"children":     children,
		"access_token": accessToken,
	}
	if caption != "" {
		payload["caption"] = caption
	}

	return s.postForContainer(ctx, fmt.Sprintf("%s/%s/media", s.cfg.GraphAPIBaseURL, accountID), payload)
}

func (s *instagramService) postForContainer(ctx context.Context, reqURL string, payload map[string]interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", graphError(resp.StatusCode, respBody)
	}

	var result transfer.GraphContainerResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	if result.ID == "" {
		return "", errors.New("no container ID returned from Instagram")
	}

	return result.ID, nil
}

func (s *instagramService) containerStatus(ctx context.Context, containerID, accessToken string) (MediaStatus, string, error) {
	reqURL := fmt.Sprintf("%s/%s?fields=status_code,status&access_token=%s", s.cfg.GraphAPIBaseURL, containerID, url.QueryEscape(accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return MediaStatusPending, "", fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return MediaStatusPending, "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return MediaStatusPending, "", fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return MediaStatusPending, "", graphError(resp.StatusCode, respBody)
	}

	var status transfer.GraphContainerStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		return MediaStatusPending, "", fmt.Errorf("error parsing response: %w", err)
	}

	switch status.StatusCode {
	case "FINISHED", "PUBLISHED":
		return MediaStatusFinished, "", nil
	case "ERROR", "EXPIRED":
		detail := status.Status
		if detail == "" {
			detail = status.StatusCode
		}
		return MediaStatusError, detail, nil
	default:
		return MediaStatusPending, "", nil
	}
}

func (s *instagramService) publishContainer(ctx context.Context, accountID, containerID, accessToken string) error {
	reqURL := fmt.Sprintf("%s/%s/media_publish", s.cfg.GraphAPIBaseURL, accountID)
	payload := map[string]string{
		"creation_id":  containerID,
		"access_token": accessToken,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return graphError(resp.StatusCode, respBody)
	}

	return nil
}

// RefreshInstagramToken extends the long-lived token and stores it back.
func (s *instagramService) RefreshInstagramToken(ctx context.Context, cred *models.ProviderCredential) error {
	accessToken, err := utils.Decrypt(cred.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	reqURL := fmt.Sprintf(
		"https://graph.instagram.com/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		url.QueryEscape(accessToken),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	if result.AccessToken == "" {
		return errors.New("no access token returned from Instagram")
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(result.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	updated := *cred
	updated.AccessToken = encryptedAccessToken
	updated.TokenExpiresAt.Valid = true
	updated.TokenExpiresAt.Time = GetExpiresAt(result.ExpiresIn)

	return s.cr.SetToken(ctx, cred.ID, &updated)
}

// graphError keeps the Graph error payload intact for the notification text.
func graphError(statusCode int, body []byte) error {
	var graphErr transfer.GraphErrorResponse
	if err := json.Unmarshal(body, &graphErr); err == nil && graphErr.Error.Message != "" {
		return fmt.Errorf("graph API error (status %d): %s", statusCode, graphErr.Error.Message)
	}
	return fmt.Errorf("graph API error (status %d): %s", statusCode, strings.TrimSpace(string(body)))
}
