package service

import (
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

type FacebookService interface {
	ProviderPublisher
	RefreshFacebookToken(ctx context.Context, cred *models.ProviderCredential) error
}

type facebookService struct {
	cfg    config.Config
	cr     repository.CredentialRepository
	client *http.Client
	media  MediaService
}

func NewFacebookService(cfg config.Config, cr repository.CredentialRepository, client *http.Client, media MediaService) FacebookService {
	return &facebookService{
		cfg:    cfg,
		cr:     cr,
		client: client,
		media:  media,
	}
}

func (s *facebookService) DisplayName() string {
	return "Facebook"
}

// Publish posts to the team's page feed. Facebook pulls media by URL, so no
// bytes are pushed from here. Several photos become unpublished uploads
// attached to a single feed post.
func (s *facebookService) Publish(ctx context.Context, post *models.ScheduledPost, cred *models.ProviderCredential) error {
	if !cred.AccountID.Valid || cred.AccountID.String == "" {
		return errors.New("facebook credential is missing the page id")
	}

	accessToken, err := utils.Decrypt(cred.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return fmt.Errorf("error decrypting facebook access token: %w", err)
	}

	pageID := cred.AccountID.String
	message := post.Content.String

	switch {
	case len(post.MediaURLs) == 0:
		return s.postTextOnly(ctx, pageID, message, accessToken)
	case post.MediaKind.String == models.MediaKindVideo:
		// Feed posts carry one video; publishing a subset would misrepresent
		// the post, so reject instead of truncating.
		if len(post.MediaURLs) > 1 {
			return fmt.Errorf("facebook posts support a single video, got %d", len(post.MediaURLs))
		}
		return s.postVideo(ctx, pageID, message, post.MediaURLs[0], accessToken)
	case len(post.MediaURLs) == 1:
		return s.postSinglePhoto(ctx, pageID, message, post.MediaURLs[0], accessToken)
	default:
		return s.postMultiplePhotos(ctx, pageID, message, post.MediaURLs, accessToken)
	}
}

func (s *facebookService) postTextOnly(ctx context.Context, pageID, message, accessToken string) error {
	if message == "" {
		return errors.New("facebook text posts need content")
	}

	data := url.Values{}
	data.Set("message", message)
	data.Set("access_token", accessToken)

	_, err := s.graphForm(ctx, fmt.Sprintf("%s/%s/feed", s.cfg.GraphAPIBaseURL, pageID), data)
	return err
}

func (s *facebookService) postSinglePhoto(ctx context.Context, pageID, message, mediaURL, accessToken string) error {
	resolvedURL, err := s.media.ResolveURL(ctx, mediaURL)
	if err != nil {
		return err
	}

	data := url.Values{}
	data.Set("url", resolvedURL)
	data.Set("access_token", accessToken)
	if message != "" {
		data.Set("caption", message)
	}

	_, err = s.graphForm(ctx, fmt.Sprintf("%s/%s/photos", s.cfg.GraphAPIBaseURL, pageID), data)
	return err
}

func (s *facebookService) postMultiplePhotos(ctx context.Context, pageID, message string, mediaURLs []string, accessToken string) error {
	mediaIDs := make([]string, 0, len(mediaURLs))
	for _, mediaURL := range mediaURLs {
		resolvedURL, err := s.media.ResolveURL(ctx, mediaURL)
		if err != nil {
			return err
		}

		data := url.Values{}
		data.Set("url", resolvedURL)
		data.Set("published", "false")
		data.Set("access_token", accessToken)

		result, err := s.graphForm(ctx, fmt.Sprintf("%s/%s/photos", s.cfg.GraphAPIBaseURL, pageID), data)
		if err != nil {
			return err
		}
		mediaIDs = append(mediaIDs, result.ID)
	}

	data := url.Values{}
	data.Set("access_token", accessToken)
	if message != "" {
		data.Set("message", message)
	}
	for i, mediaID := range mediaIDs {
		attached, err := json.Marshal(transfer.FacebookAttachedMedia{MediaFbid: mediaID})
		if err != nil {
			return fmt.Errorf("error marshalling attached media: %w", err)
		}
		data.Set(fmt.Sprintf("attached_media[%d]", i), string(attached))
	}

	_, err := s.graphForm(ctx, fmt.Sprintf("%s/%s/feed", s.cfg.GraphAPIBaseURL, pageID), data)
	return err
}

func (s *facebookService) postVideo(ctx context.Context, pageID, message, mediaURL, accessToken string) error {
	resolvedURL, err := s.media.ResolveURL(ctx, mediaURL)
	if err != nil {
		return err
	}

	data := url.Values{}
	data.Set("file_url", resolvedURL)
	data.Set("access_token", accessToken)
	if message != "" {
		data.Set("description", message)
	}

	_, err = s.graphForm(ctx, fmt.Sprintf("%s/%s/videos", s.cfg.GraphAPIBaseURL, pageID), data)
	return err
}

func (s *facebookService) graphForm(ctx context.Context, reqURL string, data url.Values) (*transfer.FacebookPostResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, graphError(resp.StatusCode, respBody)
	}

	var result transfer.FacebookPostResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	if result.ID == "" && result.PostID == "" {
		return nil, errors.New("no post ID returned from Facebook")
	}

	return &result, nil
}

// RefreshFacebookToken swaps the current long-lived token for a fresh one.
func (s *facebookService) RefreshFacebookToken(ctx context.Context, cred *models.ProviderCredential) error {
	accessToken, err := utils.Decrypt(cred.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	reqURL := fmt.Sprintf(
		"%s/oauth/access_token?grant_type=fb_exchange_token&client_id=%s&client_secret=%s&fb_exchange_token=%s",
		s.cfg.GraphAPIBaseURL,
		url.QueryEscape(s.cfg.FacebookClientID),
		url.QueryEscape(s.cfg.FacebookClientSecret),
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

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return graphError(resp.StatusCode, respBody)
	}

	var tokenResponse transfer.FacebookTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return err
	}
	if tokenResponse.AccessToken == "" {
		return errors.New("no access token returned from Facebook")
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	updated := *cred
	updated.AccessToken = encryptedAccessToken
	updated.TokenExpiresAt.Valid = true
	updated.TokenExpiresAt.Time = GetExpiresAt(tokenResponse.ExpiresIn)

	return s.cr.SetToken(ctx, cred.ID, &updated)
}
