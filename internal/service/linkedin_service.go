package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	config "github.com/ribotflowdeveloper-hub/ribotflow-sub005/configs"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/models"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/repository"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/transfer"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"
)

type LinkedinService interface {
	ProviderPublisher
	RefreshLinkedinToken(ctx context.Context, cred *models.ProviderCredential) error
}

type linkedinService struct {
	cfg    config.Config
	cr     repository.CredentialRepository
	client *http.Client
	media  MediaService
}

func NewLinkedinService(cfg config.Config, cr repository.CredentialRepository, client *http.Client, media MediaService) LinkedinService {
	return &linkedinService{
		cfg:    cfg,
		cr:     cr,
		client: client,
		media:  media,
	}
}

func (s *linkedinService) DisplayName() string {
	return "LinkedIn"
}

// Publish registers an upload per media item, pushes the raw bytes to the
// returned upload URL and submits one UGC post referencing every asset. The
// upload handshake is synchronous; assets are usable right after the PUT.
func (s *linkedinService) Publish(ctx context.Context, post *models.ScheduledPost, cred *models.ProviderCredential) error {
	if !cred.ProviderUserID.Valid || cred.ProviderUserID.String == "" {
		return errors.New("linkedin credential is missing the member id")
	}

	accessToken, err := utils.Decrypt(cred.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return fmt.Errorf("error decrypting linkedin access token: %w", err)
	}

	author := cred.ProviderUserID.String
	if !strings.HasPrefix(author, "urn:") {
		author = "urn:li:person:" + author
	}

	assets := make([]string, 0, len(post.MediaURLs))
	for _, mediaURL := range post.MediaURLs {
		asset, err := s.uploadMedia(ctx, author, accessToken, mediaURL, post.MediaKind.String)
		if err != nil {
			return err
		}
		assets = append(assets, asset)
	}

	return s.createUGCPost(ctx, author, accessToken, post, assets)
}

func (s *linkedinService) uploadMedia(ctx context.Context, owner, accessToken, mediaURL, mediaKind string) (string, error) {
	recipe := "urn:li:digitalmediaRecipe:feedshare-image"
	if mediaKind == models.MediaKindVideo {
		recipe = "urn:li:digitalmediaRecipe:feedshare-video"
	}

	var registerReq transfer.LinkedinRegisterUploadRequest
	registerReq.RegisterUploadRequest.Recipes = []string{recipe}
	registerReq.RegisterUploadRequest.Owner = owner
	registerReq.RegisterUploadRequest.ServiceRelationships = []transfer.LinkedinServiceRelationship{
		{RelationshipType: "OWNER", Identifier: "urn:li:userGeneratedContent"},
	}

	body, err := json.Marshal(registerReq)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	reqURL := fmt.Sprintf("%s/assets?action=registerUpload", s.cfg.LinkedinAPIBaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", linkedinError(resp.StatusCode, respBody)
	}

	var registerResp transfer.LinkedinRegisterUploadResponse
	if err := json.Unmarshal(respBody, &registerResp); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	uploadURL := registerResp.Value.UploadMechanism.MediaUploadHTTPRequest.UploadURL
	asset := registerResp.Value.Asset
	if uploadURL == "" || asset == "" {
		return "", errors.New("no upload URL returned from LinkedIn")
	}

	data, contentType, err := s.media.Fetch(ctx, mediaURL)
	if err != nil {
		return "", err
	}
	if !MatchesKind(contentType, mediaKind) {
		return "", fmt.Errorf("media %s is %s, expected %s", mediaURL, contentType, mediaKind)
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("error creating upload request: %w", err)
	}
	putReq.Header.Set("Authorization", "Bearer "+accessToken)
	putReq.Header.Set("Content-Type", contentType)
	// registerUpload may hand back headers the upload endpoint requires.
	for key, value := range registerResp.Value.UploadMechanism.MediaUploadHTTPRequest.Headers {
		putReq.Header.Set(key, value)
	}

	putResp, err := s.client.Do(putReq)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer putResp.Body.Close()

	if putResp.StatusCode < http.StatusOK || putResp.StatusCode >= http.StatusMultipleChoices {
		putBody, _ := io.ReadAll(putResp.Body)
		return "", linkedinError(putResp.StatusCode, putBody)
	}

	return asset, nil
}

func (s *linkedinService) createUGCPost(ctx context.Context, author, accessToken string, post *models.ScheduledPost, assets []string) error {
	mediaCategory := "NONE"
	if len(assets) > 0 {
		mediaCategory = "IMAGE"
		if post.MediaKind.String == models.MediaKindVideo {
			mediaCategory = "VIDEO"
		}
	}

	ugcPost := transfer.LinkedinUGCPost{
		Author:         author,
		LifecycleState: "PUBLISHED",
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	ugcPost.SpecificContent.ShareContent.ShareCommentary.Text = post.Content.String
	ugcPost.SpecificContent.ShareContent.ShareMediaCategory = mediaCategory
	for _, asset := range assets {
		ugcPost.SpecificContent.ShareContent.Media = append(ugcPost.SpecificContent.ShareContent.Media, transfer.LinkedinMedia{
			Status: "READY",
			Media:  asset,
		})
	}

	body, err := json.Marshal(ugcPost)
	if err != nil {
		return fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.LinkedinAPIBaseURL+"/ugcPosts", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return linkedinError(resp.StatusCode, respBody)
	}

	return nil
}

// RefreshLinkedinToken runs the OAuth2 refresh grant and stores the new pair.
func (s *linkedinService) RefreshLinkedinToken(ctx context.Context, cred *models.ProviderCredential) error {
	if !cred.RefreshToken.Valid || cred.RefreshToken.String == "" {
		return errors.New("linkedin credential has no refresh token")
	}

	refreshToken, err := utils.Decrypt(cred.RefreshToken.String, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	oauth2Config := &oauth2.Config{
		ClientID:     s.cfg.LinkedinClientID,
		ClientSecret: s.cfg.LinkedinClientSecret,
		Endpoint:     linkedin.Endpoint,
	}

	token, err := oauth2Config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	updated := *cred
	updated.AccessToken = encryptedAccessToken
	if token.RefreshToken != "" {
		encryptedRefreshToken, err := utils.Encrypt([]byte(token.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return err
		}
		updated.RefreshToken.Valid = true
		updated.RefreshToken.String = encryptedRefreshToken
	}
	updated.TokenExpiresAt.Valid = true
	updated.TokenExpiresAt.Time = token.Expiry

	return s.cr.SetToken(ctx, cred.ID, &updated)
}

func linkedinError(statusCode int, body []byte) error {
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("linkedin API error (status %d): %s", statusCode, apiErr.Message)
	}
	return fmt.Errorf("linkedin API error (status %d): %s", statusCode, strings.TrimSpace(string(body)))
}
