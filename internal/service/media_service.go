package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	config "github.com/ribotflowdeveloper-hub/ribotflow-sub005/configs"
)

// MediaService turns the media URLs stored on a post into something a provider
// can consume: raw bytes for networks that want the file pushed to them, and a
// fetchable URL for networks that pull the file themselves. Objects living in
// the team's R2 bucket are presigned before being handed out.
type MediaService interface {
	Fetch(ctx context.Context, mediaURL string) ([]byte, string, error)
	ResolveURL(ctx context.Context, mediaURL string) (string, error)
}

type mediaService struct {
	cfg    config.Config
	client *http.Client
}

func NewMediaService(cfg config.Config, client *http.Client) MediaService {
	return &mediaService{cfg: cfg, client: client}
}

const presignExpiry = 15 * time.Minute

func (m *mediaService) r2Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(m.cfg.R2.AccessKey, m.cfg.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", m.cfg.R2.AccountID))
	}), nil
}

// Fetch downloads the source media bytes and sniffs their content type. A fetch
// failure is a hard error: publishing a subset of the intended media would
// misrepresent the post.
func (m *mediaService) Fetch(ctx context.Context, mediaURL string) ([]byte, string, error) {
	resolved, err := m.ResolveURL(ctx, mediaURL)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return nil, "", fmt.Errorf("error creating media request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("error fetching media %s: %w", mediaURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code %d fetching media %s", resp.StatusCode, mediaURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("error reading media body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return data, contentType, nil
}

// ResolveURL presigns URLs pointing into the configured R2 bucket so providers
// can pull from a private bucket. Any other URL passes through untouched.
func (m *mediaService) ResolveURL(ctx context.Context, mediaURL string) (string, error) {
	parsed, err := url.Parse(mediaURL)
	if err != nil {
		return "", fmt.Errorf("invalid media url %q: %w", mediaURL, err)
	}

	r2Host := fmt.Sprintf("%s.r2.cloudflarestorage.com", m.cfg.R2.AccountID)
	if m.cfg.R2.AccountID == "" || parsed.Host != r2Host {
		return mediaURL, nil
	}

	key := strings.TrimPrefix(parsed.Path, "/"+m.cfg.R2.BucketName+"/")
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", fmt.Errorf("media url %q has no object key", mediaURL)
	}

	client, err := m.r2Client(ctx)
	if err != nil {
		return "", err
	}

	presigner := s3.NewPresignClient(client)
	signed, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.R2.BucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return signed.URL, nil
}

// MatchesKind reports whether a sniffed content type is consistent with the
// media kind declared on the post.
func MatchesKind(contentType, kind string) bool {
	switch kind {
	case "image":
		return strings.HasPrefix(contentType, "image/")
	case "video":
		return strings.HasPrefix(contentType, "video/")
	default:
		return true
	}
}
