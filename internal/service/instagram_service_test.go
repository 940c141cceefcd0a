package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	config "github.com/ribotflowdeveloper-hub/ribotflow-sub005/configs"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/models"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

func testConfig(baseURL string) config.Config {
	return config.Config{
		SecretKey:          testSecretKey,
		GraphAPIBaseURL:    baseURL,
		LinkedinAPIBaseURL: baseURL,
	}
}

func encryptedToken(t *testing.T, token string) string {
	t.Helper()
	enc, err := utils.Encrypt([]byte(token), []byte(testSecretKey))
	require.NoError(t, err)
	return enc
}

func instagramCredential(t *testing.T) *models.ProviderCredential {
	return &models.ProviderCredential{
		TeamID:      100,
		Provider:    models.ProviderInstagram,
		AccessToken: encryptedToken(t, "ig-token"),
		AccountID:   sql.NullString{String: "ig1", Valid: true},
	}
}

func TestInstagramService_PublishCarousel(t *testing.T) {
	var itemCalls, carouselCalls, statusCalls, publishCalls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/ig1/media":
			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			if payload["media_type"] == "CAROUSEL" {
				carouselCalls++
				children := payload["children"].([]interface{})
				assert.Len(t, children, 3)
				assert.Equal(t, "Tres imatges", payload["caption"])
				fmt.Fprint(w, `{"id":"car1"}`)
				return
			}
			itemCalls++
			assert.Equal(t, true, payload["is_carousel_item"])
			assert.NotContains(t, payload, "caption")
			fmt.Fprintf(w, `{"id":"item%d"}`, itemCalls)
		case r.Method == http.MethodGet && r.URL.Path == "/car1":
			statusCalls++
			fmt.Fprint(w, `{"status_code":"FINISHED"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/ig1/media_publish":
			publishCalls++
			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "car1", payload["creation_id"])
			fmt.Fprint(w, `{"id":"published1"}`)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	media := NewMediaService(cfg, server.Client())
	s := NewInstagramService(cfg, nil, server.Client(), media)

	post := &models.ScheduledPost{
		ID:        1,
		UserID:    10,
		TeamID:    sql.NullInt64{Int64: 100, Valid: true},
		Content:   sql.NullString{String: "Tres imatges", Valid: true},
		MediaKind: sql.NullString{String: models.MediaKindImage, Valid: true},
		MediaURLs: []string{
			"https://cdn.example.com/a.jpg",
			"https://cdn.example.com/b.jpg",
			"https://cdn.example.com/c.jpg",
		},
	}

	err := s.Publish(context.Background(), post, instagramCredential(t))

	assert.NoError(t, err)
	assert.Equal(t, 3, itemCalls)
	assert.Equal(t, 1, carouselCalls)
	assert.Equal(t, 1, statusCalls)
	assert.Equal(t, 1, publishCalls)
}

func TestInstagramService_PublishSingleImage(t *testing.T) {
	var publishCalls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/ig1/media":
			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "https://cdn.example.com/a.jpg", payload["image_url"])
			assert.Equal(t, "Hola", payload["caption"])
			fmt.Fprint(w, `{"id":"c1"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/c1":
			fmt.Fprint(w, `{"status_code":"FINISHED"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/ig1/media_publish":
			publishCalls++
			fmt.Fprint(w, `{"id":"published1"}`)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	media := NewMediaService(cfg, server.Client())
	s := NewInstagramService(cfg, nil, server.Client(), media)

	post := &models.ScheduledPost{
		ID:        1,
		UserID:    10,
		TeamID:    sql.NullInt64{Int64: 100, Valid: true},
		Content:   sql.NullString{String: "Hola", Valid: true},
		MediaKind: sql.NullString{String: models.MediaKindImage, Valid: true},
		MediaURLs: []string{"https://cdn.example.com/a.jpg"},
	}

	err := s.Publish(context.Background(), post, instagramCredential(t))

	assert.NoError(t, err)
	assert.Equal(t, 1, publishCalls)
}

func TestInstagramService_MidPollErrorFailsImmediately(t *testing.T) {
	var publishCalls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/ig1/media":
			fmt.Fprint(w, `{"id":"c1"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/c1":
			fmt.Fprint(w, `{"status_code":"ERROR","status":"Media type not supported"}`)
		case r.URL.Path == "/ig1/media_publish":
			publishCalls++
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	media := NewMediaService(cfg, server.Client())
	s := NewInstagramService(cfg, nil, server.Client(), media)

	post := &models.ScheduledPost{
		ID:        1,
		TeamID:    sql.NullInt64{Int64: 100, Valid: true},
		MediaKind: sql.NullString{String: models.MediaKindImage, Valid: true},
		MediaURLs: []string{"https://cdn.example.com/a.jpg"},
	}

	err := s.Publish(context.Background(), post, instagramCredential(t))

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMediaReadinessTimeout)
	assert.Contains(t, err.Error(), "Media type not supported")
	assert.Zero(t, publishCalls)
}

func TestInstagramService_SurfacesGraphErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"Invalid parameter","type":"OAuthException","code":100}}`)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	media := NewMediaService(cfg, server.Client())
	s := NewInstagramService(cfg, nil, server.Client(), media)

	post := &models.ScheduledPost{
		ID:        1,
		TeamID:    sql.NullInt64{Int64: 100, Valid: true},
		MediaKind: sql.NullString{String: models.MediaKindImage, Valid: true},
		MediaURLs: []string{"https://cdn.example.com/a.jpg"},
	}

	err := s.Publish(context.Background(), post, instagramCredential(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid parameter")
}

func TestInstagramService_RequiresAccountIDAndMedia(t *testing.T) {
	cfg := testConfig("http://unused")
	s := NewInstagramService(cfg, nil, http.DefaultClient, NewMediaService(cfg, http.DefaultClient))

	post := &models.ScheduledPost{ID: 1, TeamID: sql.NullInt64{Int64: 100, Valid: true}}

	cred := instagramCredential(t)
	cred.AccountID = sql.NullString{}
	err := s.Publish(context.Background(), post, cred)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account id")

	err = s.Publish(context.Background(), post, instagramCredential(t))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "media"))
}
