package service

import (
	"context"

	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/models"
)

// ProviderPublisher is the capability every social network integration exposes
// to the publish worker. Publish produces the post on the network or returns an
// error describing why it could not; it never touches the post's status row.
type ProviderPublisher interface {
	DisplayName() string
	Publish(ctx context.Context, post *models.ScheduledPost, cred *models.ProviderCredential) error
}

// Registry maps a provider name stored on the post row to its publisher.
// Adding a network means adding an entry here, nothing else.
type Registry map[string]ProviderPublisher

func (r Registry) Lookup(name string) (ProviderPublisher, bool) {
	pub, ok := r[name]
	return pub, ok
}
