package queue

import (
	"time"

	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/repository"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/service"
)

// Queue drives the publish fan-out: it claims due posts, dispatches every
// targeted provider in order and aggregates the attempts into one final post
// status.
type Queue struct {
	pr repository.ScheduledPostRepository
	cr repository.CredentialRepository
	ns service.NotificationService
	rg service.Registry

	batchSize      int
	attemptTimeout time.Duration
}

const (
	// Posts handled per sweep. The worker runs often; small batches keep one
	// slow provider from starving everything behind it.
	defaultBatchSize = 5

	// Upper bound on one provider dispatch, sized to cover the Instagram
	// readiness polling window.
	defaultAttemptTimeout = 2 * time.Minute
)

func NewQueue(
	pr repository.ScheduledPostRepository,
	cr repository.CredentialRepository,
	ns service.NotificationService,
	rg service.Registry) *Queue {
	return &Queue{
		pr:             pr,
		cr:             cr,
		ns:             ns,
		rg:             rg,
		batchSize:      defaultBatchSize,
		attemptTimeout: defaultAttemptTimeout,
	}
}

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}
