package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/models"
)

func (q *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	post, err := q.pr.GetByID(ctx, payload.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		log.Printf("Post %d no longer exists, dropping task", payload.PostID)
		return nil
	}

	claimed, err := q.pr.Claim(ctx, post.ID)
	if err != nil {
		return err
	}
	if !claimed {
		log.Printf("Post %d already claimed, dropping task", post.ID)
		return nil
	}

	q.publishPost(ctx, post)
	return nil
}

// PublishDuePosts runs one sweep over the due posts. It returns how many posts
// this invocation claimed and worked alongside how many were due, so callers
// can tell an idle sweep from one whose posts all went to concurrent runs. A
// failing due-post query aborts the sweep; everything after that point is
// isolated per post and per provider.
func (q *Queue) PublishDuePosts(ctx context.Context) (processed, due int, err error) {
	runID, err := gonanoid.New(10)
	if err != nil {
		runID = "unknown"
	}

	posts, err := q.pr.ListDue(ctx, time.Now(), q.batchSize)
	if err != nil {
		return 0, 0, err
	}

	for _, post := range posts {
		claimed, err := q.pr.Claim(ctx, post.ID)
		if err != nil {
			slog.Info("error claiming post", "run_id", runID, "post_id", post.ID, "error", err.Error())
			continue
		}
		if !claimed {
			// Another invocation took it between the query and the claim.
			continue
		}

		q.publishPost(ctx, post)
		processed++
	}

	log.Printf("Publish sweep %s finished: %d of %d due posts processed", runID, processed, len(posts))
	return processed, len(posts), nil
}

func (q *Queue) publishPost(ctx context.Context, post *models.ScheduledPost) {
	if !post.TeamID.Valid {
		q.ns.NotifySystemFailure(ctx, post, "La publicació no té cap equip assignat i no s'ha pogut enviar.")
		if err := q.pr.UpdatePostStatus(ctx, models.PostStatusError, post.ID); err != nil {
			slog.Info("error marking teamless post", "post_id", post.ID, "error", err.Error())
		}
		return
	}

	succeeded := 0
	for _, provider := range post.Providers {
		err := q.attemptProvider(ctx, post, provider)
		if err != nil {
			log.Printf("Error posting to %s for PostID %d: %v", provider, post.ID, err)
		} else {
			succeeded++
		}
		q.ns.NotifyAttempt(ctx, post, provider, err == nil, err)
	}

	var status string
	switch {
	case len(post.Providers) > 0 && succeeded == len(post.Providers):
		status = models.PostStatusPublished
	case succeeded == 0:
		status = models.PostStatusFailed
	default:
		status = models.PostStatusPartialSuccess
	}

	if err := q.pr.UpdateOutcome(ctx, status, post.ID, time.Now()); err != nil {
		slog.Info("error saving post outcome", "post_id", post.ID, "error", err.Error())
	}
}

// attemptProvider isolates a single (post, provider) attempt: any error it
// returns is recorded and never propagates past the caller's loop.
func (q *Queue) attemptProvider(ctx context.Context, post *models.ScheduledPost, provider string) error {
	pub, ok := q.rg.Lookup(provider)
	if !ok {
		return fmt.Errorf("unknown provider %q", provider)
	}

	cred, err := q.cr.GetByTeamAndProvider(ctx, post.TeamID.Int64, provider)
	if err != nil {
		return fmt.Errorf("error loading %s credentials: %w", provider, err)
	}
	if cred == nil {
		return fmt.Errorf("no credentials stored for %s", provider)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, q.attemptTimeout)
	defer cancel()

	return pub.Publish(attemptCtx, post, cred)
}
