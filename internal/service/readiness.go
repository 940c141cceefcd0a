package service

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MediaStatus is the readiness state a provider reports for a submitted media
// container.
type MediaStatus int

const (
	MediaStatusPending MediaStatus = iota
	MediaStatusFinished
	MediaStatusError
)

// ErrMediaReadinessTimeout marks a container that never became ready within the
// polling budget, as opposed to one the provider rejected outright.
var ErrMediaReadinessTimeout = errors.New("media container was not ready in time")

const (
	mediaPollInterval    = 5 * time.Second
	mediaPollMaxAttempts = 20
)

// MediaStatusFunc reports the container's current state. The detail string is
// only read when the status is MediaStatusError.
type MediaStatusFunc func(ctx context.Context) (status MediaStatus, detail string, err error)

// WaitForMedia polls check until the media is finished, the provider reports an
// explicit error, or maxAttempts checks have been made. An explicit error stops
// the loop immediately rather than burning the remaining attempts.
func WaitForMedia(ctx context.Context, check MediaStatusFunc, interval time.Duration, maxAttempts int) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		status, detail, err := check(ctx)
		if err != nil {
			return err
		}

		switch status {
		case MediaStatusFinished:
			return nil
		case MediaStatusError:
			return fmt.Errorf("media processing failed: %s", detail)
		}

		if attempt == maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	return ErrMediaReadinessTimeout
}
