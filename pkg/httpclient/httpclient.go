// Package httpclient provides the outbound HTTP client shared by every provider
// integration. Provider and media calls go through it so a stuck network never
// holds a publish sweep open indefinitely.
package httpclient

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// Hard cap on a single outbound request, polling waits excluded.
	requestTimeout = 30 * time.Second

	retryMax     = 2
	retryWaitMin = 500 * time.Millisecond
	retryWaitMax = 3 * time.Second
)

// New returns a *http.Client with bounded retries on transport-level failures.
// Application-level provider errors (non-2xx with an error payload) are not
// retried; they are surfaced to the caller untouched.
func New() *http.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.HTTPClient.Timeout = requestTimeout
	client.Logger = nil

	return client.StandardClient()
}
