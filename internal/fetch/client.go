package fetch

import (
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/autograde/grader/internal/logger"
)

// retryablehttp client logging through slog for talking to collaborator services.
// retryMax 0 disables transport retries.
func NewRetryableClient(retryMax int, timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = logger.Logger
	return client
}
