package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Ensure HTTPFetcher implements Fetcher interface.
var _ Fetcher = (*HTTPFetcher)(nil)

// Downloads http(s) artifact references. Transient failures are retried by the client.
type HTTPFetcher struct {
	client   *retryablehttp.Client
	maxBytes int64
}

func NewHTTPFetcher(client *retryablehttp.Client) *HTTPFetcher {
	return &HTTPFetcher{
		client:   client,
		maxBytes: MaxArtifactBytes,
	}
}

// Lower the size cap, mainly for collaborators with tighter request limits
func (f *HTTPFetcher) WithMaxBytes(n int64) *HTTPFetcher {
	f.maxBytes = n
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	ctx, span := tracer.Start(ctx, "HTTPFetcher.Fetch", trace.WithAttributes(
		attribute.String("ref", ref),
	))
	defer span.End()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct request")
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to download artifact")
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		resp.Body.Close()
		err = fmt.Errorf("%w: %s", ErrNotFound, ref)
		span.RecordError(err)
		span.SetStatus(codes.Error, "artifact not found")
		return nil, err
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		err = fmt.Errorf("unexpected status code fetching artifact: %d", resp.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid status code")
		return nil, err
	case resp.ContentLength > f.maxBytes:
		resp.Body.Close()
		err = fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
		span.RecordError(err)
		span.SetStatus(codes.Error, "artifact too large")
		return nil, err
	}

	span.SetAttributes(attribute.Int64("content_length", resp.ContentLength))
	span.RecordError(nil)
	span.SetStatus(codes.Ok, "fetched artifact by http")
	return limitedBody{Reader: io.LimitReader(resp.Body, f.maxBytes), Closer: resp.Body}, nil
}

// Caps bodies whose length was not announced up front
type limitedBody struct {
	io.Reader
	io.Closer
}
