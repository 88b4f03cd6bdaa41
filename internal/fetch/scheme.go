package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrUnsupportedScheme = errors.New("unsupported artifact scheme")

// Ensure SchemeFetcher implements Fetcher interface.
var _ Fetcher = (*SchemeFetcher)(nil)

// Routes a reference to the fetcher registered for its URL scheme
type SchemeFetcher struct {
	fetchers map[string]Fetcher
}

func NewSchemeFetcher() *SchemeFetcher {
	return &SchemeFetcher{fetchers: map[string]Fetcher{}}
}

// Register f for each scheme, replacing any earlier registration
func (s *SchemeFetcher) Register(f Fetcher, schemes ...string) *SchemeFetcher {
	for _, scheme := range schemes {
		s.fetchers[scheme] = f
	}

	return s
}

func (s *SchemeFetcher) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	ctx, span := tracer.Start(ctx, "SchemeFetcher.Fetch", trace.WithAttributes(
		attribute.String("ref", ref),
	))
	defer span.End()

	parsed, err := url.Parse(ref)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse reference")
		return nil, err
	}

	f, ok := s.fetchers[parsed.Scheme]
	if !ok {
		err = fmt.Errorf("%w: %q", ErrUnsupportedScheme, parsed.Scheme)
		span.RecordError(err)
		span.SetStatus(codes.Error, "no fetcher for scheme")
		return nil, err
	}

	body, err := f.Fetch(ctx, ref)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "fetched by scheme")
	return body, nil
}
