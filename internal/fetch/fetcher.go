package fetch

import (
	"context"
	"errors"
	"io"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/autograde/grader/internal/fetch")

// Artifacts past this size are refused before any bytes reach the extraction service
const MaxArtifactBytes int64 = 32 << 20

var (
	ErrNotFound = errors.New("artifact not found")
	ErrTooLarge = errors.New("artifact too large")
)

//go:generate mockgen -destination ./mock/mock.go -package mock . Fetcher

// Opens the artifact behind a submission's artifact reference. Callers close the body.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (io.ReadCloser, error)
}
