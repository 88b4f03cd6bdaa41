package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/autograde/grader/internal/fetch"
	"github.com/autograde/grader/internal/types"
)

var tracer = otel.Tracer("github.com/autograde/grader/internal/extraction")

// Largest artifact forwarded to the text extraction service
const MaxArtifactBytes = 32 << 20

var ErrArtifactTooLarge = errors.New("artifact exceeds size limit")

//go:generate mockgen -destination ./mock/mock.go -package mock . Extractor

// Opaque text extraction capability for image and pdf artifacts
type Extractor interface {
	Extract(ctx context.Context, artifactRef string, kind types.MediaKind) (types.ExtractionResult, error)
}

// Ensure HTTPExtractor implements Extractor interface.
var _ Extractor = (*HTTPExtractor)(nil)

// Downloads the artifact and posts its bytes to the extraction service
type HTTPExtractor struct {
	fetcher fetch.Fetcher
	client  *retryablehttp.Client
	url     string
}

type extractResponse struct {
	Text                string  `json:"text"`
	Confidence          float64 `json:"confidence"`
	Pages               int     `json:"pages"`
	HandwritingDetected bool    `json:"handwriting_detected"`
}

func NewHTTPExtractor(url string, fetcher fetch.Fetcher, client *retryablehttp.Client) *HTTPExtractor {
	return &HTTPExtractor{
		fetcher: fetcher,
		client:  client,
		url:     url,
	}
}

func contentType(kind types.MediaKind) string {
	if kind == types.MediaKindPDF {
		return "application/pdf"
	}

	return "application/octet-stream"
}

func (e *HTTPExtractor) Extract(
	ctx context.Context,
	artifactRef string,
	kind types.MediaKind,
) (types.ExtractionResult, error) {
	ctx, span := tracer.Start(ctx, "HTTPExtractor.Extract", trace.WithAttributes(
		attribute.String("artifact.ref", artifactRef),
		attribute.String("media.kind", string(kind)),
	))
	defer span.End()

	body, err := e.fetcher.Fetch(ctx, artifactRef)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch artifact")
		return types.ExtractionResult{}, err
	}
	defer body.Close()

	artifact, err := io.ReadAll(io.LimitReader(body, MaxArtifactBytes+1))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read artifact")
		return types.ExtractionResult{}, err
	}
	if len(artifact) > MaxArtifactBytes {
		span.RecordError(ErrArtifactTooLarge)
		span.SetStatus(codes.Error, "artifact too large")
		return types.ExtractionResult{}, ErrArtifactTooLarge
	}

	span.SetAttributes(attribute.Int("artifact.bytes", len(artifact)))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(artifact))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct request")
		return types.ExtractionResult{}, err
	}
	req.Header.Set("Content-Type", contentType(kind))

	resp, err := e.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to call extraction service")
		return types.ExtractionResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("invalid status code: %d", resp.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid status code")
		return types.ExtractionResult{}, err
	}

	var decoded extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode response")
		return types.ExtractionResult{}, err
	}

	result := types.ExtractionResult{
		Text:                decoded.Text,
		Confidence:          min(max(decoded.Confidence, 0), 1),
		Pages:               decoded.Pages,
		HandwritingDetected: decoded.HandwritingDetected,
	}

	span.SetAttributes(
		attribute.Float64("extraction.confidence", result.Confidence),
		attribute.Int("extraction.pages", result.Pages),
	)
	span.RecordError(nil)
	span.SetStatus(codes.Ok, "extracted text")
	return result, nil
}
