package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Largest scorer answer accepted
const maxResponseBytes = 1 << 20

// Ensure HTTPScorer implements Scorer interface.
var _ Scorer = (*HTTPScorer)(nil)

// Client of the remote scoring service
type HTTPScorer struct {
	client *retryablehttp.Client
	url    string
}

type scoreRequestBody struct {
	Criteria       map[string]float64 `json:"criteria"`
	SubmissionID   string             `json:"submission_id"`
	AssignmentID   string             `json:"assignment_id"`
	Kind           string             `json:"kind"`
	Content        string             `json:"content"`
	ExpectedAnswer string             `json:"expected_answer,omitempty"`
	Keywords       []string           `json:"keywords,omitempty"`
	TotalPoints    float64            `json:"total_points"`
}

func NewHTTPScorer(url string, client *retryablehttp.Client) *HTTPScorer {
	return &HTTPScorer{
		client: client,
		url:    url,
	}
}

func (s *HTTPScorer) Score(ctx context.Context, req Request) (Result, error) {
	ctx, span := tracer.Start(ctx, "HTTPScorer.Score", trace.WithAttributes(
		attribute.String("submission.id", req.SubmissionID),
		attribute.String("assignment.id", req.Config.AssignmentID),
	))
	defer span.End()

	payload, err := json.Marshal(scoreRequestBody{
		Criteria:       req.Config.Criteria,
		SubmissionID:   req.SubmissionID,
		AssignmentID:   req.Config.AssignmentID,
		Kind:           string(req.Config.Kind),
		Content:        req.Content,
		ExpectedAnswer: req.Config.ExpectedAnswer,
		Keywords:       req.Config.Keywords,
		TotalPoints:    req.Config.TotalPoints,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal request")
		return Result{}, err
	}

	httpReq, err := retryablehttp.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.url,
		bytes.NewReader(payload),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct request")
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to call scoring service")
		return Result{}, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		err = fmt.Errorf("%w: status code %d", ErrRejected, resp.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, "scoring service rejected request")
		return Result{}, err
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("invalid status code: %d", resp.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid status code")
		return Result{}, err
	}

	var result Result
	err = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result)
	if err != nil {
		err = fmt.Errorf("failed to decode scoring response: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode response")
		return Result{}, err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "scored submission")
	return result, nil
}
