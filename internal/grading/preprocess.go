package grading

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/autograde/grader/internal/extraction"
	gradingerrors "github.com/autograde/grader/internal/grading_errors"
	"github.com/autograde/grader/internal/types"
)

var (
	ErrMissingArtifact = errors.New("submission has no artifact reference")
	ErrNoExtractor     = errors.New("no text extraction service configured")
)

// Turns a submission into the text to score
type Preprocessor struct {
	extractor extraction.Extractor
}

// extractor may be nil when no image or pdf submissions are expected
func NewPreprocessor(extractor extraction.Extractor) *Preprocessor {
	return &Preprocessor{extractor: extractor}
}

// Text passes through. Image and pdf artifacts go through extraction once, failures are not retried.
func (p *Preprocessor) Prepare(ctx context.Context, sub types.Submission) (types.PreparedSubmission, error) {
	ctx, span := tracer.Start(ctx, "Preprocessor.Prepare", trace.WithAttributes(
		attribute.String("submission.id", sub.ID),
		attribute.String("media.kind", string(sub.MediaKind)),
	))
	defer span.End()

	prepared := types.PreparedSubmission{Submission: sub, Text: sub.Content}

	if !sub.MediaKind.RequiresExtraction() {
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "text passed through")
		return prepared, nil
	}

	if sub.ArtifactRef == "" {
		span.RecordError(ErrMissingArtifact)
		span.SetStatus(codes.Error, "missing artifact")
		return types.PreparedSubmission{}, gradingerrors.ExtractionFailure(sub.ID, ErrMissingArtifact)
	}

	if p.extractor == nil {
		span.RecordError(ErrNoExtractor)
		span.SetStatus(codes.Error, "no extractor")
		return types.PreparedSubmission{}, gradingerrors.ExtractionFailure(sub.ID, ErrNoExtractor)
	}

	result, err := p.extractor.Extract(ctx, sub.ArtifactRef, sub.MediaKind)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		return types.PreparedSubmission{}, gradingerrors.ExtractionFailure(sub.ID, err)
	}

	prepared.Text = result.Text
	prepared.Extraction = &result
	prepared.OCRProcessed = true

	span.SetAttributes(
		attribute.Float64("extraction.confidence", result.Confidence),
		attribute.Int("extraction.pages", result.Pages),
	)
	span.RecordError(nil)
	span.SetStatus(codes.Ok, "extracted text")
	return prepared, nil
}
