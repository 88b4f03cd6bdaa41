package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/autograde/grader/internal/codeanalysis"
	gradingerrors "github.com/autograde/grader/internal/grading_errors"
	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/scoring"
	"github.com/autograde/grader/internal/types"
	"github.com/autograde/grader/internal/validator"
)

// Confidence of the outcome given to empty submissions
const EmptyConfidence = 0.2

const EmptyFeedback = "The submission was empty, so no credit could be awarded."

const DefaultScoringTimeout = 30 * time.Second

var (
	ErrBlankIdentity   = errors.New("submission id and student id must not be blank")
	ErrContentTooLarge = errors.New("submission content exceeds size limit")
)

// Obtains a raw grading outcome for a prepared submission
type Acquirer struct {
	scorer   scoring.Scorer
	validate validator.CustomValidator
	timeout  time.Duration
	metrics  *metrics
}

func NewAcquirer(scorer scoring.Scorer, timeout time.Duration) *Acquirer {
	if timeout <= 0 {
		timeout = DefaultScoringTimeout
	}

	return &Acquirer{
		scorer:   scorer,
		validate: validator.Create(),
		timeout:  timeout,
		metrics:  newMetrics(),
	}
}

// Rejects malformed submissions before any collaborator is called
func (a *Acquirer) Validate(sub types.Submission) error {
	if err := a.validate.Validate(sub); err != nil {
		return gradingerrors.InvalidSubmission(sub.ID, err)
	}

	if strings.TrimSpace(sub.ID) == "" || strings.TrimSpace(sub.StudentID) == "" {
		return gradingerrors.InvalidSubmission(sub.ID, ErrBlankIdentity)
	}

	if !validator.ValidateContentSize(len(sub.Content)) {
		return gradingerrors.InvalidSubmission(sub.ID, ErrContentTooLarge)
	}

	return nil
}

// Calls the scorer once under the scoring timeout. Timeouts and scorer errors are ScoringFailure.
func (a *Acquirer) Acquire(
	ctx context.Context,
	prepared types.PreparedSubmission,
	cfg types.AssignmentGradingConfig,
) (types.GradingOutcome, error) {
	sub := prepared.Submission
	kind := types.AssignmentKindFromString(string(cfg.Kind))

	ctx, span := tracer.Start(ctx, "Acquirer.Acquire", trace.WithAttributes(
		attribute.String("submission.id", sub.ID),
		attribute.String("assignment.kind", string(kind)),
	))
	defer span.End()

	text := strings.TrimSpace(prepared.Text)
	if text == "" {
		outcome := types.GradingOutcome{
			Kind:                kind,
			Score:               0,
			Confidence:          math.Min(EmptyConfidence, prepared.ConfidenceCap()),
			Feedback:            EmptyFeedback,
			BreakdownConsistent: true,
			Empty:               true,
		}
		outcome.NormalizeExtras()

		span.AddEvent("empty submission, scorer not called")
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "empty submission")
		return outcome, nil
	}

	scoreCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	started := time.Now()
	result, err := a.scoreWithin(scoreCtx, scoring.Request{
		Config:       cfg,
		SubmissionID: sub.ID,
		Content:      prepared.Text,
	})
	a.metrics.scored(ctx, kind, time.Since(started), err != nil)
	if err != nil {
		if errors.Is(scoreCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("scorer did not answer within %s: %w", a.timeout, err)
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "scoring failed")
		return types.GradingOutcome{}, gradingerrors.ScoringFailure(sub.ID, err)
	}

	outcome := types.GradingOutcome{
		Kind:        kind,
		Score:       cfg.Clamp(result.Score),
		Confidence:  clampUnit(result.Confidence),
		Breakdown:   result.Breakdown,
		Feedback:    result.Feedback,
		Suggestions: result.Suggestions,
	}

	l := logger.Component("grading").With("submissionID", sub.ID, "kind", string(kind))
	present := decodeExtras(ctx, l, &outcome, result.Extras)
	outcome.NormalizeExtras()
	fillExtras(&outcome, prepared.Text, present)

	// consistency is judged on the score actually recorded
	outcome.BreakdownConsistent = types.BreakdownConsistent(outcome.Score, outcome.Breakdown)
	if !outcome.BreakdownConsistent {
		span.AddEvent("breakdown does not add up to score")
		l.WarnContext(ctx, "scorer breakdown inconsistent with score", "score", outcome.Score)
	}

	if limit := prepared.ConfidenceCap(); outcome.Confidence > limit {
		span.AddEvent("confidence capped by extraction", trace.WithAttributes(
			attribute.Float64("cap", limit),
		))
		outcome.Confidence = limit
	}

	span.SetAttributes(
		attribute.Float64("outcome.score", outcome.Score),
		attribute.Float64("outcome.confidence", outcome.Confidence),
	)
	span.RecordError(nil)
	span.SetStatus(codes.Ok, "acquired outcome")
	return outcome, nil
}

// The deadline holds even for scorers that ignore ctx. A late answer is dropped.
func (a *Acquirer) scoreWithin(ctx context.Context, req scoring.Request) (scoring.Result, error) {
	type answer struct {
		result scoring.Result
		err    error
	}

	done := make(chan answer, 1)
	go func() {
		result, err := a.scorer.Score(ctx, req)
		done <- answer{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return scoring.Result{}, ctx.Err()
	case ans := <-done:
		if ans.err == nil && ctx.Err() != nil {
			return scoring.Result{}, ctx.Err()
		}
		return ans.result, ans.err
	}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}

	return math.Min(v, 1)
}

// Decode the kind specific extras. Returns false when they were missing or malformed,
// which is logged and never fails the attempt.
func decodeExtras(ctx context.Context, l *slog.Logger, o *types.GradingOutcome, raw json.RawMessage) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}

	var err error
	switch o.Kind {
	case types.AssignmentKindCoding:
		var extras types.CodingExtras
		if err = json.Unmarshal(raw, &extras); err == nil {
			o.Coding = &extras
		}
	case types.AssignmentKindEssay:
		var extras types.EssayExtras
		if err = json.Unmarshal(raw, &extras); err == nil {
			o.Essay = &extras
		}
	case types.AssignmentKindMath:
		var extras types.MathExtras
		if err = json.Unmarshal(raw, &extras); err == nil {
			o.Math = &extras
		}
	default:
		return true
	}

	if err != nil {
		l.WarnContext(ctx, "discarding malformed scorer extras", "error", err)
		return false
	}

	return true
}

// Derive what the scorer left out from the scored text
func fillExtras(o *types.GradingOutcome, text string, present bool) {
	switch {
	case o.Coding != nil:
		if !present {
			report := codeanalysis.Inspect(text)
			o.Coding.StyleIssues = report.StyleIssues
			o.Coding.EfficiencyIssues = report.EfficiencyIssues
			o.Coding.PotentialBugs = report.PotentialBugs
			o.Coding.Language = report.Language
		}
		if o.Coding.Language == "" {
			o.Coding.Language = codeanalysis.DetectLanguage("", []byte(text))
		}
		o.Coding.StyleIssues = nonNil(o.Coding.StyleIssues)
		o.Coding.EfficiencyIssues = nonNil(o.Coding.EfficiencyIssues)
		o.Coding.PotentialBugs = nonNil(o.Coding.PotentialBugs)
	case o.Essay != nil:
		if o.Essay.WordCount == 0 {
			o.Essay.WordCount = scoring.WordCount(text)
		}
		if !present {
			o.Essay.Readability = scoring.Readability(text)
		}
	case o.Math != nil:
		if !present {
			o.Math.Steps, o.Math.FinalAnswer = scoring.MathSteps(text)
		}
		o.Math.Steps = nonNil(o.Math.Steps)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
