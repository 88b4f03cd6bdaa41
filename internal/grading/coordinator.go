package grading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/autograde/grader/internal/audit"
	"github.com/autograde/grader/internal/feedback"
	gradingerrors "github.com/autograde/grader/internal/grading_errors"
	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/store"
	"github.com/autograde/grader/internal/types"
)

var ErrNotGraded = errors.New("submission has no current grade")

//go:generate mockgen -destination ./mock/mock.go -package mock . Grader

// Grades one submission end to end
type Grader interface {
	GradeOne(ctx context.Context, sub types.Submission) (*types.GradeRecord, error)
}

var _ Grader = (*Coordinator)(nil)

type Coordinator struct {
	preprocessor *Preprocessor
	acquirer     *Acquirer
	router       *Router
	synthesizer  *feedback.Synthesizer
	assignments  store.AssignmentSource
	grades       store.GradeStore
	metrics      *metrics
	now          func() time.Time
	newID        func() uuid.UUID
}

func NewCoordinator(
	preprocessor *Preprocessor,
	acquirer *Acquirer,
	router *Router,
	synthesizer *feedback.Synthesizer,
	assignments store.AssignmentSource,
	grades store.GradeStore,
) *Coordinator {
	return &Coordinator{
		preprocessor: preprocessor,
		acquirer:     acquirer,
		router:       router,
		synthesizer:  synthesizer,
		assignments:  assignments,
		grades:       grades,
		metrics:      newMetrics(),
		now:          time.Now,
		newID:        uuid.New,
	}
}

func transition(ctx context.Context, l *slog.Logger, state State) {
	trace.SpanFromContext(ctx).AddEvent("state", trace.WithAttributes(
		attribute.String("grading.state", string(state)),
	))
	l.DebugContext(ctx, "grading state", "state", string(state))
}

// Grades sub and persists exactly one record for it.
//
// Invalid submissions return InvalidSubmission and persist nothing. Extraction, scoring and
// config failures persist a record with method error and return it without an error.
// A record that could not be stored returns PersistenceFailure.
func (c *Coordinator) GradeOne(ctx context.Context, sub types.Submission) (*types.GradeRecord, error) {
	ctx, span := tracer.Start(ctx, "Coordinator.GradeOne", trace.WithAttributes(
		attribute.String("submission.id", sub.ID),
		attribute.String("assignment.id", sub.AssignmentID),
	))
	defer span.End()

	l := logger.Component("grading").With("submissionID", sub.ID, "assignmentID", sub.AssignmentID)
	transition(ctx, l, StateReceived)

	if sub.MediaKind == "" {
		sub.MediaKind = types.MediaKindText
	}

	if err := c.acquirer.Validate(sub); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid submission")
		l.InfoContext(ctx, "rejected invalid submission", "error", err)
		return nil, err
	}

	cfg, err := c.gradingConfig(ctx, sub)
	if err != nil {
		return c.fail(ctx, l, sub, nil, nil, err)
	}

	transition(ctx, l, StatePreprocessing)
	prepared, err := c.preprocessor.Prepare(ctx, sub)
	if err != nil {
		return c.fail(ctx, l, sub, cfg, nil, err)
	}

	transition(ctx, l, StateScoring)
	outcome, err := c.acquirer.Acquire(ctx, prepared, *cfg)
	if err != nil {
		return c.fail(ctx, l, sub, cfg, &prepared, err)
	}

	decision := c.router.Route(outcome)
	span.AddEvent("routed", decision.attributes())

	score := outcome.Score
	record := &types.GradeRecord{
		ID:                   c.newID(),
		SubmissionID:         sub.ID,
		AssignmentID:         sub.AssignmentID,
		StudentID:            sub.StudentID,
		Score:                &score,
		TotalPoints:          cfg.TotalPoints,
		Grade:                cfg.Grade(score),
		Confidence:           outcome.Confidence,
		Method:               decision.Method,
		RequiresManualReview: decision.RequiresManualReview,
		Feedback:             c.synthesizer.Synthesize(feedbackInput(cfg, &outcome)),
		Breakdown:            outcome.Breakdown,
		BreakdownConsistent:  outcome.BreakdownConsistent,
		OCRProcessed:         prepared.OCRProcessed,
		Outcome:              &outcome,
		GradedAt:             c.now().UTC(),
	}

	if err := c.persist(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist record")
		l.ErrorContext(ctx, "failed to persist grade record", "error", err)
		return nil, err
	}

	transition(ctx, l, finalState(record.Method))
	audit.LogGradeFinalized(audit.ContextFrom(ctx, sub.AssignmentID), record)
	l.InfoContext(ctx, "graded submission",
		"method", string(record.Method),
		"score", score,
		"confidence", record.Confidence,
	)

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "graded submission")
	return record, nil
}

func (c *Coordinator) gradingConfig(ctx context.Context, sub types.Submission) (*types.AssignmentGradingConfig, error) {
	cfg, err := c.assignments.GradingConfig(ctx, sub.AssignmentID)
	if err != nil {
		return nil, gradingerrors.ConfigFailure(sub.ID, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, gradingerrors.ConfigFailure(sub.ID, err)
	}

	return cfg, nil
}

// Persist a failed attempt. The failure itself stays in the record, only persistence errors are returned.
func (c *Coordinator) fail(
	ctx context.Context,
	l *slog.Logger,
	sub types.Submission,
	cfg *types.AssignmentGradingConfig,
	prepared *types.PreparedSubmission,
	cause error,
) (*types.GradeRecord, error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(cause)

	kind, _ := gradingerrors.KindOf(cause)
	record := &types.GradeRecord{
		ID:                   c.newID(),
		SubmissionID:         sub.ID,
		AssignmentID:         sub.AssignmentID,
		StudentID:            sub.StudentID,
		Method:               types.GradingMethodError,
		RequiresManualReview: true,
		Breakdown:            map[string]float64{},
		BreakdownConsistent:  true,
		Error:                cause.Error(),
		ErrorKind:            string(kind),
		Feedback: types.FeedbackRecord{
			Summary:      "Your submission could not be graded automatically and has been queued for review.",
			Strengths:    []string{},
			Improvements: []string{},
			NextSteps:    []string{},
		},
		GradedAt: c.now().UTC(),
	}
	if cfg != nil {
		record.TotalPoints = cfg.TotalPoints
	}
	if prepared != nil {
		record.OCRProcessed = prepared.OCRProcessed
	}

	if err := c.persist(ctx, record); err != nil {
		span.SetStatus(codes.Error, "failed to persist failed record")
		l.ErrorContext(ctx, "failed to persist failed grade record", "error", err, "cause", cause)
		return nil, err
	}

	transition(ctx, l, StateFailed)
	audit.LogGradeFailed(audit.ContextFrom(ctx, sub.AssignmentID), record)
	l.WarnContext(ctx, "grading failed", "kind", string(kind), "error", cause)

	span.SetStatus(codes.Error, "grading failed")
	return record, nil
}

func (c *Coordinator) persist(ctx context.Context, record *types.GradeRecord) error {
	if err := c.grades.Save(ctx, record); err != nil {
		return gradingerrors.PersistenceFailure(record.SubmissionID, err)
	}

	c.metrics.recordPersisted(ctx, record)
	return nil
}

func feedbackInput(cfg *types.AssignmentGradingConfig, o *types.GradingOutcome) feedback.Input {
	return feedback.Input{
		Score:       o.Score,
		TotalPoints: cfg.TotalPoints,
		Breakdown:   o.Breakdown,
		Criteria:    cfg.Criteria,
		Kind:        o.Kind,
		Bands:       cfg.Bands,
		Suggestions: o.Suggestions,
		Empty:       o.Empty,
		Coding:      o.Coding,
		Essay:       o.Essay,
		Math:        o.Math,
	}
}

type OverrideRequest struct {
	Breakdown map[string]float64 `json:"breakdown"`
	Note      string             `json:"note"`
	Score     float64            `json:"score"`
}

// Replace the current grade of a submission with a reviewer's score.
// The previous record is superseded and kept.
func (c *Coordinator) Override(
	ctx context.Context,
	submissionID string,
	req OverrideRequest,
) (*types.GradeRecord, error) {
	ctx, span := tracer.Start(ctx, "Coordinator.Override", trace.WithAttributes(
		attribute.String("submission.id", submissionID),
	))
	defer span.End()

	l := logger.Component("grading").With("submissionID", submissionID)

	if math.IsNaN(req.Score) || math.IsInf(req.Score, 0) {
		err := gradingerrors.InvalidSubmission(submissionID, fmt.Errorf("score %v is not a number", req.Score))
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid override score")
		return nil, err
	}

	previous, err := c.grades.Current(ctx, submissionID)
	if errors.Is(err, store.ErrNotFound) {
		err = gradingerrors.InvalidSubmission(submissionID, ErrNotGraded)
		span.RecordError(err)
		span.SetStatus(codes.Error, "nothing to override")
		return nil, err
	}
	if err != nil {
		err = gradingerrors.PersistenceFailure(submissionID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get current record")
		return nil, err
	}

	cfg, err := c.assignments.GradingConfig(ctx, previous.AssignmentID)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		err = gradingerrors.ConfigFailure(submissionID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get grading config")
		return nil, err
	}

	score := cfg.Clamp(req.Score)
	breakdown := req.Breakdown
	if breakdown == nil {
		breakdown = map[string]float64{}
	}

	fb := c.synthesizer.Synthesize(feedback.Input{
		Score:       score,
		TotalPoints: cfg.TotalPoints,
		Breakdown:   breakdown,
		Criteria:    cfg.Criteria,
		Kind:        cfg.Kind,
		Bands:       cfg.Bands,
	})
	if req.Note != "" {
		fb.Summary = fmt.Sprintf("%s Reviewer note: %s", fb.Summary, req.Note)
	}

	record := &types.GradeRecord{
		ID:                  c.newID(),
		SubmissionID:        previous.SubmissionID,
		AssignmentID:        previous.AssignmentID,
		StudentID:           previous.StudentID,
		Score:               &score,
		TotalPoints:         cfg.TotalPoints,
		Grade:               cfg.Grade(score),
		Confidence:          1,
		Method:              types.GradingMethodManualOverride,
		Feedback:            fb,
		Breakdown:           breakdown,
		BreakdownConsistent: types.BreakdownConsistent(score, breakdown),
		OCRProcessed:        previous.OCRProcessed,
		GradedAt:            c.now().UTC(),
	}

	if err := c.persist(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist override")
		return nil, err
	}

	audit.LogGradeOverridden(audit.ContextFrom(ctx, record.AssignmentID), record, previous, req.Note)
	l.InfoContext(ctx, "overrode grade", "previousID", previous.ID.String(), "score", score)

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "overrode grade")
	return record, nil
}
