package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/autograde/grader/cmd/server/internal/response"
	"github.com/autograde/grader/internal/audit"
	gradingerrors "github.com/autograde/grader/internal/grading_errors"
	"github.com/autograde/grader/internal/store"
	"github.com/autograde/grader/internal/types"
	"github.com/autograde/grader/internal/validator"
)

func (h *Handler) GradeOne(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "GradeOne")
	defer span.End()

	var sub types.Submission

	span.AddEvent("parsing request body")
	if err := c.Bind(&sub); err != nil {
		span.SetStatus(codes.Ok, "failed to parse request data")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("failed to parse request data"))
	}

	span.AddEvent("validating request body")
	if err := c.Validate(sub); err != nil {
		span.SetStatus(codes.Ok, "failed to validate request data")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.ValidationError(err))
	}

	span.SetAttributes(
		attribute.String("submission.id", sub.ID),
		attribute.String("assignment.id", sub.AssignmentID),
	)

	record, err := h.grader.GradeOne(ctx, sub)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to grade submission")
		return response.FromGradingError(err)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "graded submission")
	return c.JSON(http.StatusOK, record)
}

type batchRequest struct {
	BatchID     string             `json:"batch_id"`
	Submissions []types.Submission `json:"submissions" validate:"required"`
}

type batchResponse struct {
	BatchID string `json:"batch_id,omitempty"`
	Error   string `json:"error,omitempty"`
	types.BatchResult
}

// Slots always come back, a stopped batch additionally answers 500 with the reason
func (h *Handler) GradeBatch(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "GradeBatch")
	defer span.End()

	var rdata batchRequest

	span.AddEvent("parsing request body")
	if err := c.Bind(&rdata); err != nil {
		span.SetStatus(codes.Ok, "failed to parse request data")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("failed to parse request data"))
	}

	span.AddEvent("validating request body")
	if err := c.Validate(rdata); err != nil {
		span.SetStatus(codes.Ok, "failed to validate request data")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.ValidationError(err))
	}

	if !validator.ValidateBatchSize(len(rdata.Submissions)) {
		span.SetStatus(codes.Ok, "batch too large")
		span.RecordError(nil)
		return echo.NewHTTPError(
			http.StatusBadRequest,
			types.Error{Message: "validation error", Fields: &map[string]string{
				"submissions": "must hold between 1 and 500 submissions",
			}},
		)
	}

	span.SetAttributes(
		attribute.String("batch.id", rdata.BatchID),
		attribute.Int("batch.size", len(rdata.Submissions)),
	)

	if rdata.BatchID != "" {
		ctx = audit.WithBatchID(ctx, rdata.BatchID)
	}

	result, err := h.bulk.GradeMany(ctx, rdata.Submissions)
	audit.LogBatchCompleted(audit.ContextFrom(ctx, ""), result, err != nil)

	resp := batchResponse{BatchID: rdata.BatchID, BatchResult: result}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch stopped early")

		resp.Error = "batch stopped early, undispatched submissions were not graded"
		if gradingerrors.IsFatal(err) {
			resp.Error = "a grade record could not be stored, the batch was stopped"
		}
		return c.JSON(http.StatusInternalServerError, resp)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "graded batch")
	return c.JSON(http.StatusOK, resp)
}

type submissionParam struct {
	SubmissionID string `param:"submission_id" validate:"required"`
}

func (h *Handler) CurrentGrade(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "CurrentGrade")
	defer span.End()

	var rdata submissionParam
	if err := c.Bind(&rdata); err != nil {
		span.SetStatus(codes.Ok, "failed to parse request data")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("failed to parse request data"))
	}
	span.SetAttributes(attribute.String("submission.id", rdata.SubmissionID))

	record, err := h.grades.Current(ctx, rdata.SubmissionID)
	if errors.Is(err, store.ErrNotFound) {
		span.SetStatus(codes.Ok, "submission not graded")
		span.RecordError(nil)
		return response.NotFoundError
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get current grade")
		return response.InternalServerError
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "got current grade")
	return c.JSON(http.StatusOK, record)
}

func (h *Handler) GradeHistory(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "GradeHistory")
	defer span.End()

	var rdata submissionParam
	if err := c.Bind(&rdata); err != nil {
		span.SetStatus(codes.Ok, "failed to parse request data")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("failed to parse request data"))
	}
	span.SetAttributes(attribute.String("submission.id", rdata.SubmissionID))

	history, err := h.grades.History(ctx, rdata.SubmissionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get grade history")
		return response.InternalServerError
	}
	if len(history) == 0 {
		span.SetStatus(codes.Ok, "submission not graded")
		span.RecordError(nil)
		return response.NotFoundError
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "got grade history")
	return c.JSON(http.StatusOK, history)
}
