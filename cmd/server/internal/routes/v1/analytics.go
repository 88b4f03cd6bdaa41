package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/autograde/grader/cmd/server/internal/response"
	"github.com/autograde/grader/internal/analytics"
	"github.com/autograde/grader/internal/store"
	"github.com/autograde/grader/internal/types"
)

// Statistics over the current grades of an assignment. Failed attempts carry no score and are left out.
func (h *Handler) Analytics(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Analytics")
	defer span.End()

	type requestData struct {
		AssignmentID string  `param:"assignment_id" validate:"required,numeric"`
		Rule         string  `query:"rule"          validate:"omitempty,oneof=robust classic"`
		Sigma        float64 `query:"sigma"         validate:"gte=0"`
	}
	var rdata requestData

	if err := c.Bind(&rdata); err != nil {
		span.SetStatus(codes.Ok, "failed to parse request data")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("failed to parse request data"))
	}
	if err := c.Validate(rdata); err != nil {
		span.SetStatus(codes.Ok, "failed to validate request data")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.ValidationError(err))
	}

	span.SetAttributes(attribute.String("assignment.id", rdata.AssignmentID))

	opts := analytics.Options{
		OutlierRule:  analytics.OutlierRule(rdata.Rule),
		OutlierSigma: rdata.Sigma,
	}

	cfg, err := h.assignments.GradingConfig(ctx, rdata.AssignmentID)
	switch {
	case err == nil:
		opts.TotalPoints = cfg.TotalPoints
		opts.Bands = cfg.Bands
	case errors.Is(err, store.ErrNotFound):
		span.AddEvent("no grading config, using default scale")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get grading config")
		return response.InternalServerError
	}

	records, err := h.grades.ListCurrent(ctx, rdata.AssignmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list current grades")
		return response.InternalServerError
	}

	samples := make([]types.GradeSample, 0, len(records))
	for _, r := range records {
		if r.Score == nil {
			continue
		}

		confidence := r.Confidence
		samples = append(samples, types.GradeSample{
			StudentID:  r.StudentID,
			Score:      *r.Score,
			Confidence: &confidence,
		})
	}

	span.SetAttributes(attribute.Int("analytics.samples", len(samples)))

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "computed analytics")
	return c.JSON(http.StatusOK, analytics.Compute(samples, opts))
}
