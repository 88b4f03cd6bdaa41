package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/autograde/grader/cmd/server/internal/response"
	"github.com/autograde/grader/internal/grading"
	"github.com/autograde/grader/internal/types"
)

func (h *Handler) Override(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Override")
	defer span.End()

	type requestData struct {
		Score        *float64           `json:"score"         validate:"required"`
		Breakdown    map[string]float64 `json:"breakdown"`
		SubmissionID string             `json:"-"             param:"submission_id" validate:"required"`
		Note         string             `json:"note"          validate:"max=2000"`
	}
	var rdata requestData

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

	span.SetAttributes(attribute.String("submission.id", rdata.SubmissionID))

	record, err := h.overrider.Override(ctx, rdata.SubmissionID, grading.OverrideRequest{
		Score:     *rdata.Score,
		Breakdown: rdata.Breakdown,
		Note:      rdata.Note,
	})
	if errors.Is(err, grading.ErrNotGraded) {
		span.SetStatus(codes.Ok, "submission not graded")
		span.RecordError(err)
		return response.NotFoundError
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to override grade")
		return response.FromGradingError(err)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "overrode grade")
	return c.JSON(http.StatusOK, record)
}
