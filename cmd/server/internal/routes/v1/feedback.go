package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/autograde/grader/internal/feedback"
	"github.com/autograde/grader/internal/types"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
)

// Feedback for a score produced elsewhere, nothing is graded or stored
func (h *Handler) Feedback(c echo.Context) error {
	_, span := tracer.Start(c.Request().Context(), "Feedback")
	defer span.End()

	type requestData struct {
		Breakdown   map[string]float64   `json:"breakdown"`
		Criteria    map[string]float64   `json:"criteria"`
		Kind        types.AssignmentKind `json:"kind"         validate:"omitempty,oneof=coding essay math other"`
		Format      string               `json:"format"       validate:"omitempty,oneof=json markdown text"`
		Bands       types.BandTable      `json:"bands"        validate:"omitempty,dive"`
		Suggestions []string             `json:"suggestions"`
		Score       float64              `json:"score"        validate:"gte=0,ltefield=TotalPoints"`
		TotalPoints float64              `json:"total_points" validate:"gt=0"`
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

	span.SetAttributes(
		attribute.String("feedback.kind", string(rdata.Kind)),
		attribute.String("feedback.format", rdata.Format),
	)

	fb := h.synthesizer.Synthesize(feedback.Input{
		Score:       rdata.Score,
		TotalPoints: rdata.TotalPoints,
		Breakdown:   rdata.Breakdown,
		Criteria:    rdata.Criteria,
		Kind:        types.AssignmentKindFromString(string(rdata.Kind)),
		Bands:       rdata.Bands,
		Suggestions: rdata.Suggestions,
	})

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "synthesized feedback")

	switch rdata.Format {
	case formatMarkdown:
		return c.String(http.StatusOK, feedback.Markdown(fb, rdata.Score, rdata.TotalPoints))
	case formatText:
		return c.String(http.StatusOK, feedback.PlainText(fb, rdata.Score, rdata.TotalPoints))
	default:
		return c.JSON(http.StatusOK, fb)
	}
}
