package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/autograde/grader/cmd/server/internal/response"
	"github.com/autograde/grader/internal/store"
	"github.com/autograde/grader/internal/types"
)

type assignmentParam struct {
	AssignmentID string `param:"assignment_id" validate:"required,numeric"`
}

func (h *Handler) GetConfig(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "GetConfig")
	defer span.End()

	var rdata assignmentParam
	if err := c.Bind(&rdata); err != nil {
		span.SetStatus(codes.Ok, "failed to parse request data")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("failed to parse request data"))
	}
	span.SetAttributes(attribute.String("assignment.id", rdata.AssignmentID))

	cfg, err := h.assignments.GradingConfig(ctx, rdata.AssignmentID)
	if errors.Is(err, store.ErrNotFound) {
		span.SetStatus(codes.Ok, "no grading config")
		span.RecordError(nil)
		return response.NotFoundError
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get grading config")
		return response.InternalServerError
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "got grading config")
	return c.JSON(http.StatusOK, cfg)
}

// Sync point for the assignment service. The path id wins over any id in the body.
func (h *Handler) PutConfig(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "PutConfig")
	defer span.End()

	var param assignmentParam
	if err := (&echo.DefaultBinder{}).BindPathParams(c, &param); err != nil {
		span.SetStatus(codes.Ok, "failed to parse path")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("failed to parse request data"))
	}

	var cfg types.AssignmentGradingConfig
	span.AddEvent("parsing request body")
	if err := c.Bind(&cfg); err != nil {
		span.SetStatus(codes.Ok, "failed to parse request data")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("failed to parse request data"))
	}
	cfg.AssignmentID = param.AssignmentID
	cfg.Kind = types.AssignmentKindFromString(string(cfg.Kind))

	span.SetAttributes(attribute.String("assignment.id", cfg.AssignmentID))

	span.AddEvent("validating request body")
	if err := c.Validate(cfg); err != nil {
		span.SetStatus(codes.Ok, "failed to validate request data")
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusBadRequest, types.ValidationError(err))
	}

	if err := h.assignments.Put(ctx, &cfg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to store grading config")
		return response.InternalServerError
	}

	stored, err := h.assignments.GradingConfig(ctx, cfg.AssignmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read back grading config")
		return response.InternalServerError
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "stored grading config")
	return c.JSON(http.StatusOK, stored)
}
