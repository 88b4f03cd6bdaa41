package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	gradingerrors "github.com/autograde/grader/internal/grading_errors"
	"github.com/autograde/grader/internal/types"
)

var (
	InternalServerError = echo.NewHTTPError(
		http.StatusInternalServerError,
		types.StringError("something went wrong"),
	)
	NotFoundError = echo.NewHTTPError(http.StatusNotFound, types.StringError("not found"))
)

// HTTP error for a grading error. Persistence and unknown errors never leak their cause.
func FromGradingError(err error) *echo.HTTPError {
	kind, ok := gradingerrors.KindOf(err)
	if !ok {
		return InternalServerError
	}

	switch kind {
	case gradingerrors.KindInvalidSubmission:
		var ge gradingerrors.GradingError
		if errors.As(err, &ge) && ge.Err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, types.StringError(ge.Err.Error()))
		}
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("invalid submission"))
	case gradingerrors.KindConfig:
		return echo.NewHTTPError(
			http.StatusUnprocessableEntity,
			types.StringError("assignment has no usable grading config"),
		)
	default:
		return InternalServerError
	}
}
