package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/autograde/grader/internal/scoring"
	"github.com/autograde/grader/internal/types"
)

type PingResponse struct {
	Status string `json:"status"`
}

// Ping responds with a static value
func Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, PingResponse{Status: "ready"})
}

var scorer = scoring.NewSimilarityScorer()

// Score grades the content with the local similarity scorer
func Score(c echo.Context) error {
	type requestData struct {
		Criteria       map[string]float64 `json:"criteria"`
		SubmissionID   string             `json:"submission_id"   validate:"required"`
		AssignmentID   string             `json:"assignment_id"   validate:"required"`
		Kind           string             `json:"kind"`
		Content        string             `json:"content"`
		ExpectedAnswer string             `json:"expected_answer"`
		Keywords       []string           `json:"keywords"`
		TotalPoints    float64            `json:"total_points"    validate:"gt=0"`
	}
	var rdata requestData

	if err := c.Bind(&rdata); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("failed to parse request data"))
	}

	if err := c.Validate(rdata); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, types.ValidationError(err))
	}

	result, err := scorer.Score(c.Request().Context(), scoring.Request{
		SubmissionID: rdata.SubmissionID,
		Content:      rdata.Content,
		Config: types.AssignmentGradingConfig{
			AssignmentID:   rdata.AssignmentID,
			Kind:           types.AssignmentKindFromString(rdata.Kind),
			TotalPoints:    rdata.TotalPoints,
			Criteria:       rdata.Criteria,
			ExpectedAnswer: rdata.ExpectedAnswer,
			Keywords:       rdata.Keywords,
		},
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, types.StringError(err.Error()))
	}

	return c.JSON(http.StatusOK, result)
}
