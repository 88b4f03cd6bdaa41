package scoring_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autograde/grader/internal/fetch"
	"github.com/autograde/grader/internal/scoring"
	"github.com/autograde/grader/internal/types"
)

func TestHTTPScorer(t *testing.T) {
	ctx := context.Background()

	cfg := types.AssignmentGradingConfig{
		AssignmentID: "12",
		Kind:         types.AssignmentKindEssay,
		TotalPoints:  100,
		Criteria:     map[string]float64{"content": 100},
	}

	e := echo.New()
	e.POST("/score", func(c echo.Context) error {
		var body map[string]any
		if err := c.Bind(&body); err != nil {
			return err
		}
		if body["submission_id"] != "sub-1" || body["kind"] != "essay" {
			return c.NoContent(http.StatusUnprocessableEntity)
		}

		return c.JSON(http.StatusOK, map[string]any{
			"score":       82.5,
			"confidence":  0.9,
			"breakdown":   map[string]float64{"content": 82.5},
			"feedback":    "solid",
			"suggestions": []string{"cite sources"},
			"extras":      map[string]any{"word_count": 420},
		})
	})
	e.POST("/broken", func(c echo.Context) error {
		return c.NoContent(http.StatusServiceUnavailable)
	})

	server := httptest.NewServer(e)
	defer server.Close()

	client := fetch.NewRetryableClient(0, time.Second)

	t.Run("Scored", func(t *testing.T) {
		s := scoring.NewHTTPScorer(server.URL+"/score", client)

		result, err := s.Score(ctx, scoring.Request{SubmissionID: "sub-1", Content: "essay", Config: cfg})
		require.NoError(t, err)

		assert.InDelta(t, 82.5, result.Score, 1e-9)
		assert.InDelta(t, 0.9, result.Confidence, 1e-9)
		assert.Equal(t, []string{"cite sources"}, result.Suggestions)
		assert.JSONEq(t, `{"word_count":420}`, string(result.Extras))
	})

	t.Run("Rejected", func(t *testing.T) {
		s := scoring.NewHTTPScorer(server.URL+"/score", client)

		_, err := s.Score(ctx, scoring.Request{SubmissionID: "other", Content: "essay", Config: cfg})
		require.ErrorIs(t, err, scoring.ErrRejected)
	})

	t.Run("Unavailable", func(t *testing.T) {
		s := scoring.NewHTTPScorer(server.URL+"/broken", client)

		_, err := s.Score(ctx, scoring.Request{SubmissionID: "sub-1", Content: "essay", Config: cfg})
		require.Error(t, err)
		assert.NotErrorIs(t, err, scoring.ErrRejected)
	})
}
