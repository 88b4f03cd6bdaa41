package v1

import (
	"io"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/autograde/grader/internal/types"
)

const (
	maxArtifactBytes  = 32 << 20
	defaultConfidence = 0.9
)

type extractResponse struct {
	Text                string  `json:"text"`
	Confidence          float64 `json:"confidence"`
	Pages               int     `json:"pages"`
	HandwritingDetected bool    `json:"handwriting_detected"`
}

// Extract treats the artifact bytes as the recognized text. Binary artifacts come back empty
// with zero confidence. The confidence query parameter overrides the reported confidence.
func Extract(c echo.Context) error {
	artifact, err := io.ReadAll(io.LimitReader(c.Request().Body, maxArtifactBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("failed to read artifact"))
	}
	if len(artifact) > maxArtifactBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, types.StringError("artifact too large"))
	}

	resp := extractResponse{Pages: 1}
	if utf8.Valid(artifact) {
		resp.Text = string(artifact)
		resp.Confidence = defaultConfidence
	}

	if raw := c.QueryParam("confidence"); raw != "" {
		confidence, err := strconv.ParseFloat(raw, 64)
		if err != nil || confidence < 0 || confidence > 1 {
			return echo.NewHTTPError(
				http.StatusBadRequest,
				types.StringError("confidence must be a number between 0 and 1"),
			)
		}
		resp.Confidence = confidence
	}

	return c.JSON(http.StatusOK, resp)
}
