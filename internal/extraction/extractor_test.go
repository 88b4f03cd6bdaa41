package extraction_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/autograde/grader/internal/extraction"
	"github.com/autograde/grader/internal/fetch"
	mockfetch "github.com/autograde/grader/internal/fetch/mock"
	"github.com/autograde/grader/internal/types"
)

func TestHTTPExtractor(t *testing.T) {
	ctx := context.Background()

	e := echo.New()
	e.POST("/extract", func(c echo.Context) error {
		raw, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		if string(raw) != "%PDF-scan" || c.Request().Header.Get("Content-Type") != "application/pdf" {
			return c.NoContent(http.StatusBadRequest)
		}

		return c.JSON(http.StatusOK, map[string]any{
			"text":                 "x = 2",
			"confidence":           1.4,
			"pages":                2,
			"handwriting_detected": true,
		})
	})
	server := httptest.NewServer(e)
	defer server.Close()

	client := fetch.NewRetryableClient(0, time.Second)

	t.Run("Extracted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := mockfetch.NewMockFetcher(ctrl)
		f.EXPECT().Fetch(gomock.Any(), "azblob:///scan.pdf").
			Return(io.NopCloser(strings.NewReader("%PDF-scan")), nil).Times(1)

		x := extraction.NewHTTPExtractor(server.URL+"/extract", f, client)
		result, err := x.Extract(ctx, "azblob:///scan.pdf", types.MediaKindPDF)
		require.NoError(t, err)

		assert.Equal(t, "x = 2", result.Text)
		assert.InDelta(t, 1.0, result.Confidence, 1e-9, "confidence is clamped")
		assert.Equal(t, 2, result.Pages)
		assert.True(t, result.HandwritingDetected)
	})

	t.Run("MissingArtifact", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := mockfetch.NewMockFetcher(ctrl)
		expected := errors.New("expected error")
		f.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, expected).Times(1)

		x := extraction.NewHTTPExtractor(server.URL+"/extract", f, client)
		_, err := x.Extract(ctx, "azblob:///gone.pdf", types.MediaKindPDF)
		require.ErrorIs(t, err, expected)
	})

	t.Run("ServiceError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := mockfetch.NewMockFetcher(ctrl)
		f.EXPECT().Fetch(gomock.Any(), gomock.Any()).
			Return(io.NopCloser(strings.NewReader("not a pdf")), nil).Times(1)

		x := extraction.NewHTTPExtractor(server.URL+"/extract", f, client)
		_, err := x.Extract(ctx, "azblob:///scan.png", types.MediaKindImage)
		require.Error(t, err)
	})
}
