package routes

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/autograde/grader/internal/validator"
)

// Largest request body accepted, a full batch of maximum size text submissions fits
const bodyLimit = "64M"

func BuildEcho(logger *slog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	validate := validator.Create()
	e.Validator = &validate

	e.Pre(middleware.AddTrailingSlash())

	e.Use(
		otelecho.Middleware("grader"),
		slogecho.NewWithConfig(logger, slogecho.Config{WithSpanID: true, WithTraceID: true}),
		middleware.Recover(),
		middleware.BodyLimit(bodyLimit),
	)

	e.GET("/health/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	return e, nil
}
