package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	routesv1 "github.com/autograde/grader/cmd/mock_scorer/routes/v1"
	"github.com/autograde/grader/internal/validator"
)

// Stand in for the scoring and text extraction services during local development.
// Point scoring.url at /v1/score/ and extraction.url at /v1/extract/.
func main() {
	e := echo.New()

	validate := validator.Create()
	e.Validator = &validate

	e.Pre(middleware.AddTrailingSlash())

	e.Use(middleware.Logger())

	v1Group := e.Group("/v1")

	v1Group.GET("/ping/", routesv1.Ping)
	v1Group.POST("/score/", routesv1.Score)
	v1Group.POST("/extract/", routesv1.Extract)

	e.Logger.Fatal(e.Start(":1324"))
}
