package v1

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/autograde/grader/cmd/server/internal/ratelimit"
	"github.com/autograde/grader/internal/config"
	"github.com/autograde/grader/internal/feedback"
	"github.com/autograde/grader/internal/grading"
	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/store"
	"github.com/autograde/grader/internal/types"
)

var tracer = otel.Tracer("github.com/autograde/grader/cmd/server/internal/routes/v1")

//go:generate mockgen -destination ./mock/mock.go -package mock . Overrider,BatchGrader

type Overrider interface {
	Override(ctx context.Context, submissionID string, req grading.OverrideRequest) (*types.GradeRecord, error)
}

type BatchGrader interface {
	GradeMany(ctx context.Context, subs []types.Submission) (types.BatchResult, error)
}

var (
	_ Overrider   = (*grading.Coordinator)(nil)
	_ BatchGrader = (*grading.BulkCoordinator)(nil)
)

type Handler struct {
	grader      grading.Grader
	overrider   Overrider
	bulk        BatchGrader
	synthesizer *feedback.Synthesizer
	assignments store.AssignmentStore
	grades      store.GradeStore
	rdb         *redis.Client
	config      *config.Config
}

// rdb may be nil, which disables rate limiting
func NewHandler(
	grader grading.Grader,
	overrider Overrider,
	bulk BatchGrader,
	synthesizer *feedback.Synthesizer,
	assignments store.AssignmentStore,
	grades store.GradeStore,
	rdb *redis.Client,
	cfg *config.Config,
) Handler {
	return Handler{
		grader:      grader,
		overrider:   overrider,
		bulk:        bulk,
		synthesizer: synthesizer,
		assignments: assignments,
		grades:      grades,
		rdb:         rdb,
		config:      cfg,
	}
}

// Grading routes are limited per client address, reads are not
func NewRedisLimiter(rdb *redis.Client, limiterKey string, perMinute int64, failOpen bool) middleware.RateLimiterConfig {
	limiterStore := ratelimit.NewRedisLimitStore(ratelimit.RedisLimiterConfig{
		RedisClient: rdb,
		LimiterKey:  limiterKey,
		PerMinute:   perMinute,
		FailOpen:    failOpen,
	})

	return middleware.RateLimiterConfig{
		Store: limiterStore,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return c.JSON(http.StatusForbidden, types.StringError("could not identify client"))
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, types.StringError("rate limit exceeded"))
		},
	}
}

func (h *Handler) AddRoutes(e *echo.Echo) {
	l := logger.Logger

	v1Group := e.Group("/v1")
	gradeGroup := v1Group.Group("/grade")

	if h.rdb != nil && h.config.RateLimit.PerMinute > 0 {
		gradeGroup.Use(middleware.RateLimiterWithConfig(NewRedisLimiter(
			h.rdb,
			"grade",
			h.config.RateLimit.PerMinute,
			h.config.RateLimit.FailOpen,
		)))
	} else {
		l.Warn("not configured to have a grading rate limit")
	}

	gradeGroup.POST("/", h.GradeOne)
	gradeGroup.POST("/batch/", h.GradeBatch)
	gradeGroup.GET("/:submission_id/", h.CurrentGrade)
	gradeGroup.GET("/:submission_id/history/", h.GradeHistory)
	gradeGroup.POST("/:submission_id/override/", h.Override)

	v1Group.POST("/feedback/", h.Feedback)

	assignmentGroup := v1Group.Group("/assignment/:assignment_id")
	assignmentGroup.GET("/analytics/", h.Analytics)
	assignmentGroup.GET("/config/", h.GetConfig)
	assignmentGroup.PUT("/config/", h.PutConfig)
}
