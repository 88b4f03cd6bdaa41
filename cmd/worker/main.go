package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/autograde/grader/cmd/worker/cmds"
	gradingerrors "github.com/autograde/grader/internal/grading_errors"
	"github.com/autograde/grader/internal/logger"
	otelgrader "github.com/autograde/grader/internal/otel"
	"github.com/autograde/grader/internal/types"
)

var tracer = otel.Tracer("github.com/autograde/grader/cmd/worker")

func runApp(ctx context.Context) int {
	useOTLP, err := strconv.ParseBool(os.Getenv("USE_OTLP"))
	if err != nil {
		useOTLP = false
	}

	shutdown, err := otelgrader.SetupOTelSDK(ctx, "grader-worker", useOTLP)
	if err != nil {
		logger.Logger.Warn("failed to setup otel sdk", "error", err)
		shutdown = func(context.Context) error { return nil }
	}
	defer func() {
		fail := shutdown(ctx)
		if fail != nil {
			logger.Logger.Warn("no clean shutdown for otel", "error", fail)
		}
	}()

	// A scheduler may hand us its trace through the environment
	carrier := otelgrader.NewEnvCarrier()
	extractedContext := otel.GetTextMapPropagator().Extract(context.Background(), carrier)
	ctx, span := tracer.Start(
		ctx,
		"Worker",
		trace.WithNewRoot(),
		trace.WithLinks(trace.LinkFromContext(extractedContext)),
	)
	defer span.End()

	err = cmds.Execute(ctx)
	if err != nil {
		var ee gradingerrors.ExitError
		if errors.As(err, &ee) {
			if ee.Code == types.ExitItemsFailed {
				logger.Logger.Warn("batch finished with failures", "error", err)
			} else {
				logger.Logger.Error("error executing subcommands", "error", err)
			}
			return ee.Code
		}

		logger.Logger.Error("error executing subcommands", "error", err)
		return types.ExitErrored
	}

	return types.ExitNormal
}

func main() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger.InitSlog(level)

	ctx := context.Background()

	os.Exit(runApp(ctx))
}
