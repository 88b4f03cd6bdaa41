package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/labstack/echo/v4"
	otellib "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/autograde/grader/cmd/server/internal/routes"
	routesv1 "github.com/autograde/grader/cmd/server/internal/routes/v1"
	"github.com/autograde/grader/internal/config"
	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/otel"
	"github.com/autograde/grader/internal/pipeline"
	"github.com/autograde/grader/internal/store/migrations"
	"github.com/autograde/grader/internal/upload"
)

const name string = "github.com/autograde/grader/cmd/server"

var tracer = otellib.Tracer(name)

type server struct {
	router       *echo.Echo
	config       *config.Config
	pipeline     *pipeline.Pipeline
	otelShutdown func(context.Context) error
}

func initServer(ctx context.Context) (*server, error) {
	server := new(server)

	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize server config: %w", err)
	}
	server.config = cfg

	shutdownOTel, err := otel.SetupOTelSDK(ctx, "grader-server", cfg.Logging.UseOTLP)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OTEL SDK: %w", err)
	}
	defer func() {
		// Something failed to initialize, make sure everything gets flushed to the server
		if server.otelShutdown == nil {
			otelShutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				time.Second*time.Duration(cfg.GracefulShutdownSecs),
			)
			defer cancel()

			if err = shutdownOTel(otelShutdownCtx); err != nil {
				logger.Logger.Error("failed to flush otel data", "error", err)
			}
		}
	}()

	ctx, span := tracer.Start(ctx, "initServer")
	defer span.End()

	logger.LogLevel.Set(slog.Level(cfg.Logging.App.Level))

	p, err := pipeline.New(ctx, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build grading pipeline")
		return nil, fmt.Errorf("failed to build grading pipeline: %w", err)
	}

	span.AddEvent("built grading pipeline")

	err = migrations.Up(ctx, p.DB)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to preform database migrations")
		return nil, errors.Join(fmt.Errorf("failed to perform database migrations: %w", err), p.Close())
	}

	span.AddEvent("migrated database to latest version")

	if cfg.Azure != nil && cfg.Azure.Dev {
		if err = setupContainers(ctx, cfg.Azure.StorageAccount); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "error setting up containers for dev environment")
			return nil, errors.Join(fmt.Errorf("error setting up containers for dev environment: %w", err), p.Close())
		}

		if err = setupBucket(ctx, cfg.S3Archive); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "error setting up archive bucket for dev environment")
			return nil, errors.Join(fmt.Errorf("error setting up archive bucket for dev environment: %w", err), p.Close())
		}
	}

	e, err := routes.BuildEcho(logger.Logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "error building router")
		return nil, errors.Join(fmt.Errorf("error building router: %w", err), p.Close())
	}

	span.AddEvent("created echo router")

	v1Handler := routesv1.NewHandler(
		p.Coordinator,
		p.Coordinator,
		p.Bulk,
		p.Synthesizer,
		p.Assignments,
		p.Grades,
		p.Redis,
		cfg,
	)
	v1Handler.AddRoutes(e)

	server.otelShutdown = shutdownOTel
	server.router = e
	server.pipeline = p

	return server, nil
}

func (s *server) Start() error {
	logger.Logger.Info("Starting services...", "address", s.config.ListenAddress)

	err := s.router.Start(s.config.ListenAddress)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *server) Shutdown() error {
	var errs error

	ctx, cancelTimeout := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(s.config.GracefulShutdownSecs),
	)
	defer cancelTimeout()

	// Stop taking requests before the stores go away
	if err := s.router.Shutdown(ctx); err != nil {
		errs = errors.Join(errs, err)
	}

	if err := s.pipeline.Close(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("failed to close grading pipeline: %w", err))
	}

	if s.otelShutdown != nil {
		errs = errors.Join(errs, s.otelShutdown(ctx))
	}

	return errs
}

func main() {
	ctx, cancelSignal := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)

	logger.InitSlog(slog.LevelInfo)

	server, err := initServer(ctx)
	if err != nil {
		logger.Logger.Error(err.Error())
		cancelSignal()
		os.Exit(1)
	}

	errch := make(chan error, 1)
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Got shutdown signal!")
		errch <- server.Shutdown()
		close(errch)
	}()

	if err := server.Start(); err != nil {
		logger.Logger.Error(err.Error())
		cancelSignal()
		os.Exit(1)
	}

	if err := <-errch; err != nil {
		logger.Logger.Error("Error shutting down server", "error", err)
	}

	cancelSignal()
}

// Create the artifact and archive containers against a local emulator
func setupContainers(ctx context.Context, sa *config.AzureStorageAccountConfig) error {
	cred, err := azblob.NewSharedKeyCredential(sa.Name, sa.Key)
	if err != nil {
		return err
	}

	azureClient, err := azblob.NewClientWithSharedKeyCredential(sa.Containers.URL, cred, nil)
	if err != nil {
		return err
	}

	for _, container := range []string{sa.Containers.Artifacts, sa.Containers.Archive} {
		if container == "" {
			continue
		}

		_, err = azureClient.CreateContainer(ctx, container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return err
		}
	}

	return nil
}

// Create the S3 archive bucket when the archive is enabled
func setupBucket(ctx context.Context, s3 *config.S3ArchiveConfig) error {
	if s3 == nil || !s3.Enabled {
		return nil
	}

	uploader, err := upload.NewMinioUploader(s3.Endpoint, s3.AccessKeyID, s3.SecretAccessKey, s3.SSLEnabled, s3.BucketName)
	if err != nil {
		return err
	}

	return uploader.EnsureBucket(ctx)
}
