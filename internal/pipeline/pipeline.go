// Package pipeline assembles the grading components from configuration for the server and worker.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/autograde/grader/internal/config"
	"github.com/autograde/grader/internal/extraction"
	"github.com/autograde/grader/internal/feedback"
	"github.com/autograde/grader/internal/fetch"
	"github.com/autograde/grader/internal/grading"
	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/scoring"
	"github.com/autograde/grader/internal/store"
	"github.com/autograde/grader/internal/upload"
)

var tracer = otel.Tracer("github.com/autograde/grader/internal/pipeline")

type Pipeline struct {
	Assignments store.AssignmentStore
	Grades      store.GradeStore
	Coordinator *grading.Coordinator
	Bulk        *grading.BulkCoordinator
	Synthesizer *feedback.Synthesizer
	DB          *gorm.DB
	Redis       *redis.Client
}

// Storage backed pipeline: postgres for configs and grades, redis in front of configs when
// configured, and the record archive when configured.
func New(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	ctx, span := tracer.Start(ctx, "pipeline.New")
	defer span.End()

	l := logger.Component("pipeline")

	db, err := store.Open(ctx, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open database")
		return nil, err
	}

	p := &Pipeline{DB: db}

	p.Assignments = store.NewGormAssignmentSource(db)
	if cfg.Redis != nil && cfg.Redis.Host != "" && cfg.Redis.ConfigTTL > 0 {
		p.Redis = NewRedisClient(cfg)
		p.Assignments = store.NewCachedAssignmentSource(p.Redis, p.Assignments, cfg.Redis.ConfigTTL)
		span.AddEvent("enabled grading config cache")
	} else {
		l.WarnContext(ctx, "grading config cache disabled")
	}

	p.Grades = store.NewGormGradeStore(db)
	archiver, err := NewArchiver(cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct archiver")
		return nil, errors.Join(err, p.Close())
	}
	if archiver != nil {
		p.Grades = store.NewArchivingGradeStore(p.Grades, upload.NewRetryUploader(archiver))
		span.AddEvent("enabled grade record archive")
	} else {
		l.WarnContext(ctx, "grade record archive disabled")
	}

	scorer, err := NewScorer(cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct scorer")
		return nil, errors.Join(err, p.Close())
	}

	extractor, err := NewExtractor(cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct extractor")
		return nil, errors.Join(err, p.Close())
	}

	p.assemble(cfg, scorer, extractor)

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "built pipeline")
	return p, nil
}

// Pipeline held in process around the similarity scorer. Nothing is persisted beyond its lifetime.
func NewLocal(cfg *config.Config, assignments *store.MemoryAssignmentSource) *Pipeline {
	p := &Pipeline{
		Assignments: assignments,
		Grades:      store.NewMemoryGradeStore(),
	}
	p.assemble(cfg, scoring.NewSimilarityScorer(), nil)

	return p
}

func (p *Pipeline) assemble(cfg *config.Config, scorer scoring.Scorer, extractor extraction.Extractor) {
	p.Synthesizer = NewSynthesizer(cfg)
	p.Coordinator = grading.NewCoordinator(
		grading.NewPreprocessor(extractor),
		grading.NewAcquirer(scorer, cfg.Scoring.Timeout),
		grading.NewRouter(cfg.Routing.Threshold, cfg.Routing.KindThresholds),
		p.Synthesizer,
		p.Assignments,
		p.Grades,
	)
	p.Bulk = grading.NewBulkCoordinator(p.Coordinator, cfg.Grading.MaxConcurrency)
}

func (p *Pipeline) Close() error {
	var errs error

	if p.Redis != nil {
		errs = errors.Join(errs, p.Redis.Close())
	}

	if p.DB != nil {
		sqlDB, err := p.DB.DB()
		if err != nil {
			return errors.Join(errs, err)
		}
		errs = errors.Join(errs, sqlDB.Close())
	}

	return errs
}

func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// HTTP scorer with transport retries, wrapped in the retry decorator when more than one attempt
// is configured. The similarity scorer when scoring is local.
func NewScorer(cfg *config.Config) (scoring.Scorer, error) {
	if cfg.Scoring.Local {
		return scoring.NewSimilarityScorer(), nil
	}
	if cfg.Scoring.URL == "" {
		return nil, errors.New("scoring url is required unless scoring is local")
	}

	var scorer scoring.Scorer = scoring.NewHTTPScorer(
		cfg.Scoring.URL,
		fetch.NewRetryableClient(cfg.Scoring.RetryMax, cfg.Scoring.Timeout),
	)
	if cfg.Scoring.BatchAttempts > 1 {
		scorer = scoring.NewRetryScorer(scorer, cfg.Scoring.BatchAttempts)
	}

	return scorer, nil
}

// Extractor fetching azblob and http(s) artifacts, nil when no extraction service is configured
func NewExtractor(cfg *config.Config) (extraction.Extractor, error) {
	if cfg.Extraction.URL == "" {
		return nil, nil
	}

	client := fetch.NewRetryableClient(cfg.Extraction.RetryMax, cfg.Extraction.Timeout)
	fetcher := fetch.NewSchemeFetcher().
		Register(fetch.NewHTTPFetcher(client), "http", "https")

	if cfg.Azure != nil {
		sa := cfg.Azure.StorageAccount
		azureFetcher, err := fetch.NewAzureFetcher(sa.Name, sa.Key, sa.Containers.URL, sa.Containers.Artifacts)
		if err != nil {
			return nil, fmt.Errorf("failed to construct artifact fetcher: %w", err)
		}
		fetcher.Register(azureFetcher, fetch.AzureScheme, "")
	}

	return extraction.NewHTTPExtractor(cfg.Extraction.URL, fetcher, client), nil
}

// S3 archive when enabled, otherwise the azure archive container when one is named, otherwise nil
func NewArchiver(cfg *config.Config) (upload.Uploader, error) {
	if cfg.S3Archive != nil && cfg.S3Archive.Enabled {
		s3 := cfg.S3Archive
		return upload.NewMinioUploader(s3.Endpoint, s3.AccessKeyID, s3.SecretAccessKey, s3.SSLEnabled, s3.BucketName)
	}

	if cfg.Azure != nil && cfg.Azure.StorageAccount.Containers.Archive != "" {
		sa := cfg.Azure.StorageAccount
		return upload.NewAzureUploader(sa.Name, sa.Key, sa.Containers.URL, sa.Containers.Archive)
	}

	return nil, nil
}

func NewSynthesizer(cfg *config.Config) *feedback.Synthesizer {
	tones := make([]feedback.Tone, 0, len(cfg.Feedback.Tones))
	for _, t := range cfg.Feedback.Tones {
		tones = append(tones, feedback.Tone{Name: t.Name, Min: t.Min})
	}

	return feedback.NewSynthesizer(tones)
}
