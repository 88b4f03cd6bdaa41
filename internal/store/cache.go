package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/types"
)

const cacheKeyPrefix = "grader-config-"

var _ AssignmentStore = (*CachedAssignmentSource)(nil)

// Read through redis cache in front of another AssignmentSource.
//
// Redis being unavailable degrades to reading from the wrapped source.
type CachedAssignmentSource struct {
	client *redis.Client
	next   AssignmentSource
	ttl    time.Duration
}

func NewCachedAssignmentSource(client *redis.Client, next AssignmentSource, ttl time.Duration) *CachedAssignmentSource {
	return &CachedAssignmentSource{client: client, next: next, ttl: ttl}
}

func cacheKey(assignmentID string) string {
	return cacheKeyPrefix + assignmentID
}

func (s *CachedAssignmentSource) GradingConfig(
	ctx context.Context,
	assignmentID string,
) (*types.AssignmentGradingConfig, error) {
	ctx, span := tracer.Start(ctx, "CachedAssignmentSource.GradingConfig", trace.WithAttributes(
		attribute.String("assignment.id", assignmentID),
	))
	defer span.End()

	l := logger.Component("store").With("assignmentID", assignmentID)

	cached, err := s.client.Get(ctx, cacheKey(assignmentID)).Bytes()
	switch {
	case err == nil:
		var cfg types.AssignmentGradingConfig
		if err := json.Unmarshal(cached, &cfg); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			span.RecordError(nil)
			span.SetStatus(codes.Ok, "got cached grading config")
			return &cfg, nil
		}
		l.WarnContext(ctx, "discarding malformed cached grading config", "error", err)
	case !errors.Is(err, redis.Nil):
		span.AddEvent("cache unavailable")
		l.WarnContext(ctx, "grading config cache unavailable", "error", err)
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))

	cfg, err := s.next.GradingConfig(ctx, assignmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get grading config")
		return nil, err
	}

	body, err := json.Marshal(cfg)
	if err == nil {
		err = s.client.Set(ctx, cacheKey(assignmentID), body, s.ttl).Err()
	}
	if err != nil {
		l.WarnContext(ctx, "failed to cache grading config", "error", err)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "got grading config")
	return cfg, nil
}

// Drop the cached config so the next read goes to the wrapped source
func (s *CachedAssignmentSource) Invalidate(ctx context.Context, assignmentID string) error {
	ctx, span := tracer.Start(ctx, "CachedAssignmentSource.Invalidate", trace.WithAttributes(
		attribute.String("assignment.id", assignmentID),
	))
	defer span.End()

	if err := s.client.Del(ctx, cacheKey(assignmentID)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to invalidate cached grading config")
		return err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "invalidated cached grading config")
	return nil
}

// Write through to the wrapped source, which must be an AssignmentStore, then drop the cached copy.
// If invalidation fails the old config may be served until its TTL expires.
func (s *CachedAssignmentSource) Put(ctx context.Context, cfg *types.AssignmentGradingConfig) error {
	ctx, span := tracer.Start(ctx, "CachedAssignmentSource.Put", trace.WithAttributes(
		attribute.String("assignment.id", cfg.AssignmentID),
	))
	defer span.End()

	writer, ok := s.next.(AssignmentStore)
	if !ok {
		span.RecordError(ErrReadOnly)
		span.SetStatus(codes.Error, "wrapped source is read only")
		return ErrReadOnly
	}

	if err := writer.Put(ctx, cfg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to put grading config")
		return err
	}

	if err := s.Invalidate(ctx, cfg.AssignmentID); err != nil {
		logger.Component("store").WarnContext(ctx, "stale grading config stays cached until it expires",
			"assignmentID", cfg.AssignmentID,
			"error", err,
		)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "put grading config")
	return nil
}
