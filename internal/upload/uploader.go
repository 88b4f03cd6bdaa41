package upload

import (
	"bytes"
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/autograde/grader/internal/hash"
)

var tracer = otel.Tracer("github.com/autograde/grader/internal/upload")

//go:generate mockgen -destination ./mock/mock.go -package mock . Uploader

// Object storage for archived grade records
type Uploader interface {
	// Create or overwrite the object called `object`
	Upload(ctx context.Context, reader io.ReadSeeker, length int64, object string) error
	// Used to skip uploading an object twice, not an authoritative existence check
	//
	// May always return false
	Exists(ctx context.Context, object string) (bool, error)
	// Name of the bucket or container objects land in, for audit events
	StoreIdentifier(ctx context.Context) (string, error)
}

// Uploads `reader` under `prefix` as an object named by the sha256 of its contents.
// Archiving the same bytes twice resolves to the same object and skips the second upload.
//
// Seeks to 0 first, so pass a reader positioned anywhere over exactly the bytes to upload.
func Hashed(
	ctx context.Context,
	u Uploader,
	reader io.ReadSeeker,
	length int64,
	prefix string,
) (string, error) {
	ctx, span := tracer.Start(ctx, "UploadHashed", trace.WithAttributes(
		attribute.Int64("length", length),
		attribute.String("prefix", prefix),
	))
	defer span.End()

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to seek to start")
		return "", err
	}

	digest, err := hash.Of(ctx, reader, length)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to hash reader")
		return "", err
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to seek to start")
		return "", err
	}

	return uploadOnce(ctx, u, reader, digest.Object(prefix), length)
}

// Hashed for a body already held in memory, digested without a second pass over a reader
func HashedBytes(ctx context.Context, u Uploader, body []byte, prefix string) (string, error) {
	ctx, span := tracer.Start(ctx, "UploadHashedBytes", trace.WithAttributes(
		attribute.Int("length", len(body)),
		attribute.String("prefix", prefix),
	))
	defer span.End()

	digest := hash.Bytes(body)

	return uploadOnce(ctx, u, bytes.NewReader(body), digest.Object(prefix), digest.Size)
}

func uploadOnce(ctx context.Context, u Uploader, reader io.ReadSeeker, object string, length int64) (string, error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("object", object))

	exists, err := u.Exists(ctx, object)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check if object exists")
		return "", err
	}

	if exists {
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "object already archived")
		return object, nil
	}

	if err := u.Upload(ctx, reader, length, object); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upload object")
		return "", err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "uploaded object by hash")
	return object, nil
}
