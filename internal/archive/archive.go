package archive

import (
	"context"
	"encoding/json"
	"path"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/autograde/grader/internal/audit"
	"github.com/autograde/grader/internal/types"
	"github.com/autograde/grader/internal/upload"
)

var tracer = otel.Tracer("github.com/autograde/grader/internal/archive")

// Uploads the JSON form of a grade record to the archive and emits a file archived audit event.
//
// Records of one assignment share a prefix. Returns the object name, ending in the sha256 of the
// archived JSON.
func Record(
	ctx context.Context,
	auditContext audit.Context,
	u upload.Uploader,
	record *types.GradeRecord,
) (string, error) {
	ctx, span := tracer.Start(ctx, "Record", trace.WithAttributes(
		attribute.String("record.id", record.ID.String()),
		attribute.String("submission.id", record.SubmissionID),
	))
	defer span.End()

	body, err := json.Marshal(record)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal record")
		return "", err
	}

	objectName, err := upload.HashedBytes(ctx, u, body, objectPrefix(record))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upload record")
		return "", err
	}

	identifier, err := u.StoreIdentifier(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get identifier")
		return "", err
	}

	span.AddEvent("generating audit log message")
	audit.LogFileArchived(
		auditContext,
		identifier,
		objectName,
		audit.EntityGradeRecord,
		record.ID.String(),
	)

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "archived record")
	return objectName, nil
}

func objectPrefix(record *types.GradeRecord) string {
	return path.Join("grades", record.AssignmentID)
}
