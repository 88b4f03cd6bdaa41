package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/types"
)

type Context struct {
	BatchID      *string
	AssignmentID string
}

type batchIDKey struct{}

// Tag ctx with the batch its grading work belongs to
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchIDKey{}, batchID)
}

// Audit context for an assignment, carrying the batch id of ctx when there is one
func ContextFrom(ctx context.Context, assignmentID string) Context {
	c := Context{AssignmentID: assignmentID}
	if batchID, ok := ctx.Value(batchIDKey{}).(string); ok {
		c.BatchID = &batchID
	}

	return c
}

var (
	outputMu sync.Mutex
	output   io.Writer = os.Stdout
)

// Redirect audit events, returns the previous writer
func SetOutput(w io.Writer) io.Writer {
	outputMu.Lock()
	defer outputMu.Unlock()

	prev := output
	output = w
	return prev
}

func dispForMethod(method types.GradingMethod) Disposition {
	switch method {
	case types.GradingMethodAutomated:
		return DispositionGood
	case types.GradingMethodError:
		return DispositionBad
	default:
		return DispositionNeutral
	}
}

func newMessage(c Context, evt EventType, disp Disposition) Message {
	return Message{
		BatchID:       c.BatchID,
		AssignmentID:  c.AssignmentID,
		LogContext:    logContext,
		SchemaVersion: schemaVersion,
		Disposition:   disp,
		Type:          evt,
		Timestamp:     types.UnixMilli(time.Now().UTC().UnixMilli()),
	}
}

// One JSON document per line, serialized so concurrent batch items never interleave
func emit(event any, evt EventType, attrs ...any) {
	evtStr, err := json.Marshal(event)
	if err != nil {
		logger.Logger.Error(
			fmt.Sprintf("could not serialize %s event", evt),
			append(attrs, "error", err)...,
		)
		return
	}

	outputMu.Lock()
	defer outputMu.Unlock()
	fmt.Fprintln(output, string(evtStr))
}

func LogGradeFinalized(c Context, record *types.GradeRecord) {
	event := GradeFinalized{}
	event.Message = newMessage(c, EvtGradeFinalized, dispForMethod(record.Method))

	event.Event.RecordID = record.ID.String()
	event.Event.SubmissionID = record.SubmissionID
	event.Event.StudentID = record.StudentID
	event.Event.Method = record.Method
	event.Event.Grade = record.Grade
	if record.Score != nil {
		event.Event.Score = *record.Score
	}
	event.Event.TotalPoints = record.TotalPoints
	event.Event.Confidence = record.Confidence
	event.Event.BreakdownConsistent = record.BreakdownConsistent
	event.Event.OCRProcessed = record.OCRProcessed

	emit(event, EvtGradeFinalized, "submissionID", record.SubmissionID, "method", record.Method)
}

func LogGradeFailed(c Context, record *types.GradeRecord) {
	event := GradeFailed{}
	event.Message = newMessage(c, EvtGradeFailed, DispositionBad)

	event.Event.RecordID = record.ID.String()
	event.Event.SubmissionID = record.SubmissionID
	event.Event.ErrorKind = record.ErrorKind
	event.Event.Error = record.Error

	emit(event, EvtGradeFailed, "submissionID", record.SubmissionID, "errorKind", record.ErrorKind)
}

// `previous` is nil when the submission had no record yet
func LogGradeOverridden(c Context, record *types.GradeRecord, previous *types.GradeRecord, note string) {
	event := GradeOverridden{}
	event.Message = newMessage(c, EvtGradeOverridden, DispositionNeutral)

	event.Event.RecordID = record.ID.String()
	event.Event.SubmissionID = record.SubmissionID
	if record.Score != nil {
		event.Event.Score = *record.Score
	}
	event.Event.Note = note
	if previous != nil {
		id := previous.ID.String()
		event.Event.SupersededRecord = &id
		event.Event.PreviousScore = previous.Score
	}

	emit(event, EvtGradeOverridden, "submissionID", record.SubmissionID)
}

func LogBatchCompleted(c Context, result types.BatchResult, aborted bool) {
	succeeded, failed := result.Counts()

	disp := DispositionGood
	if aborted {
		disp = DispositionBad
	} else if failed > 0 {
		disp = DispositionNeutral
	}

	event := BatchCompleted{}
	event.Message = newMessage(c, EvtBatchCompleted, disp)
	event.Event.Total = len(result.Items)
	event.Event.Succeeded = succeeded
	event.Event.Failed = failed
	event.Event.Aborted = aborted

	emit(event, EvtBatchCompleted, "total", len(result.Items), "failed", failed, "aborted", aborted)
}

func LogFileArchived(c Context, bucketName, objectName string, entity ArchivedEntity, entityID string) {
	event := FileArchived{}
	event.Message = newMessage(c, EvtFileArchived, DispositionNeutral)

	event.Event.BucketName = bucketName
	event.Event.ObjectName = objectName
	event.Event.Entity = entity
	event.Event.EntityID = entityID

	emit(event, EvtFileArchived, "bucketName", bucketName, "objectName", objectName, "entityID", entityID)
}
