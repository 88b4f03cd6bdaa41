package audit

import (
	"github.com/autograde/grader/internal/types"
)

var schemaVersion = "0.2.0"
var logContext = "audit"

type Disposition string

const (
	DispositionNeutral Disposition = "neutral"
	DispositionGood    Disposition = "good"
	DispositionBad     Disposition = "bad"
)

type ArchivedEntity string

const (
	EntityGradeRecord ArchivedEntity = "grade_record"
)

type EventType string

const (
	EvtGradeFinalized  EventType = "grade_finalized"
	EvtGradeFailed     EventType = "grade_failed"
	EvtGradeOverridden EventType = "grade_overridden"
	EvtBatchCompleted  EventType = "batch_completed"
	EvtFileArchived    EventType = "file_archived"
)

type Message struct {
	BatchID       *string     `json:"batch_id"`
	AssignmentID  string      `json:"assignment_id" validate:"required"`
	LogContext    string      `json:"log_context"   validate:"required"`
	SchemaVersion string      `json:"version"       validate:"required"`
	Disposition   Disposition `json:"disposition"   validate:"required"`
	Type          EventType   `json:"event_type"    validate:"required"`

	Timestamp types.UnixMilli `json:"timestamp" validate:"required"`
}

type GradeFinalizedEvent struct {
	RecordID     string              `json:"record_id"      validate:"required"`
	SubmissionID string              `json:"submission_id"  validate:"required"`
	StudentID    string              `json:"student_id"     validate:"required"`
	Method       types.GradingMethod `json:"grading_method" validate:"required"`
	Grade        string              `json:"grade"`
	Score        float64             `json:"score"`
	TotalPoints  float64             `json:"total_points"`
	Confidence   float64             `json:"confidence"`
	// false when the scorer breakdown did not add up to the score
	BreakdownConsistent bool `json:"breakdown_consistent"`
	OCRProcessed        bool `json:"ocr_processed"`
}

type GradeFinalized struct {
	Event GradeFinalizedEvent `json:"event" validate:"required"`
	Message
}

type GradeFailedEvent struct {
	RecordID     string `json:"record_id"     validate:"required"`
	SubmissionID string `json:"submission_id" validate:"required"`
	ErrorKind    string `json:"error_kind"    validate:"required"`
	Error        string `json:"error"         validate:"required"`
}

type GradeFailed struct {
	Event GradeFailedEvent `json:"event" validate:"required"`
	Message
}

type GradeOverriddenEvent struct {
	RecordID         string   `json:"record_id"          validate:"required"`
	SubmissionID     string   `json:"submission_id"      validate:"required"`
	SupersededRecord *string  `json:"superseded_record"`
	PreviousScore    *float64 `json:"previous_score"`
	Score            float64  `json:"score"`
	Note             string   `json:"note"`
}

type GradeOverridden struct {
	Event GradeOverriddenEvent `json:"event" validate:"required"`
	Message
}

type BatchCompletedEvent struct {
	Total     int  `json:"total"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Aborted   bool `json:"aborted"`
}

type BatchCompleted struct {
	Event BatchCompletedEvent `json:"event" validate:"required"`
	Message
}

type FileArchivedEvent struct {
	BucketName string         `json:"bucket_name" validate:"required"`
	ObjectName string         `json:"object_name" validate:"required"`
	Entity     ArchivedEntity `json:"entity"      validate:"required"`
	EntityID   string         `json:"entity_id"   validate:"required"`
}

type FileArchived struct {
	Event FileArchivedEvent `json:"event" validate:"required"`
	Message
}
