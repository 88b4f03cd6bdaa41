package types

import (
	"time"

	"github.com/google/uuid"
)

type GradingMethod string

const (
	GradingMethodAutomated      GradingMethod = "automated"       // Finalized without a human
	GradingMethodPendingManual  GradingMethod = "pending_manual"  // Score is a suggestion until a reviewer confirms it
	GradingMethodManualOverride GradingMethod = "manual_override" // A reviewer replaced the previous result
	GradingMethodError          GradingMethod = "error"           // Grading failed, needs attention
)

type (
	FeedbackRecord struct {
		Summary      string   `json:"summary"`
		Tone         string   `json:"tone"`
		Band         string   `json:"band,omitempty"`
		Strengths    []string `json:"strengths"`
		Improvements []string `json:"improvements"`
		NextSteps    []string `json:"next_steps"`
	}

	// Persisted result of grading one submission once.
	//
	// Records are never deleted. A later attempt or override supersedes the current record.
	GradeRecord struct {
		GradedAt     time.Time  `json:"graded_at"`
		SupersededAt *time.Time `json:"superseded_at,omitempty"`
		SupersededBy *uuid.UUID `json:"superseded_by,omitempty"`
		// nil when Method is error
		Score        *float64           `json:"score"`
		Breakdown    map[string]float64 `json:"breakdown"`
		Outcome      *GradingOutcome    `json:"outcome,omitempty"`
		SubmissionID string             `json:"submission_id"`
		AssignmentID string             `json:"assignment_id"`
		StudentID    string             `json:"student_id"`
		Grade        string             `json:"grade,omitempty"`
		Method       GradingMethod      `json:"grading_method"`
		Error        string             `json:"error,omitempty"`
		ErrorKind    string             `json:"error_kind,omitempty"`
		Feedback     FeedbackRecord     `json:"feedback"`
		TotalPoints  float64            `json:"total_points"`
		Confidence   float64            `json:"confidence"`
		ID           uuid.UUID          `json:"id"`

		RequiresManualReview bool `json:"requires_manual_review"`
		BreakdownConsistent  bool `json:"breakdown_consistent"`
		OCRProcessed         bool `json:"ocr_processed"`
	}
)

func (r *GradeRecord) IsCurrent() bool {
	return r.SupersededAt == nil
}
