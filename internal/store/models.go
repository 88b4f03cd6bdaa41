package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/autograde/grader/internal/types"
)

type assignmentConfigModel struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Criteria       datatypes.JSONType[map[string]float64]
	Bands          datatypes.JSONSlice[types.Band]
	Keywords       datatypes.JSONSlice[string]
	AssignmentID   string `gorm:"primaryKey"`
	Kind           string
	ExpectedAnswer string
	TotalPoints    float64
	Version        int
}

func (assignmentConfigModel) TableName() string {
	return "assignment_config"
}

func (m *assignmentConfigModel) toConfig() *types.AssignmentGradingConfig {
	return &types.AssignmentGradingConfig{
		AssignmentID:   m.AssignmentID,
		TotalPoints:    m.TotalPoints,
		Criteria:       m.Criteria.Data(),
		Kind:           types.AssignmentKindFromString(m.Kind),
		Bands:          types.BandTable(m.Bands),
		ExpectedAnswer: m.ExpectedAnswer,
		Keywords:       []string(m.Keywords),
		Version:        m.Version,
	}
}

func assignmentConfigFrom(cfg *types.AssignmentGradingConfig) *assignmentConfigModel {
	criteria := cfg.Criteria
	if criteria == nil {
		criteria = map[string]float64{}
	}
	bands := cfg.Bands
	if bands == nil {
		bands = types.BandTable{}
	}
	keywords := cfg.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	return &assignmentConfigModel{
		AssignmentID:   cfg.AssignmentID,
		TotalPoints:    cfg.TotalPoints,
		Criteria:       datatypes.NewJSONType(criteria),
		Kind:           string(cfg.Kind),
		Bands:          datatypes.JSONSlice[types.Band](bands),
		ExpectedAnswer: cfg.ExpectedAnswer,
		Keywords:       datatypes.JSONSlice[string](keywords),
		Version:        cfg.Version,
	}
}

type gradeRecordModel struct {
	GradedAt     time.Time
	CreatedAt    time.Time
	SupersededAt datatypes.Null[time.Time]
	SupersededBy datatypes.Null[uuid.UUID]
	Score        datatypes.Null[float64]
	Breakdown    datatypes.JSONType[map[string]float64]
	Feedback     datatypes.JSONType[types.FeedbackRecord]
	Outcome      *types.GradingOutcome `gorm:"type:jsonb;serializer:json"`
	SubmissionID string
	AssignmentID string
	StudentID    string
	Grade        string
	Method       string
	Error        string
	ErrorKind    string
	TotalPoints  float64
	Confidence   float64
	ID           uuid.UUID `gorm:"primaryKey"`

	RequiresManualReview bool
	BreakdownConsistent  bool
	OCRProcessed         bool `gorm:"column:ocr_processed"`
}

func (gradeRecordModel) TableName() string {
	return "grade_record"
}

func gradeRecordFrom(r *types.GradeRecord) *gradeRecordModel {
	breakdown := r.Breakdown
	if breakdown == nil {
		breakdown = map[string]float64{}
	}

	return &gradeRecordModel{
		ID:                   r.ID,
		SubmissionID:         r.SubmissionID,
		AssignmentID:         r.AssignmentID,
		StudentID:            r.StudentID,
		Score:                newNull(r.Score),
		TotalPoints:          r.TotalPoints,
		Grade:                r.Grade,
		Confidence:           r.Confidence,
		Method:               string(r.Method),
		RequiresManualReview: r.RequiresManualReview,
		Feedback:             datatypes.NewJSONType(r.Feedback),
		Breakdown:            datatypes.NewJSONType(breakdown),
		BreakdownConsistent:  r.BreakdownConsistent,
		OCRProcessed:         r.OCRProcessed,
		Outcome:              r.Outcome,
		Error:                r.Error,
		ErrorKind:            r.ErrorKind,
		GradedAt:             r.GradedAt,
		SupersededAt:         newNull(r.SupersededAt),
		SupersededBy:         newNull(r.SupersededBy),
	}
}

func (m *gradeRecordModel) toRecord() types.GradeRecord {
	return types.GradeRecord{
		ID:                   m.ID,
		SubmissionID:         m.SubmissionID,
		AssignmentID:         m.AssignmentID,
		StudentID:            m.StudentID,
		Score:                ptrFromNull(m.Score),
		TotalPoints:          m.TotalPoints,
		Grade:                m.Grade,
		Confidence:           m.Confidence,
		Method:               types.GradingMethod(m.Method),
		RequiresManualReview: m.RequiresManualReview,
		Feedback:             m.Feedback.Data(),
		Breakdown:            m.Breakdown.Data(),
		BreakdownConsistent:  m.BreakdownConsistent,
		OCRProcessed:         m.OCRProcessed,
		Outcome:              m.Outcome,
		Error:                m.Error,
		ErrorKind:            m.ErrorKind,
		GradedAt:             m.GradedAt.UTC(),
		SupersededAt:         ptrFromNull(m.SupersededAt),
		SupersededBy:         ptrFromNull(m.SupersededBy),
	}
}

func newNull[T any](d *T) datatypes.Null[T] {
	if d != nil {
		return datatypes.NewNull(*d)
	}

	return datatypes.Null[T]{}
}

func ptrFromNull[T any](d datatypes.Null[T]) *T {
	if !d.Valid {
		return nil
	}

	return &d.V
}
