package types

import (
	"fmt"
	"time"
)

type (
	MediaKind      string
	AssignmentKind string
)

const (
	MediaKindText  MediaKind = "text"
	MediaKindImage MediaKind = "image"
	MediaKindPDF   MediaKind = "pdf"

	AssignmentKindCoding AssignmentKind = "coding"
	AssignmentKindEssay  AssignmentKind = "essay"
	AssignmentKindMath   AssignmentKind = "math"
	AssignmentKindOther  AssignmentKind = "other"
)

// Image and PDF submissions carry an artifact that must go through text extraction before scoring
func (m MediaKind) RequiresExtraction() bool {
	return m == MediaKindImage || m == MediaKindPDF
}

func MediaKindFromString(s string) (MediaKind, error) {
	switch MediaKind(s) {
	case MediaKindText, "":
		return MediaKindText, nil
	case MediaKindImage:
		return MediaKindImage, nil
	case MediaKindPDF:
		return MediaKindPDF, nil
	default:
		return "", fmt.Errorf("%s is not a valid media kind", s)
	}
}

func AssignmentKindFromString(s string) AssignmentKind {
	switch AssignmentKind(s) {
	case AssignmentKindCoding, AssignmentKindEssay, AssignmentKindMath:
		return AssignmentKind(s)
	default:
		return AssignmentKindOther
	}
}

type (
	// A learner's work product for one assignment. Never modified by grading.
	Submission struct {
		SubmittedAt time.Time `json:"submitted_at"`
		// Identity of the submission
		ID string `json:"id"            validate:"required"`
		// Owning assignment, numeric
		AssignmentID string `json:"assignment_id" validate:"required,numeric"`
		StudentID    string `json:"student_id"    validate:"required"`
		// Raw text content. Ignored when MediaKind requires extraction.
		Content string `json:"content"`
		// Reference to a binary artifact (http(s):// or azblob://) for image / pdf submissions
		ArtifactRef string    `json:"artifact_ref,omitempty"`
		MediaKind   MediaKind `json:"media_kind"    validate:"omitempty,oneof=text image pdf"`
	}

	// Extraction collaborator output. Only lives for the duration of one grading attempt.
	ExtractionResult struct {
		Text                string  `json:"text"`
		Confidence          float64 `json:"confidence"`
		Pages               int     `json:"pages"`
		HandwritingDetected bool    `json:"handwriting_detected"`
	}

	// Submission plus what preprocessing derived from it
	PreparedSubmission struct {
		Extraction *ExtractionResult
		// Text to score: Submission.Content or the extracted text
		Text         string
		Submission   Submission
		OCRProcessed bool
	}
)

// Extraction confidence below this caps the final grading confidence
const ExtractionConfidenceFloor = 0.5

// Upper bound the grading confidence may take given how preprocessing went.
// Returns 1 when no cap applies.
func (p PreparedSubmission) ConfidenceCap() float64 {
	if p.Extraction == nil || p.Extraction.Confidence >= ExtractionConfidenceFloor {
		return 1
	}

	return p.Extraction.Confidence
}
