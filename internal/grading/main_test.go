package grading_test

import (
	"io"
	"os"
	"testing"

	"github.com/autograde/grader/internal/audit"
	"github.com/autograde/grader/internal/types"
)

func TestMain(m *testing.M) {
	audit.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func essayConfig() *types.AssignmentGradingConfig {
	return &types.AssignmentGradingConfig{
		AssignmentID:   "101",
		TotalPoints:    100,
		Criteria:       map[string]float64{"content": 50, "structure": 30, "grammar": 20},
		Kind:           types.AssignmentKindEssay,
		ExpectedAnswer: "Photosynthesis converts light energy into chemical energy stored in glucose.",
		Keywords:       []string{"light", "glucose", "chlorophyll"},
	}
}

func textSubmission(id string) types.Submission {
	return types.Submission{
		ID:           id,
		AssignmentID: "101",
		StudentID:    "student-" + id,
		Content:      "Plants use light to make glucose in their chloroplasts.",
		MediaKind:    types.MediaKindText,
	}
}
