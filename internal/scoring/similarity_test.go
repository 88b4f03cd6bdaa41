package scoring_test

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autograde/grader/internal/scoring"
	"github.com/autograde/grader/internal/types"
)

func codingConfig() types.AssignmentGradingConfig {
	return types.AssignmentGradingConfig{
		AssignmentID:   "3",
		Kind:           types.AssignmentKindCoding,
		TotalPoints:    100,
		Criteria:       map[string]float64{"correctness": 70, "style": 30},
		ExpectedAnswer: "def add(a, b): return a + b",
		Keywords:       []string{"def", "return"},
	}
}

func TestSimilarityConsistency(t *testing.T) {
	ctx := context.Background()
	s := scoring.NewSimilarityScorer()

	first, err := s.Score(ctx, scoring.Request{Content: "def add(a,b): return a+b", Config: codingConfig()})
	require.NoError(t, err)

	second, err := s.Score(ctx, scoring.Request{Content: "def add(a,b):\n return a+b", Config: codingConfig()})
	require.NoError(t, err)

	assert.LessOrEqual(t, math.Abs(first.Score-second.Score), 5.0, "near identical content should score alike")
}

func TestSimilarityScorer(t *testing.T) {
	ctx := context.Background()
	s := scoring.NewSimilarityScorer()

	t.Run("ExactMatch", func(t *testing.T) {
		cfg := codingConfig()
		result, err := s.Score(ctx, scoring.Request{Content: cfg.ExpectedAnswer, Config: cfg})
		require.NoError(t, err)

		assert.InDelta(t, 100, result.Score, 1e-9)
		assert.GreaterOrEqual(t, result.Confidence, 0.5)
		assert.Empty(t, result.Suggestions)
		assert.True(t, types.BreakdownConsistent(result.Score, result.Breakdown))

		var extras types.CodingExtras
		require.NoError(t, json.Unmarshal(result.Extras, &extras))
		assert.NotNil(t, extras.StyleIssues)
	})

	t.Run("MissingKeywords", func(t *testing.T) {
		cfg := codingConfig()
		result, err := s.Score(ctx, scoring.Request{Content: "lambda a, b: a + b", Config: cfg})
		require.NoError(t, err)

		assert.Less(t, result.Score, 100.0)
		require.Len(t, result.Suggestions, 1)
		assert.Contains(t, result.Suggestions[0], "def, return")
	})

	t.Run("NoReference", func(t *testing.T) {
		cfg := types.AssignmentGradingConfig{
			AssignmentID: "9",
			Kind:         types.AssignmentKindEssay,
			TotalPoints:  10,
		}
		result, err := s.Score(ctx, scoring.Request{Content: "short essay", Config: cfg})
		require.NoError(t, err)

		assert.Less(t, result.Confidence, 0.5, "no reference means low trust")
		assert.GreaterOrEqual(t, result.Score, 0.0)
		assert.LessOrEqual(t, result.Score, 10.0)

		var extras types.EssayExtras
		require.NoError(t, json.Unmarshal(result.Extras, &extras))
		assert.Equal(t, 2, extras.WordCount)
	})

	t.Run("ScoreIsHalfPoints", func(t *testing.T) {
		cfg := codingConfig()
		cfg.TotalPoints = 7
		cfg.Criteria = map[string]float64{"correctness": 7}
		result, err := s.Score(ctx, scoring.Request{Content: "def add(a, b): return", Config: cfg})
		require.NoError(t, err)

		assert.InDelta(t, 0, math.Mod(result.Score*2, 1), 1e-9)
	})
}

func TestStats(t *testing.T) {
	assert.Equal(t, 4, scoring.WordCount(" the quick\nbrown  fox "))
	assert.Zero(t, scoring.Readability(""))

	simple := scoring.Readability("The cat sat. The dog ran.")
	dense := scoring.Readability("Institutional considerations necessitate comprehensive organizational restructuring.")
	assert.Greater(t, simple, dense)

	steps, answer := scoring.MathSteps("Let x be the value\n2x + 3 = 7\n2x = 4\nx = 2\n")
	assert.Equal(t, []string{"2x + 3 = 7", "2x = 4", "x = 2"}, steps)
	assert.Equal(t, "2", answer)

	steps, answer = scoring.MathSteps("no working shown")
	assert.Empty(t, steps)
	assert.Empty(t, answer)
}
