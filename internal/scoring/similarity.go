package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/autograde/grader/internal/codeanalysis"
	"github.com/autograde/grader/internal/types"
)

// Ensure SimilarityScorer implements Scorer interface.
var _ Scorer = (*SimilarityScorer)(nil)

// Confidence of a result with nothing to compare against
const unreferencedConfidence = 0.3

// Local reference scorer comparing a submission with the expected answer and the assignment
// keywords. Used for dry runs and as a fallback when no scoring service is configured.
//
// Whitespace is normalized before comparison so formatting alone never moves the score.
type SimilarityScorer struct{}

func NewSimilarityScorer() *SimilarityScorer {
	return &SimilarityScorer{}
}

type signal struct {
	score      float64
	confidence float64
}

func (*SimilarityScorer) Score(ctx context.Context, req Request) (Result, error) {
	_, span := tracer.Start(ctx, "SimilarityScorer.Score", trace.WithAttributes(
		attribute.String("submission.id", req.SubmissionID),
	))
	defer span.End()

	cfg := req.Config
	tokens := tokenize(req.Content)

	var signals []signal
	suggestions := []string{}
	var notes []string

	if cfg.ExpectedAnswer != "" {
		ratio := sequenceRatio(tokens, tokenize(cfg.ExpectedAnswer))
		signals = append(signals, signal{score: ratio, confidence: (ratio + 0.5) / 1.5})
		notes = append(notes, fmt.Sprintf("Similarity to the reference answer is %.0f%%.", ratio*100))
	}

	if len(cfg.Keywords) > 0 {
		matched, missing := matchKeywords(tokens, cfg.Keywords)
		coverage := float64(len(matched)) / float64(len(cfg.Keywords))
		signals = append(signals, signal{
			score:      coverage,
			confidence: math.Min(0.8, 0.4+0.05*float64(len(cfg.Keywords))),
		})
		notes = append(notes, fmt.Sprintf("Covered %d of %d key terms.", len(matched), len(cfg.Keywords)))
		if len(missing) > 0 {
			suggestions = append(suggestions,
				"Consider including these key terms in your answer: "+strings.Join(missing, ", "))
		}
	}

	quality, confidence := combine(signals)
	if len(signals) == 0 {
		quality = math.Min(1, float64(len(tokens))/minimumTokens(cfg.Kind))
		confidence = unreferencedConfidence
		notes = append(notes, "No reference answer is available, the score reflects length only.")
	}

	// nearest half point
	score := math.Round(quality*cfg.TotalPoints*2) / 2
	score = math.Max(0, math.Min(cfg.TotalPoints, score))

	extras, err := json.Marshal(kindExtras(cfg.Kind, req.Content))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode extras")
		return Result{}, err
	}

	result := Result{
		Score:       score,
		Confidence:  confidence,
		Breakdown:   distribute(score, cfg),
		Feedback:    strings.Join(notes, " "),
		Suggestions: suggestions,
		Extras:      extras,
	}

	span.SetAttributes(
		attribute.Float64("score", result.Score),
		attribute.Float64("confidence", result.Confidence),
	)
	span.RecordError(nil)
	span.SetStatus(codes.Ok, "scored by similarity")
	return result, nil
}

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

func sequenceRatio(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}

	m := difflib.NewMatcherWithJunk(a, b, false, nil)
	return m.Ratio()
}

func matchKeywords(tokens []string, keywords []string) (matched, missing []string) {
	text := " " + strings.Join(tokens, " ") + " "
	for _, kw := range keywords {
		needle := strings.ToLower(strings.TrimSpace(kw))
		if needle != "" && strings.Contains(text, needle) {
			matched = append(matched, kw)
		} else {
			missing = append(missing, kw)
		}
	}

	return matched, missing
}

// Confidence weighted average of the signals, mean confidence
func combine(signals []signal) (float64, float64) {
	if len(signals) == 0 {
		return 0, 0
	}

	weights, weighted, plain, conf := 0.0, 0.0, 0.0, 0.0
	for _, s := range signals {
		weights += s.confidence
		weighted += s.score * s.confidence
		plain += s.score
		conf += s.confidence
	}

	n := float64(len(signals))
	if weights == 0 {
		return plain / n, conf / n
	}

	return weighted / weights, conf / n
}

func minimumTokens(kind types.AssignmentKind) float64 {
	if kind == types.AssignmentKindEssay {
		return 150
	}

	return 10
}

// Award every criterion the same share of its weight so the breakdown sums to score
func distribute(score float64, cfg types.AssignmentGradingConfig) map[string]float64 {
	breakdown := make(map[string]float64, len(cfg.Criteria))
	if len(cfg.Criteria) == 0 || cfg.TotalPoints <= 0 {
		return breakdown
	}

	share := score / cfg.TotalPoints
	for name, weight := range cfg.Criteria {
		breakdown[name] = weight * share
	}

	return breakdown
}

func kindExtras(kind types.AssignmentKind, content string) any {
	switch kind {
	case types.AssignmentKindCoding:
		report := codeanalysis.Inspect(content)
		return types.CodingExtras{
			Language:         report.Language,
			StyleIssues:      report.StyleIssues,
			EfficiencyIssues: report.EfficiencyIssues,
			PotentialBugs:    report.PotentialBugs,
		}
	case types.AssignmentKindEssay:
		return types.EssayExtras{
			WordCount:   WordCount(content),
			Readability: Readability(content),
		}
	case types.AssignmentKindMath:
		steps, answer := MathSteps(content)
		return types.MathExtras{Steps: steps, FinalAnswer: answer}
	default:
		return struct{}{}
	}
}
