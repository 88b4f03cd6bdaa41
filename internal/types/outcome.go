package types

import "math"

// Allowed gap between the breakdown total and the overall score
const BreakdownTolerance = 1.0

type (
	CodingExtras struct {
		Language         string   `json:"language,omitempty"`
		StyleIssues      []string `json:"style_issues"`
		EfficiencyIssues []string `json:"efficiency_issues"`
		PotentialBugs    []string `json:"potential_bugs"`
	}

	EssayExtras struct {
		WordCount   int     `json:"word_count"`
		Readability float64 `json:"readability"`
	}

	MathExtras struct {
		FinalAnswer string   `json:"final_answer,omitempty"`
		Steps       []string `json:"steps"`
	}

	// Raw result of one scoring attempt, not final until routed.
	//
	// Exactly one of Coding, Essay or Math is set when Kind names that variant; Kind other carries none.
	GradingOutcome struct {
		Coding      *CodingExtras      `json:"coding,omitempty"`
		Essay       *EssayExtras       `json:"essay,omitempty"`
		Math        *MathExtras        `json:"math,omitempty"`
		Breakdown   map[string]float64 `json:"breakdown"`
		Kind        AssignmentKind     `json:"kind"`
		Feedback    string             `json:"feedback"`
		Suggestions []string           `json:"suggestions"`
		Score       float64            `json:"score"`
		Confidence  float64            `json:"confidence"`
		// Breakdown sums to Score within BreakdownTolerance. The breakdown is stored as reported either way.
		BreakdownConsistent bool `json:"breakdown_consistent"`
		// No content was available and the scorer was not called
		Empty bool `json:"empty"`
	}
)

func BreakdownConsistent(score float64, breakdown map[string]float64) bool {
	if len(breakdown) == 0 {
		return true
	}

	sum := 0.0
	for _, v := range breakdown {
		sum += v
	}

	return math.Abs(sum-score) <= BreakdownTolerance
}

// Make sure the variant matching Kind is present, leaving the rest nil
func (o *GradingOutcome) NormalizeExtras() {
	switch o.Kind {
	case AssignmentKindCoding:
		if o.Coding == nil {
			o.Coding = &CodingExtras{}
		}
		o.Essay, o.Math = nil, nil
	case AssignmentKindEssay:
		if o.Essay == nil {
			o.Essay = &EssayExtras{}
		}
		o.Coding, o.Math = nil, nil
	case AssignmentKindMath:
		if o.Math == nil {
			o.Math = &MathExtras{}
		}
		o.Coding, o.Essay = nil, nil
	default:
		o.Kind = AssignmentKindOther
		o.Coding, o.Essay, o.Math = nil, nil, nil
	}

	if o.Breakdown == nil {
		o.Breakdown = map[string]float64{}
	}
	if o.Suggestions == nil {
		o.Suggestions = []string{}
	}
}
