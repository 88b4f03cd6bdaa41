package feedback

import (
	"fmt"
	"math"
	"sort"

	"github.com/autograde/grader/internal/types"
)

// Criterion share at or above which it is called out as a strength
const strengthRatio = 0.8

// Criterion share below which it is called out as an improvement
const weaknessRatio = 0.6

// Lowest tone always carries at least this many improvements
const minLowImprovements = 3

// Named tone reached at Min percent of the total points
type Tone struct {
	Name string
	Min  float64
}

func DefaultTones() []Tone {
	return []Tone{
		{Name: ToneExcellent, Min: 90},
		{Name: ToneGood, Min: 80},
		{Name: ToneSatisfactory, Min: 70},
		{Name: ToneFair, Min: 60},
		{Name: ToneNeedsImprovement, Min: 0},
	}
}

type Input struct {
	Breakdown map[string]float64
	// Criterion weights, used to judge each breakdown entry
	Criteria    map[string]float64
	Coding      *types.CodingExtras
	Essay       *types.EssayExtras
	Math        *types.MathExtras
	Kind        types.AssignmentKind
	Bands       types.BandTable
	Suggestions []string
	Score       float64
	TotalPoints float64
	Empty       bool
}

// Deterministic feedback from a score and its breakdown. Safe for concurrent use.
type Synthesizer struct {
	tones []Tone
}

func NewSynthesizer(tones []Tone) *Synthesizer {
	if len(tones) == 0 {
		tones = DefaultTones()
	}

	ordered := make([]Tone, len(tones))
	copy(ordered, tones)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Min > ordered[j].Min
	})

	return &Synthesizer{tones: ordered}
}

func (s *Synthesizer) tone(percent float64) (Tone, tier) {
	last := len(s.tones) - 1
	for i, t := range s.tones {
		if percent >= t.Min {
			// a single tone table is all lowest tier
			switch i {
			case last:
				return t, tierLowest
			case 0:
				return t, tierTop
			default:
				return t, tierMiddle
			}
		}
	}

	return s.tones[last], tierLowest
}

func (s *Synthesizer) Synthesize(in Input) types.FeedbackRecord {
	kind := in.Kind
	if _, ok := improvementTemplates[kind]; !ok {
		kind = types.AssignmentKindOther
	}

	percent := types.Percent(in.Score, in.TotalPoints)
	t, level := s.tone(percent)
	if in.Empty {
		t, level = s.tones[len(s.tones)-1], tierLowest
	}

	band := ""
	if len(in.Bands) > 0 {
		band = in.Bands.Lookup(in.Score)
	} else {
		band = types.DefaultLetterBands().Lookup(percent)
	}

	strong, weak := judgeCriteria(in.Breakdown, in.Criteria)

	return types.FeedbackRecord{
		Summary:      summary(in, t, percent),
		Tone:         t.Name,
		Band:         band,
		Strengths:    strengths(in, strong, level),
		Improvements: improvements(in, kind, weak, level, level == tierLowest),
		NextSteps:    append([]string{}, nextStepTemplates[kind][level]...),
	}
}

func summary(in Input, t Tone, percent float64) string {
	if in.Empty {
		return emptySummary
	}

	lead, ok := summaryTemplates[t.Name]
	if !ok {
		lead = genericSummary
	}

	return fmt.Sprintf("%s You scored %s out of %s (%.0f%%).",
		lead, formatPoints(in.Score), formatPoints(in.TotalPoints), percent)
}

type criterionShare struct {
	name   string
	earned float64
	weight float64
	ratio  float64
}

// Strong criteria best first, weak criteria worst first
func judgeCriteria(breakdown, criteria map[string]float64) (strong, weak []criterionShare) {
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		weight, ok := criteria[name]
		if !ok || weight <= 0 {
			continue
		}
		share := criterionShare{name: name, earned: breakdown[name], weight: weight}
		share.ratio = share.earned / weight

		if share.ratio >= strengthRatio {
			strong = append(strong, share)
		} else if share.ratio < weaknessRatio {
			weak = append(weak, share)
		}
	}

	sort.SliceStable(strong, func(i, j int) bool { return strong[i].ratio > strong[j].ratio })
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].ratio < weak[j].ratio })

	return strong, weak
}

func strengths(in Input, strong []criterionShare, level tier) []string {
	out := []string{}
	if in.Empty {
		return append(out, "There is still an opportunity to submit work and receive full feedback.")
	}

	for _, c := range strong {
		out = append(out, fmt.Sprintf("Strong performance on %s (%s/%s).",
			c.name, formatPoints(c.earned), formatPoints(c.weight)))
	}

	switch {
	case in.Coding != nil && len(in.Coding.PotentialBugs) == 0 && len(in.Coding.StyleIssues) == 0:
		out = append(out, "No obvious bugs or style problems were detected in your code.")
	case in.Essay != nil && in.Essay.WordCount >= 300:
		out = append(out, "Your essay is well developed in length.")
	case in.Math != nil && len(in.Math.Steps) >= 2:
		out = append(out, "You showed your working step by step.")
	}

	if len(out) == 0 {
		if level == tierLowest {
			out = append(out, "You submitted an attempt, which gives you a basis to build on.")
		} else {
			out = append(out, "Your answer addresses the main requirements of the assignment.")
		}
	}

	return out
}

func improvements(in Input, kind types.AssignmentKind, weak []criterionShare, level tier, pad bool) []string {
	seen := map[string]struct{}{}
	out := []string{}
	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	if in.Empty {
		add("Submit a complete answer so it can be graded.")
	}

	for _, c := range weak {
		add(fmt.Sprintf("Improve %s: earned %s of %s points.",
			c.name, formatPoints(c.earned), formatPoints(c.weight)))
	}

	for _, s := range in.Suggestions {
		add(s)
	}

	switch {
	case in.Coding != nil:
		for _, issue := range in.Coding.PotentialBugs {
			add(issue)
		}
		for _, issue := range in.Coding.StyleIssues {
			add(issue)
		}
		for _, issue := range in.Coding.EfficiencyIssues {
			add(issue)
		}
	case in.Essay != nil && !in.Empty:
		if in.Essay.WordCount < 150 {
			add(fmt.Sprintf("Develop your essay further, it has only %d words.", in.Essay.WordCount))
		}
		if in.Essay.Readability > 0 && in.Essay.Readability < 30 {
			add("Use shorter sentences to improve readability.")
		}
	case in.Math != nil && !in.Empty:
		if len(in.Math.Steps) == 0 {
			add("Show the steps of your working, not only the final answer.")
		}
	}

	templates := improvementTemplates[kind]
	if pad {
		for _, s := range templates {
			if len(out) >= minLowImprovements {
				break
			}
			add(s)
		}
		// kind templates may overlap with earlier entries
		for _, s := range improvementTemplates[types.AssignmentKindOther] {
			if len(out) >= minLowImprovements {
				break
			}
			add(s)
		}
	} else if len(out) == 0 && level != tierTop {
		add(templates[0])
	}

	return out
}

// Whole numbers without decimals, everything else with one
func formatPoints(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}

	return fmt.Sprintf("%.1f", v)
}
