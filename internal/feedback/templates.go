package feedback

import "github.com/autograde/grader/internal/types"

const (
	ToneExcellent        = "excellent"
	ToneGood             = "good"
	ToneSatisfactory     = "satisfactory"
	ToneFair             = "fair"
	ToneNeedsImprovement = "needs_improvement"
)

var summaryTemplates = map[string]string{
	ToneExcellent:        "Excellent work! Your answer demonstrates a thorough understanding of the topic.",
	ToneGood:             "Good work! Your answer covers most of the key points.",
	ToneSatisfactory:     "Your answer demonstrates basic understanding but could be more comprehensive.",
	ToneFair:             "Your answer is on the right track but is missing important elements.",
	ToneNeedsImprovement: "Your answer needs improvement. Consider reviewing the key concepts.",
}

const genericSummary = "Your submission has been graded."

const emptySummary = "The submission was empty, so no credit could be awarded."

var improvementTemplates = map[types.AssignmentKind][]string{
	types.AssignmentKindCoding: {
		"Test your code against edge cases before submitting.",
		"Break long functions into smaller, well named pieces.",
		"Add comments that explain non-obvious logic.",
		"Review the problem statement and confirm every requirement is handled.",
	},
	types.AssignmentKindEssay: {
		"Strengthen your thesis statement so the argument is clear from the start.",
		"Support each claim with evidence or examples.",
		"Structure the essay with a clear introduction and conclusion.",
		"Proofread for grammar and clarity before submitting.",
	},
	types.AssignmentKindMath: {
		"Write out each step of your working.",
		"Check your final answer by substituting it back into the problem.",
		"State the formulas you use before applying them.",
		"Double check arithmetic in intermediate steps.",
	},
	types.AssignmentKindOther: {
		"Review the key concepts covered by this assignment.",
		"Compare your answer against the assignment requirements.",
		"Ask for clarification on the parts you found difficult.",
		"Add more detail to support your answer.",
	},
}

type tier int

const (
	tierTop tier = iota
	tierMiddle
	tierLowest
)

var nextStepTemplates = map[types.AssignmentKind]map[tier][]string{
	types.AssignmentKindCoding: {
		tierTop:    {"Try an optimized or more idiomatic version of your solution.", "Explore related problems that build on this one."},
		tierMiddle: {"Revisit the failing cases and refactor your solution.", "Read through a reference implementation and compare approaches."},
		tierLowest: {"Work through the course examples on this topic again.", "Attend office hours or ask a peer to review your code."},
	},
	types.AssignmentKindEssay: {
		tierTop:    {"Explore counterarguments to deepen your analysis.", "Read further on the topic to broaden your sources."},
		tierMiddle: {"Revise the weakest sections using the feedback above.", "Outline your next essay before you start writing."},
		tierLowest: {"Review the assignment prompt and the grading criteria.", "Visit the writing center or schedule time with your instructor."},
	},
	types.AssignmentKindMath: {
		tierTop:    {"Attempt the challenge problems for this unit.", "Try explaining your method to a classmate."},
		tierMiddle: {"Redo the problems you missed and compare the steps.", "Practice similar problems from the textbook."},
		tierLowest: {"Review the worked examples for this topic.", "Ask your instructor to go through one problem with you."},
	},
	types.AssignmentKindOther: {
		tierTop:    {"Keep challenging yourself with extension material.", "Share your approach with classmates."},
		tierMiddle: {"Review the feedback and revise your answer.", "Practice with additional exercises on this topic."},
		tierLowest: {"Revisit the course materials for this assignment.", "Ask your instructor for guidance on the key concepts."},
	},
}
