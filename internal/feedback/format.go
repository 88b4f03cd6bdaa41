package feedback

import (
	"fmt"
	"strings"

	"github.com/autograde/grader/internal/types"
)

func Markdown(f types.FeedbackRecord, score, total float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Score: %.1f / %.1f (%.1f%%)\n\n", score, total, types.Percent(score, total))
	if f.Band != "" {
		fmt.Fprintf(&b, "**Grade:** %s\n\n", f.Band)
	}
	fmt.Fprintf(&b, "%s\n", f.Summary)

	section(&b, "### Strengths", "* ", f.Strengths)
	section(&b, "### Improvements", "* ", f.Improvements)
	section(&b, "### Next steps", "* ", f.NextSteps)

	return b.String()
}

func PlainText(f types.FeedbackRecord, score, total float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Score: %.1f / %.1f (%.1f%%)\n", score, total, types.Percent(score, total))
	if f.Band != "" {
		fmt.Fprintf(&b, "Grade: %s\n", f.Band)
	}
	fmt.Fprintf(&b, "\n%s\n", f.Summary)

	section(&b, "Strengths:", "* ", f.Strengths)
	section(&b, "Improvements:", "* ", f.Improvements)
	section(&b, "Next steps:", "* ", f.NextSteps)

	return b.String()
}

func section(b *strings.Builder, heading, bullet string, items []string) {
	if len(items) == 0 {
		return
	}

	fmt.Fprintf(b, "\n%s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "%s%s\n", bullet, item)
	}
}
