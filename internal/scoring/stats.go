package scoring

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

var (
	sentenceEnd = regexp.MustCompile(`[.!?]+`)
	vowelGroups = regexp.MustCompile(`[aeiouy]+`)
	numberRe    = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Flesch reading ease clamped to [0, 100]. 0 for empty text.
func Readability(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	sentences := len(sentenceEnd.FindAllStringIndex(text, -1))
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, w := range words {
		syllables += syllableCount(w)
	}

	score := 206.835 -
		1.015*(float64(len(words))/float64(sentences)) -
		84.6*(float64(syllables)/float64(len(words)))

	return math.Max(0, math.Min(100, math.Round(score*10)/10))
}

func syllableCount(word string) int {
	w := strings.ToLower(strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) }))
	if w == "" {
		return 0
	}

	n := len(vowelGroups.FindAllStringIndex(w, -1))
	if strings.HasSuffix(w, "e") && n > 1 {
		n--
	}

	return max(n, 1)
}

// Non-empty lines that contain an equation or a numbered step, and the last number on the
// last such line as the final answer
func MathSteps(text string) ([]string, string) {
	steps := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.ContainsAny(line, "=") || strings.HasPrefix(strings.ToLower(line), "step") {
			steps = append(steps, line)
		}
	}

	if len(steps) == 0 {
		return steps, ""
	}

	numbers := numberRe.FindAllString(steps[len(steps)-1], -1)
	if len(numbers) == 0 {
		return steps, ""
	}

	return steps, numbers[len(numbers)-1]
}
