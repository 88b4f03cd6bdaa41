package codeanalysis

import (
	"fmt"
	"regexp"
	"strings"
)

type Complexity string

const (
	ComplexityLow     Complexity = "low"
	ComplexityMedium  Complexity = "medium"
	ComplexityHigh    Complexity = "high"
	ComplexityUnknown Complexity = "unknown"
)

type Report struct {
	Language         string     `json:"language"`
	Complexity       Complexity `json:"complexity"`
	StyleIssues      []string   `json:"style_issues"`
	EfficiencyIssues []string   `json:"efficiency_issues"`
	PotentialBugs    []string   `json:"potential_bugs"`
}

var (
	pythonImport = regexp.MustCompile(`(?m)^\s*import (\w+)`)
	jsDecl       = regexp.MustCompile(`\b(?:let|const|var)\s+(\w+)`)
)

// Detect the language then analyze. Unknown languages only get the generic checks.
func Inspect(code string) Report {
	return Analyze(DetectLanguage("", []byte(code)), code)
}

func Analyze(language, code string) Report {
	r := Report{
		Language:         language,
		Complexity:       ComplexityUnknown,
		StyleIssues:      []string{},
		EfficiencyIssues: []string{},
		PotentialBugs:    []string{},
	}

	switch language {
	case LanguagePython:
		analyzePython(&r, code)
	case LanguageJavaScript, LanguageTypeScript:
		analyzeJavaScript(&r, code)
	default:
		if longLines(code, 100) > 0 {
			r.StyleIssues = append(r.StyleIssues, "Some lines exceed 100 characters")
		}
	}

	return r
}

func analyzePython(r *Report, code string) {
	if longLines(code, 79) > 0 {
		r.StyleIssues = append(r.StyleIssues, "Some lines exceed 79 characters (PEP 8 recommends shorter lines)")
	}

	if inconsistentIndent(code) {
		r.StyleIssues = append(r.StyleIssues, "Inconsistent indentation detected")
	}

	for _, m := range pythonImport.FindAllStringSubmatch(code, -1) {
		name := m[1]
		if !strings.Contains(strings.Replace(code, "import "+name, "", 1), name) {
			r.PotentialBugs = append(r.PotentialBugs, "Potential unused import: "+name)
		}
	}

	loops := strings.Count(code, "for") + strings.Count(code, "while")
	if strings.Count(code, "for") > 3 && strings.Count(code, "[") < 2 {
		r.EfficiencyIssues = append(r.EfficiencyIssues, "Consider using list comprehensions for more concise code")
	}
	r.Complexity = complexityOf(loops)
}

func analyzeJavaScript(r *Report, code string) {
	if float64(strings.Count(code, ";")) < float64(strings.Count(code, "\n"))/2 {
		r.StyleIssues = append(r.StyleIssues, "Missing semicolons in many statements")
	}

	if n := strings.Count(code, "console.log"); n > 0 {
		r.StyleIssues = append(r.StyleIssues,
			fmt.Sprintf("Found %d console.log statements that should be removed in production code", n))
	}

	if strings.Contains(code, "var ") {
		r.StyleIssues = append(r.StyleIssues, "Using 'var' instead of modern 'let' or 'const'")
	}

	for _, m := range jsDecl.FindAllStringSubmatch(code, -1) {
		name := m[1]
		uses := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`).FindAllStringIndex(code, -1)
		if len(uses) <= 1 {
			r.PotentialBugs = append(r.PotentialBugs, "Potential unused variable: "+name)
		}
	}

	loops := strings.Count(code, "for") + strings.Count(code, "while")
	r.Complexity = complexityOf(loops)
}

func complexityOf(loops int) Complexity {
	switch {
	case loops > 10:
		return ComplexityHigh
	case loops > 5:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

func longLines(code string, limit int) int {
	n := 0
	for _, line := range strings.Split(code, "\n") {
		if len(line) > limit {
			n++
		}
	}

	return n
}

// Indentation widths that are not multiples of the smallest one
func inconsistentIndent(code string) bool {
	unit := 0
	var widths []int
	for _, line := range strings.Split(code, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		w := len(line) - len(strings.TrimLeft(line, " \t"))
		if w == 0 {
			continue
		}
		if unit == 0 || w < unit {
			unit = w
		}
		widths = append(widths, w)
	}

	for _, w := range widths {
		if w%unit != 0 {
			return true
		}
	}

	return false
}
