package codeanalysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autograde/grader/internal/codeanalysis"
)

func TestDetectLanguage(t *testing.T) {
	t.Run("ByFilename", func(t *testing.T) {
		assert.Equal(t, codeanalysis.LanguagePython, codeanalysis.DetectLanguage("main.py", []byte("print(1)\n")))
		assert.Equal(t, codeanalysis.LanguageJava, codeanalysis.DetectLanguage("Main.java", []byte("class Main {}\n")))
	})

	t.Run("ByShebang", func(t *testing.T) {
		code := []byte("#!/usr/bin/env python3\nprint('hi')\n")
		assert.Equal(t, codeanalysis.LanguagePython, codeanalysis.DetectLanguage("", code))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, codeanalysis.LanguageUnknown, codeanalysis.DetectLanguage("", nil))
	})
}

func TestAnalyzePython(t *testing.T) {
	t.Run("Clean", func(t *testing.T) {
		r := codeanalysis.Analyze(codeanalysis.LanguagePython, "def add(a, b):\n    return a + b\n")

		assert.Empty(t, r.StyleIssues)
		assert.Empty(t, r.PotentialBugs)
		assert.Empty(t, r.EfficiencyIssues)
		assert.Equal(t, codeanalysis.ComplexityLow, r.Complexity)
	})

	t.Run("UnusedImport", func(t *testing.T) {
		r := codeanalysis.Analyze(codeanalysis.LanguagePython, "import os\ndef f():\n    return 1\n")

		assert.Equal(t, []string{"Potential unused import: os"}, r.PotentialBugs)
	})

	t.Run("InconsistentIndent", func(t *testing.T) {
		r := codeanalysis.Analyze(codeanalysis.LanguagePython, "def f():\n    x = 1\n      return x\n")

		assert.Contains(t, r.StyleIssues, "Inconsistent indentation detected")
	})

	t.Run("NestedIndentIsConsistent", func(t *testing.T) {
		r := codeanalysis.Analyze(codeanalysis.LanguagePython, "def f(xs):\n    if xs:\n        return xs\n")

		assert.NotContains(t, r.StyleIssues, "Inconsistent indentation detected")
	})
}

func TestAnalyzeJavaScript(t *testing.T) {
	code := "var total = 0\nconsole.log('x')\nlet unused = 3\nconsole.log(total)\n"
	r := codeanalysis.Analyze(codeanalysis.LanguageJavaScript, code)

	assert.Contains(t, r.StyleIssues, "Missing semicolons in many statements")
	assert.Contains(t, r.StyleIssues, "Found 2 console.log statements that should be removed in production code")
	assert.Contains(t, r.StyleIssues, "Using 'var' instead of modern 'let' or 'const'")
	assert.Equal(t, []string{"Potential unused variable: unused"}, r.PotentialBugs)
}

func TestAnalyzeUnknown(t *testing.T) {
	r := codeanalysis.Analyze(codeanalysis.LanguageUnknown, "x")

	assert.Equal(t, codeanalysis.ComplexityUnknown, r.Complexity)
	assert.NotNil(t, r.StyleIssues)
}
