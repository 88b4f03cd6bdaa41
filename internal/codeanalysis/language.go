package codeanalysis

import (
	"github.com/go-enry/go-enry/v2"
)

const (
	LanguagePython     = "python"
	LanguageJavaScript = "javascript"
	LanguageTypeScript = "typescript"
	LanguageJava       = "java"
	LanguageC          = "c"
	LanguageCPP        = "cpp"
	LanguageGo         = "go"
	LanguageRuby       = "ruby"
	// Returned when none of the supported languages match
	LanguageUnknown = ""
)

// go-enry to grader language mappings
var languageMapping = map[string]string{
	"Python":     LanguagePython,
	"JavaScript": LanguageJavaScript,
	"TypeScript": LanguageTypeScript,
	"Java":       LanguageJava,
	"C":          LanguageC,
	"C++":        LanguageCPP,
	"Go":         LanguageGo,
	"Ruby":       LanguageRuby,
}

// Classifier candidates when neither a file name nor a shebang is available
var classifierCandidates = []string{
	"Python", "JavaScript", "TypeScript", "Java", "C", "C++", "Go", "Ruby",
}

// Heuristically determine the language of a submission. `filename` may be empty; submissions
// pasted as text usually carry none.
func DetectLanguage(filename string, content []byte) string {
	if len(content) == 0 {
		return LanguageUnknown
	}

	if filename != "" {
		if l := firstMapped(enry.GetLanguages(filename, content)); l != LanguageUnknown {
			return l
		}
	}

	if l := firstMapped(enry.GetLanguagesByShebang("", content, nil)); l != LanguageUnknown {
		return l
	}

	return firstMapped(enry.GetLanguagesByClassifier("", content, classifierCandidates))
}

func firstMapped(candidates []string) string {
	for _, candidate := range candidates {
		if mapping, ok := languageMapping[candidate]; ok {
			return mapping
		}
	}

	return LanguageUnknown
}
