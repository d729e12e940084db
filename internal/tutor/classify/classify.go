// Package classify holds the message heuristics that shape tutoring replies.
// They decide formatting hints only — grading verdicts always come from the
// model, never from here. The patterns are intentionally simple and are kept
// stable because clients depend on the exact behavior.
package classify

import (
	"regexp"
	"strings"
)

var exerciseKeywords = []string{
	"solve",
	"calculate",
	"find",
	"homework",
	"exercise",
	"problem",
	"question",
	"assignment",
}

// "3 + 4 =" style: digits, operator, digits, equals.
var equationPattern = regexp.MustCompile(`\d+\s*[+\-*/×÷]\s*\d+\s*=`)

// IsExercise reports whether the message looks like homework content. Grading
// requests are never exercises; the two flows use different prompts.
func IsExercise(message string, isGradingRequest bool) bool {
	if isGradingRequest {
		return false
	}
	lower := strings.ToLower(message)
	for _, kw := range exerciseKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return equationPattern.MatchString(message)
}

// Broader math signals used only to layer the math enhancement onto the
// system instructions for OpenAI. Deliberately looser than IsExercise.
var mathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+\s*[+\-*/×÷]\s*\d+`),                                // basic arithmetic
	regexp.MustCompile(`[a-zA-Z]\s*=\s*`),                                      // algebraic equation
	regexp.MustCompile(`\d+\s*/\s*\d+`),                                        // fractions
	regexp.MustCompile(`\d+\s*%`),                                              // percentages
	regexp.MustCompile(`(?i)\b(sqrt|cos|sin|tan|log|exp)\b`),                   // named functions
	regexp.MustCompile(`\([^)]*\d+[^)]*[+\-*/×÷][^)]*\)`),                      // parenthesized arithmetic
	regexp.MustCompile(`(?i)\b(solve|calculate|compute|evaluate|simplify|find)\b.*\d`), // imperative + number
}

// IsMathProblem reports whether the message carries any math signal at all.
func IsMathProblem(message string) bool {
	for _, p := range mathPatterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}
