package prompt

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Per-identifier fallbacks for placeholders the caller never supplied. The
// admin console lets authors reference any of these in template content, so
// an unknown identifier still has to resolve to something readable.
var placeholderDefaults = map[string]string{
	"student_level":     "student",
	"grade_level":       "student",
	"first_name":        "student",
	"country":           "your country",
	"learning_style":    "a balanced",
	"subject":           "this subject",
	"exercise_content":  "the exercise",
	"student_answer":    "your answer",
	"correct_answer":    "the correct answer",
	"response_language": "English",
}

const catchAllDefault = "student"

// Substitute fills every {{name}} placeholder in template, resolving left to
// right: the supplied variable wins, then the per-identifier default, then the
// catch-all. Only the original template is matched against vars; placeholder
// text introduced by a substituted value resolves from the defaults alone, so
// values cannot recurse through each other and the output is the same on every
// call. The output never contains an unresolved {{...}} token.
func Substitute(template string, vars Variables) string {
	out := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if v, ok := vars[name]; ok {
			return v
		}
		return defaultFor(name)
	})
	if !placeholderPattern.MatchString(out) {
		return out
	}
	return placeholderPattern.ReplaceAllStringFunc(out, func(match string) string {
		return defaultFor(strings.TrimSpace(match[2 : len(match)-2]))
	})
}

func defaultFor(name string) string {
	if def, ok := placeholderDefaults[name]; ok {
		return def
	}
	return catchAllDefault
}
