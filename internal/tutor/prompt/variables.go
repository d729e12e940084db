package prompt

import (
	"fmt"
	"strings"
)

// Variables is the per-request substitution set. Presence in the map is what
// distinguishes "supplied" from "missing"; missing keys pick up the defaults
// in substitute.go. Values are already rendered to their string form.
type Variables map[string]string

// Set stores a value unless it is nil, rendering non-strings with fmt.
func (v Variables) Set(key string, value any) {
	if value == nil {
		return
	}
	if s, ok := value.(string); ok {
		v[key] = s
		return
	}
	v[key] = strings.TrimSpace(fmt.Sprint(value))
}

// recognized userContext fields, plus the grade_level/student_level aliasing
// the clients send interchangeably.
var contextKeys = []string{
	"student_level",
	"grade_level",
	"country",
	"learning_style",
	"first_name",
	"subject",
	"user_type",
	"exercise_content",
	"student_answer",
	"correct_answer",
	"response_language",
}

// FromUserContext builds the substitution set for one request. The subject and
// language knowns win over whatever the raw context carries, and the level
// aliases are mirrored so templates can use either spelling.
func FromUserContext(userContext map[string]any, subject, language string) Variables {
	vars := Variables{}
	for _, key := range contextKeys {
		if raw, ok := userContext[key]; ok {
			vars.Set(key, raw)
		}
	}
	if _, ok := vars["student_level"]; !ok {
		if v, ok := vars["grade_level"]; ok {
			vars["student_level"] = v
		}
	}
	if _, ok := vars["grade_level"]; !ok {
		if v, ok := vars["student_level"]; ok {
			vars["grade_level"] = v
		}
	}
	if subject != "" {
		vars["subject"] = subject
	}
	if language != "" {
		vars["response_language"] = languageName(language)
	}
	return vars
}

func languageName(code string) string {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "fr", "french", "français":
		return "French"
	case "", "en", "english":
		return "English"
	default:
		return "English"
	}
}
