package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Usage types a prompt template can be registered for. The resolver filters on
// these values; anything else in the table is ignored by the tutoring pipeline.
const (
	UsageTypeChat            = "chat"
	UsageTypeGrading         = "grading"
	UsageTypeExplanation     = "explanation"
	UsageTypeMathEnhanced    = "math_enhanced"
	UsageTypeUnifiedMathChat = "unified_math_chat"
)

// SubjectAllSentinel marks a template that applies to every subject. A NULL
// subject means the same thing; both come from the admin console.
const SubjectAllSentinel = "All Subjects"

// PromptTemplate is authored in the admin console and read-only here. The
// pipeline only ever selects the single highest-priority active row for a
// (usage_type, subject) pair.
type PromptTemplate struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	Subject       *string        `gorm:"column:subject;index:idx_prompt_template_lookup,priority:2" json:"subject,omitempty"`
	Description   string         `gorm:"column:description;type:text" json:"description,omitempty"`
	PromptContent string         `gorm:"column:prompt_content;type:text;not null" json:"prompt_content"`
	Tags          datatypes.JSON `gorm:"column:tags;type:jsonb" json:"tags,omitempty"`
	IsActive      bool           `gorm:"column:is_active;not null;default:false;index:idx_prompt_template_lookup,priority:3" json:"is_active"`
	UsageType     string         `gorm:"column:usage_type;not null;default:'chat';index:idx_prompt_template_lookup,priority:1" json:"usage_type"`
	AutoActivate  bool           `gorm:"column:auto_activate;not null;default:false" json:"auto_activate"`
	Priority      int            `gorm:"column:priority;not null;default:0" json:"priority"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (PromptTemplate) TableName() string { return "prompt_templates" }

// MatchesSubject reports whether the template applies to the caller's subject.
// Templates with no subject (or the "All Subjects" sentinel) match everything.
func (t *PromptTemplate) MatchesSubject(subject string) bool {
	if t.Subject == nil || *t.Subject == "" || *t.Subject == SubjectAllSentinel {
		return true
	}
	return *t.Subject == subject
}
