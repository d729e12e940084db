package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/studyowl/tutor-backend/internal/domain"
	"github.com/studyowl/tutor-backend/internal/platform/logger"
)

// PromptTemplateRepo is the read side of the template store. Authoring happens
// in the admin console; the tutoring pipeline only selects.
type PromptTemplateRepo interface {
	// FindBest returns the highest-priority active template for the usage type
	// whose subject matches (exactly, or via the universal NULL/"All Subjects"
	// sentinel). Returns (nil, nil) when no template qualifies.
	FindBest(ctx context.Context, usageType, subject string) (*domain.PromptTemplate, error)
}

type promptTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromptTemplateRepo(db *gorm.DB, log *logger.Logger) PromptTemplateRepo {
	return &promptTemplateRepo{
		db:  db,
		log: log.With("repo", "PromptTemplateRepo"),
	}
}

func (r *promptTemplateRepo) FindBest(ctx context.Context, usageType, subject string) (*domain.PromptTemplate, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.PromptTemplate{}).
		Where("usage_type = ? AND is_active = ?", usageType, true)

	universal := "subject IS NULL OR subject = '' OR subject = ?"
	if subject != "" {
		q = q.Where("("+universal+" OR subject = ?)", domain.SubjectAllSentinel, subject)
	} else {
		q = q.Where("("+universal+")", domain.SubjectAllSentinel)
	}

	var row domain.PromptTemplate
	err := q.Order("priority DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
