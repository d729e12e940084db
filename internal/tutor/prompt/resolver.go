package prompt

import (
	"context"
	"fmt"

	redisclient "github.com/studyowl/tutor-backend/internal/clients/redis"
	"github.com/studyowl/tutor-backend/internal/data/repos"
	"github.com/studyowl/tutor-backend/internal/domain"
	"github.com/studyowl/tutor-backend/internal/platform/logger"
)

// SystemMessage is the resolved, substituted instruction text. Exactly one of
// these exists per request; the provider adapters decide how it goes on the
// wire.
type SystemMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResolveInput carries everything the waterfall needs for one request.
type ResolveInput struct {
	// UsageType forces a template category (the explanation flow uses this).
	// Empty means derive from the flags below.
	UsageType        string
	Subject          string
	CustomPrompt     string
	Language         string
	IsGradingRequest bool
	IsExercise       bool
	IsUnified        bool
	Vars             Variables
}

// DerivedUsageType maps request flags to the template category queried in the
// store. Exercises deliberately share the chat category.
func (in ResolveInput) DerivedUsageType() string {
	if in.UsageType != "" {
		return in.UsageType
	}
	if in.IsGradingRequest {
		return domain.UsageTypeGrading
	}
	if in.IsUnified {
		return domain.UsageTypeUnifiedMathChat
	}
	return domain.UsageTypeChat
}

// Resolver runs the instruction-source waterfall: caller override, then the
// template store (cache-fronted), then the built-in prompts. It never fails;
// the built-in tier always produces something.
type Resolver struct {
	log   *logger.Logger
	repo  repos.PromptTemplateRepo
	cache redisclient.TemplateCache // nil disables caching
}

func NewResolver(log *logger.Logger, repo repos.PromptTemplateRepo, cache redisclient.TemplateCache) *Resolver {
	return &Resolver{
		log:   log.With("service", "PromptResolver"),
		repo:  repo,
		cache: cache,
	}
}

// strategy is one tier of the waterfall. Returning empty content with a nil
// error means "not applicable"; an error means "tried and failed" — both fall
// through to the next tier.
type strategy struct {
	name string
	run  func(ctx context.Context, in ResolveInput) (string, error)
}

// Resolve walks the tiers in order and substitutes variables into the first
// content that sticks.
func (r *Resolver) Resolve(ctx context.Context, in ResolveInput) SystemMessage {
	chain := []strategy{
		{name: "custom_prompt", run: r.fromCustomPrompt},
		{name: "template_store", run: r.fromStore},
		{name: "builtin", run: r.fromBuiltin},
	}
	for _, tier := range chain {
		content, err := tier.run(ctx, in)
		if err != nil {
			r.log.Warn("prompt tier failed, falling through",
				"tier", tier.name,
				"usage_type", in.DerivedUsageType(),
				"error", err,
			)
			continue
		}
		if content == "" {
			continue
		}
		return SystemMessage{Role: "system", Content: Substitute(content, in.Vars)}
	}
	// Unreachable: the builtin tier always returns content.
	return SystemMessage{Role: "system", Content: Substitute(BuiltinPrompt(in.IsGradingRequest, in.IsExercise, in.Language), in.Vars)}
}

func (r *Resolver) fromCustomPrompt(_ context.Context, in ResolveInput) (string, error) {
	return in.CustomPrompt, nil
}

func (r *Resolver) fromStore(ctx context.Context, in ResolveInput) (string, error) {
	if r.repo == nil {
		return "", nil
	}
	usageType := in.DerivedUsageType()

	if r.cache != nil {
		if content, ok := r.cache.Get(ctx, usageType, in.Subject); ok {
			return content, nil
		}
	}

	tpl, err := r.repo.FindBest(ctx, usageType, in.Subject)
	if err != nil {
		return "", fmt.Errorf("template store lookup: %w", err)
	}
	if tpl == nil {
		return "", nil
	}
	r.log.Debug("resolved stored template",
		"template_id", tpl.ID,
		"usage_type", usageType,
		"priority", tpl.Priority,
	)
	if r.cache != nil {
		r.cache.Set(ctx, usageType, in.Subject, tpl.PromptContent)
	}
	return tpl.PromptContent, nil
}

func (r *Resolver) fromBuiltin(_ context.Context, in ResolveInput) (string, error) {
	switch in.UsageType {
	case domain.UsageTypeExplanation:
		return BuiltinExplanationPrompt(in.Language), nil
	case domain.UsageTypeMathEnhanced:
		return BuiltinMathEnhancement(in.Language), nil
	default:
		return BuiltinPrompt(in.IsGradingRequest, in.IsExercise, in.Language), nil
	}
}
