// Package dispatch is the top of the tutoring pipeline: it classifies the
// message, resolves the system instructions, picks the provider adapter and
// shapes the outcome. One inbound request maps to at most one outbound
// provider call, attempted exactly once.
package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/studyowl/tutor-backend/internal/domain"
	"github.com/studyowl/tutor-backend/internal/platform/apierr"
	"github.com/studyowl/tutor-backend/internal/platform/logger"
	"github.com/studyowl/tutor-backend/internal/tutor/classify"
	"github.com/studyowl/tutor-backend/internal/tutor/models"
	"github.com/studyowl/tutor-backend/internal/tutor/prompt"
	"github.com/studyowl/tutor-backend/internal/tutor/provider"
)

// ProviderKeys is the process-wide API key set, loaded once at startup and
// injected here so tests can swap in fakes.
type ProviderKeys map[provider.Name]string

// Configured lists the providers that do have a key, for diagnostics when one
// doesn't.
func (k ProviderKeys) Configured() []string {
	var out []string
	for _, name := range provider.AllNames() {
		if k[name] != "" {
			out = append(out, name.String())
		}
	}
	return out
}

// ChatRequest is the validated inbound request (the handler has already
// checked that Message and ModelID are present).
type ChatRequest struct {
	Message          string
	ModelID          string
	History          []provider.ChatMessage
	IsGradingRequest bool
	IsUnified        bool
	Language         string
	CustomPrompt     string
	UserContext      map[string]any
}

type ChatResponse struct {
	Content    string `json:"content"`
	ModelID    string `json:"modelId"`
	ModelUsed  string `json:"modelUsed"`
	Provider   string `json:"provider"`
	IsExercise bool   `json:"isExercise"`
	Timestamp  string `json:"timestamp"`
}

// ExplanationRequest drives the structured-explanation flow (OpenAI tool
// calling). ModelID is optional and resolved leniently — this is the one
// internal path where an unknown id falls back to the default model instead
// of erroring.
type ExplanationRequest struct {
	Topic       string
	ModelID     string
	Language    string
	UserContext map[string]any
}

type Dispatcher struct {
	log      *logger.Logger
	resolver *prompt.Resolver
	registry *models.Registry
	adapters provider.Registry
	keys     ProviderKeys
}

func NewDispatcher(
	log *logger.Logger,
	resolver *prompt.Resolver,
	registry *models.Registry,
	adapters provider.Registry,
	keys ProviderKeys,
) *Dispatcher {
	return &Dispatcher{
		log:      log.With("service", "Dispatcher"),
		resolver: resolver,
		registry: registry,
		adapters: adapters,
		keys:     keys,
	}
}

// Handle runs one request through classify → resolve → dispatch.
func (d *Dispatcher) Handle(ctx context.Context, req ChatRequest) (ChatResponse, *apierr.Error) {
	// Unified callers have already classified the message themselves and use
	// the dedicated unified_math_chat template category.
	isExercise := false
	if !req.IsUnified {
		isExercise = classify.IsExercise(req.Message, req.IsGradingRequest)
	}

	cfg, ok := d.registry.Lookup(req.ModelID)
	if !ok {
		return ChatResponse{}, apierr.New(http.StatusBadRequest, fmt.Errorf(
			"Unsupported modelId %q. Supported model ids: %s",
			req.ModelID, strings.Join(d.registry.SupportedIDs(), ", "),
		))
	}

	key := d.keys[cfg.Provider]
	if key == "" {
		return ChatResponse{}, apierr.New(http.StatusInternalServerError, fmt.Errorf(
			"%s is not configured for provider %s. Configured providers: [%s]",
			cfg.Provider.EnvVar(), cfg.Provider, strings.Join(d.keys.Configured(), ", "),
		))
	}

	subject := subjectFrom(req.UserContext)
	vars := prompt.FromUserContext(req.UserContext, subject, req.Language)
	system := d.resolver.Resolve(ctx, prompt.ResolveInput{
		Subject:          subject,
		CustomPrompt:     req.CustomPrompt,
		Language:         req.Language,
		IsGradingRequest: req.IsGradingRequest,
		IsExercise:       isExercise,
		IsUnified:        req.IsUnified,
		Vars:             vars,
	})

	// OpenAI gets math help layered onto the system instructions instead of
	// the user-message hint the other adapters append.
	if cfg.Provider == provider.OpenAI && !req.IsUnified && classify.IsMathProblem(req.Message) {
		enhancement := d.resolver.Resolve(ctx, prompt.ResolveInput{
			UsageType: domain.UsageTypeMathEnhanced,
			Subject:   subject,
			Language:  req.Language,
			Vars:      vars,
		})
		system.Content += enhancement.Content
	}

	adapter, ok := d.adapters.Get(cfg.Provider)
	if !ok {
		// The registry knows this provider but nothing was wired for it; that
		// is a deployment fault, not bad client input.
		return ChatResponse{}, apierr.New(http.StatusInternalServerError, fmt.Errorf(
			"no adapter wired for provider %s (modelId %q)", cfg.Provider, req.ModelID,
		))
	}

	d.log.Info("dispatching tutoring request",
		"model_id", req.ModelID,
		"provider", cfg.Provider,
		"model", cfg.Model,
		"is_exercise", isExercise,
		"is_grading", req.IsGradingRequest,
	)

	content, err := adapter.Call(ctx, provider.Request{
		System:      system.Content,
		History:     req.History,
		UserMessage: req.Message,
		Model:       cfg.Model,
		IsExercise:  isExercise,
	})
	if err != nil {
		d.log.Error("provider call failed", "provider", cfg.Provider, "error", err)
		return ChatResponse{}, apierr.New(StatusForError(err), err)
	}

	return ChatResponse{
		Content:    content,
		ModelID:    req.ModelID,
		ModelUsed:  cfg.Model,
		Provider:   cfg.Provider.String(),
		IsExercise: isExercise,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// HandleExplanation resolves the explanation template and runs the OpenAI
// function-calling flow.
func (d *Dispatcher) HandleExplanation(ctx context.Context, req ExplanationRequest) (*provider.Explanation, *apierr.Error) {
	cfg := d.registry.LookupOrDefault(req.ModelID)
	if cfg.Provider != provider.OpenAI {
		// Structured explanations are an OpenAI-only capability.
		cfg = d.registry.LookupOrDefault(models.DefaultModelID)
	}

	if d.keys[provider.OpenAI] == "" {
		return nil, apierr.New(http.StatusInternalServerError, fmt.Errorf(
			"%s is not configured for provider %s. Configured providers: [%s]",
			provider.OpenAI.EnvVar(), provider.OpenAI, strings.Join(d.keys.Configured(), ", "),
		))
	}

	subject := subjectFrom(req.UserContext)
	system := d.resolver.Resolve(ctx, prompt.ResolveInput{
		UsageType: domain.UsageTypeExplanation,
		Subject:   subject,
		Language:  req.Language,
		Vars:      prompt.FromUserContext(req.UserContext, subject, req.Language),
	})

	adapter, _ := d.adapters.Get(provider.OpenAI)
	gen, ok := adapter.(provider.ExplanationGenerator)
	if !ok {
		return nil, apierr.New(http.StatusInternalServerError, fmt.Errorf(
			"openai adapter does not support explanation generation",
		))
	}

	out, err := gen.GenerateExplanation(ctx, system.Content, req.Topic, cfg.Model)
	if err != nil {
		d.log.Error("explanation call failed", "error", err)
		return nil, apierr.New(StatusForError(err), err)
	}
	return out, nil
}

// StatusForError maps a provider failure to an HTTP status by inspecting the
// error text. The classification is deliberately substring-based; adapters
// phrase their errors to match.
func StatusForError(err error) int {
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "API key"):
		return http.StatusUnauthorized
	case strings.Contains(lower, "model"), strings.Contains(msg, "Unsupported"):
		return http.StatusBadRequest
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "network"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func subjectFrom(userContext map[string]any) string {
	if raw, ok := userContext["subject"]; ok {
		if s, ok := raw.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
