package provider

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/studyowl/tutor-backend/internal/platform/envutil"
	"github.com/studyowl/tutor-backend/internal/platform/logger"
)

const anthropicVersion = "2023-06-01"

// Anthropic's max_tokens is mandatory; the pipeline pins it rather than
// passing the caller's value through.
const anthropicMaxTokens = 800

type anthropicAdapter struct {
	log    *logger.Logger
	apiKey string
	rest   *resty.Client
}

func NewAnthropic(log *logger.Logger, apiKey string) Adapter {
	rest := resty.New().
		SetBaseURL(envutil.Get("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1")).
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("anthropic-version", anthropicVersion)
	return &anthropicAdapter{
		log:    log.With("provider", "anthropic"),
		apiKey: apiKey,
		rest:   rest,
	}
}

func (a *anthropicAdapter) Name() Name { return Anthropic }

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (a *anthropicAdapter) Call(ctx context.Context, req Request) (string, error) {
	if a.apiKey == "" {
		return "", errKeyMissing(Anthropic)
	}

	// The system content rides as the first conversation entry, not in
	// Anthropic's dedicated system field. Downstream templates assume the
	// model sees it inside the turn sequence.
	messages := make([]ChatMessage, 0, len(req.History)+2)
	messages = append(messages, ChatMessage{Role: "user", Content: req.System})
	messages = append(messages, req.History...)
	messages = append(messages, ChatMessage{Role: "user", Content: userMessageFor(req, true)})

	body := map[string]any{
		"model":      req.Model,
		"messages":   messages,
		"max_tokens": anthropicMaxTokens,
	}

	var parsed anthropicResponse
	resp, err := a.rest.R().
		SetContext(ctx).
		SetHeader("x-api-key", a.apiKey).
		SetBody(body).
		SetResult(&parsed).
		Post("/messages")
	if err != nil {
		return "", errNetwork(Anthropic, err)
	}
	if resp.StatusCode() >= 400 {
		return "", errUpstream(Anthropic, resp.StatusCode(), resp.Body())
	}
	if len(parsed.Content) == 0 {
		return "", errMalformed(Anthropic, "content[0].text")
	}
	return parsed.Content[0].Text, nil
}
