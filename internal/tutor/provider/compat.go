package provider

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/studyowl/tutor-backend/internal/platform/envutil"
	"github.com/studyowl/tutor-backend/internal/platform/logger"
)

// Mistral, DeepSeek and xAI all speak the OpenAI chat/completions dialect
// with bearer auth, so they share one adapter parameterized by name and base
// URL.
type compatAdapter struct {
	name   Name
	log    *logger.Logger
	apiKey string
	rest   *resty.Client
}

func newCompat(name Name, log *logger.Logger, apiKey, baseURL string) Adapter {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json")
	return &compatAdapter{
		name:   name,
		log:    log.With("provider", name.String()),
		apiKey: apiKey,
		rest:   rest,
	}
}

func NewMistral(log *logger.Logger, apiKey string) Adapter {
	return newCompat(Mistral, log, apiKey, envutil.Get("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"))
}

func NewDeepSeek(log *logger.Logger, apiKey string) Adapter {
	return newCompat(DeepSeek, log, apiKey, envutil.Get("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"))
}

func NewXAI(log *logger.Logger, apiKey string) Adapter {
	return newCompat(XAI, log, apiKey, envutil.Get("XAI_BASE_URL", "https://api.x.ai/v1"))
}

func (a *compatAdapter) Name() Name { return a.name }

type compatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (a *compatAdapter) Call(ctx context.Context, req Request) (string, error) {
	if a.apiKey == "" {
		return "", errKeyMissing(a.name)
	}

	messages := make([]ChatMessage, 0, len(req.History)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: req.System})
	messages = append(messages, req.History...)
	messages = append(messages, ChatMessage{Role: "user", Content: userMessageFor(req, true)})

	body := map[string]any{
		"model":       req.Model,
		"messages":    messages,
		"temperature": 0.7,
		"max_tokens":  maxTokensFor(req),
	}

	var parsed compatResponse
	resp, err := a.rest.R().
		SetContext(ctx).
		SetAuthToken(a.apiKey).
		SetBody(body).
		SetResult(&parsed).
		Post("/chat/completions")
	if err != nil {
		return "", errNetwork(a.name, err)
	}
	if resp.StatusCode() >= 400 {
		return "", errUpstream(a.name, resp.StatusCode(), resp.Body())
	}
	if len(parsed.Choices) == 0 {
		return "", errMalformed(a.name, "choices[0].message.content")
	}
	return parsed.Choices[0].Message.Content, nil
}
