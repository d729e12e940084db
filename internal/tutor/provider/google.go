package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/studyowl/tutor-backend/internal/platform/envutil"
	"github.com/studyowl/tutor-backend/internal/platform/logger"
)

// Google's generateContent endpoint has no message-array API in this dialect;
// the whole conversation collapses into one prompt string.
type googleAdapter struct {
	log    *logger.Logger
	apiKey string
	rest   *resty.Client
}

func NewGoogle(log *logger.Logger, apiKey string) Adapter {
	rest := resty.New().
		SetBaseURL(envutil.Get("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")).
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json")
	return &googleAdapter{
		log:    log.With("provider", "google"),
		apiKey: apiKey,
		rest:   rest,
	}
}

func (a *googleAdapter) Name() Name { return Google }

type googleResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (a *googleAdapter) Call(ctx context.Context, req Request) (string, error) {
	if a.apiKey == "" {
		return "", errKeyMissing(Google)
	}

	body := map[string]any{
		"contents": []map[string]any{{
			"parts": []map[string]any{{
				"text": buildGooglePrompt(req),
			}},
		}},
		"generationConfig": map[string]any{
			"maxOutputTokens": maxTokensFor(req),
		},
	}

	var parsed googleResponse
	resp, err := a.rest.R().
		SetContext(ctx).
		SetQueryParam("key", a.apiKey).
		SetBody(body).
		SetResult(&parsed).
		Post(fmt.Sprintf("/models/%s:generateContent", req.Model))
	if err != nil {
		return "", errNetwork(Google, err)
	}
	if resp.StatusCode() >= 400 {
		return "", errUpstream(Google, resp.StatusCode(), resp.Body())
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errMalformed(Google, "candidates[0].content.parts[0].text")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func buildGooglePrompt(req Request) string {
	var b strings.Builder
	b.WriteString(req.System)
	b.WriteString("\n\n")
	for _, msg := range req.History {
		if msg.Role == "assistant" {
			b.WriteString("Assistant: ")
		} else {
			b.WriteString("User: ")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(userMessageFor(req, true))
	b.WriteString("\nAssistant:")
	return b.String()
}
