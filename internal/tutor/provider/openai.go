package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/studyowl/tutor-backend/internal/platform/envutil"
	"github.com/studyowl/tutor-backend/internal/platform/logger"
)

// gradingPrefix marks messages whose caller needs a verdict no matter what.
// A failed OpenAI call for such a message degrades to "INCORRECT" instead of
// surfacing the error.
const gradingPrefix = "Grade this answer"

// Model families that take max_completion_tokens instead of max_tokens (and
// reject an explicit temperature).
var completionTokenFamilies = []string{"gpt-5", "gpt-4.1", "o3", "o4"}

type openaiAdapter struct {
	log    *logger.Logger
	apiKey string
	rest   *resty.Client
}

func NewOpenAI(log *logger.Logger, apiKey string) Adapter {
	rest := resty.New().
		SetBaseURL(envutil.Get("OPENAI_BASE_URL", "https://api.openai.com/v1")).
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json")
	return &openaiAdapter{
		log:    log.With("provider", "openai"),
		apiKey: apiKey,
		rest:   rest,
	}
}

func (a *openaiAdapter) Name() Name { return OpenAI }

type openaiChatResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

func (a *openaiAdapter) Call(ctx context.Context, req Request) (string, error) {
	content, err := a.call(ctx, req)
	if err != nil && strings.HasPrefix(req.UserMessage, gradingPrefix) {
		// Grading callers must always receive a verdict.
		a.log.Warn("grading call failed, degrading to INCORRECT", "error", err)
		return "INCORRECT", nil
	}
	return content, err
}

func (a *openaiAdapter) call(ctx context.Context, req Request) (string, error) {
	if a.apiKey == "" {
		return "", errKeyMissing(OpenAI)
	}

	messages := make([]ChatMessage, 0, len(req.History)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: req.System})
	messages = append(messages, req.History...)
	// OpenAI gets the math enhancement on the system message instead of a
	// user-message hint, so the hint is never appended here.
	messages = append(messages, ChatMessage{Role: "user", Content: userMessageFor(req, false)})

	body := map[string]any{
		"model":    req.Model,
		"messages": messages,
	}
	if usesCompletionTokens(req.Model) {
		body["max_completion_tokens"] = maxTokensFor(req)
	} else {
		body["max_tokens"] = maxTokensFor(req)
		body["temperature"] = 0.7
	}

	var parsed openaiChatResponse
	resp, err := a.rest.R().
		SetContext(ctx).
		SetAuthToken(a.apiKey).
		SetBody(body).
		SetResult(&parsed).
		Post("/chat/completions")
	if err != nil {
		return "", errNetwork(OpenAI, err)
	}
	if resp.StatusCode() >= 400 {
		return "", errUpstream(OpenAI, resp.StatusCode(), resp.Body())
	}
	if len(parsed.Choices) == 0 {
		return "", errMalformed(OpenAI, "choices[0].message.content")
	}
	return parsed.Choices[0].Message.Content, nil
}

func usesCompletionTokens(model string) bool {
	m := strings.ToLower(model)
	for _, family := range completionTokenFamilies {
		if strings.HasPrefix(m, family) {
			return true
		}
	}
	return false
}

// explanationSchema is the fixed function-calling schema for structured
// explanation generation. The section names are part of the client contract.
var explanationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"isMath":   map[string]any{"type": "boolean"},
		"exercise": map[string]any{"type": "string"},
		"sections": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"concept":  map[string]any{"type": "string"},
				"example":  map[string]any{"type": "string"},
				"strategy": map[string]any{"type": "string"},
				"pitfall":  map[string]any{"type": "string"},
				"check":    map[string]any{"type": "string"},
				"practice": map[string]any{"type": "string"},
			},
			"required": []string{"concept", "example", "strategy", "pitfall", "check", "practice"},
		},
	},
	"required": []string{"isMath", "exercise", "sections"},
}

// Explanation is the parsed structured-explanation payload.
type Explanation struct {
	IsMath   bool   `json:"isMath"`
	Exercise string `json:"exercise"`
	Sections struct {
		Concept  string `json:"concept"`
		Example  string `json:"example"`
		Strategy string `json:"strategy"`
		Pitfall  string `json:"pitfall"`
		Check    string `json:"check"`
		Practice string `json:"practice"`
	} `json:"sections"`
}

// GenerateExplanation runs the function-calling flow. Only OpenAI supports
// it; the handler routes explanation requests here unconditionally.
func (a *openaiAdapter) GenerateExplanation(ctx context.Context, system, topic, model string) (*Explanation, error) {
	if a.apiKey == "" {
		return nil, errKeyMissing(OpenAI)
	}

	body := map[string]any{
		"model": model,
		"messages": []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: topic},
		},
		"tools": []map[string]any{{
			"type": "function",
			"function": map[string]any{
				"name":        "generate_explanation",
				"description": "Produce a structured explanation of an educational topic.",
				"parameters":  explanationSchema,
			},
		}},
		"tool_choice": map[string]any{
			"type":     "function",
			"function": map[string]any{"name": "generate_explanation"},
		},
	}
	if usesCompletionTokens(model) {
		body["max_completion_tokens"] = defaultMaxTokens
	} else {
		body["max_tokens"] = defaultMaxTokens
		body["temperature"] = 0.7
	}

	var parsed openaiChatResponse
	resp, err := a.rest.R().
		SetContext(ctx).
		SetAuthToken(a.apiKey).
		SetBody(body).
		SetResult(&parsed).
		Post("/chat/completions")
	if err != nil {
		return nil, errNetwork(OpenAI, err)
	}
	if resp.StatusCode() >= 400 {
		return nil, errUpstream(OpenAI, resp.StatusCode(), resp.Body())
	}
	if len(parsed.Choices) == 0 || len(parsed.Choices[0].Message.ToolCalls) == 0 {
		return nil, errMalformed(OpenAI, "choices[0].message.tool_calls")
	}

	var out Explanation
	args := parsed.Choices[0].Message.ToolCalls[0].Function.Arguments
	if err := json.Unmarshal([]byte(args), &out); err != nil {
		return nil, errMalformed(OpenAI, "tool_calls[0].function.arguments")
	}
	return &out, nil
}

// ExplanationGenerator is the optional capability the explanation endpoint
// needs. Only the OpenAI adapter implements it.
type ExplanationGenerator interface {
	GenerateExplanation(ctx context.Context, system, topic, model string) (*Explanation, error)
}
