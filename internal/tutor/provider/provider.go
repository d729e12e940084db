// Package provider translates the pipeline's canonical request — one system
// message, prior history, one user message — into each upstream vendor's wire
// format and normalizes the reply back to plain text.
package provider

import (
	"context"
	"time"
)

// Name identifies an upstream vendor. Adapter selection is keyed on this type
// rather than raw strings so an unsupported vendor fails at lookup, not deep
// inside a request builder.
type Name string

const (
	OpenAI    Name = "openai"
	Anthropic Name = "anthropic"
	Mistral   Name = "mistral"
	Google    Name = "google"
	DeepSeek  Name = "deepseek"
	XAI       Name = "xai"
)

func (n Name) String() string { return string(n) }

// EnvVar is the secret each provider's key is read from. Error messages name
// these exactly so operators know which secret to set.
func (n Name) EnvVar() string {
	switch n {
	case OpenAI:
		return "OPENAI_API_KEY"
	case Anthropic:
		return "ANTHROPIC_API_KEY"
	case Mistral:
		return "MISTRAL_API_KEY"
	case Google:
		return "GEMINI_API_KEY"
	case DeepSeek:
		return "DEEPSEEK_API_KEY"
	case XAI:
		return "XAI_API_KEY"
	default:
		return ""
	}
}

// AllNames lists every supported provider, in display order.
func AllNames() []Name {
	return []Name{OpenAI, Anthropic, Mistral, Google, DeepSeek, XAI}
}

// ChatMessage is one turn of conversation history, already in the neutral
// role/content shape shared by the inbound API.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the canonical normalized request every adapter accepts.
type Request struct {
	System      string
	History     []ChatMessage
	UserMessage string
	Model       string
	MaxTokens   int
	IsExercise  bool
}

// Adapter is implemented once per vendor. Call blocks for the single upstream
// HTTP request and returns the assistant's reply text. It is attempted exactly
// once; retries are deliberately absent from this pipeline.
type Adapter interface {
	Name() Name
	Call(ctx context.Context, req Request) (string, error)
}

// Registry holds the configured adapters keyed by Name.
type Registry map[Name]Adapter

func (r Registry) Get(name Name) (Adapter, bool) {
	a, ok := r[name]
	return a, ok
}

const (
	defaultMaxTokens = 800
	defaultTimeout   = 120 * time.Second

	// Appended to the user message for exercise-classified requests on every
	// provider except OpenAI, which gets a system-message enhancement instead.
	exerciseHint = "\n\nThis is a homework exercise. Do not give me the final answer. " +
		"Guide me step by step, and format your reply with a \"Problem\" section " +
		"and a \"Guidance\" section."
)

// userMessageFor applies the exercise formatting hint where the adapter wants
// it.
func userMessageFor(req Request, appendHint bool) string {
	if appendHint && req.IsExercise {
		return req.UserMessage + exerciseHint
	}
	return req.UserMessage
}

func maxTokensFor(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}
