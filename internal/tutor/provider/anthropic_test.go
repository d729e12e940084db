package provider

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func anthropicReply(text string) map[string]any {
	return map[string]any{
		"content": []map[string]any{{"type": "text", "text": text}},
	}
}

func TestAnthropic_WireShape(t *testing.T) {
	srv, cap := newCaptureServer(t, http.StatusOK, anthropicReply("Let's think it through."))
	t.Setenv("ANTHROPIC_BASE_URL", srv.URL)

	a := NewAnthropic(testLogger(t), "sk-ant")
	got, err := a.Call(context.Background(), Request{
		System:      "You are a tutor.",
		History:     []ChatMessage{{Role: "assistant", Content: "earlier"}},
		UserMessage: "Solve 5 * 6",
		Model:       "claude-3-5-sonnet-20241022",
		IsExercise:  true,
	})
	require.NoError(t, err)
	require.Equal(t, "Let's think it through.", got)

	require.Equal(t, "/messages", cap.path)
	require.Equal(t, "sk-ant", cap.header.Get("x-api-key"))
	require.Equal(t, anthropicVersion, cap.header.Get("anthropic-version"))
	require.Empty(t, cap.header.Get("Authorization"))

	// System content travels as the first conversation turn, role user.
	msgs := messagesFrom(t, cap.body)
	require.Len(t, msgs, 3)
	require.Equal(t, "user", msgs[0]["role"])
	require.Equal(t, "You are a tutor.", msgs[0]["content"])

	// Exercise hint is appended to the final user message here, unlike OpenAI.
	last := msgs[2]["content"].(string)
	require.True(t, strings.HasPrefix(last, "Solve 5 * 6"))
	require.Contains(t, last, "Do not give me the final answer")

	require.EqualValues(t, anthropicMaxTokens, cap.body["max_tokens"])
	require.NotContains(t, cap.body, "temperature")
}

func TestAnthropic_MaxTokensPinned(t *testing.T) {
	srv, cap := newCaptureServer(t, http.StatusOK, anthropicReply("ok"))
	t.Setenv("ANTHROPIC_BASE_URL", srv.URL)

	a := NewAnthropic(testLogger(t), "sk-ant")
	_, err := a.Call(context.Background(), Request{
		System:      "sys",
		UserMessage: "hi",
		Model:       "claude-3-5-haiku-20241022",
		MaxTokens:   5000,
	})
	require.NoError(t, err)
	require.EqualValues(t, 800, cap.body["max_tokens"])
}

func TestAnthropic_MissingKey(t *testing.T) {
	a := NewAnthropic(testLogger(t), "")
	_, err := a.Call(context.Background(), Request{System: "s", UserMessage: "m", Model: "claude"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "ANTHROPIC API key not configured (set ANTHROPIC_API_KEY)")
}

func TestAnthropic_UpstreamError(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{"message": "rate limited"},
	})
	t.Setenv("ANTHROPIC_BASE_URL", srv.URL)

	a := NewAnthropic(testLogger(t), "sk-ant")
	_, err := a.Call(context.Background(), Request{System: "s", UserMessage: "m", Model: "claude"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "anthropic API error (429)")
	require.Contains(t, err.Error(), "rate limited")
}
