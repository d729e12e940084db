package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studyowl/tutor-backend/internal/platform/logger"
	"github.com/studyowl/tutor-backend/internal/tutor/models"
	"github.com/studyowl/tutor-backend/internal/tutor/prompt"
	"github.com/studyowl/tutor-backend/internal/tutor/provider"
)

type fakeAdapter struct {
	name  provider.Name
	reply string
	err   error
	calls int
	last  provider.Request
}

func (f *fakeAdapter) Name() provider.Name { return f.name }

func (f *fakeAdapter) Call(_ context.Context, req provider.Request) (string, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestDispatcher(t *testing.T, adapters provider.Registry, keys ProviderKeys) *Dispatcher {
	t.Helper()
	log, err := logger.New("dev")
	require.NoError(t, err)
	resolver := prompt.NewResolver(log, nil, nil)
	return NewDispatcher(log, resolver, models.NewRegistry(), adapters, keys)
}

func TestHandle_Success(t *testing.T) {
	fake := &fakeAdapter{name: provider.Anthropic, reply: "Let's break it down."}
	d := newTestDispatcher(t,
		provider.Registry{provider.Anthropic: fake},
		ProviderKeys{provider.Anthropic: "sk-ant"},
	)

	resp, apiErr := d.Handle(context.Background(), ChatRequest{
		Message: "Please solve 3 + 4 = ?",
		ModelID: "claude-sonnet",
	})
	require.Nil(t, apiErr)
	require.Equal(t, "Let's break it down.", resp.Content)
	require.Equal(t, "claude-sonnet", resp.ModelID)
	require.Equal(t, "claude-3-5-sonnet-20241022", resp.ModelUsed)
	require.Equal(t, "anthropic", resp.Provider)
	require.True(t, resp.IsExercise)

	_, err := time.Parse(time.RFC3339, resp.Timestamp)
	require.NoError(t, err)

	require.Equal(t, 1, fake.calls)
	require.True(t, fake.last.IsExercise)
	require.NotEmpty(t, fake.last.System)
	require.NotContains(t, fake.last.System, "{{")
}

func TestHandle_UnknownModelID(t *testing.T) {
	d := newTestDispatcher(t, provider.Registry{}, ProviderKeys{})

	_, apiErr := d.Handle(context.Background(), ChatRequest{
		Message: "hello",
		ModelID: "llama-70b",
	})
	require.NotNil(t, apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Contains(t, apiErr.Error(), `Unsupported modelId "llama-70b"`)
	require.Contains(t, apiErr.Error(), "gpt35")
	require.Contains(t, apiErr.Error(), "claude-sonnet")
}

func TestHandle_MissingProviderKey(t *testing.T) {
	d := newTestDispatcher(t,
		provider.Registry{},
		ProviderKeys{provider.Anthropic: "sk-ant"},
	)

	_, apiErr := d.Handle(context.Background(), ChatRequest{
		Message: "hello",
		ModelID: "gpt4o",
	})
	require.NotNil(t, apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
	require.Contains(t, apiErr.Error(), "OPENAI_API_KEY is not configured for provider openai")
	require.Contains(t, apiErr.Error(), "Configured providers: [anthropic]")
}

func TestHandle_MissingAdapterIsServerFault(t *testing.T) {
	d := newTestDispatcher(t,
		provider.Registry{},
		ProviderKeys{provider.OpenAI: "sk"},
	)

	_, apiErr := d.Handle(context.Background(), ChatRequest{
		Message: "hello",
		ModelID: "gpt4o",
	})
	require.NotNil(t, apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
	require.Contains(t, apiErr.Error(), "no adapter wired for provider openai")
}

func TestHandle_UnifiedSkipsClassification(t *testing.T) {
	fake := &fakeAdapter{name: provider.OpenAI, reply: "ok"}
	d := newTestDispatcher(t,
		provider.Registry{provider.OpenAI: fake},
		ProviderKeys{provider.OpenAI: "sk"},
	)

	resp, apiErr := d.Handle(context.Background(), ChatRequest{
		Message:   "Please solve 3 + 4 = ?",
		ModelID:   "gpt35",
		IsUnified: true,
	})
	require.Nil(t, apiErr)
	require.False(t, resp.IsExercise)
	require.False(t, fake.last.IsExercise)
}

func TestHandle_ProviderErrorMapsToStatus(t *testing.T) {
	fake := &fakeAdapter{
		name: provider.Mistral,
		err:  &provider.Error{Provider: provider.Mistral, Message: "network request timeout: dial tcp"},
	}
	d := newTestDispatcher(t,
		provider.Registry{provider.Mistral: fake},
		ProviderKeys{provider.Mistral: "key"},
	)

	_, apiErr := d.Handle(context.Background(), ChatRequest{
		Message: "hello",
		ModelID: "mistral-large",
	})
	require.NotNil(t, apiErr)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}

// A grading request against a dead upstream still produces a verdict: the
// OpenAI adapter degrades the failure to INCORRECT before the dispatcher sees
// it.
func TestHandle_GradingDegradationEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded"}}`))
	}))
	t.Cleanup(srv.Close)
	t.Setenv("OPENAI_BASE_URL", srv.URL)

	log, err := logger.New("dev")
	require.NoError(t, err)
	adapters := provider.Registry{provider.OpenAI: provider.NewOpenAI(log, "sk-test")}
	d := newTestDispatcher(t, adapters, ProviderKeys{provider.OpenAI: "sk-test"})

	resp, apiErr := d.Handle(context.Background(), ChatRequest{
		Message:          "Grade this answer. Exercise: 2+2. Student answer: 5.",
		ModelID:          "gpt4o",
		IsGradingRequest: true,
	})
	require.Nil(t, apiErr)
	require.Equal(t, "INCORRECT", resp.Content)
	require.False(t, resp.IsExercise)
}

func TestHandleExplanation_LenientModelFallback(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel, _ = body["model"].(string)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"tool_calls":[{"function":{` +
			`"name":"generate_explanation","arguments":"{\"isMath\":true,\"exercise\":\"ex\",` +
			`\"sections\":{\"concept\":\"c\",\"example\":\"e\",\"strategy\":\"s\",` +
			`\"pitfall\":\"p\",\"check\":\"k\",\"practice\":\"pr\"}}"}}]}}]}`))
	}))
	t.Cleanup(srv.Close)
	t.Setenv("OPENAI_BASE_URL", srv.URL)

	log, err := logger.New("dev")
	require.NoError(t, err)
	adapters := provider.Registry{provider.OpenAI: provider.NewOpenAI(log, "sk-test")}
	d := newTestDispatcher(t, adapters, ProviderKeys{provider.OpenAI: "sk-test"})

	// Unknown id falls back to the default model instead of a 400; this path
	// never faces external callers.
	out, apiErr := d.HandleExplanation(context.Background(), ExplanationRequest{
		Topic:   "fractions",
		ModelID: "definitely-not-a-model",
	})
	require.Nil(t, apiErr)
	require.True(t, out.IsMath)
	require.Equal(t, "gpt-3.5-turbo", gotModel)

	// A non-OpenAI id is forced onto the default OpenAI model too.
	_, apiErr = d.HandleExplanation(context.Background(), ExplanationRequest{
		Topic:   "photosynthesis",
		ModelID: "claude-sonnet",
	})
	require.Nil(t, apiErr)
	require.Equal(t, "gpt-3.5-turbo", gotModel)
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		msg  string
		want int
	}{
		{"OPENAI API key not configured (set OPENAI_API_KEY)", http.StatusUnauthorized},
		{"openai API error (404): The model `gpt-9` does not exist", http.StatusBadRequest},
		{"Unsupported provider \"foo\"", http.StatusBadRequest},
		{"network request timeout: context deadline exceeded", http.StatusServiceUnavailable},
		{"network request failed: connection refused", http.StatusServiceUnavailable},
		{"something else entirely", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, StatusForError(&provider.Error{Provider: provider.OpenAI, Message: tc.msg}), "msg %q", tc.msg)
	}
}

func TestProviderKeys_Configured(t *testing.T) {
	keys := ProviderKeys{
		provider.OpenAI: "a",
		provider.Google: "b",
	}
	require.Equal(t, []string{"openai", "google"}, keys.Configured())
}
