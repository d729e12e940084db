package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	redisclient "github.com/studyowl/tutor-backend/internal/clients/redis"
	"github.com/studyowl/tutor-backend/internal/domain"
	"github.com/studyowl/tutor-backend/internal/platform/logger"
)

type fakeTemplateRepo struct {
	template *domain.PromptTemplate
	err      error

	gotUsageType string
	gotSubject   string
	calls        int
}

func (f *fakeTemplateRepo) FindBest(_ context.Context, usageType, subject string) (*domain.PromptTemplate, error) {
	f.calls++
	f.gotUsageType = usageType
	f.gotSubject = subject
	return f.template, f.err
}

type fakeCache struct {
	store map[string]string
	sets  int
}

func (f *fakeCache) Get(_ context.Context, usageType, subject string) (string, bool) {
	v, ok := f.store[usageType+"|"+subject]
	return v, ok
}

func (f *fakeCache) Set(_ context.Context, usageType, subject, content string) {
	f.sets++
	f.store[usageType+"|"+subject] = content
}

func (f *fakeCache) Close() error { return nil }

func testResolver(t *testing.T, repo *fakeTemplateRepo, cache *fakeCache) *Resolver {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	var c redisclient.TemplateCache
	if cache != nil {
		c = cache
	}
	return NewResolver(log, repo, c)
}

func TestResolve_CustomPromptBypassesEverything(t *testing.T) {
	repo := &fakeTemplateRepo{}
	r := testResolver(t, repo, nil)

	msg := r.Resolve(context.Background(), ResolveInput{
		CustomPrompt: "Coach {{first_name}} gently.",
		Vars:         Variables{"first_name": "Ida"},
	})
	if msg.Role != "system" {
		t.Fatalf("role = %q", msg.Role)
	}
	if msg.Content != "Coach Ida gently." {
		t.Fatalf("content = %q", msg.Content)
	}
	if repo.calls != 0 {
		t.Fatalf("store should not be queried when a custom prompt is supplied")
	}
}

func TestResolve_StoredTemplateWinsOverBuiltin(t *testing.T) {
	repo := &fakeTemplateRepo{template: &domain.PromptTemplate{
		PromptContent: "Stored prompt for {{subject}}",
		Priority:      10,
	}}
	r := testResolver(t, repo, nil)

	msg := r.Resolve(context.Background(), ResolveInput{
		Subject: "Physics",
		Vars:    Variables{"subject": "Physics"},
	})
	if msg.Content != "Stored prompt for Physics" {
		t.Fatalf("content = %q", msg.Content)
	}
	if repo.gotUsageType != domain.UsageTypeChat {
		t.Fatalf("usage type = %q", repo.gotUsageType)
	}
	if repo.gotSubject != "Physics" {
		t.Fatalf("subject = %q", repo.gotSubject)
	}
}

func TestResolve_UsageTypeDerivation(t *testing.T) {
	cases := []struct {
		in   ResolveInput
		want string
	}{
		{ResolveInput{IsGradingRequest: true}, domain.UsageTypeGrading},
		{ResolveInput{IsUnified: true}, domain.UsageTypeUnifiedMathChat},
		{ResolveInput{IsExercise: true}, domain.UsageTypeChat},
		{ResolveInput{}, domain.UsageTypeChat},
		{ResolveInput{UsageType: domain.UsageTypeExplanation}, domain.UsageTypeExplanation},
		// Grading outranks unified when a caller sets both flags.
		{ResolveInput{IsGradingRequest: true, IsUnified: true}, domain.UsageTypeGrading},
	}
	for _, tc := range cases {
		if got := tc.in.DerivedUsageType(); got != tc.want {
			t.Fatalf("DerivedUsageType(%+v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolve_StoreErrorFallsThroughToBuiltin(t *testing.T) {
	repo := &fakeTemplateRepo{err: errors.New("connection refused")}
	r := testResolver(t, repo, nil)

	msg := r.Resolve(context.Background(), ResolveInput{IsGradingRequest: true})
	if msg.Content == "" {
		t.Fatalf("expected builtin content despite store error")
	}
	if !strings.Contains(msg.Content, "CORRECT or INCORRECT") {
		t.Fatalf("expected grading builtin, got %q", msg.Content)
	}
}

func TestResolve_NoTemplateFallsThroughToBuiltin(t *testing.T) {
	repo := &fakeTemplateRepo{}
	r := testResolver(t, repo, nil)

	msg := r.Resolve(context.Background(), ResolveInput{IsExercise: true})
	if !strings.Contains(msg.Content, "Problem") || !strings.Contains(msg.Content, "Guidance") {
		t.Fatalf("expected Socratic builtin with labeled sections, got %q", msg.Content)
	}
	if strings.Contains(msg.Content, "{{") {
		t.Fatalf("unsubstituted builtin: %q", msg.Content)
	}
}

func TestResolve_FrenchBuiltinVariant(t *testing.T) {
	r := testResolver(t, &fakeTemplateRepo{}, nil)

	msg := r.Resolve(context.Background(), ResolveInput{IsGradingRequest: true, Language: "fr"})
	if !strings.Contains(msg.Content, "CORRECT ou INCORRECT") {
		t.Fatalf("expected French grading builtin, got %q", msg.Content)
	}

	msg = r.Resolve(context.Background(), ResolveInput{IsGradingRequest: true, Language: "xx"})
	if !strings.Contains(msg.Content, "CORRECT or INCORRECT") {
		t.Fatalf("unsupported language should default to English, got %q", msg.Content)
	}
}

func TestResolve_GradingBuiltinDocumentsEquivalencePolicy(t *testing.T) {
	r := testResolver(t, &fakeTemplateRepo{}, nil)
	msg := r.Resolve(context.Background(), ResolveInput{IsGradingRequest: true})

	// The equivalence pairs are the grading contract; regressions here change
	// verdicts downstream.
	for _, needle := range []string{"1/2", "0.5", "2/3", "0.67", "0.667", "0.6667", "0.33", "2 decimal"} {
		if !strings.Contains(msg.Content, needle) {
			t.Fatalf("grading prompt no longer documents %q:\n%s", needle, msg.Content)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	repo := &fakeTemplateRepo{template: &domain.PromptTemplate{PromptContent: "Fixed {{subject}} prompt"}}
	r := testResolver(t, repo, nil)

	in := ResolveInput{Subject: "Chemistry", Vars: Variables{"subject": "Chemistry"}}
	first := r.Resolve(context.Background(), in)
	second := r.Resolve(context.Background(), in)
	if first != second {
		t.Fatalf("resolution not idempotent: %q vs %q", first.Content, second.Content)
	}
}

func TestResolve_CacheShortCircuitsStore(t *testing.T) {
	repo := &fakeTemplateRepo{template: &domain.PromptTemplate{PromptContent: "From store"}}
	cache := &fakeCache{store: map[string]string{}}
	r := testResolver(t, repo, cache)

	in := ResolveInput{Subject: "Math"}
	first := r.Resolve(context.Background(), in)
	if first.Content != "From store" {
		t.Fatalf("first resolve = %q", first.Content)
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache write, got %d", cache.sets)
	}

	second := r.Resolve(context.Background(), in)
	if second.Content != "From store" {
		t.Fatalf("second resolve = %q", second.Content)
	}
	if repo.calls != 1 {
		t.Fatalf("store queried %d times, cache should have answered the second call", repo.calls)
	}
}

func TestResolve_MathEnhancedUsageType(t *testing.T) {
	r := testResolver(t, &fakeTemplateRepo{}, nil)
	msg := r.Resolve(context.Background(), ResolveInput{UsageType: domain.UsageTypeMathEnhanced})
	if !strings.Contains(msg.Content, "arithmetic") {
		t.Fatalf("expected math enhancement builtin, got %q", msg.Content)
	}
}
