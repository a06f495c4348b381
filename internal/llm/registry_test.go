package llm

import (
	"context"
	"errors"
	"testing"
)

// countingProvider records calls and returns a canned response.
type countingProvider struct {
	calls    int
	lastReq  Request
	response Response
	err      error
}

func (p *countingProvider) Generate(ctx context.Context, req Request) (Response, error) {
	p.calls++
	p.lastReq = req
	return p.response, p.err
}

func newTestRouter() (*Router, *countingProvider, *countingProvider) {
	openai := &countingProvider{response: Response{Content: "from openai"}}
	google := &countingProvider{response: Response{Content: "from google"}}
	r := NewRouter(map[string]Provider{
		ProviderOpenAI: openai,
		ProviderGoogle: google,
	})
	return r, openai, google
}

func TestModelsRegistry(t *testing.T) {
	models := Models()
	if len(models) != 4 {
		t.Fatalf("expected 4 models, got %d", len(models))
	}

	want := map[string]string{
		"gemini-2.5-flash": ProviderGoogle,
		"gpt-4o-mini":      ProviderOpenAI,
		"gpt-4o":           ProviderOpenAI,
		"gpt-5":            ProviderOpenAI,
	}
	for _, m := range models {
		provider, ok := want[m.ID]
		if !ok {
			t.Errorf("unexpected model %q in registry", m.ID)
			continue
		}
		if m.Provider != provider {
			t.Errorf("model %q provider = %q, want %q", m.ID, m.Provider, provider)
		}
	}
}

func TestLookup(t *testing.T) {
	m, ok := Lookup("gpt-4o")
	if !ok {
		t.Fatal("Lookup(gpt-4o) not found")
	}
	if m.CostLevel != "medium" {
		t.Errorf("CostLevel = %q, want medium", m.CostLevel)
	}

	if _, ok := Lookup("claude-3"); ok {
		t.Error("Lookup(claude-3) should not be found")
	}
}

func TestRouterRoutesByProvider(t *testing.T) {
	r, openai, google := newTestRouter()

	resp, err := r.Generate(context.Background(), Request{Prompt: "hi", Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "from openai" {
		t.Errorf("content = %q, want from openai", resp.Content)
	}
	if openai.calls != 1 || google.calls != 0 {
		t.Errorf("calls = openai:%d google:%d, want 1/0", openai.calls, google.calls)
	}
}

func TestRouterEmptyModelUsesDefault(t *testing.T) {
	r, openai, google := newTestRouter()

	if _, err := r.Generate(context.Background(), Request{Prompt: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if google.calls != 1 || openai.calls != 0 {
		t.Fatalf("calls = openai:%d google:%d, want 0/1", openai.calls, google.calls)
	}
	if google.lastReq.Model != DefaultModel {
		t.Errorf("model = %q, want %q", google.lastReq.Model, DefaultModel)
	}
}

func TestRouterSetDefaultModel(t *testing.T) {
	r, openai, _ := newTestRouter()
	r.SetDefaultModel("gpt-4o-mini")

	if _, err := r.Generate(context.Background(), Request{Prompt: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if openai.calls != 1 {
		t.Fatalf("openai calls = %d, want 1", openai.calls)
	}
	if openai.lastReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", openai.lastReq.Model)
	}
}

func TestRouterUnknownModelNoProviderCall(t *testing.T) {
	r, openai, google := newTestRouter()

	_, err := r.Generate(context.Background(), Request{Prompt: "hi", Model: "claude-3"})
	if !errors.Is(err, ErrUnsupportedModel) {
		t.Fatalf("error = %v, want ErrUnsupportedModel", err)
	}
	if openai.calls != 0 || google.calls != 0 {
		t.Errorf("providers called for unknown model: openai:%d google:%d", openai.calls, google.calls)
	}
}
