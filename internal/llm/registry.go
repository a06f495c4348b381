package llm

import (
	"context"
	"fmt"
)

// ErrUnsupportedModel is returned for model ids not present in the registry.
// The check happens before any provider call.
var ErrUnsupportedModel = fmt.Errorf("unsupported model")

// Provider names used in the registry and the router's provider map.
const (
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"
)

// DefaultModel is used when a request leaves the model unspecified.
const DefaultModel = "gemini-2.5-flash"

// ModelInfo describes one entry of the fixed model registry.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CostLevel   string `json:"costLevel"` // "low", "medium", "high"
	Provider    string `json:"provider"`  // "openai" or "google"
}

var registry = []ModelInfo{
	{
		ID:          "gemini-2.5-flash",
		Name:        "Gemini 2.5 Flash",
		Description: "Fast and cost-effective Google AI model",
		CostLevel:   "low",
		Provider:    ProviderGoogle,
	},
	{
		ID:          "gpt-4o-mini",
		Name:        "GPT-4o Mini",
		Description: "Lightweight OpenAI model for basic tasks",
		CostLevel:   "low",
		Provider:    ProviderOpenAI,
	},
	{
		ID:          "gpt-4o",
		Name:        "GPT-4o",
		Description: "Balanced performance and cost OpenAI model",
		CostLevel:   "medium",
		Provider:    ProviderOpenAI,
	},
	{
		ID:          "gpt-5",
		Name:        "GPT-5",
		Description: "Most advanced OpenAI model with superior quality",
		CostLevel:   "high",
		Provider:    ProviderOpenAI,
	},
}

// Models returns the fixed model registry in display order.
func Models() []ModelInfo {
	out := make([]ModelInfo, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the registry entry for the given model id.
func Lookup(id string) (ModelInfo, bool) {
	for _, m := range registry {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// Router dispatches generation requests to the provider named by the
// registry entry for the requested model.
type Router struct {
	providers    map[string]Provider
	defaultModel string
}

// NewRouter creates a Router over the given provider set, keyed by
// provider name (ProviderOpenAI, ProviderGoogle).
func NewRouter(providers map[string]Provider) *Router {
	return &Router{providers: providers, defaultModel: DefaultModel}
}

// SetDefaultModel overrides the fallback used for requests that leave the
// model unspecified. The id must still resolve against the registry.
func (r *Router) SetDefaultModel(id string) {
	if id != "" {
		r.defaultModel = id
	}
}

// Generate resolves the request's model against the registry and forwards
// the request to the matching provider. An empty model falls back to
// DefaultModel; an unknown one fails with ErrUnsupportedModel before any
// network call.
func (r *Router) Generate(ctx context.Context, req Request) (Response, error) {
	if req.Model == "" {
		req.Model = r.defaultModel
	}

	info, ok := Lookup(req.Model)
	if !ok {
		return Response{}, fmt.Errorf("%w: %s", ErrUnsupportedModel, req.Model)
	}

	p, ok := r.providers[info.Provider]
	if !ok {
		return Response{}, fmt.Errorf("no provider configured for %s", info.Provider)
	}

	return p.Generate(ctx, req)
}
