// Package llm normalizes calls to the configured text-generation providers
// into a single request/response shape. Pipeline stages depend on the
// Generator interface and never on a concrete provider client.
package llm

import "context"

// Request describes a single text-generation call.
type Request struct {
	// Prompt is the user-facing prompt text.
	Prompt string
	// Model is a model id from the registry (see Models).
	Model string
	// SystemPrompt, when non-empty, is passed as a system instruction.
	SystemPrompt string
	// JSONResponse instructs the provider to constrain output to a single
	// JSON object. Parsing is the caller's responsibility.
	JSONResponse bool
}

// Usage reports token counts when the provider returns them.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Response is the normalized provider output.
type Response struct {
	Content string `json:"content"`
	// Usage is nil when the provider does not report token counts.
	Usage *Usage `json:"usage,omitempty"`
}

// Provider is a single text-generation backend.
type Provider interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Generator is what pipeline stages consume. Implemented by Router.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
