package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kalambet/postforge/internal/llm"
)

// ContentInput parameterizes content generation. Seoplan is optional the
// same way PlanInput.SerpAnalysis is.
type ContentInput struct {
	Keyword           string
	SecondaryKeywords []string
	TargetAudience    string
	ContentLength     string
	Notes             string
	Seoplan           json.RawMessage
	Model             string
}

// Writer generates the full article for a keyword following an SEO plan.
type Writer struct {
	llm llm.Generator
}

// NewWriter creates a Writer over the given generator.
func NewWriter(gen llm.Generator) *Writer {
	return &Writer{llm: gen}
}

// Write generates the article content and returns it as raw JSON.
func (w *Writer) Write(ctx context.Context, in ContentInput) (json.RawMessage, error) {
	resp, err := w.llm.Generate(ctx, llm.Request{
		Prompt:       buildContentPrompt(in),
		Model:        in.Model,
		SystemPrompt: contentSystemPrompt,
		JSONResponse: true,
	})
	if err != nil {
		return nil, &StageError{Stage: StageContent, Err: err}
	}

	content, err := parseJSON(resp.Content)
	if err != nil {
		return nil, &StageError{Stage: StageContent, Err: err}
	}

	slog.Info("content generated", "keyword", in.Keyword, "length", in.ContentLength)
	return content, nil
}
