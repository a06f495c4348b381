package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kalambet/postforge/internal/llm"
)

// PlanInput parameterizes SEO plan generation. SerpAnalysis is optional;
// when absent, the prompt tells the model there is no analysis rather
// than failing the request.
type PlanInput struct {
	Keyword           string
	SecondaryKeywords []string
	TargetAudience    string
	ContentLength     string
	SerpAnalysis      json.RawMessage
	Model             string
}

// Planner turns a keyword plus optional SERP analysis into an SEO plan.
type Planner struct {
	llm llm.Generator
}

// NewPlanner creates a Planner over the given generator.
func NewPlanner(gen llm.Generator) *Planner {
	return &Planner{llm: gen}
}

// Plan generates the SEO plan and returns it as raw JSON.
func (p *Planner) Plan(ctx context.Context, in PlanInput) (json.RawMessage, error) {
	resp, err := p.llm.Generate(ctx, llm.Request{
		Prompt:       buildPlanPrompt(in),
		Model:        in.Model,
		SystemPrompt: planSystemPrompt,
		JSONResponse: true,
	})
	if err != nil {
		return nil, &StageError{Stage: StageSeoplan, Err: err}
	}

	plan, err := parseJSON(resp.Content)
	if err != nil {
		return nil, &StageError{Stage: StageSeoplan, Err: err}
	}

	slog.Info("seo plan generated", "keyword", in.Keyword)
	return plan, nil
}
