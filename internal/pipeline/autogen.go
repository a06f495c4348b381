package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kalambet/postforge/internal/imagegen"
)

// AutoInput parameterizes a full keyword-to-post run.
type AutoInput struct {
	Keyword           string
	SecondaryKeywords []string
	TargetAudience    string
	ContentLength     string
	Notes             string
	Model             string
}

// AutoResult bundles the outputs of all stages of one run.
type AutoResult struct {
	SerpAnalysis json.RawMessage  `json:"serpAnalysis"`
	Seoplan      json.RawMessage  `json:"seoplan"`
	Content      json.RawMessage  `json:"content"`
	Images       []imagegen.Image `json:"images"`
}

// AutoGenerator chains the analysis, planning, writing, and image stages
// into one run.
type AutoGenerator struct {
	analyzer  *Analyzer
	planner   *Planner
	writer    *Writer
	images    *imagegen.Generator
	imageOpts imagegen.Options
}

// NewAutoGenerator wires the stage implementations together.
func NewAutoGenerator(a *Analyzer, p *Planner, w *Writer, img *imagegen.Generator, opts imagegen.Options) *AutoGenerator {
	return &AutoGenerator{
		analyzer:  a,
		planner:   p,
		writer:    w,
		images:    img,
		imageOpts: opts,
	}
}

// Run executes the stages in order, feeding each output into the next.
// The first stage failure aborts the run; its StageError identifies where
// it happened. The image stage never fails.
func (g *AutoGenerator) Run(ctx context.Context, in AutoInput) (AutoResult, error) {
	serpResult, err := g.analyzer.Analyze(ctx, in.Keyword, in.Model)
	if err != nil {
		return AutoResult{}, err
	}

	plan, err := g.planner.Plan(ctx, PlanInput{
		Keyword:           in.Keyword,
		SecondaryKeywords: in.SecondaryKeywords,
		TargetAudience:    in.TargetAudience,
		ContentLength:     in.ContentLength,
		SerpAnalysis:      serpResult.Analysis,
		Model:             in.Model,
	})
	if err != nil {
		return AutoResult{}, err
	}

	content, err := g.writer.Write(ctx, ContentInput{
		Keyword:           in.Keyword,
		SecondaryKeywords: in.SecondaryKeywords,
		TargetAudience:    in.TargetAudience,
		ContentLength:     in.ContentLength,
		Notes:             in.Notes,
		Seoplan:           plan,
		Model:             in.Model,
	})
	if err != nil {
		return AutoResult{}, err
	}

	prompts := imagegen.DerivePrompts(in.Keyword, contentTitle(content), contentSections(content))
	images := g.images.Generate(ctx, prompts, g.imageOpts)

	slog.Info("auto generation complete", "keyword", in.Keyword, "images", len(images))
	return AutoResult{
		SerpAnalysis: serpResult.Analysis,
		Seoplan:      plan,
		Content:      content,
		Images:       images,
	}, nil
}

// contentTitle pulls the title out of raw content JSON, tolerating any
// shape the model produced.
func contentTitle(content json.RawMessage) string {
	var c struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(content, &c); err != nil {
		return ""
	}
	return c.Title
}

// contentSections pulls the section headings out of raw content JSON.
func contentSections(content json.RawMessage) []imagegen.Section {
	var c struct {
		Sections []imagegen.Section `json:"sections"`
	}
	if err := json.Unmarshal(content, &c); err != nil {
		return nil
	}
	return c.Sections
}
