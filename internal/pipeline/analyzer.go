package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kalambet/postforge/internal/llm"
	"github.com/kalambet/postforge/internal/serp"
	"github.com/kalambet/postforge/internal/store"
)

const (
	// serpCacheTTL is how long a stored analysis stays fresh for a keyword.
	serpCacheTTL = 24 * time.Hour
	// maxOrganicResults bounds both the search request and the number of
	// organic entries embedded in the analysis prompt.
	maxOrganicResults = 10
)

// Analyzer fetches search results for a keyword and derives an SEO
// analysis from them, caching the pair per keyword.
type Analyzer struct {
	search Searcher
	llm    llm.Generator
	store  store.Store
	ttl    time.Duration
	now    func() time.Time
}

// NewAnalyzer creates an Analyzer with the default cache TTL.
func NewAnalyzer(search Searcher, gen llm.Generator, st store.Store) *Analyzer {
	return &Analyzer{
		search: search,
		llm:    gen,
		store:  st,
		ttl:    serpCacheTTL,
		now:    time.Now,
	}
}

// Analyze returns a fresh-enough cached result for the keyword, or runs
// the full fetch-and-analyze path and stores the outcome. Fetch and
// analysis succeed or fail together: nothing is cached on a partial
// failure, so a retry starts clean.
func (a *Analyzer) Analyze(ctx context.Context, keyword, model string) (store.SerpResult, error) {
	cached, err := a.store.LatestSerpResult(keyword)
	switch {
	case err == nil:
		if age := a.now().Sub(cached.CreatedAt); age < a.ttl {
			slog.Debug("serp cache hit", "keyword", keyword, "age", age)
			return cached, nil
		}
	case !errors.Is(err, store.ErrNotFound):
		return store.SerpResult{}, &StageError{Stage: StageSerpAnalysis, Err: fmt.Errorf("loading cached result: %w", err)}
	}

	payload, err := a.search.Search(ctx, keyword, maxOrganicResults)
	if err != nil {
		return store.SerpResult{}, &StageError{Stage: StageSerpAnalysis, Err: err}
	}

	organic := serp.Organic(payload, maxOrganicResults)
	resp, err := a.llm.Generate(ctx, llm.Request{
		Prompt:       buildAnalysisPrompt(keyword, organic),
		Model:        model,
		SystemPrompt: analysisSystemPrompt,
		JSONResponse: true,
	})
	if err != nil {
		return store.SerpResult{}, &StageError{Stage: StageSerpAnalysis, Err: err}
	}

	analysis, err := parseJSON(resp.Content)
	if err != nil {
		return store.SerpResult{}, &StageError{Stage: StageSerpAnalysis, Err: err}
	}

	result, err := a.store.CreateSerpResult(store.SerpResult{
		Keyword:   keyword,
		Results:   payload,
		Analysis:  analysis,
		CreatedAt: a.now().UTC(),
	})
	if err != nil {
		return store.SerpResult{}, &StageError{Stage: StageSerpAnalysis, Err: fmt.Errorf("storing result: %w", err)}
	}

	slog.Info("serp analysis complete", "keyword", keyword, "organic_results", len(organic))
	return result, nil
}
