// Package pipeline implements the generation stages that turn a keyword
// into a published-ready post: SERP analysis, SEO planning, and content
// writing. Stage outputs are opaque JSON from the model; stages validate
// that the output parses but never interpret its internals.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Stage names carried by StageError, used by callers to pick an
// appropriate failure summary.
const (
	StageSerpAnalysis = "serp_analysis"
	StageSeoplan      = "seo_plan"
	StageContent      = "content"
)

// StageError wraps a failure with the pipeline stage it happened in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Searcher fetches raw search results for a keyword. Implemented by
// serp.Client.
type Searcher interface {
	Search(ctx context.Context, keyword string, num int) (json.RawMessage, error)
}

// parseJSON validates that model output is a single well-formed JSON value
// and returns it untouched.
func parseJSON(content string) (json.RawMessage, error) {
	raw := json.RawMessage(strings.TrimSpace(content))
	if len(raw) == 0 || !json.Valid(raw) {
		return nil, fmt.Errorf("model returned invalid JSON")
	}
	return raw, nil
}
