// Package imagegen generates header and infographic images for a post via
// the Pollinations image endpoint.
package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultBaseURL   = "https://image.pollinations.ai"
	perPromptTimeout = 30 * time.Second
)

// Options are shared parameters for one image batch.
type Options struct {
	Width  int
	Height int
	Model  string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1024
	}
	if o.Height <= 0 {
		o.Height = 1024
	}
	if o.Model == "" {
		o.Model = "flux"
	}
	return o
}

// Image is one generated image. URL is a data URI on success, or a direct
// provider URL the client can load lazily when generation failed here.
type Image struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Generator requests generated images from the image provider.
type Generator struct {
	baseURL    string
	httpClient *http.Client
}

// NewGenerator creates a Generator against the default provider endpoint.
func NewGenerator() *Generator {
	return &Generator{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
}

// NewGeneratorWithBaseURL creates a generator pointing at a custom base URL
// (for testing).
func NewGeneratorWithBaseURL(baseURL string) *Generator {
	g := NewGenerator()
	g.baseURL = strings.TrimRight(baseURL, "/")
	return g
}

// Generate requests one image per prompt. Individual failures never abort
// the batch: a failed prompt yields a fallback entry whose URL points at
// the provider directly with the same parameters. The result always has
// exactly len(prompts) entries, ordered by input index. Prompts are
// fetched concurrently (bounded) since the calls are independent.
func (g *Generator) Generate(ctx context.Context, prompts []string, opts Options) []Image {
	opts = opts.withDefaults()
	results := make([]Image, len(prompts))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4) // Bound concurrency to stay polite to the free endpoint.

	for i, prompt := range prompts {
		eg.Go(func() error {
			results[i] = g.generateOne(egCtx, prompt, opts)
			return nil
		})
	}

	// Workers never return errors; failures become fallback entries.
	eg.Wait()
	return results
}

func (g *Generator) generateOne(ctx context.Context, prompt string, opts Options) Image {
	img := Image{
		Prompt: prompt,
		Width:  opts.Width,
		Height: opts.Height,
	}

	ctx, cancel := context.WithTimeout(ctx, perPromptTimeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s/prompt/%s?%s", g.baseURL, url.PathEscape(prompt), url.Values{
		"width":   {fmt.Sprintf("%d", opts.Width)},
		"height":  {fmt.Sprintf("%d", opts.Height)},
		"model":   {opts.Model},
		"nologo":  {"true"},
		"private": {"true"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		slog.Warn("image generation failed", "prompt", prompt, "error", err)
		img.URL = g.fallbackURL(prompt, opts)
		return img
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		slog.Warn("image generation failed", "prompt", prompt, "error", err)
		img.URL = g.fallbackURL(prompt, opts)
		return img
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("image generation failed", "prompt", prompt, "status", resp.StatusCode)
		img.URL = g.fallbackURL(prompt, opts)
		return img
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("image generation failed", "prompt", prompt, "error", err)
		img.URL = g.fallbackURL(prompt, opts)
		return img
	}

	img.URL = "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	return img
}

// fallbackURL builds a direct provider link encoding the same parameters,
// so the client can still render the image even though we never fetched it.
func (g *Generator) fallbackURL(prompt string, opts Options) string {
	return fmt.Sprintf("%s/prompt/%s?width=%d&height=%d&model=%s&nologo=true",
		g.baseURL, url.PathEscape(prompt), opts.Width, opts.Height, opts.Model)
}
