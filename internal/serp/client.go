// Package serp fetches raw search-engine results for a keyword from the
// Serper API. The payload is kept opaque; only the organic entries are
// extracted for downstream analysis.
package serp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://google.serper.dev"
	defaultTimeout = 30 * time.Second
)

// Client communicates with the Serper search API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL
// (for testing).
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// searchRequest is the JSON body for POST /search.
type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

// Search fetches search results for the keyword, requesting up to num
// organic results. The raw provider payload is returned unmodified.
func (c *Client) Search(ctx context.Context, keyword string, num int) (json.RawMessage, error) {
	body, err := json.Marshal(searchRequest{Q: keyword, Num: num})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading search response: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("search: invalid JSON payload")
	}

	return json.RawMessage(data), nil
}

// Organic extracts up to max entries from the payload's "organic" array,
// each kept as raw JSON. A payload without an organic array yields an
// empty slice, not an error.
func Organic(payload json.RawMessage, max int) []json.RawMessage {
	var envelope struct {
		Organic []json.RawMessage `json:"organic"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil
	}
	if len(envelope.Organic) > max {
		return envelope.Organic[:max]
	}
	return envelope.Organic
}
