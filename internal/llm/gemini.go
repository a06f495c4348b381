package llm

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
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultTimeout = 120 * time.Second
)

// GeminiClient calls the Gemini generateContent REST API.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient creates a client with the given API key.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: geminiDefaultBaseURL,
		httpClient: &http.Client{
			Timeout: geminiDefaultTimeout,
		},
	}
}

// NewGeminiClientWithBaseURL creates a client pointing at a custom base URL
// (for testing).
func NewGeminiClientWithBaseURL(apiKey, baseURL string) *GeminiClient {
	c := NewGeminiClient(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

// geminiRequest is the JSON body for POST /models/{model}:generateContent.
type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends a generateContent request and returns the normalized
// response. Gemini has no separate system role in this call shape, so the
// system prompt is concatenated ahead of the prompt. Token usage is not
// reported.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (Response, error) {
	fullPrompt := req.Prompt
	if req.SystemPrompt != "" {
		fullPrompt = req.SystemPrompt + "\n\n" + req.Prompt
	}

	gr := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: fullPrompt}}},
		},
	}
	if req.JSONResponse {
		gr.GenerationConfig = &geminiGenerationConfig{ResponseMIMEType: "application/json"}
	}

	body, err := json.Marshal(gr)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return Response{}, fmt.Errorf("gemini: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Response{}, fmt.Errorf("decoding gemini response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return Response{}, fmt.Errorf("gemini: empty candidates array")
	}

	return Response{Content: result.Candidates[0].Content.Parts[0].Text}, nil
}
