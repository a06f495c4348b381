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
	openAIDefaultBaseURL = "https://api.openai.com/v1"
	openAIDefaultTimeout = 120 * time.Second
)

// OpenAIClient calls the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIClient creates a client with the given API key.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: openAIDefaultBaseURL,
		httpClient: &http.Client{
			Timeout: openAIDefaultTimeout,
		},
	}
}

// NewOpenAIClientWithBaseURL creates a client pointing at a custom base URL
// (for testing).
func NewOpenAIClientWithBaseURL(apiKey, baseURL string) *OpenAIClient {
	c := NewOpenAIClient(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

// openAIChatRequest is the JSON body for POST /chat/completions.
type openAIChatRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

// openAIChatResponse is the subset of the completion response we consume.
type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate sends a chat completion request and returns the normalized
// response. When req.JSONResponse is set, response_format json_object is
// requested so the model emits a single JSON object.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (Response, error) {
	var messages []openAIMessage
	if req.SystemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})

	cr := openAIChatRequest{
		Model:    req.Model,
		Messages: messages,
	}
	if req.JSONResponse {
		cr.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(cr)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return Response{}, fmt.Errorf("openai: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Response{}, fmt.Errorf("decoding openai response: %w", err)
	}

	if len(result.Choices) == 0 {
		return Response{}, fmt.Errorf("openai: empty choices array")
	}

	out := Response{Content: result.Choices[0].Message.Content}
	if result.Usage != nil {
		out.Usage = &Usage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		}
	}
	return out, nil
}
