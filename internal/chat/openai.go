package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/devpulse/devpulse/internal/contract"
	"github.com/devpulse/devpulse/schema"
	"github.com/hashicorp/go-retryablehttp"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIGenerator answers through an OpenAI-compatible chat completions
// endpoint, with the metric digest supplied as system context.
type OpenAIGenerator struct {
	apiKey  string
	model   string
	baseURL string
	client  *retryablehttp.Client
}

var _ contract.TextGenerator = &OpenAIGenerator{} // Compile-time check

// NewOpenAIGenerator builds a generator from the configured credentials.
func NewOpenAIGenerator(cfg *contract.Config) *OpenAIGenerator {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	baseURL := cfg.OpenAIURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &OpenAIGenerator{
		apiKey:  cfg.OpenAIKey,
		model:   cfg.OpenAIModel,
		baseURL: baseURL,
		client:  client,
	}
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends the question with the digest as system context and returns
// the first completion.
func (g *OpenAIGenerator) Generate(ctx context.Context, question string, digest schema.ChatDigest) (string, error) {
	digestJSON, err := json.Marshal(digest)
	if err != nil {
		return "", fmt.Errorf("failed to encode metric digest: %w", err)
	}

	payload := chatCompletionRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a delivery metrics assistant. Answer using only this DORA metric digest: " + string(digestJSON)},
			{Role: "user", Content: question},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat completion returned status %d: %s", resp.StatusCode, string(snippet))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
