// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// geminiBaseURL overrides the Gemini API root when non-empty. Package-level
// var for test substitution.
var geminiBaseURL = ""

// GeminiBackend calls the Gemini API through the genai SDK.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini client for apiKey. httpClient may be
// nil.
func NewGeminiBackend(ctx context.Context, apiKey, model string, httpClient *http.Client) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no Gemini API key", ErrAIUnavailable)
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if geminiBaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: geminiBaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

// Infer sends the classification prompt, requesting a JSON response.
func (g *GeminiBackend) Infer(ctx context.Context, r Request) (AIResponse, error) {
	prompt, err := renderPrompt(r)
	if err != nil {
		return AIResponse{}, fmt.Errorf("rendering prompt: %w", err)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return AIResponse{}, fmt.Errorf("%w: calling Gemini API: %v", ErrAIUnavailable, err)
	}

	text := resp.Text()
	if text == "" {
		return AIResponse{}, fmt.Errorf("%w: empty Gemini response", ErrMalformedOutput)
	}
	return DecodeResponse(text)
}
