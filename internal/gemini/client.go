// Package gemini wraps the Gemini API behind the two calls the pipeline
// needs: structured JSON generation and freeform text generation.
package gemini

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/config"
)

// Client is the Gemini API client. A nil *Client is valid and reports
// itself as disabled, which keeps the rule-based fallback path free of
// nil checks at every call site.
type Client struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter

	temperature float32
	maxTokens   int32
}

// NewClient creates a Gemini client from AppConfig. When no API key is
// configured it returns (nil, nil): the pipeline then runs rule-only.
func NewClient(ctx context.Context) (*Client, error) {
	cfg := config.AppConfig
	if cfg.GeminiAPIKey == "" {
		log.Println("No GEMINI_API_KEY or GOOGLE_API_KEY set, LLM features disabled")
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	rps := cfg.LLMRPS
	if rps <= 0 {
		rps = 1
	}

	return &Client{
		client:      client,
		model:       cfg.GeminiModel,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		temperature: float32(cfg.LLMTemperature),
		maxTokens:   int32(cfg.LLMMaxTokens),
	}, nil
}

// Enabled reports whether LLM calls are available.
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// GenerateJSON sends a prompt with a system instruction and asks the
// model for an application/json response. The raw response text is
// returned; callers own parsing and validation.
func (c *Client) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("gemini client not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr(c.temperature),
			MaxOutputTokens:   c.maxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// Generate sends a plain prompt and returns the model's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("gemini client not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(c.temperature),
			MaxOutputTokens: c.maxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
