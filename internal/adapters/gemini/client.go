// Package gemini implements the TextGenerator capability on the Gemini API.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/barfet/wellbeing-check-in-agent/pkg/domain"
)

// Client implements ports.TextGenerator using Google's Gemini models.
type Client struct {
	client       *genai.Client
	defaultModel string
}

// Config holds the credentials and model selection for the client.
type Config struct {
	APIKey string
	// Model is used when a call carries no model hint.
	Model string
}

// New creates a Gemini-backed generator. A missing API key does not fail
// construction; Generate reports domain.ErrGeneratorUnavailable instead, so
// the orchestrator's per-step fallbacks apply.
func New(ctx context.Context, cfg Config) (*Client, error) {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	c := &Client{defaultModel: model}
	if cfg.APIKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

// Generate implements ports.TextGenerator. An empty response text is returned
// as-is with a nil error: steps distinguish empty successes from failures.
func (c *Client) Generate(ctx context.Context, prompt string, modelHint string) (string, error) {
	if c.client == nil {
		return "", domain.ErrGeneratorUnavailable
	}

	model := c.defaultModel
	if modelHint != "" {
		model = modelHint
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	res, err := c.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return res.Text(), nil
}
