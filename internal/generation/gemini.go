package generation

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider on the Gemini API.
type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents(req.Messages), contentConfig(req))
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (g *GeminiProvider) Stream(ctx context.Context, req Request, fn func(chunk string) error) error {
	for resp, err := range g.client.Models.GenerateContentStream(ctx, req.Model, contents(req.Messages), contentConfig(req)) {
		if err != nil {
			return err
		}
		if text := resp.Text(); text != "" {
			if err := fn(text); err != nil {
				return err
			}
		}
	}
	return nil
}

func contents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Text, role))
	}
	return out
}

func contentConfig(req Request) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxTokens,
	}
}
