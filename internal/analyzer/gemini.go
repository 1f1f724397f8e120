package analyzer

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

type GeminiCompleter struct {
	client *genai.Client
	model  string
}

// NewGeminiCompleter talks to the Gemini API with an API key.
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	return newGeminiCompleter(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

// NewVertexCompleter talks to Gemini through Vertex AI using application
// default credentials.
func NewVertexCompleter(ctx context.Context, project, location, model string) (*GeminiCompleter, error) {
	return newGeminiCompleter(ctx, &genai.ClientConfig{
		Project:  project,
		Location: location,
		Backend:  genai.BackendVertexAI,
	}, model)
}

func newGeminiCompleter(ctx context.Context, cfg *genai.ClientConfig, model string) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client failed: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiCompleter{client: client, model: model}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, system, prompt string) (Response, error) {
	var config *genai.GenerateContentConfig
	if system != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: system}},
			},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return Response{}, fmt.Errorf("gemini generate content failed: %w", err)
	}
	return fromGenAI(resp), nil
}

func fromGenAI(resp *genai.GenerateContentResponse) Response {
	if resp == nil {
		return Response{}
	}

	var out Response
	for _, c := range resp.Candidates {
		var cand Candidate
		if c != nil && c.Content != nil {
			for _, p := range c.Content.Parts {
				if p != nil && !p.Thought {
					cand.Parts = append(cand.Parts, p.Text)
				}
			}
		}
		out.Candidates = append(out.Candidates, cand)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil && resp.Candidates[0].Content != nil {
		out.Text = resp.Text()
	}
	return out
}
