package research

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"grantbot/internal/model"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini calls the Gemini API with the Google Search grounding tool enabled.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini model. An empty baseURL selects the public endpoint.
func NewGemini(ctx context.Context, apiKey, modelName, baseURL string) (*Gemini, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &Gemini{client: client, model: modelName}, nil
}

// Generate implements Model.
func (g *Gemini) Generate(ctx context.Context, prompt string) (Completion, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return Completion{}, fmt.Errorf("gemini generate content: %w", err)
	}
	return geminiCompletion(resp), nil
}

// geminiCompletion extracts the answer text and the web grounding chunks
// of the first candidate.
func geminiCompletion(resp *genai.GenerateContentResponse) Completion {
	if resp == nil {
		return Completion{}
	}
	comp := Completion{Text: resp.Text()}
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return comp
	}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		comp.Citations = append(comp.Citations, model.Source{
			Title: chunk.Web.Title,
			URL:   chunk.Web.URI,
		})
	}
	return comp
}
