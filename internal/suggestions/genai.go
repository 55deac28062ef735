package suggestions

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

// contentModel is the part of *genai.Models this package calls.
type contentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAIGenerator asks a Gemini model for suggestions in JSON mode.
type GenAIGenerator struct {
	models contentModel
	model  string
}

// NewGenAIGenerator creates a client for the Gemini API.
func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGenAIGenerator(client.Models, model), nil
}

func newGenAIGenerator(models contentModel, model string) *GenAIGenerator {
	if model == "" {
		model = DefaultModel
	}
	return &GenAIGenerator{models: models, model: model}
}

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"iceBreakerMessages":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"activitySuggestions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"iceBreakerMessages", "activitySuggestions"},
}

func (g *GenAIGenerator) Generate(ctx context.Context, members []MemberProfile) (Suggestions, error) {
	prompt, err := BuildPrompt(members)
	if err != nil {
		return Suggestions{}, err
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.8),
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	})
	if err != nil {
		return Suggestions{}, fmt.Errorf("GenAI generate failed: %w", err)
	}
	return ParseSuggestions(resp.Text())
}
