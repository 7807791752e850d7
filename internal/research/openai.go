package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"grantbot/internal/model"
)

// DefaultOpenAIModel is used when no model name is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

const envelopeInstructions = `You answer research questions using current web knowledge.
Reply with a single JSON object and nothing else:
{"answer": <your answer, in the exact format the user asks for>, "sources": [{"title": "page title", "url": "https://..."}]}
List every web page your answer relies on in "sources".`

// OpenAI calls an OpenAI-compatible chat completions endpoint. The model is
// asked to wrap its answer in a JSON envelope that lists its sources.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI model. An empty baseURL selects the public endpoint.
func NewOpenAI(apiKey, modelName, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: modelName}
}

// Generate implements Model.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (Completion, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: envelopeInstructions},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, errors.New("openai chat completion: no choices")
	}
	return parseEnvelope(resp.Choices[0].Message.Content), nil
}

type envelope struct {
	Answer  json.RawMessage `json:"answer"`
	Sources []model.Source  `json:"sources"`
}

// parseEnvelope unpacks {"answer", "sources"}. A string answer is unquoted,
// any other JSON value is kept verbatim. Content that is not an envelope is
// returned as the answer with no citations.
func parseEnvelope(content string) Completion {
	var env envelope
	if err := json.Unmarshal([]byte(stripFences(content)), &env); err != nil || len(env.Answer) == 0 {
		return Completion{Text: strings.TrimSpace(content)}
	}

	text := string(env.Answer)
	var s string
	if err := json.Unmarshal(env.Answer, &s); err == nil {
		text = s
	}
	if text == "null" {
		text = ""
	}
	return Completion{Text: text, Citations: env.Sources}
}
