// Package llm adapts the Gemini SDK to the narrow interface the narrative
// service consumes.
package llm

import (
	"context"

	generativeAI "github.com/FACorreiaa/go-genai-sdk/lib"
	"google.golang.org/genai"
)

// ChatClient abstracts the LLM capabilities needed by domain services.
type ChatClient interface {
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Model() string
}

// GeminiChatClient adapts the generativeAI LLM client to the ChatClient interface.
type GeminiChatClient struct {
	client generativeAI.ChatClient
	model  string
}

// NewGeminiChatClient creates a ChatClient backed by Gemini. A non-empty
// model overrides the SDK's default model name.
func NewGeminiChatClient(ctx context.Context, apiKey, model string) (ChatClient, error) {
	client, err := generativeAI.NewGeminiChatClient(ctx, apiKey, model)
	if err != nil {
		return nil, err
	}
	return newChatClient(client, model), nil
}

func newChatClient(client generativeAI.ChatClient, model string) *GeminiChatClient {
	return &GeminiChatClient{client: client, model: model}
}

func (g *GeminiChatClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.client.GenerateResponse(ctx, prompt, config)
}

func (g *GeminiChatClient) Model() string {
	if g.model != "" {
		return g.model
	}
	if g.client == nil {
		return ""
	}
	return g.client.Model()
}
