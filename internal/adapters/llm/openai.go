package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"roombooking/internal/domain"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIGenerator talks to any OpenAI compatible chat completions endpoint:
// OpenAI itself, OpenRouter or a local Ollama server.
type OpenAIGenerator struct {
	client   chatClient
	model    string
	jsonMode bool
}

// NewOpenAIGenerator returns a generator for the endpoint at baseURL. An empty baseURL
// uses api.openai.com. jsonMode requests a JSON object response where the endpoint supports it.
func NewOpenAIGenerator(apiKey, baseURL, model string, jsonMode bool) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg), model: model, jsonMode: jsonMode}
}

// Generate sends the system prompt, the history in order and the new message as one request.
func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: chatMessages(systemPrompt, history, message),
	}
	if g.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func chatMessages(systemPrompt string, history []domain.ChatTurn, message string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	for _, turn := range history {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		role := openai.ChatMessageRoleUser
		if turn.Role == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
}
