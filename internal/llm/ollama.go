package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaClient implements the Client interface using a local Ollama server.
type OllamaClient struct {
	client  *ollama.LLM
	model   string
	baseURL string
}

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(model, baseURL string) (*OllamaClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("ollama model is required")
	}
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	client, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}

	return &OllamaClient{
		client:  client,
		model:   model,
		baseURL: baseURL,
	}, nil
}

// Chat sends messages to the LLM and returns the response.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	return c.generate(ctx, messages)
}

// ChatJSON asks Ollama for JSON output and decodes it into result.
func (c *OllamaClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.generate(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return err
	}
	return decodeJSON(content, result)
}

func (c *OllamaClient) generate(ctx context.Context, messages []Message, opts ...llms.CallOption) (string, error) {
	opts = append([]llms.CallOption{llms.WithModel(c.model)}, opts...)
	resp, err := c.client.GenerateContent(ctx, toLangChainMessages(messages), opts...)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}
	return resp.Choices[0].Content, nil
}

func toLangChainMessages(messages []Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		switch strings.ToLower(msg.Role) {
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		result = append(result, llms.TextParts(role, msg.Content))
	}
	return result
}
