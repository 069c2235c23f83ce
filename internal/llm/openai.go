package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultLMStudioBaseURL = "http://localhost:1234/v1"
)

// ErrMissingAPIKey is returned when the hosted OpenAI API is selected without a key.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// OpenAIClient implements the Client interface against any OpenAI-compatible
// chat completions API: api.openai.com, LM Studio, vLLM and similar.
type OpenAIClient struct {
	client  openai.Client
	model   string
	baseURL string
}

// NewOpenAIClient creates a new OpenAI-compatible client. An empty baseURL
// targets the hosted OpenAI API, which requires OPENAI_API_KEY. Local
// servers accept any key.
func NewOpenAIClient(model, baseURL string) (*OpenAIClient, error) {
	if strings.TrimSpace(model) == "" {
		model = defaultOpenAIModel
	}

	apiKey := os.Getenv("STUDYDESK_LLM_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	opts := []option.RequestOption{}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
		if apiKey == "" {
			apiKey = "local"
		}
	} else if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	opts = append(opts, option.WithAPIKey(apiKey))

	return &OpenAIClient{
		client:  openai.NewClient(opts...),
		model:   model,
		baseURL: baseURL,
	}, nil
}

// Chat sends messages to the LLM and returns the response.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, error) {
	openaiMessages := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			openaiMessages[i] = openai.SystemMessage(msg.Content)
		case RoleAssistant:
			openaiMessages[i] = openai.AssistantMessage(msg.Content)
		default:
			openaiMessages[i] = openai.UserMessage(msg.Content)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: openaiMessages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// ChatJSON sends messages and parses the response as JSON into the provided type.
func (c *OpenAIClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return decodeJSON(content, result)
}
