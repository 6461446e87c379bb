package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

const defaultOpenAIModel = "gpt-4o-mini"

type OpenAIConfig struct {
	APIKey    string
	ModelName string
	BaseURL   string // optional, for compatible gateways
}

type OpenAIClient struct {
	client    openai.Client
	modelName string
}

var _ domain.LLMClient = (*OpenAIClient)(nil)

// NewOpenAIClient creates an LLMClient backed by the OpenAI chat completions API.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: api key must be set")
	}

	modelName := cfg.ModelName
	if modelName == "" {
		modelName = defaultOpenAIModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		client:    openai.NewClient(opts...),
		modelName: modelName,
	}, nil
}

// GenerateReply implements domain.LLMClient.
func (c *OpenAIClient) GenerateReply(
	ctx context.Context,
	userMessage string,
	convCtx domain.ConversationContext,
) (string, error) {
	params := buildChatParams(c.modelName, userMessage, convCtx)

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai returned empty text")
	}
	return text, nil
}

func buildChatParams(model, userMessage string, convCtx domain.ConversationContext) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(convCtx.History)+2)
	messages = append(messages, openai.SystemMessage(BuildSystemPrompt(convCtx)))

	for _, m := range convCtx.History {
		if m.Sender == domain.SenderAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(m.Content))
	}
	messages = append(messages, openai.UserMessage(userMessage))

	return openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(model),
		Messages:            messages,
		Temperature:         openai.Float(0.7),
		TopP:                openai.Float(0.9),
		MaxCompletionTokens: openai.Int(1024),
	}
}
