package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

const defaultVertexModel = "gemini-2.5-flash-lite"

type VertexConfig struct {
	ProjectID string
	Location  string
	ModelName string
}

type VertexClient struct {
	client    *genai.Client
	modelName string
}

var _ domain.LLMClient = (*VertexClient)(nil)

// NewVertexClient creates an LLMClient based on Vertex AI (Gemini).
func NewVertexClient(ctx context.Context, cfg VertexConfig) (*VertexClient, error) {
	if cfg.ProjectID == "" || cfg.Location == "" {
		return nil, fmt.Errorf("vertex: project and location must be set")
	}

	modelName := cfg.ModelName
	if modelName == "" {
		modelName = defaultVertexModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: cfg.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// GenerateReply implements domain.LLMClient using Vertex AI.
func (v *VertexClient) GenerateReply(
	ctx context.Context,
	userMessage string,
	convCtx domain.ConversationContext,
) (string, error) {
	system := BuildSystemPrompt(convCtx)

	contents := vertexContents(convCtx.History, userMessage)

	temp := float32(0.7)
	topP := float32(0.9)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   int32(1024),
	}

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("vertex returned empty text")
	}

	return text, nil
}

// vertexContents maps the transcript onto genai roles and appends the
// current user message.
func vertexContents(history []*domain.Message, userMessage string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		var role genai.Role = genai.RoleUser
		if m.Sender == domain.SenderAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return append(contents, genai.NewContentFromText(userMessage, genai.RoleUser))
}
