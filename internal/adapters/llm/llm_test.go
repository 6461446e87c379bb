package llm

import (
	"context"
	"testing"

	openai "github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

func sampleContext() domain.ConversationContext {
	return domain.ConversationContext{
		SessionID:   "s1",
		UserRole:    domain.RoleManager,
		UserName:    "Mo",
		CurrentPage: "/manager/dashboard",
		Emotion:     "stressed",
		History: []*domain.Message{
			{Sender: domain.SenderAssistant, Content: "Welcome back!"},
			{Sender: domain.SenderUser, Content: "hi"},
		},
	}
}

func TestBuildSystemPromptByRole(t *testing.T) {
	sys := BuildSystemPrompt(sampleContext())

	assert.Contains(t, sys, "Invensis Assistant")
	assert.Contains(t, sys, "Audience: hiring manager.")
	assert.Contains(t, sys, "The user's name is Mo.")
	assert.Contains(t, sys, "/manager/dashboard")
	assert.Contains(t, sys, "seems stressed")

	visitor := BuildSystemPrompt(domain.ConversationContext{UserRole: "unknown"})
	assert.Contains(t, visitor, "Audience: visitor")
	assert.NotContains(t, visitor, "Context:")
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("what is next?", sampleContext())

	assert.Equal(t, "Conversation so far:\nassistant: Welcome back!\nuser: hi\n\nNew user message:\nwhat is next?", p.User)
	assert.Contains(t, p.System, "hiring manager")

	bare := BuildPrompt("hello", domain.ConversationContext{})
	assert.Equal(t, "New user message:\nhello", bare.User)
}

func TestMockLLM(t *testing.T) {
	reply, err := NewMockLLM().GenerateReply(context.Background(), "where are reports?", domain.ConversationContext{})
	require.NoError(t, err)
	assert.Contains(t, reply, "Thanks there")
	assert.Contains(t, reply, `"where are reports?"`)
}

func TestVertexContentsMapsRoles(t *testing.T) {
	contents := vertexContents(sampleContext().History, "next")

	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleModel), contents[0].Role)
	assert.Equal(t, string(genai.RoleUser), contents[1].Role)
	assert.Equal(t, "next", contents[2].Parts[0].Text)
}

func TestBuildChatParams(t *testing.T) {
	params := buildChatParams("gpt-4o-mini", "next", sampleContext())

	assert.Equal(t, openai.ChatModel("gpt-4o-mini"), params.Model)
	assert.Equal(t, openai.Float(0.7), params.Temperature)
	require.Len(t, params.Messages, 4)
	assert.NotNil(t, params.Messages[0].OfSystem)
	assert.NotNil(t, params.Messages[1].OfAssistant)
	assert.NotNil(t, params.Messages[2].OfUser)
	assert.NotNil(t, params.Messages[3].OfUser)
}

func TestNewClientsValidateConfig(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	assert.Error(t, err)

	c, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, defaultOpenAIModel, c.modelName)

	_, err = NewVertexClient(context.Background(), VertexConfig{})
	assert.Error(t, err)
}
