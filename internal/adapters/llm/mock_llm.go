package llm

import (
	"context"
	"fmt"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

// MockLLM answers deterministically; used in local mode and tests.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateReply(_ context.Context, prompt string, convCtx domain.ConversationContext) (string, error) {
	who := convCtx.UserName
	if who == "" {
		who = "there"
	}
	return fmt.Sprintf("Thanks %s, I noted your question: %q. I'll point you to the right page in the portal.", who, prompt), nil
}
