// Package assistant is the rule-based responder behind the chat widget. It
// classifies each message by intent and answers from the role catalog, the
// candidate directory and, for free-form questions, an optional LLM.
package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/Mo-nish/Invensis-Requiter/internal/app/catalog"
	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

// Options wires the optional collaborators of an Engine.
type Options struct {
	LLM        domain.LLMClient          // nil disables the LLM fallback
	Candidates domain.CandidateDirectory // nil disables data replies
	Now        func() time.Time
}

// Engine implements domain.Responder.
type Engine struct {
	catalog  *catalog.Catalog
	pipeline *Pipeline
}

var _ domain.Responder = (*Engine)(nil)

func NewEngine(cat *catalog.Catalog, opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	stages := []Stage{&rulesStage{catalog: cat, candidates: opts.Candidates, now: now}}
	if opts.LLM != nil {
		stages = append(stages, &llmStage{llm: opts.LLM})
	}
	stages = append(stages,
		&faqStage{catalog: cat},
		&contextualStage{catalog: cat, candidates: opts.Candidates, now: now},
	)

	return &Engine{
		catalog:  cat,
		pipeline: NewPipeline(stages...),
	}
}

func (e *Engine) Respond(ctx context.Context, turn domain.Turn) (*domain.Reply, error) {
	if turn.Session == nil {
		return nil, fmt.Errorf("respond: %w", domain.ErrInvalidInput)
	}
	return e.pipeline.Run(ctx, StageInput{Turn: turn, Intent: AnalyzeIntent(turn.Text)})
}

// QuickAction answers an action id. Unknown ids get the fallback reply.
func (e *Engine) QuickAction(_ context.Context, session *domain.Session, action string) (*domain.Reply, error) {
	if session == nil {
		return nil, fmt.Errorf("quick action: %w", domain.ErrInvalidInput)
	}
	reply, _ := e.catalog.ActionReply(session.UserRole, action, session.UserName)
	return &domain.Reply{
		Content:  reply.Content,
		Type:     domain.TypeQuickAction,
		Metadata: reply.Metadata,
	}, nil
}

func (e *Engine) Welcome(session *domain.Session) string {
	return e.catalog.Welcome(session.UserRole, session.UserName)
}

func (e *Engine) QuickActions(role domain.Role) []domain.QuickAction {
	return e.catalog.QuickActions(role)
}
