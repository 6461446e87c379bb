package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
	"github.com/Mo-nish/Invensis-Requiter/internal/observability"
)

// StageInput is what every stage sees for one user message.
type StageInput struct {
	Turn   domain.Turn
	Intent Intent
}

// Stage tries to answer a message. A nil reply passes the message on to the
// next stage.
type Stage interface {
	Name() string
	Run(ctx context.Context, in StageInput) (*domain.Reply, error)
}

// Pipeline runs stages in order until one produces a reply.
type Pipeline struct {
	stages []Stage
}

func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes the stages sequentially. A failing stage is logged and
// skipped so that a broken fallback never hides the rule-based answers.
func (p *Pipeline) Run(ctx context.Context, in StageInput) (*domain.Reply, error) {
	if len(p.stages) == 0 {
		return nil, fmt.Errorf("no stages configured in pipeline")
	}

	log := observability.LoggerFromContext(ctx).With().
		Str("session_id", string(in.Turn.Session.ID)).
		Str("intent", string(in.Intent)).
		Logger()

	var lastErr error
	for _, st := range p.stages {
		start := time.Now()

		reply, err := st.Run(ctx, in)
		elapsed := time.Since(start)
		if err != nil {
			log.Warn().Err(err).Str("stage", st.Name()).Dur("elapsed", elapsed).Msg("stage failed")
			lastErr = fmt.Errorf("stage %s failed: %w", st.Name(), err)
			continue
		}
		if reply == nil {
			continue
		}

		log.Debug().Str("stage", st.Name()).Dur("elapsed", elapsed).Msg("stage answered")
		return reply, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("no stage produced a reply")
}
