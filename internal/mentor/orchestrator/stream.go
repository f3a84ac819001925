package orchestrator

import (
	"context"

	"github.com/compass-mentor/server/internal/mentor/model"
	"github.com/compass-mentor/server/internal/mentor/provider"
	logx "github.com/compass-mentor/server/pkg/logger"
)

// StreamSinks receive the events of one streamed conversation. Chunk is
// called zero or more times; then exactly one of Complete or Error fires.
// A cancelled context suppresses the terminal event entirely, since the
// client is gone.
type StreamSinks struct {
	Chunk    func(content string, isFinal bool)
	Complete func(env *model.ReplyEnvelope)
	Error    func(message string)
}

// ConverseStream is the streaming counterpart of Converse. Providers
// that cannot stream are degraded to a single final chunk carrying the
// whole reply. The envelope delivered through Complete is authoritative;
// chunks are progressive rendering only.
func (o *Orchestrator) ConverseStream(ctx context.Context, history []model.Turn, userCtx model.UserContext, preferred string, sinks StreamSinks) error {
	exec := o.Executor()

	var lastErr error
	for _, p := range o.chain(preferred) {
		res, err := o.streamProvider(ctx, p, history, userCtx, exec, sinks)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logx.Warn().Err(err).Str("provider", p.Name()).Msg("streaming provider failed, trying next")
			lastErr = err
			continue
		}
		sinks.Complete(o.envelope(res, p.Label()))
		return nil
	}

	env, err := o.fallbackEnvelope(ctx, history, userCtx, exec, lastErr)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sinks.Error(err.Error())
		return err
	}
	sinks.Chunk(env.Reply, true)
	sinks.Complete(env)
	return nil
}

func (o *Orchestrator) streamProvider(ctx context.Context, p provider.Provider, history []model.Turn, userCtx model.UserContext, exec provider.ToolExecutor, sinks StreamSinks) (*provider.Result, error) {
	if sp, ok := p.(provider.StreamingProvider); ok {
		return sp.ConverseStream(ctx, history, userCtx, exec, sinks.Chunk)
	}

	// Buffered-only provider: one final chunk with the whole reply.
	res, err := p.Converse(ctx, history, userCtx, exec)
	if err != nil {
		return nil, err
	}
	sinks.Chunk(res.Reply, true)
	return res, nil
}
