package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/compass-mentor/server/internal/mentor/fallback"
	"github.com/compass-mentor/server/internal/mentor/model"
	"github.com/compass-mentor/server/internal/mentor/provider"
	"github.com/compass-mentor/server/internal/mentor/tools"
	logx "github.com/compass-mentor/server/pkg/logger"
)

// Orchestrator is the single entry point of the counseling core. It picks
// a provider per request, injects the gated tool executor into it, walks
// the fallback chain on failure and projects the adapter result into the
// reply envelope.
type Orchestrator struct {
	registry  *tools.Registry
	providers []provider.Provider
	responder *fallback.Responder
	devMode   bool
}

// New builds an orchestrator over the given providers in priority order.
func New(registry *tools.Registry, providers []provider.Provider, responder *fallback.Responder, devMode bool) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		providers: providers,
		responder: responder,
		devMode:   devMode,
	}
}

// gate enforces Rule Zero in front of the registry: no prediction-class
// tool may execute without an exam argument. The refusal is fed back to
// the model as tool output so it asks the student instead of guessing.
type gate struct {
	registry *tools.Registry
}

func (g gate) Execute(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	if tools.PredictionTools[name] {
		var probe struct {
			Exam string `json:"exam"`
		}
		_ = json.Unmarshal(args, &probe)
		if strings.TrimSpace(probe.Exam) == "" {
			logx.Warn().Str("tool", name).Msg("prediction blocked: no exam argument")
			return json.Marshal(tools.ErrorResult{
				Error:          true,
				Blocked:        true,
				Message:        "EXAM PARAMETER IS REQUIRED. A rank has no meaning without knowing which exam it belongs to.",
				RequiredAction: "You MUST ask the user which exam their rank belongs to before making predictions.",
				ValidExams:     tools.ValidExamNames(),
				Hint:           "Ask: 'Which exam does this rank belong to? (JEE Main, JEE Advanced, TS EAMCET, AP EAMCET, BITSAT, etc.)'",
			})
		}
	}
	return g.registry.Execute(ctx, name, args)
}

// Executor returns the gated tool executor adapters converse through.
func (o *Orchestrator) Executor() provider.ToolExecutor {
	return gate{registry: o.registry}
}

// chain resolves the providers to try, in order. An explicitly preferred
// available provider goes first; the rest follow in priority order.
func (o *Orchestrator) chain(preferred string) []provider.Provider {
	var out []provider.Provider
	seen := map[string]bool{}
	if preferred != "" && preferred != "auto" {
		for _, p := range o.providers {
			if p.Name() == preferred && p.Available() {
				out = append(out, p)
				seen[p.Name()] = true
			}
		}
	}
	for _, p := range o.providers {
		if p.Available() && !seen[p.Name()] {
			out = append(out, p)
			seen[p.Name()] = true
		}
	}
	return out
}

// Converse answers one request. It never returns an error for provider
// failures; the deterministic responder is the floor of the chain. The
// only error surfaced is context cancellation.
func (o *Orchestrator) Converse(ctx context.Context, history []model.Turn, userCtx model.UserContext, preferred string) (*model.ReplyEnvelope, error) {
	exec := o.Executor()

	var lastErr error
	for _, p := range o.chain(preferred) {
		res, err := p.Converse(ctx, history, userCtx, exec)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logx.Warn().Err(err).Str("provider", p.Name()).Msg("provider failed, trying next")
			lastErr = err
			continue
		}
		logx.Info().Str("provider", p.Name()).Int("toolCalls", len(res.Calls)).Msg("conversation answered")
		return o.envelope(res, p.Label()), nil
	}

	return o.fallbackEnvelope(ctx, history, userCtx, exec, lastErr)
}

// ConverseDeterministic answers through the rule-based responder only,
// skipping every model provider. Used for quick queries where model
// latency is not worth it.
func (o *Orchestrator) ConverseDeterministic(ctx context.Context, history []model.Turn, userCtx model.UserContext) (*model.ReplyEnvelope, error) {
	res, err := o.responder.Converse(ctx, history, userCtx, o.Executor())
	if err != nil {
		return nil, err
	}
	return o.envelope(res, fallback.ModelName), nil
}

func (o *Orchestrator) fallbackEnvelope(ctx context.Context, history []model.Turn, userCtx model.UserContext, exec provider.ToolExecutor, lastErr error) (*model.ReplyEnvelope, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if lastErr != nil {
		logx.Warn().Err(lastErr).Msg("all providers failed, using rule-based responder")
	} else {
		logx.Info().Msg("no provider available, using rule-based responder")
	}

	res, err := o.responder.Converse(ctx, history, userCtx, exec)
	if err != nil {
		return nil, err
	}
	env := o.envelope(res, fallback.ModelName)
	if o.devMode && lastErr != nil {
		env.Reply = fmt.Sprintf("Error: %s. Please check the backend logs.", lastErr)
		env.Cards = []model.Card{}
		env.FollowUp = "What would you like to know?"
	}
	return env, nil
}

// envelope projects an adapter result into the caller-facing shape:
// cards synthesized from the executed tool calls, follow-up derived from
// the final reply and the analysis.
func (o *Orchestrator) envelope(res *provider.Result, modelUsed string) *model.ReplyEnvelope {
	analysis := res.Analysis
	return &model.ReplyEnvelope{
		Reply:             res.Reply,
		Cards:             synthesizeCards(res.Calls),
		FollowUp:          deriveFollowUp(res.Reply, analysis),
		ActionCard:        res.ActionCard,
		EmotionalAnalysis: &analysis,
		ModelUsed:         modelUsed,
	}
}
