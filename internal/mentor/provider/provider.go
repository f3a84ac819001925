package provider

import (
	"context"
	"encoding/json"

	"github.com/compass-mentor/server/internal/mentor/emotion"
	"github.com/compass-mentor/server/internal/mentor/model"
)

// ToolExecutor runs one grounding tool and returns its JSON result. The
// orchestrator injects an executor that enforces the exam gate before any
// prediction tool runs, so no adapter can bypass it.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error)
}

// ExecutedCall records one tool round-trip, in the order calls were
// issued. The orchestrator projects these into cards.
type ExecutedCall struct {
	Name      string
	Arguments json.RawMessage
	Result    json.RawMessage
}

// Result is the adapter's contribution to a ReplyEnvelope. Cards and the
// follow-up line are synthesized by the orchestrator.
type Result struct {
	Reply      string
	Calls      []ExecutedCall
	Analysis   model.EmotionalAnalysis
	ActionCard *model.ActionCard
}

// ChunkSink receives incremental text. final marks fragments of the
// post-tool synthesis round.
type ChunkSink func(content string, final bool)

// Provider is one external model backend.
type Provider interface {
	// Name is the short selection key: groq, claude or gemini.
	Name() string

	// Label identifies the concrete model for the modelUsed field.
	Label() string

	// Available reports whether the credential is present and well formed.
	// The orchestrator never calls Converse on an unavailable provider.
	Available() bool

	// Converse runs the full protocol: emotional analysis, completion with
	// the translated tool catalogue, tool round-trip, synthesis.
	Converse(ctx context.Context, history []model.Turn, userCtx model.UserContext, exec ToolExecutor) (*Result, error)
}

// StreamingProvider additionally delivers text incrementally. Providers
// without native streaming are degraded by the orchestrator to a single
// final chunk.
type StreamingProvider interface {
	Provider
	ConverseStream(ctx context.Context, history []model.Turn, userCtx model.UserContext, exec ToolExecutor, sink ChunkSink) (*Result, error)
}

// analyzeHistory classifies the latest user turn.
func analyzeHistory(history []model.Turn) model.EmotionalAnalysis {
	return emotion.Analyze(model.LastUserContent(history))
}

// composeResult finishes the adapter protocol: micro-steps and the action
// card derived from the analysis and the executed calls.
func composeResult(reply string, calls []ExecutedCall, userCtx model.UserContext, analysis model.EmotionalAnalysis) *Result {
	examKnown := false
	for _, c := range calls {
		if c.Name == "predict_admission" || c.Name == "search_colleges_by_rank" {
			examKnown = true
		}
	}
	steps := emotion.MicroSteps(userCtx, examKnown, len(calls))
	return &Result{
		Reply:      reply,
		Calls:      calls,
		Analysis:   analysis,
		ActionCard: emotion.NewActionCard(analysis, steps),
	}
}
