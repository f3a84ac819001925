package orchestrator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compass-mentor/server/internal/mentor/model"
)

type sinkRecorder struct {
	chunks    []string
	finals    []bool
	completes []*model.ReplyEnvelope
	errors    []string
}

func (s *sinkRecorder) sinks() StreamSinks {
	return StreamSinks{
		Chunk:    func(content string, isFinal bool) { s.chunks = append(s.chunks, content); s.finals = append(s.finals, isFinal) },
		Complete: func(env *model.ReplyEnvelope) { s.completes = append(s.completes, env) },
		Error:    func(message string) { s.errors = append(s.errors, message) },
	}
}

func (s *sinkRecorder) terminalCount() int {
	return len(s.completes) + len(s.errors)
}

func TestStreamStreamingProviderEmitsChunksThenComplete(t *testing.T) {
	p := &fakeStreamingProvider{fakeProvider{
		name: "groq", label: "groq-llama", available: true,
		reply:  "full reply",
		chunks: []string{"full ", "reply"},
	}}

	rec := &sinkRecorder{}
	o := newOrchestrator(false, p)
	err := o.ConverseStream(context.Background(), userTurn("hi"), model.UserContext{}, "auto", rec.sinks())
	require.NoError(t, err)

	assert.Equal(t, []string{"full ", "reply"}, rec.chunks)
	require.Len(t, rec.completes, 1)
	assert.Equal(t, "full reply", rec.completes[0].Reply)
	assert.Equal(t, "groq-llama", rec.completes[0].ModelUsed)
	assert.Equal(t, 1, rec.terminalCount())
}

func TestStreamBufferedProviderDegradesToOneFinalChunk(t *testing.T) {
	p := &fakeProvider{name: "claude", label: "claude-sonnet", available: true, reply: "buffered answer"}

	rec := &sinkRecorder{}
	o := newOrchestrator(false, p)
	err := o.ConverseStream(context.Background(), userTurn("hi"), model.UserContext{}, "auto", rec.sinks())
	require.NoError(t, err)

	assert.Equal(t, []string{"buffered answer"}, rec.chunks)
	assert.Equal(t, []bool{true}, rec.finals)
	require.Len(t, rec.completes, 1)
	assert.Equal(t, 1, rec.terminalCount())
}

func TestStreamFailedProviderFallsToNext(t *testing.T) {
	broken := &fakeStreamingProvider{fakeProvider{
		name: "groq", label: "groq-llama", available: true,
		err:    fmt.Errorf("stream dropped"),
		chunks: []string{"partial "},
	}}
	backup := &fakeProvider{name: "claude", label: "claude-sonnet", available: true, reply: "recovered"}

	rec := &sinkRecorder{}
	o := newOrchestrator(false, broken, backup)
	err := o.ConverseStream(context.Background(), userTurn("hi"), model.UserContext{}, "auto", rec.sinks())
	require.NoError(t, err)

	require.Len(t, rec.completes, 1)
	assert.Equal(t, "recovered", rec.completes[0].Reply)
	assert.Equal(t, "claude-sonnet", rec.completes[0].ModelUsed)
	assert.Equal(t, 1, rec.terminalCount())
}

func TestStreamTotalFallbackStillTerminates(t *testing.T) {
	p := &fakeProvider{name: "groq", available: true, err: fmt.Errorf("down")}

	rec := &sinkRecorder{}
	o := newOrchestrator(false, p)
	err := o.ConverseStream(context.Background(), userTurn("hello"), model.UserContext{}, "auto", rec.sinks())
	require.NoError(t, err)

	require.Len(t, rec.completes, 1)
	assert.Equal(t, "rule-based", rec.completes[0].ModelUsed)
	assert.NotEmpty(t, rec.completes[0].Reply)
	// The fallback reply is delivered as one final chunk before complete.
	require.NotEmpty(t, rec.chunks)
	assert.True(t, rec.finals[len(rec.finals)-1])
	assert.Equal(t, 1, rec.terminalCount())
}

func TestStreamCancelledContextSuppressesTerminalEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &fakeStreamingProvider{fakeProvider{
		name: "groq", available: true,
		err: context.Canceled,
	}}

	rec := &sinkRecorder{}
	o := newOrchestrator(false, p)
	cancel()
	err := o.ConverseStream(ctx, userTurn("hi"), model.UserContext{}, "auto", rec.sinks())
	require.Error(t, err)
	assert.Zero(t, rec.terminalCount())
}
