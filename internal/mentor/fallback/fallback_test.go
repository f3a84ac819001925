package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compass-mentor/server/internal/mentor/model"
)

type recordingExecutor struct {
	name   string
	args   json.RawMessage
	result json.RawMessage
	err    error
}

func (r *recordingExecutor) Execute(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	r.name = name
	r.args = args
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

func converse(t *testing.T, message string, userCtx model.UserContext, exec *recordingExecutor) *struct {
	Reply string
	Calls int
} {
	t.Helper()
	res, err := New().Converse(context.Background(), []model.Turn{{Role: model.RoleUser, Content: message}}, userCtx, exec)
	require.NoError(t, err)
	require.NotEmpty(t, res.Reply)
	require.NotNil(t, res.ActionCard)
	return &struct {
		Reply string
		Calls int
	}{res.Reply, len(res.Calls)}
}

func TestRankWithoutExamAsksForExam(t *testing.T) {
	exec := &recordingExecutor{}
	out := converse(t, "My rank is 100, General category", model.UserContext{}, exec)
	assert.Contains(t, out.Reply, "which exam")
	assert.Zero(t, out.Calls)
	assert.Empty(t, exec.name, "no tool may run without an exam")
}

func TestRankWithExamGroundsPrediction(t *testing.T) {
	exec := &recordingExecutor{result: json.RawMessage(`{"totalFound":7}`)}
	out := converse(t, "My TS EAMCET rank is 5000, OBC, from Telangana", model.UserContext{}, exec)

	assert.Equal(t, "predict_admission", exec.name)
	var args map[string]any
	require.NoError(t, json.Unmarshal(exec.args, &args))
	assert.Equal(t, "TS EAMCET", args["exam"])
	assert.Equal(t, float64(5000), args["rank"])
	assert.Equal(t, "OBC", args["category"])

	assert.Contains(t, out.Reply, "7 matching colleges")
	assert.Equal(t, 1, out.Calls)
}

func TestExamAliasResolution(t *testing.T) {
	exec := &recordingExecutor{result: json.RawMessage(`{"totalFound":3}`)}
	converse(t, "I got 12,000 in eamcet", model.UserContext{}, exec)

	var args map[string]any
	require.NoError(t, json.Unmarshal(exec.args, &args))
	assert.Equal(t, "TS EAMCET", args["exam"])
	assert.Equal(t, float64(12000), args["rank"])
}

func TestExecutorFailureDegradesToTemplate(t *testing.T) {
	exec := &recordingExecutor{err: fmt.Errorf("boom")}
	out := converse(t, "jee main rank 9000", model.UserContext{}, exec)
	assert.NotEmpty(t, out.Reply)
	assert.Zero(t, out.Calls)
}

func TestBlockedResultDegradesToTemplate(t *testing.T) {
	exec := &recordingExecutor{result: json.RawMessage(`{"error":true,"blocked":true}`)}
	out := converse(t, "jee main rank 9000", model.UserContext{}, exec)
	assert.Contains(t, out.Reply, "which exam")
	assert.Zero(t, out.Calls)
}

func TestKeywordTemplates(t *testing.T) {
	exec := &recordingExecutor{}
	assert.Contains(t, converse(t, "what are the fees like", model.UserContext{}, exec).Reply, "Fee structures")
	assert.Contains(t, converse(t, "show me cutoff trends", model.UserContext{}, exec).Reply, "Cutoffs")
	assert.Contains(t, converse(t, "compare NIT Warangal and NIT Trichy", model.UserContext{}, exec).Reply, "compare")
	assert.Contains(t, converse(t, "hello", model.UserContext{}, exec).Reply, "Compass Mentor")
}

func TestContextRankUsedWhenMessageHasNone(t *testing.T) {
	exec := &recordingExecutor{result: json.RawMessage(`{"totalFound":2}`)}
	converse(t, "what can I get with KCET?", model.UserContext{Rank: 8000, Category: "General"}, exec)

	var args map[string]any
	require.NoError(t, json.Unmarshal(exec.args, &args))
	assert.Equal(t, "KCET", args["exam"])
	assert.Equal(t, float64(8000), args["rank"])
}

func TestAlwaysSucceeds(t *testing.T) {
	r := New()
	assert.True(t, r.Available())
	assert.Equal(t, "rule-based", r.Label())

	res, err := r.Converse(context.Background(), nil, model.UserContext{}, &recordingExecutor{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Reply)
}
