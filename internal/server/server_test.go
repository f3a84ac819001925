package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compass-mentor/server/internal/mentor/fallback"
	"github.com/compass-mentor/server/internal/mentor/model"
	"github.com/compass-mentor/server/internal/mentor/orchestrator"
	"github.com/compass-mentor/server/internal/mentor/repo"
	"github.com/compass-mentor/server/internal/mentor/tools"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, sessions model.SessionRepository) *gin.Engine {
	t.Helper()
	orch := orchestrator.New(tools.NewRegistry(tools.NewDataset()), nil, fallback.New(), false)
	return New(orch, sessions, "auto").Router("http://localhost:5173")
}

func doJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthcheck(t *testing.T) {
	router := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestChatRequiresMessageOrHistory(t *testing.T) {
	router := newTestServer(t, nil)
	w := doJSON(t, router, "/api/chat", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "'message' or 'history'")
}

func TestChatRejectsInvalidRole(t *testing.T) {
	router := newTestServer(t, nil)
	w := doJSON(t, router, "/api/chat", `{"history":[{"role":"wizard","content":"hi"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid role")
}

func TestChatAnswersWithRuleBasedFloor(t *testing.T) {
	router := newTestServer(t, nil)
	w := doJSON(t, router, "/api/chat", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Reply)
	assert.Equal(t, "rule-based", resp.Model)
	assert.NotNil(t, resp.Cards)
}

func TestChatRankWithoutExamAsksForExam(t *testing.T) {
	router := newTestServer(t, nil)
	w := doJSON(t, router, "/api/chat", `{"history":[{"role":"user","content":"My rank is 100, General category"}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Reply, "exam")
	assert.Empty(t, resp.Cards)
}

func TestSimpleChatRequiresMessage(t *testing.T) {
	router := newTestServer(t, nil)
	w := doJSON(t, router, "/api/chat/simple", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Message is required")
}

func TestSimpleChatAnswers(t *testing.T) {
	router := newTestServer(t, nil)
	w := doJSON(t, router, "/api/chat/simple", `{"message":"My TS EAMCET rank is 5000, OBC category"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "rule-based", resp.Model)
	assert.NotEmpty(t, resp.Cards, "a grounded prediction should yield cards")
	assert.Equal(t, "prediction_summary", resp.Cards[0].Type)
}

func TestStreamRequiresHistory(t *testing.T) {
	router := newTestServer(t, nil)
	w := doJSON(t, router, "/api/chat/stream", `{"message":"hello"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "history is required")
}

func TestStreamEmitsCompleteAndDone(t *testing.T) {
	router := newTestServer(t, nil)
	w := doJSON(t, router, "/api/chat/stream", `{"history":[{"role":"user","content":"hello"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")

	body := w.Body.String()
	frames := parseSSE(t, body)

	var chunks, completes int
	for _, f := range frames {
		switch f.Type {
		case "chunk":
			chunks++
		case "complete":
			completes++
			assert.NotEmpty(t, f.Reply)
		}
	}
	assert.GreaterOrEqual(t, chunks, 1)
	assert.Equal(t, 1, completes)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(body), "data: [DONE]"))
}

type sseFrame struct {
	Type     string       `json:"type"`
	Content  string       `json:"content"`
	IsFinal  bool         `json:"isFinal"`
	Reply    string       `json:"reply"`
	Cards    []model.Card `json:"cards"`
	FollowUp string       `json:"followUp"`
	Message  string       `json:"message"`
}

func parseSSE(t *testing.T, body string) []sseFrame {
	t.Helper()
	var frames []sseFrame
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			continue
		}
		var f sseFrame
		require.NoError(t, json.Unmarshal([]byte(payload), &f))
		frames = append(frames, f)
	}
	return frames
}

func TestLegacySessionModePersistsTurns(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := repo.NewRedisSessionRepository(client, time.Minute, 20)

	router := newTestServer(t, sessions)

	w := doJSON(t, router, "/api/chat", `{"message":"hello","sessionId":"sess-1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	n, err := sessions.TurnCount(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "user and assistant turns stored")

	w = doJSON(t, router, "/api/chat", `{"message":"and the fees?","sessionId":"sess-1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	turns, err := sessions.LoadHistory(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, model.RoleUser, turns[0].Role)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, model.RoleAssistant, turns[1].Role)
	assert.Equal(t, "and the fees?", turns[2].Content)
}
