package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/compass-mentor/server/internal/mentor/model"
	"github.com/compass-mentor/server/internal/mentor/orchestrator"
	logx "github.com/compass-mentor/server/pkg/logger"
)

// chatRequest covers both request modes: full history, or a legacy
// single message with an optional session identifier.
type chatRequest struct {
	Message   string            `json:"message"`
	History   []model.Turn      `json:"history"`
	Context   model.UserContext `json:"context"`
	Model     string            `json:"model"`
	SessionID string            `json:"sessionId"`
}

type chatResponse struct {
	Success           bool                     `json:"success"`
	Reply             string                   `json:"reply"`
	Cards             []model.Card             `json:"cards"`
	FollowUp          string                   `json:"followUp,omitempty"`
	ActionCard        *model.ActionCard        `json:"actionCard,omitempty"`
	EmotionalAnalysis *model.EmotionalAnalysis `json:"emotionalAnalysis,omitempty"`
	Model             string                   `json:"model"`
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

func (s *Server) preferredFor(req *chatRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return s.preferred
}

// chat is POST /api/chat: history mode answers over the supplied turns,
// legacy mode wraps a single message, loading and persisting session
// history when a sessionId is given.
func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Message == "" && len(req.History) == 0 {
		badRequest(c, "Either 'message' or 'history' array is required")
		return
	}
	for _, turn := range req.History {
		if !turn.Role.Valid() {
			badRequest(c, "history contains an invalid role")
			return
		}
	}

	ctx := c.Request.Context()
	history := req.History
	persist := false

	if len(history) == 0 {
		userTurn := model.Turn{Role: model.RoleUser, Content: req.Message}
		if req.SessionID != "" && s.sessions != nil {
			stored, err := s.sessions.LoadHistory(ctx, req.SessionID)
			if err != nil {
				logx.Warn().Err(err).Str("sessionID", req.SessionID).Msg("session load failed, continuing stateless")
			} else {
				history = stored
				persist = true
			}
		}
		history = append(history, userTurn)
	}

	env, err := s.orch.Converse(ctx, history, req.Context, s.preferredFor(&req))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to process the conversation"})
		return
	}

	if persist {
		if err := s.sessions.AddTurn(ctx, req.SessionID, model.Turn{Role: model.RoleUser, Content: req.Message}); err == nil {
			_ = s.sessions.AddTurn(ctx, req.SessionID, model.Turn{Role: model.RoleAssistant, Content: env.Reply})
		}
	}

	c.JSON(http.StatusOK, chatResponse{
		Success:           true,
		Reply:             env.Reply,
		Cards:             env.Cards,
		FollowUp:          env.FollowUp,
		ActionCard:        env.ActionCard,
		EmotionalAnalysis: env.EmotionalAnalysis,
		Model:             env.ModelUsed,
	})
}

// simpleChat is POST /api/chat/simple: rule-based only, no providers.
func (s *Server) simpleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Message == "" {
		badRequest(c, "Message is required")
		return
	}

	history := []model.Turn{{Role: model.RoleUser, Content: req.Message}}
	env, err := s.orch.ConverseDeterministic(c.Request.Context(), history, req.Context)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to process the message"})
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		Success:           true,
		Reply:             env.Reply,
		Cards:             env.Cards,
		FollowUp:          env.FollowUp,
		ActionCard:        env.ActionCard,
		EmotionalAnalysis: env.EmotionalAnalysis,
		Model:             env.ModelUsed,
	})
}

type sseChunk struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	IsFinal bool   `json:"isFinal"`
}

type sseComplete struct {
	Type     string       `json:"type"`
	Reply    string       `json:"reply"`
	Cards    []model.Card `json:"cards"`
	FollowUp string       `json:"followUp"`
}

type sseError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func writeSSE(c *gin.Context, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = c.Writer.WriteString("data: " + string(b) + "\n\n")
	c.Writer.Flush()
}

// chatStream is POST /api/chat/stream: server-sent events carrying chunk
// frames, one complete frame with the final envelope, then the [DONE]
// sentinel.
func (s *Server) chatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if len(req.History) == 0 {
		badRequest(c, "Conversation history is required for streaming")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	done := func() {
		_, _ = c.Writer.WriteString("data: [DONE]\n\n")
		c.Writer.Flush()
	}

	sinks := orchestrator.StreamSinks{
		Chunk: func(content string, isFinal bool) {
			writeSSE(c, sseChunk{Type: "chunk", Content: content, IsFinal: isFinal})
		},
		Complete: func(env *model.ReplyEnvelope) {
			writeSSE(c, sseComplete{Type: "complete", Reply: env.Reply, Cards: env.Cards, FollowUp: env.FollowUp})
			done()
		},
		Error: func(message string) {
			writeSSE(c, sseError{Type: "error", Message: "An error occurred while processing your request"})
			logx.Error().Str("detail", message).Msg("streaming conversation failed")
			done()
		},
	}

	if err := s.orch.ConverseStream(c.Request.Context(), req.History, req.Context, s.preferredFor(&req), sinks); err != nil {
		logx.Warn().Err(err).Msg("stream ended with error")
	}
}
