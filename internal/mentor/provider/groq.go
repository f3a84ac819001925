package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	errx "github.com/compass-mentor/server/internal/core/error"
	"github.com/compass-mentor/server/internal/mentor/model"
	"github.com/compass-mentor/server/internal/mentor/tools"
	logx "github.com/compass-mentor/server/pkg/logger"
)

const maxResponseBody = 10 << 20

// Groq speaks the OpenAI-compatible chat completions dialect, buffered
// and streamed.
type Groq struct {
	cfg       model.GroqConfig
	catalogue []*tools.Definition
	client    *http.Client
}

func NewGroq(cfg model.GroqConfig, catalogue []*tools.Definition) *Groq {
	return &Groq{
		cfg:       cfg,
		catalogue: catalogue,
		client:    &http.Client{Timeout: 120 * time.Second},
	}
}

func (g *Groq) Name() string  { return "groq" }
func (g *Groq) Label() string { return "groq-" + g.cfg.Model }

// Available requires a plausible Groq key: gsk_ prefix and enough length
// to not be a placeholder.
func (g *Groq) Available() bool {
	return len(g.cfg.APIKey) > 20 && strings.HasPrefix(g.cfg.APIKey, "gsk_")
}

// ================ OpenAI-compatible wire types ================

type oaMessage struct {
	Role       string       `json:"role"`
	Content    string       `json:"content"`
	ToolCalls  []oaToolCall `json:"tool_calls,omitempty"`
	ToolCallID string       `json:"tool_call_id,omitempty"`
	Name       string       `json:"name,omitempty"`
}

type oaToolCall struct {
	Index    *int       `json:"index,omitempty"`
	ID       string     `json:"id,omitempty"`
	Type     string     `json:"type,omitempty"`
	Function oaFunction `json:"function"`
}

type oaFunction struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

type oaTool struct {
	Type     string       `json:"type"`
	Function oaToolSchema `json:"function"`
}

type oaToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type oaRequest struct {
	Model       string      `json:"model"`
	Messages    []oaMessage `json:"messages"`
	Temperature float32     `json:"temperature"`
	MaxTokens   int         `json:"max_tokens"`
	TopP        float32     `json:"top_p,omitempty"`
	Tools       []oaTool    `json:"tools,omitempty"`
	ToolChoice  string      `json:"tool_choice,omitempty"`
	Stream      bool        `json:"stream,omitempty"`
}

type oaResponse struct {
	Choices []struct {
		Message      oaMessage `json:"message"`
		FinishReason string    `json:"finish_reason"`
	} `json:"choices"`
	Error *oaError `json:"error,omitempty"`
}

type oaStreamChunk struct {
	Choices []struct {
		Delta        oaMessage `json:"delta"`
		FinishReason string    `json:"finish_reason"`
	} `json:"choices"`
	Error *oaError `json:"error,omitempty"`
}

type oaError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// translateOpenAITools renders the neutral catalogue in the OpenAI
// function-calling schema. Shared with any future OpenAI-dialect backend.
func translateOpenAITools(catalogue []*tools.Definition) []oaTool {
	out := make([]oaTool, 0, len(catalogue))
	for _, def := range catalogue {
		properties := make(map[string]any, len(def.Parameters))
		var required []string
		for name, p := range def.Parameters {
			prop := map[string]any{
				"type":        p.Type,
				"description": p.Description,
			}
			if p.Type == "array" {
				prop["items"] = map[string]any{"type": p.Items}
			}
			properties[name] = prop
			if p.Required {
				required = append(required, name)
			}
		}
		params := map[string]any{
			"type":       "object",
			"properties": properties,
		}
		if len(required) > 0 {
			params["required"] = required
		}
		out = append(out, oaTool{
			Type: "function",
			Function: oaToolSchema{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  params,
			},
		})
	}
	return out
}

func (g *Groq) buildMessages(history []model.Turn, userCtx model.UserContext, analysis model.EmotionalAnalysis) []oaMessage {
	msgs := make([]oaMessage, 0, len(history)+1)
	msgs = append(msgs, oaMessage{
		Role:    "system",
		Content: groqPersona + contextSummary(userCtx) + moodLine(analysis),
	})
	for _, turn := range history {
		msgs = append(msgs, oaMessage{Role: string(turn.Role), Content: turn.Content})
	}
	return msgs
}

func (g *Groq) Converse(ctx context.Context, history []model.Turn, userCtx model.UserContext, exec ToolExecutor) (*Result, error) {
	if !g.Available() {
		return nil, errx.WrapProvider("groq", fmt.Errorf("api key not configured"))
	}

	analysis := analyzeHistory(history)
	logx.Debug().Str("emotion", string(analysis.Emotion)).Int("turns", len(history)).Msg("groq: processing conversation")

	msgs := g.buildMessages(history, userCtx, analysis)
	resp, err := g.complete(ctx, oaRequest{
		Model:       g.cfg.Model,
		Messages:    msgs,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
		TopP:        g.cfg.TopP,
		Tools:       translateOpenAITools(g.catalogue),
		ToolChoice:  "auto",
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errx.WrapProvider("groq", fmt.Errorf("empty choices in response"))
	}

	first := resp.Choices[0].Message
	if len(first.ToolCalls) == 0 {
		return composeResult(first.Content, nil, userCtx, analysis), nil
	}

	msgs, calls, err := g.runTools(ctx, msgs, first, exec)
	if err != nil {
		return nil, err
	}

	// Synthesis round carries the tool results, no tool schema.
	final, err := g.complete(ctx, oaRequest{
		Model:       g.cfg.Model,
		Messages:    msgs,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
		TopP:        g.cfg.TopP,
	})
	if err != nil {
		return nil, err
	}
	if len(final.Choices) == 0 {
		return nil, errx.WrapProvider("groq", fmt.Errorf("empty choices in synthesis response"))
	}
	return composeResult(final.Choices[0].Message.Content, calls, userCtx, analysis), nil
}

// runTools appends the assistant tool-call turn, executes each call
// through the gated executor and appends the tool results.
func (g *Groq) runTools(ctx context.Context, msgs []oaMessage, assistant oaMessage, exec ToolExecutor) ([]oaMessage, []ExecutedCall, error) {
	msgs = append(msgs, assistant)
	calls := make([]ExecutedCall, 0, len(assistant.ToolCalls))
	for _, tc := range assistant.ToolCalls {
		logx.Debug().Str("tool", tc.Function.Name).Msg("groq: executing tool")
		result, err := exec.Execute(ctx, tc.Function.Name, json.RawMessage(tc.Function.Arguments))
		if err != nil {
			return nil, nil, errx.WrapProvider("groq", err)
		}
		calls = append(calls, ExecutedCall{
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
			Result:    result,
		})
		msgs = append(msgs, oaMessage{
			Role:       "tool",
			ToolCallID: tc.ID,
			Name:       tc.Function.Name,
			Content:    string(result),
		})
	}
	return msgs, calls, nil
}

func (g *Groq) complete(ctx context.Context, reqBody oaRequest) (*oaResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpResp, err := g.post(ctx, body)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, errx.WrapProvider("groq", fmt.Errorf("read response: %w", err))
	}
	if httpResp.StatusCode != http.StatusOK {
		logx.Warn().Int("status", httpResp.StatusCode).Str("body", truncate(string(data), 300)).Msg("groq: request failed")
		return nil, errx.WrapProvider("groq", fmt.Errorf("status %d: %s", httpResp.StatusCode, truncate(string(data), 300)))
	}

	var resp oaResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errx.WrapProvider("groq", fmt.Errorf("decode response: %w", err))
	}
	if resp.Error != nil {
		return nil, errx.WrapProvider("groq", fmt.Errorf("%s: %s", resp.Error.Type, resp.Error.Message))
	}
	return &resp, nil
}

func (g *Groq) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(g.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errx.WrapProvider("groq", err)
	}
	return resp, nil
}

// ================ streaming ================

func (g *Groq) ConverseStream(ctx context.Context, history []model.Turn, userCtx model.UserContext, exec ToolExecutor, sink ChunkSink) (*Result, error) {
	if !g.Available() {
		return nil, errx.WrapProvider("groq", fmt.Errorf("api key not configured"))
	}

	analysis := analyzeHistory(history)
	msgs := g.buildMessages(history, userCtx, analysis)

	text, toolCalls, err := g.streamOnce(ctx, oaRequest{
		Model:       g.cfg.Model,
		Messages:    msgs,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
		TopP:        g.cfg.TopP,
		Tools:       translateOpenAITools(g.catalogue),
		ToolChoice:  "auto",
		Stream:      true,
	}, func(content string) { sink(content, false) })
	if err != nil {
		return nil, err
	}

	if len(toolCalls) == 0 {
		return composeResult(text, nil, userCtx, analysis), nil
	}

	assistant := oaMessage{Role: "assistant", Content: text, ToolCalls: toolCalls}
	msgs, calls, err := g.runTools(ctx, msgs, assistant, exec)
	if err != nil {
		return nil, err
	}

	finalText, _, err := g.streamOnce(ctx, oaRequest{
		Model:       g.cfg.Model,
		Messages:    msgs,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
		TopP:        g.cfg.TopP,
		Stream:      true,
	}, func(content string) { sink(content, true) })
	if err != nil {
		return nil, err
	}
	return composeResult(finalText, calls, userCtx, analysis), nil
}

// streamOnce issues one streaming completion, forwarding content deltas
// and assembling fragmented tool calls by their declared index. Fragments
// never arrive whole: a call's id and name come in the first delta, the
// argument payload accumulates across the rest.
func (g *Groq) streamOnce(ctx context.Context, reqBody oaRequest, onContent func(string)) (string, []oaToolCall, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("marshal request: %w", err)
	}
	httpResp, err := g.post(ctx, body)
	if err != nil {
		return "", nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
		return "", nil, errx.WrapProvider("groq", fmt.Errorf("status %d: %s", httpResp.StatusCode, truncate(string(data), 300)))
	}

	var full strings.Builder
	accumulator := map[int]*oaToolCall{}
	maxIndex := -1

	scanner := bufio.NewScanner(httpResp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk oaStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			logx.Warn().Err(err).Msg("groq: skipping malformed stream chunk")
			continue
		}
		if chunk.Error != nil {
			return "", nil, errx.WrapProvider("groq", fmt.Errorf("%s: %s", chunk.Error.Type, chunk.Error.Message))
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta
		if delta.Content != "" {
			full.WriteString(delta.Content)
			onContent(delta.Content)
		}
		for _, tc := range delta.ToolCalls {
			if tc.Index == nil {
				continue
			}
			idx := *tc.Index
			acc, ok := accumulator[idx]
			if !ok {
				acc = &oaToolCall{Type: "function"}
				accumulator[idx] = acc
				if idx > maxIndex {
					maxIndex = idx
				}
			}
			if tc.ID != "" {
				acc.ID = tc.ID
			}
			if tc.Function.Name != "" {
				acc.Function.Name = tc.Function.Name
			}
			acc.Function.Arguments += tc.Function.Arguments
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, errx.WrapProvider("groq", fmt.Errorf("read stream: %w", err))
	}

	var toolCalls []oaToolCall
	for i := 0; i <= maxIndex; i++ {
		acc, ok := accumulator[i]
		if !ok || acc.Function.Name == "" {
			continue
		}
		if acc.ID == "" {
			acc.ID = "call_" + uuid.NewString()
		}
		toolCalls = append(toolCalls, *acc)
	}
	return full.String(), toolCalls, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
