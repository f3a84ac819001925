package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errx "github.com/compass-mentor/server/internal/core/error"
	"github.com/compass-mentor/server/internal/mentor/model"
	"github.com/compass-mentor/server/internal/mentor/tools"
	logx "github.com/compass-mentor/server/pkg/logger"
)

const anthropicVersion = "2023-06-01"

// Claude speaks the Anthropic messages API. Buffered only; the
// orchestrator degrades streaming requests to a single final chunk.
type Claude struct {
	cfg       model.ClaudeConfig
	catalogue []*tools.Definition
	client    *http.Client
}

func NewClaude(cfg model.ClaudeConfig, catalogue []*tools.Definition) *Claude {
	return &Claude{
		cfg:       cfg,
		catalogue: catalogue,
		client:    &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Claude) Name() string  { return "claude" }
func (c *Claude) Label() string { return c.cfg.Model }

func (c *Claude) Available() bool {
	return strings.HasPrefix(c.cfg.APIKey, "sk-ant-")
}

// ================ Anthropic wire types ================

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicBlock struct {
	Type string `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
}

type anthropicResponse struct {
	Content    []anthropicBlock `json:"content"`
	StopReason string           `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func translateAnthropicTools(catalogue []*tools.Definition) []anthropicTool {
	out := make([]anthropicTool, 0, len(catalogue))
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
		schema := map[string]any{
			"type":       "object",
			"properties": properties,
		}
		if len(required) > 0 {
			schema["required"] = required
		}
		out = append(out, anthropicTool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: schema,
		})
	}
	return out
}

func (c *Claude) buildMessages(history []model.Turn) []anthropicMessage {
	msgs := make([]anthropicMessage, 0, len(history))
	for _, turn := range history {
		role := string(turn.Role)
		if turn.Role == model.RoleSystem {
			// Anthropic takes the system prompt out of band.
			continue
		}
		msgs = append(msgs, anthropicMessage{
			Role:    role,
			Content: []anthropicBlock{{Type: "text", Text: turn.Content}},
		})
	}
	return msgs
}

func (c *Claude) Converse(ctx context.Context, history []model.Turn, userCtx model.UserContext, exec ToolExecutor) (*Result, error) {
	if !c.Available() {
		return nil, errx.WrapProvider("claude", fmt.Errorf("api key not configured"))
	}

	analysis := analyzeHistory(history)
	logx.Debug().Str("emotion", string(analysis.Emotion)).Int("turns", len(history)).Msg("claude: processing conversation")

	system := claudePersona + contextSummary(userCtx) + analysisBlock(analysis)
	msgs := c.buildMessages(history)

	resp, err := c.send(ctx, anthropicRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		System:      system,
		Messages:    msgs,
		Tools:       translateAnthropicTools(c.catalogue),
	})
	if err != nil {
		return nil, err
	}

	toolUses := blocksOfType(resp.Content, "tool_use")
	if len(toolUses) == 0 {
		return composeResult(joinText(resp.Content), nil, userCtx, analysis), nil
	}

	calls := make([]ExecutedCall, 0, len(toolUses))
	results := make([]anthropicBlock, 0, len(toolUses))
	for _, tu := range toolUses {
		logx.Debug().Str("tool", tu.Name).Msg("claude: executing tool")
		result, err := exec.Execute(ctx, tu.Name, tu.Input)
		if err != nil {
			return nil, errx.WrapProvider("claude", err)
		}
		calls = append(calls, ExecutedCall{Name: tu.Name, Arguments: tu.Input, Result: result})
		results = append(results, anthropicBlock{
			Type:      "tool_result",
			ToolUseID: tu.ID,
			Content:   string(result),
		})
	}

	msgs = append(msgs,
		anthropicMessage{Role: "assistant", Content: resp.Content},
		anthropicMessage{Role: "user", Content: results},
	)

	final, err := c.send(ctx, anthropicRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		System:      system,
		Messages:    msgs,
	})
	if err != nil {
		return nil, err
	}
	return composeResult(joinText(final.Content), calls, userCtx, analysis), nil
}

func (c *Claude) send(ctx context.Context, reqBody anthropicRequest) (*anthropicResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, errx.WrapProvider("claude", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, errx.WrapProvider("claude", fmt.Errorf("read response: %w", err))
	}
	if httpResp.StatusCode != http.StatusOK {
		logx.Warn().Int("status", httpResp.StatusCode).Str("body", truncate(string(data), 300)).Msg("claude: request failed")
		return nil, errx.WrapProvider("claude", fmt.Errorf("status %d: %s", httpResp.StatusCode, truncate(string(data), 300)))
	}

	var resp anthropicResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errx.WrapProvider("claude", fmt.Errorf("decode response: %w", err))
	}
	if resp.Error != nil {
		return nil, errx.WrapProvider("claude", fmt.Errorf("%s: %s", resp.Error.Type, resp.Error.Message))
	}
	return &resp, nil
}

func blocksOfType(blocks []anthropicBlock, kind string) []anthropicBlock {
	var out []anthropicBlock
	for _, b := range blocks {
		if b.Type == kind {
			out = append(out, b)
		}
	}
	return out
}

func joinText(blocks []anthropicBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}
