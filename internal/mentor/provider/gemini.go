package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"google.golang.org/genai"

	errx "github.com/compass-mentor/server/internal/core/error"
	"github.com/compass-mentor/server/internal/mentor/model"
	"github.com/compass-mentor/server/internal/mentor/tools"
	logx "github.com/compass-mentor/server/pkg/logger"
)

// Gemini runs on the eino chat model abstraction. Two models share one
// genai client: toolModel carries the bound tool schema for the first
// round, plainModel answers the synthesis round without tools.
type Gemini struct {
	cfg        model.GeminiConfig
	toolModel  *gemini.ChatModel
	plainModel *gemini.ChatModel
}

func NewGemini(ctx context.Context, cfg model.GeminiConfig, catalogue []*tools.Definition) (*Gemini, error) {
	g := &Gemini{cfg: cfg}
	if cfg.APIKey == "" {
		// Unavailable but constructible, so the orchestrator can still
		// list it in the fallback chain.
		return g, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	toolModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &cfg.Temperature,
		MaxTokens:   &cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Gemini tool model: %w", err)
	}
	if err := toolModel.BindTools(translateEinoTools(catalogue)); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}

	plainModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &cfg.Temperature,
		MaxTokens:   &cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Gemini response model: %w", err)
	}

	g.toolModel = toolModel
	g.plainModel = plainModel
	return g, nil
}

func (g *Gemini) Name() string  { return "gemini" }
func (g *Gemini) Label() string { return g.cfg.Model }

func (g *Gemini) Available() bool {
	return g.cfg.APIKey != "" && g.toolModel != nil
}

func translateEinoTools(catalogue []*tools.Definition) []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(catalogue))
	for _, def := range catalogue {
		params := make(map[string]*schema.ParameterInfo, len(def.Parameters))
		for name, p := range def.Parameters {
			info := &schema.ParameterInfo{
				Type:     schema.DataType(p.Type),
				Desc:     p.Description,
				Required: p.Required,
			}
			if p.Type == "array" {
				info.ElemInfo = &schema.ParameterInfo{Type: schema.DataType(p.Items)}
			}
			params[name] = info
		}
		out = append(out, &schema.ToolInfo{
			Name:        def.Name,
			Desc:        def.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return out
}

func (g *Gemini) buildMessages(history []model.Turn, userCtx model.UserContext, analysis model.EmotionalAnalysis) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(history)+1)
	msgs = append(msgs, schema.SystemMessage(geminiPersona+contextSummary(userCtx)+moodLine(analysis)))
	for _, turn := range history {
		switch turn.Role {
		case model.RoleUser:
			msgs = append(msgs, schema.UserMessage(turn.Content))
		case model.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return msgs
}

func (g *Gemini) Converse(ctx context.Context, history []model.Turn, userCtx model.UserContext, exec ToolExecutor) (*Result, error) {
	if !g.Available() {
		return nil, errx.WrapProvider("gemini", fmt.Errorf("api key not configured"))
	}

	analysis := analyzeHistory(history)
	logx.Debug().Str("emotion", string(analysis.Emotion)).Int("turns", len(history)).Msg("gemini: processing conversation")

	msgs := g.buildMessages(history, userCtx, analysis)
	resp, err := g.toolModel.Generate(ctx, msgs)
	if err != nil {
		return nil, errx.WrapProvider("gemini", err)
	}

	if len(resp.ToolCalls) == 0 {
		return composeResult(resp.Content, nil, userCtx, analysis), nil
	}

	msgs, calls, err := g.runTools(ctx, msgs, resp, exec)
	if err != nil {
		return nil, err
	}

	final, err := g.plainModel.Generate(ctx, msgs)
	if err != nil {
		return nil, errx.WrapProvider("gemini", err)
	}
	return composeResult(final.Content, calls, userCtx, analysis), nil
}

func (g *Gemini) runTools(ctx context.Context, msgs []*schema.Message, assistant *schema.Message, exec ToolExecutor) ([]*schema.Message, []ExecutedCall, error) {
	msgs = append(msgs, assistant)
	calls := make([]ExecutedCall, 0, len(assistant.ToolCalls))
	for _, tc := range assistant.ToolCalls {
		callID := tc.ID
		if callID == "" {
			callID = "call_" + uuid.NewString()
		}
		logx.Debug().Str("tool", tc.Function.Name).Msg("gemini: executing tool")
		result, err := exec.Execute(ctx, tc.Function.Name, json.RawMessage(tc.Function.Arguments))
		if err != nil {
			return nil, nil, errx.WrapProvider("gemini", err)
		}
		calls = append(calls, ExecutedCall{
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
			Result:    result,
		})
		msgs = append(msgs, schema.ToolMessage(string(result), callID, schema.WithToolName(tc.Function.Name)))
	}
	return msgs, calls, nil
}

func (g *Gemini) ConverseStream(ctx context.Context, history []model.Turn, userCtx model.UserContext, exec ToolExecutor, sink ChunkSink) (*Result, error) {
	if !g.Available() {
		return nil, errx.WrapProvider("gemini", fmt.Errorf("api key not configured"))
	}

	analysis := analyzeHistory(history)
	msgs := g.buildMessages(history, userCtx, analysis)

	first, err := g.streamOnce(ctx, g.toolModel, msgs, func(content string) { sink(content, false) })
	if err != nil {
		return nil, err
	}

	if len(first.ToolCalls) == 0 {
		return composeResult(first.Content, nil, userCtx, analysis), nil
	}

	msgs, calls, err := g.runTools(ctx, msgs, first, exec)
	if err != nil {
		return nil, err
	}

	final, err := g.streamOnce(ctx, g.plainModel, msgs, func(content string) { sink(content, true) })
	if err != nil {
		return nil, err
	}
	return composeResult(final.Content, calls, userCtx, analysis), nil
}

// streamOnce drains one eino stream, forwarding content deltas and
// concatenating the chunks back into a whole message so fragmented tool
// calls are reassembled by index.
func (g *Gemini) streamOnce(ctx context.Context, chat *gemini.ChatModel, msgs []*schema.Message, onContent func(string)) (*schema.Message, error) {
	reader, err := chat.Stream(ctx, msgs)
	if err != nil {
		return nil, errx.WrapProvider("gemini", err)
	}
	defer reader.Close()

	var chunks []*schema.Message
	for {
		chunk, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errx.WrapProvider("gemini", err)
		}
		if chunk.Content != "" {
			onContent(chunk.Content)
		}
		chunks = append(chunks, chunk)
	}
	if len(chunks) == 0 {
		return nil, errx.WrapProvider("gemini", fmt.Errorf("empty stream"))
	}

	full, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, errx.WrapProvider("gemini", fmt.Errorf("concat stream: %w", err))
	}
	return full, nil
}
