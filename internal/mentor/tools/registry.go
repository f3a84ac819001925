package tools

import (
	"context"
	"encoding/json"
	"fmt"

	logx "github.com/compass-mentor/server/pkg/logger"
)

// Parameter describes one argument of a tool in a provider-neutral way.
// Each adapter translates this shape into its own wire format.
type Parameter struct {
	Type        string
	Description string
	Required    bool
	Items       string // element type when Type is "array"
}

// Definition is one named operation of the grounding catalogue.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]Parameter
	Run         func(ctx context.Context, args json.RawMessage) (any, error)
}

// ErrorResult is the sentinel fed back to a provider when a tool fails or
// is refused. It is tool output, never a thrown error.
type ErrorResult struct {
	Error          bool     `json:"error"`
	Blocked        bool     `json:"blocked,omitempty"`
	Message        string   `json:"message"`
	RequiredAction string   `json:"requiredAction,omitempty"`
	ValidExams     []string `json:"validExams,omitempty"`
	Hint           string   `json:"hint,omitempty"`
}

// Registry is the fixed catalogue of grounding tools. Read-only after
// construction, safe for concurrent use.
type Registry struct {
	defs   []*Definition
	byName map[string]*Definition
}

// NewRegistry builds the catalogue over the given dataset.
func NewRegistry(data *Dataset) *Registry {
	r := &Registry{byName: make(map[string]*Definition)}
	r.register(predictAdmissionTool(data))
	r.register(checkEligibilityTool(data))
	r.register(compareCollegesTool(data))
	r.register(collegeDetailsTool(data))
	r.register(searchByRankTool(data))
	r.register(affordableCollegesTool(data))
	r.register(cutoffDataTool(data))
	return r
}

func (r *Registry) register(d *Definition) {
	r.defs = append(r.defs, d)
	r.byName[d.Name] = d
}

// Catalogue returns the tool definitions in registration order.
func (r *Registry) Catalogue() []*Definition {
	return r.defs
}

// Lookup returns the definition for a name, if registered.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Execute runs the named tool and returns its result as JSON. An unknown
// name or a failing executor yields an error-sentinel result, not a Go
// error; the returned error is reserved for context cancellation and
// marshalling bugs.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	def, ok := r.byName[name]
	if !ok {
		logx.Error().Str("tool", name).Msg("unknown tool requested")
		return marshalResult(ErrorResult{
			Error:   true,
			Message: fmt.Sprintf("Tool %q is not available or not implemented.", name),
		})
	}

	result, err := def.Run(ctx, args)
	if err != nil {
		logx.Warn().Err(err).Str("tool", name).Msg("tool execution failed")
		return marshalResult(ErrorResult{Error: true, Message: err.Error()})
	}
	return marshalResult(result)
}

func marshalResult(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return b, nil
}

// PredictionTools lists the prediction-class tools that must never run
// without a resolved exam argument.
var PredictionTools = map[string]bool{
	"predict_admission":       true,
	"search_colleges_by_rank": true,
}
