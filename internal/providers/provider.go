package providers

import (
	"context"
	"encoding/json"
	"time"
)

// Client is the boundary to a generative text model. Implementations never
// let transport or parse errors escape: every failure mode collapses into the
// returned GenerateResult with Success=false, and the error return carries the
// same information for callers that want to log it.
type Client interface {
	// Generate sends a single prompt and returns the model's response.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)

	// Name returns the client identifier (e.g., "ollama").
	Name() string
}

// GenerateRequest is a single generation request.
type GenerateRequest struct {
	// Required
	Prompt string `json:"prompt"`

	// Optional system prompt prepended by the provider.
	System string `json:"system,omitempty"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters
	Temperature float64       `json:"temperature"`
	Timeout     time.Duration `json:"-"`

	// Optional JSON schema the parsed response must satisfy. When set and the
	// first response fails validation, the provider attempts one repair round
	// trip before reporting failure.
	Schema json.RawMessage `json:"schema,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// GenerateResult is the complete response from a generation call.
type GenerateResult struct {
	// Response content
	Content    string          `json:"content"`
	ParsedJSON json.RawMessage `json:"parsed_json,omitempty"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`

	// Timing
	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	// Success/error
	Success      bool   `json:"success"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Failed reports whether the call produced no usable parsed output.
func (r *GenerateResult) Failed() bool {
	return r == nil || !r.Success || len(r.ParsedJSON) == 0
}

// Error types reported in GenerateResult.ErrorType.
const (
	ErrorTypeTransport = "transport"
	ErrorTypeParse     = "parse"
)
