package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/ollama/ollama/api"
)

const OllamaClientName = "ollama"

// formatJSON asks the Ollama server to constrain decoding to valid JSON.
var formatJSON = json.RawMessage(`"json"`)

// OllamaClient talks to a local Ollama server.
type OllamaClient struct {
	api        *api.Client
	model      string
	limiter    *RateLimiter
	maxRetries uint
	retryDelay time.Duration
	timeout    time.Duration
	logger     *slog.Logger
}

// OllamaConfig configures a new OllamaClient.
type OllamaConfig struct {
	// Host is the server base URL. Empty uses OLLAMA_HOST / the default
	// http://127.0.0.1:11434.
	Host  string
	Model string

	// RequestsPerMinute bounds request pacing (default 60).
	RequestsPerMinute int

	// MaxRetries is the transport retry budget per request (default 3).
	MaxRetries int

	// RetryDelay is the base backoff delay (default 2s).
	RetryDelay time.Duration

	// Timeout is the default per-request deadline (default 5m; local models
	// on modest hardware are slow, not stuck).
	Timeout time.Duration

	Logger *slog.Logger
}

// NewOllamaClient creates a client for a local Ollama server.
func NewOllamaClient(cfg OllamaConfig) (*OllamaClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}

	var apiClient *api.Client
	if cfg.Host != "" {
		base, err := url.Parse(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", cfg.Host, err)
		}
		apiClient = api.NewClient(base, http.DefaultClient)
	} else {
		var err error
		apiClient, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OllamaClient{
		api:        apiClient,
		model:      cfg.Model,
		limiter:    NewRateLimiter(cfg.RequestsPerMinute),
		maxRetries: uint(maxRetries),
		retryDelay: retryDelay,
		timeout:    timeout,
		logger:     logger.With("provider", OllamaClientName),
	}, nil
}

// Name returns the client identifier.
func (c *OllamaClient) Name() string {
	return OllamaClientName
}

// Generate sends a prompt to the Ollama server. All failures collapse into
// the result; the error return mirrors them for logging convenience.
func (c *OllamaClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	start := time.Now()

	result := &GenerateResult{
		Provider:  OllamaClientName,
		RequestID: req.RequestID,
	}
	if result.RequestID == "" {
		result.RequestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	result.ModelUsed = model

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return c.fail(result, start, ErrorTypeTransport, fmt.Errorf("rate limit wait: %w", err))
	}

	content, attempts, err := c.complete(ctx, model, req.System, req.Prompt, req.Temperature, result)
	result.Attempts = attempts
	if err != nil {
		return c.fail(result, start, ErrorTypeTransport, err)
	}

	parsed, err := parseLooseJSON(content)
	if err == nil {
		err = validateResponseJSON(req.Schema, parsed)
	}
	if err != nil && len(req.Schema) > 0 {
		// One repair round trip: show the model its own output and the issue.
		c.logger.Debug("attempting structured repair", "request_id", result.RequestID, "issue", err)
		repaired, repairAttempts, rErr := c.complete(ctx, model, req.System, repairPrompt(req.Schema, content, err), req.Temperature, result)
		result.Attempts += repairAttempts
		if rErr == nil {
			if p, pErr := parseLooseJSON(repaired); pErr == nil {
				if vErr := validateResponseJSON(req.Schema, p); vErr == nil {
					parsed, content, err = p, repaired, nil
				}
			}
		}
	}
	if err != nil {
		result.Content = content
		return c.fail(result, start, ErrorTypeParse, err)
	}

	result.Content = content
	result.ParsedJSON = parsed
	result.Success = true
	result.ExecutionTime = time.Since(start)

	c.logger.Debug("generation complete",
		"request_id", result.RequestID,
		"model", model,
		"prompt_tokens", result.PromptTokens,
		"completion_tokens", result.CompletionTokens,
		"duration", result.ExecutionTime)

	return result, nil
}

// complete performs the raw generation call with transport retries and
// returns the accumulated response text.
func (c *OllamaClient) complete(ctx context.Context, model, system, prompt string, temperature float64, result *GenerateResult) (string, int, error) {
	stream := false
	apiReq := &api.GenerateRequest{
		Model:  model,
		Prompt: prompt,
		System: system,
		Format: formatJSON,
		Stream: &stream,
		Options: map[string]any{
			"temperature": temperature,
		},
	}

	attempts := 0
	var sb strings.Builder
	err := retry.Do(
		func() error {
			attempts++
			sb.Reset()
			return c.api.Generate(ctx, apiReq, func(resp api.GenerateResponse) error {
				sb.WriteString(resp.Response)
				if resp.Done {
					result.PromptTokens = resp.PromptEvalCount
					result.CompletionTokens = resp.EvalCount
				}
				return nil
			})
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", attempts, fmt.Errorf("ollama generate: %w", err)
	}
	return sb.String(), attempts, nil
}

func (c *OllamaClient) fail(result *GenerateResult, start time.Time, errType string, err error) (*GenerateResult, error) {
	result.Success = false
	result.ErrorType = errType
	result.ErrorMessage = err.Error()
	result.ExecutionTime = time.Since(start)
	c.logger.Warn("generation failed",
		"request_id", result.RequestID,
		"error_type", errType,
		"error", err)
	return result, err
}

// Verify interface
var _ Client = (*OllamaClient)(nil)
