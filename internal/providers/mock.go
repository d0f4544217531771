package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is a Client for testing.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int // Fail after N requests (0 = never)
	ResponseJSON json.RawMessage

	// Handler, when set, computes the response per request. Return an error
	// to simulate a failed call. Takes precedence over ResponseJSON.
	Handler func(req *GenerateRequest) (json.RawMessage, error)

	// State
	requestCount atomic.Int64

	mu       sync.Mutex
	requests []GenerateRequest
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ResponseJSON: json.RawMessage(`{}`),
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Generate sends a mock generation request.
func (c *MockClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	c.mu.Lock()
	c.requests = append(c.requests, *req)
	c.mu.Unlock()

	result := &GenerateResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockClientName,
		ModelUsed: req.Model,
		Attempts:  1,
	}

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			result.ErrorType = ErrorTypeTransport
			result.ErrorMessage = ctx.Err().Error()
			result.ExecutionTime = time.Since(start)
			return result, ctx.Err()
		}
	}

	fail := func(err error) (*GenerateResult, error) {
		result.Success = false
		result.ErrorType = ErrorTypeTransport
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	if c.ShouldFail {
		return fail(fmt.Errorf("mock client configured to fail"))
	}
	if c.FailAfter > 0 && int(count) > c.FailAfter {
		return fail(fmt.Errorf("mock client failed after %d requests", c.FailAfter))
	}

	response := c.ResponseJSON
	if c.Handler != nil {
		var err error
		response, err = c.Handler(req)
		if err != nil {
			return fail(err)
		}
	}

	parsed, err := parseLooseJSON(string(response))
	if err != nil {
		result.Success = false
		result.ErrorType = ErrorTypeParse
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	result.Success = true
	result.Content = string(response)
	result.ParsedJSON = parsed
	result.PromptTokens = len(req.Prompt) / 4 // Rough estimate
	result.CompletionTokens = len(response) / 4
	result.ExecutionTime = time.Since(start)

	return result, nil
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Requests returns a copy of all requests seen so far.
func (c *MockClient) Requests() []GenerateRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]GenerateRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// Reset clears the request counter and recorded requests.
func (c *MockClient) Reset() {
	c.requestCount.Store(0)
	c.mu.Lock()
	c.requests = nil
	c.mu.Unlock()
}

// Verify interface
var _ Client = (*MockClient)(nil)
