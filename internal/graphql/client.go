// Package graphql provides the query executor used by the console sync core.
// It posts operations to a single backend endpoint and is the only I/O boundary
// the core depends on.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "catalog-console/1.0"

	// maxResponseSize limits response bodies to 50MB
	maxResponseSize = 50 * 1024 * 1024
)

// Operation is a named query or mutation document.
type Operation struct {
	Name     string
	Document string
}

// Executor sends an operation with variables to the query backend and returns
// the decoded data payload.
//
//go:generate mockgen -destination=mocks/mock_executor.go -package=mocks github.com/metagrid-io/catalog-console/internal/graphql Executor
type Executor interface {
	// Execute posts the operation and returns the raw data payload.
	// It fails on non-success HTTP status, on a non-empty top-level error
	// list, and on a missing data payload.
	Execute(ctx context.Context, op Operation, variables map[string]any) (json.RawMessage, error)

	// Configured reports whether a usable backend endpoint is set.
	Configured() bool
}

// ExecutorFunc adapts a function to the Executor interface. A nil ExecutorFunc
// reports itself as not configured.
type ExecutorFunc func(ctx context.Context, op Operation, variables map[string]any) (json.RawMessage, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, op Operation, variables map[string]any) (json.RawMessage, error) {
	if f == nil {
		return nil, ErrNotConfigured
	}
	return f(ctx, op, variables)
}

// Configured reports whether f is non-nil.
func (f ExecutorFunc) Configured() bool {
	return f != nil
}

// Option is a function that configures the default executor
type Option func(*defaultExecutor)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(e *defaultExecutor) {
		e.token = token
	}
}

// WithTimeout sets the per-request timeout. Zero keeps the default.
func WithTimeout(timeout time.Duration) Option {
	return func(e *defaultExecutor) {
		if timeout > 0 {
			e.client.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(e *defaultExecutor) {
		if client != nil {
			e.client = client
		}
	}
}

// defaultExecutor is the default implementation of Executor
type defaultExecutor struct {
	endpointURL string
	token       string
	client      *http.Client
}

// NewDefaultExecutor creates an executor for the given backend endpoint URL.
// An empty URL yields an unconfigured executor whose Execute returns
// ErrNotConfigured without any network call.
func NewDefaultExecutor(endpointURL string, opts ...Option) Executor {
	e := &defaultExecutor{
		endpointURL: endpointURL,
		client:      &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Configured reports whether an endpoint URL is set.
func (e *defaultExecutor) Configured() bool {
	return e.endpointURL != ""
}

// request is the wire shape posted to the backend
type request struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// response is the wire shape of a backend reply
type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute posts the operation and decodes the reply.
func (e *defaultExecutor) Execute(ctx context.Context, op Operation, variables map[string]any) (json.RawMessage, error) {
	if !e.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(request{
		OperationName: op.Name,
		Query:         op.Document,
		Variables:     variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode operation %s: %w", op.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach query backend: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        e.endpointURL,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	var decoded response
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response for %s: %w", op.Name, err)
	}

	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, ge := range decoded.Errors {
			messages = append(messages, ge.Message)
		}
		return nil, &BackendError{
			Operation: op.Name,
			Message:   messages[0],
			Messages:  messages,
		}
	}

	if len(decoded.Data) == 0 || string(decoded.Data) == "null" {
		return nil, ErrMissingData
	}

	return decoded.Data, nil
}
