// Package graphql is a minimal client for sending a single GraphQL operation
// over HTTP and extracting the data field of the response.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrNoData is returned when a response without errors also has no data field.
var ErrNoData = errors.New("graphql: response has no data field")

// Request is the JSON body posted to a GraphQL endpoint.
type Request struct {
	Query         string `json:"query"`
	OperationName string `json:"operationName"`
	Variables     any    `json:"variables"`
}

// ResponseError reports a response that carried an errors field.
type ResponseError struct {
	// Errors is the raw value of the errors field.
	Errors json.RawMessage
}

func (e *ResponseError) Error() string {
	const maxLen = 512
	msg := string(e.Errors)
	if len(msg) > maxLen {
		msg = msg[:maxLen] + "..."
	}
	return "graphql: server returned errors: " + msg
}

// Client posts GraphQL operations. It holds no per-request state and is safe
// for concurrent use.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient returns a Client that sends requests with httpClient, or
// http.DefaultClient when it is nil.
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{httpClient: httpClient, logger: logger}
}

// Do posts req to endpoint and returns the raw data field of the response.
//
// Transport failures, bodies that are not a JSON object, responses with an
// errors field (*ResponseError) and responses without a data field
// (ErrNoData) are all returned as errors. The HTTP status code is not
// inspected; a GraphQL server may report failures with any status.
func (c *Client) Do(ctx context.Context, endpoint string, req Request) (json.RawMessage, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("graphql: failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("graphql: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug("Sending GraphQL request", "endpoint", endpoint, "operation_name", req.OperationName)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("graphql: request failed: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("graphql: failed to read response: %w", err)
	}

	var fields map[string]json.RawMessage
	if err = json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("graphql: failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if errs, ok := fields["errors"]; ok {
		return nil, &ResponseError{Errors: errs}
	}

	data, ok := fields["data"]
	if !ok {
		return nil, ErrNoData
	}
	return data, nil
}
