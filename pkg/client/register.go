package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new user and returns the decoded server response.
//
// A 400 yields a *ValidationError carrying the server's detail, any other
// non-2xx an *HTTPError, and a network failure a *TransportError.
func (c *Client) Register(ctx context.Context, username, password string) (map[string]any, error) {
	payload, err := json.Marshal(registerRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("encode register request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, registerEndpoint, nil, payload)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return nil, c.fail(registerEndpoint, &ValidationError{
			Detail: validationDetail(resp.Body),
			Body:   resp.Body,
		})
	case !isSuccess(resp.StatusCode):
		return nil, c.fail(registerEndpoint, &HTTPError{StatusCode: resp.StatusCode, Body: resp.Body})
	}

	var result map[string]any
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, c.fail(registerEndpoint, fmt.Errorf("decode register response: %w", err))
	}

	return result, nil
}

// validationDetail extracts the human-readable reason from a 400 body.
func validationDetail(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fallbackValidationDetail
	}

	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return string(trimmed)
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return compactJSON(trimmed)
	}

	detail, ok := obj["detail"]
	if !ok {
		return compactJSON(trimmed)
	}
	if s, ok := detail.(string); ok {
		return s
	}

	// FastAPI-style field errors arrive as a list
	encoded, err := json.Marshal(detail)
	if err != nil {
		return string(trimmed)
	}
	return string(encoded)
}

func compactJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return buf.String()
}
