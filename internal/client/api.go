package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"application-generator/internal/domain"
)

const generatePath = "/api/generate"

// StatusError is returned for non-2xx endpoint responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("client: unexpected status %d: %s", e.StatusCode, e.Body)
}

// APIClient calls the generation endpoint.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

type APIOption func(*APIClient)

func WithHTTPClient(httpClient *http.Client) APIOption {
	return func(c *APIClient) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewAPIClient(baseURL string, opts ...APIOption) (*APIClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("client: base URL must not be empty")
	}
	c := &APIClient{baseURL: baseURL, httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate issues exactly one POST and decodes the application result.
func (c *APIClient) Generate(ctx context.Context, in domain.ApplicationRequest) (domain.ApplicationResult, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return domain.ApplicationResult{}, fmt.Errorf("client: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return domain.ApplicationResult{}, fmt.Errorf("client: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ApplicationResult{}, fmt.Errorf("client: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return domain.ApplicationResult{}, &StatusError{StatusCode: res.StatusCode, Body: string(buf)}
	}

	var out domain.ApplicationResult
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return domain.ApplicationResult{}, fmt.Errorf("client: decode response: %w", err)
	}
	return out, nil
}
