// Package client is an HTTP client for the lenskit navigation API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/heimgewebe/lenskit/pkg/types"
)

// Client talks to a lenskit service. Paths are never sent; all navigation
// is addressed by the tokens the service hands out.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL, authToken string) *Client {
	return &Client{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

func decodeOrError(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// RootCapability queries whether system-root browsing is permitted.
func (c *Client) RootCapability(ctx context.Context) (*types.RootCapability, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/fs/capability", nil)
	if err != nil {
		return nil, err
	}
	var out types.RootCapability
	if err := decodeOrError(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Roots fetches the allowlisted navigation roots with fresh tokens.
func (c *Client) Roots(ctx context.Context) (*types.RootsResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/fs/roots", nil)
	if err != nil {
		return nil, err
	}
	var out types.RootsResponse
	if err := decodeOrError(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List reads one directory level addressed by a token.
func (c *Client) List(ctx context.Context, token string) (*types.ListResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/fs/list", types.ListRequest{Token: token})
	if err != nil {
		return nil, err
	}
	var out types.ListResponse
	if err := decodeOrError(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Materialize expands a compressed selection under a base token.
func (c *Client) Materialize(ctx context.Context, token string, selection []string) (*types.MaterializeResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/fs/materialize", types.MaterializeRequest{
		Token:     token,
		Selection: selection,
	})
	if err != nil {
		return nil, err
	}
	var out types.MaterializeResponse
	if err := decodeOrError(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BuildIndex materializes a selection and builds a retrieval index from it.
func (c *Client) BuildIndex(ctx context.Context, token string, selection []string) (*types.IndexBuildResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/index/build", types.IndexBuildRequest{
		Token:     token,
		Selection: selection,
	})
	if err != nil {
		return nil, err
	}
	var out types.IndexBuildResponse
	if err := decodeOrError(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Query runs a full-text query against a built index.
func (c *Client) Query(ctx context.Context, req types.QueryRequest) (*types.QueryResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/index/query", req)
	if err != nil {
		return nil, err
	}
	var out types.QueryResponse
	if err := decodeOrError(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
