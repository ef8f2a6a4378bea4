package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/agent-backend/testrun"
)

// APIError represents an error response from the run history API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// RunList is one page of runs.
type RunList struct {
	Items  []testrun.Run `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// Client talks to `agentctl serve`.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	return body, nil
}

// ListRuns fetches one page of runs, newest first.
func (c *Client) ListRuns(ctx context.Context, limit, offset int) (*RunList, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}
	if offset > 0 {
		query.Set("offset", fmt.Sprint(offset))
	}

	body, err := c.get(ctx, "/api/v1/runs", query)
	if err != nil {
		return nil, err
	}
	var list RunList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &list, nil
}

// GetRun fetches a run with its agent results.
func (c *Client) GetRun(ctx context.Context, runID string) (*testrun.Run, error) {
	body, err := c.get(ctx, "/api/v1/runs/"+url.PathEscape(runID), nil)
	if err != nil {
		return nil, err
	}
	var run testrun.Run
	if err := json.Unmarshal(body, &run); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &run, nil
}

// Artifact fetches the captured stdout or stderr of one agent.
func (c *Client) Artifact(ctx context.Context, runID, agent, stream string) ([]byte, error) {
	path := fmt.Sprintf("/api/v1/runs/%s/agents/%s/%s",
		url.PathEscape(runID), url.PathEscape(agent), url.PathEscape(stream))
	return c.get(ctx, path, nil)
}
