package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	cloudAPIURL     = "https://api.github.com"
	cloudGraphQLURL = "https://api.github.com/graphql"
)

// Client implements the Requester interface over an OAuth2-authenticated
// HTTP client. It talks to github.com by default and to a self-managed
// host when built with NewClientForHost.
type Client struct {
	httpClient *http.Client
	apiURL     string
	graphqlURL string
}

// NewClient creates a client for github.com with the provided token.
func NewClient(token string) *Client {
	return &Client{
		httpClient: oauthHTTPClient(token),
		apiURL:     cloudAPIURL,
		graphqlURL: cloudGraphQLURL,
	}
}

// NewClientForHost creates a client for a self-managed GitHub host. baseURL
// is the instance root, e.g. "https://github.example.com"; the REST and
// GraphQL endpoints follow the GitHub Enterprise Server layout.
func NewClientForHost(baseURL, token string) *Client {
	base := strings.TrimRight(baseURL, "/")
	return &Client{
		httpClient: oauthHTTPClient(token),
		apiURL:     base + "/api/v3",
		graphqlURL: base + "/api/graphql",
	}
}

// SetBaseURLs points the client at non-default endpoints. Used by tests
// to target a local server.
func (c *Client) SetBaseURLs(apiURL, graphqlURL string) {
	c.apiURL = strings.TrimRight(apiURL, "/")
	c.graphqlURL = graphqlURL
}

func oauthHTTPClient(token string) *http.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	return oauth2.NewClient(context.Background(), ts)
}

// Get performs a GET against the REST API and decodes the JSON payload.
// Not-found responses are returned as (nil, 404, nil) so callers can apply
// their own fallback; other non-2xx statuses come back as classified errors.
func (c *Client) Get(ctx context.Context, path string) (map[string]any, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	return c.do(req, path)
}

// Query runs a GraphQL query against the host and returns the "data"
// payload. GraphQL-level errors are reported as classified errors.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any) (map[string]any, int, error) {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	payload, status, err := c.do(req, "graphql")
	if err != nil {
		return nil, status, err
	}

	if errs, ok := payload["errors"].([]any); ok && len(errs) > 0 {
		msg := "graphql query failed"
		if first, ok := errs[0].(map[string]any); ok {
			if m, ok := first["message"].(string); ok && m != "" {
				msg = m
			}
		}
		return nil, status, &APIError{Type: ErrorTypeUnknown, Message: msg, Resource: "graphql"}
	}

	data, _ := payload["data"].(map[string]any)
	return data, status, nil
}

func (c *Client) do(req *http.Request, resource string) (map[string]any, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, WrapAPIError(err, resource)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, resp.StatusCode, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, classifyStatus(resp.StatusCode, "", resource, rateLimitReset(resp), nil)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response for %s: %w", resource, err)
	}

	return payload, resp.StatusCode, nil
}

// rateLimitReset extracts the rate-limit reset time from a response when
// the limit is exhausted, so throttled errors can carry a resume time.
func rateLimitReset(resp *http.Response) time.Time {
	if resp.Header.Get("X-Ratelimit-Remaining") != "0" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(resp.Header.Get("X-Ratelimit-Reset"), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}
