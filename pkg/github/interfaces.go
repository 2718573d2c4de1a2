package github

import (
	"context"

	"ghconnect/pkg/config"
)

// Requester performs raw REST and GraphQL calls against a GitHub host.
// Both calls return the decoded payload together with the HTTP status code
// so callers can react to not-found responses without treating them as
// transport failures.
type Requester interface {
	// Get performs a GET against the REST API. path is relative to the
	// host's API root, e.g. "/users/octocat".
	Get(ctx context.Context, path string) (map[string]any, int, error)

	// Query runs a GraphQL query and returns the "data" payload.
	Query(ctx context.Context, query string, variables map[string]any) (map[string]any, int, error)
}

// AccountFetcher enumerates the accounts reachable with the configured
// credentials.
type AccountFetcher interface {
	// FetchAccount looks up a single account by login, trying an
	// organization lookup first and falling back to a user lookup.
	FetchAccount(ctx context.Context, login string) (*config.Account, error)

	// FetchViewer returns the authenticated identity and its organization
	// memberships in one call.
	FetchViewer(ctx context.Context) (*config.Account, []config.Account, error)
}

// CredentialValidator checks that credentials can authenticate against the
// target host.
type CredentialValidator interface {
	Validate(ctx context.Context) (*TokenInfo, error)
}
