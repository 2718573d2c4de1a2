package github

import (
	"context"
	"time"

	"ghconnect/pkg/config"
)

// viewerOrgsQuery returns the authenticated identity together with its
// organization memberships and their repository counts in a single call.
const viewerOrgsQuery = `{
	viewer {
		id
		name
		login
		description: bio
		avatarUrl
		repositories(isFork:false) {
			totalCount
		}
		organizations(first: 100) {
			nodes {
				id
				name
				description
				avatarUrl
				login
				repositories(isFork:false) {
					totalCount
				}
			}
		}
	}
}`

// Field preference tables for mapping account payloads. REST and GraphQL
// responses name the same data differently; the GraphQL-shaped name wins
// when both could be present.
var (
	avatarFields   = []string{"avatarUrl", "avatar_url"}
	userBioFields  = []string{"bio", "description"}
	orgDescFields  = []string{"description"}
	graphCountPath = []string{"repositories", "totalCount"}
	restCountField = "public_repos"
)

// Fetcher retrieves user and organization profiles and maps them into
// Account records.
type Fetcher struct {
	req Requester
}

// NewFetcher creates a fetcher on top of a Requester.
func NewFetcher(req Requester) *Fetcher {
	return &Fetcher{req: req}
}

// FetchUser requests a user profile by login. A not-found response is
// terminal and surfaces as a not_found error with no Account.
func (f *Fetcher) FetchUser(ctx context.Context, login string) (*config.Account, error) {
	name := NormalizeLogin(login)
	data, status, err := f.req.Get(ctx, "/users/"+name)
	if err != nil {
		return nil, err
	}
	if status == 404 {
		return nil, classifyStatus(status, "", "user "+name, time.Time{}, nil)
	}
	acct := userToAccount(data, true)
	return &acct, nil
}

// FetchOrg requests an organization profile by login. An org-shaped lookup
// that 404s is retried once as a user lookup with the same login; this
// fallback is the only retry in the system.
func (f *Fetcher) FetchOrg(ctx context.Context, login string) (*config.Account, error) {
	name := NormalizeLogin(login)
	data, status, err := f.req.Get(ctx, "/orgs/"+name)
	if err != nil {
		return nil, err
	}
	if status == 404 {
		return f.FetchUser(ctx, name)
	}
	acct := orgToAccount(data, true)
	return &acct, nil
}

// FetchAccount resolves a manually added login or URL, preferring an
// organization and falling back to a user.
func (f *Fetcher) FetchAccount(ctx context.Context, login string) (*config.Account, error) {
	return f.FetchOrg(ctx, login)
}

// FetchViewer returns the authenticated identity as a USER account and its
// organization memberships as ORG accounts, viewer first. None of them are
// public: they were discovered through the credentials, not added by hand.
func (f *Fetcher) FetchViewer(ctx context.Context) (*config.Account, []config.Account, error) {
	data, status, err := f.req.Query(ctx, viewerOrgsQuery, nil)
	if err != nil {
		return nil, nil, err
	}
	viewerData, ok := data["viewer"].(map[string]any)
	if !ok {
		return nil, nil, classifyStatus(status, "missing viewer in response", "graphql", time.Time{}, nil)
	}

	viewer := userToAccount(viewerData, false)

	var orgs []config.Account
	if orgsData, ok := viewerData["organizations"].(map[string]any); ok {
		if nodes, ok := orgsData["nodes"].([]any); ok {
			for _, node := range nodes {
				org, ok := node.(map[string]any)
				if !ok {
					continue
				}
				orgs = append(orgs, orgToAccount(org, false))
			}
		}
	}

	return &viewer, orgs, nil
}

// userToAccount maps a user payload in either REST or GraphQL shape.
func userToAccount(data map[string]any, public bool) config.Account {
	return config.Account{
		ID:          stringField(data, "login"),
		Name:        stringField(data, "name"),
		Description: stringField(data, userBioFields...),
		AvatarURL:   stringField(data, avatarFields...),
		TotalCount:  repoCount(data),
		Type:        config.AccountTypeUser,
		Public:      public,
	}
}

// orgToAccount maps an organization payload in either REST or GraphQL shape.
func orgToAccount(data map[string]any, public bool) config.Account {
	return config.Account{
		ID:          stringField(data, "login"),
		Name:        stringField(data, "name"),
		Description: stringField(data, orgDescFields...),
		AvatarURL:   stringField(data, avatarFields...),
		TotalCount:  repoCount(data),
		Type:        config.AccountTypeOrg,
		Public:      public,
	}
}

// stringField returns the first non-empty string among the preferred keys.
func stringField(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if val, ok := data[key].(string); ok && val != "" {
			return val
		}
	}
	return ""
}

// repoCount extracts the repository count, preferring the GraphQL shape
// over the REST one and defaulting to 0 when neither is present.
func repoCount(data map[string]any) int {
	if repos, ok := data[graphCountPath[0]].(map[string]any); ok {
		if n, ok := numberField(repos, graphCountPath[1]); ok {
			return n
		}
	}
	if n, ok := numberField(data, restCountField); ok {
		return n
	}
	return 0
}

func numberField(data map[string]any, key string) (int, bool) {
	switch v := data[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}
