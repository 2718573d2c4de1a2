//go:build integration
// +build integration

package integration

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghconnect/internal/setup"
	"ghconnect/pkg/config"
	"ghconnect/pkg/github"
)

// newFakeGitHub serves the REST and GraphQL endpoints the connection flow
// touches: the viewer query, org and user profile lookups.
func newFakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/graphql", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"viewer": map[string]any{
					"login":       "octocat",
					"name":        "The Octocat",
					"description": "I am a cat",
					"repositories": map[string]any{
						"totalCount": 8,
					},
					"organizations": map[string]any{
						"nodes": []any{
							map[string]any{
								"login": "acme",
								"name":  "Acme Corp",
								"repositories": map[string]any{
									"totalCount": 42,
								},
							},
						},
					},
				},
			},
		})
	})

	mux.HandleFunc("/orgs/kubernetes", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"login":        "kubernetes",
			"name":         "Kubernetes",
			"public_repos": 75,
		})
	})

	mux.HandleFunc("/orgs/torvalds", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/users/torvalds", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"login":        "torvalds",
			"name":         "Linus Torvalds",
			"public_repos": 7,
		})
	})

	mux.HandleFunc("/orgs/ghost", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/users/ghost", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	return httptest.NewServer(mux)
}

func newFlowMachine(t *testing.T, srv *httptest.Server) (*setup.Machine, string) {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := config.LoadConfigFromPath(configPath)
	require.NoError(t, err)

	m := setup.NewMachine(cfg, setup.Options{
		Store: config.NewFileStore(configPath),
		FetcherFor: func(*config.Config) github.AccountFetcher {
			client := github.NewClient("test-token")
			client.SetBaseURLs(srv.URL, srv.URL+"/graphql")
			return github.NewFetcher(client)
		},
	})
	return m, configPath
}

func redirectURL(t *testing.T, token string) string {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"Integration": map[string]any{
			"auth": map[string]any{"accessToken": token, "created": int64(1234567890)},
		},
	})
	require.NoError(t, err)
	encoded := base64.URLEncoding.EncodeToString(payload)
	return "https://app.example.com/callback?profile=" + url.QueryEscape(encoded)
}

func TestCloudConnectFlow(t *testing.T) {
	srv := newFakeGitHub(t)
	defer srv.Close()

	m, configPath := newFlowMachine(t, srv)
	require.Equal(t, setup.StepChooseMode, m.Step())

	require.NoError(t, m.ChooseMode(config.IntegrationTypeCloud))
	require.Equal(t, setup.StepCloudAuth, m.Step())

	ok, err := m.HandleRedirect(redirectURL(t, "tok-123"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, setup.StepAccounts, m.Step())

	accounts, err := m.RefreshAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "octocat", accounts[0].ID)
	assert.Equal(t, "acme", accounts[1].ID)
	assert.True(t, m.Installable())

	require.NoError(t, m.SetSelected("acme", true))
	require.NoError(t, m.SetExclusion("acme", "archive/*"))

	// Everything the flow wrote must survive a reload.
	reloaded, err := config.LoadConfigFromPath(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.IntegrationTypeCloud, reloaded.IntegrationType)
	assert.Equal(t, "tok-123", reloaded.OAuth2Auth.AccessToken)
	assert.True(t, reloaded.Accounts["acme"].Selected)
	assert.Equal(t, "archive/*", reloaded.Exclusion("acme"))

	// A new machine over the reloaded config resumes at account selection.
	resumed := setup.NewMachine(reloaded, setup.Options{})
	assert.Equal(t, setup.StepAccounts, resumed.Step())
}

func TestAddPublicAccountsFlow(t *testing.T) {
	srv := newFakeGitHub(t)
	defer srv.Close()

	m, _ := newFlowMachine(t, srv)
	require.NoError(t, m.ChooseMode(config.IntegrationTypeCloud))
	ok, err := m.HandleRedirect(redirectURL(t, "tok-123"))
	require.NoError(t, err)
	require.True(t, ok)

	// An organization resolves directly.
	org, err := m.AddPublicAccount(context.Background(), "https://github.com/kubernetes")
	require.NoError(t, err)
	assert.Equal(t, config.AccountTypeOrg, org.Type)
	assert.Equal(t, 75, org.TotalCount)

	// A user login falls back from the org lookup.
	user, err := m.AddPublicAccount(context.Background(), "@torvalds")
	require.NoError(t, err)
	assert.Equal(t, config.AccountTypeUser, user.Type)

	// A login that matches neither is reported without state changes.
	_, err = m.AddPublicAccount(context.Background(), "ghost")
	assert.ErrorContains(t, err, `account "ghost" doesn't exist`)
	assert.NotContains(t, m.Config().Accounts, "ghost")

	assert.True(t, m.Installable())
}

func TestRefreshKeepsManuallyAddedAccounts(t *testing.T) {
	srv := newFakeGitHub(t)
	defer srv.Close()

	m, _ := newFlowMachine(t, srv)
	require.NoError(t, m.ChooseMode(config.IntegrationTypeCloud))
	ok, err := m.HandleRedirect(redirectURL(t, "tok-123"))
	require.NoError(t, err)
	require.True(t, ok)

	_, err = m.AddPublicAccount(context.Background(), "kubernetes")
	require.NoError(t, err)

	accounts, err := m.RefreshAccounts(context.Background())
	require.NoError(t, err)

	// Viewer and memberships first, manually added accounts retained after.
	require.Len(t, accounts, 3)
	assert.Equal(t, "octocat", accounts[0].ID)
	assert.Equal(t, "acme", accounts[1].ID)
	assert.Equal(t, "kubernetes", accounts[2].ID)
	assert.True(t, accounts[2].Public)
}
