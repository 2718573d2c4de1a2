package github

import (
	"context"
	"strings"

	"github.com/google/go-github/v66/github"
)

// TokenInfo contains information about a validated credential.
type TokenInfo struct {
	User   string   `json:"user"`
	Scopes []string `json:"scopes"`
}

// Validator checks credentials with a lightweight authenticated query
// against the target host. It implements CredentialValidator.
type Validator struct {
	client *github.Client
}

// NewValidator creates a validator for github.com credentials.
func NewValidator(token string) *Validator {
	return &Validator{client: github.NewClient(oauthHTTPClient(token))}
}

// NewValidatorForHost creates a validator for a self-managed host. baseURL
// is the instance root; the enterprise API endpoints are derived from it.
func NewValidatorForHost(baseURL, token string) (*Validator, error) {
	base := strings.TrimRight(baseURL, "/")
	client, err := github.NewClient(oauthHTTPClient(token)).
		WithEnterpriseURLs(base+"/api/v3/", base+"/api/uploads/")
	if err != nil {
		return nil, WrapAPIError(err, "host "+baseURL)
	}
	return &Validator{client: client}, nil
}

// Validate fetches the authenticated user. A failure means the credentials
// cannot be used; the structured error carries an operator-facing message
// and the configuration's auth sub-object must be left unset.
func (v *Validator) Validate(ctx context.Context) (*TokenInfo, error) {
	user, resp, err := v.client.Users.Get(ctx, "")
	if err != nil {
		return nil, WrapAPIError(err, "credentials")
	}

	scopes := []string{}
	if scopeHeader := resp.Header.Get("X-OAuth-Scopes"); scopeHeader != "" {
		scopes = strings.Split(strings.ReplaceAll(scopeHeader, " ", ""), ",")
	}

	return &TokenInfo{
		User:   user.GetLogin(),
		Scopes: scopes,
	}, nil
}
