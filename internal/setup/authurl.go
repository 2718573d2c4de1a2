package setup

import (
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"
)

// defaultScopes are the scopes requested for a cloud connection: repo for
// repository data, read:org to enumerate organization memberships.
var defaultScopes = []string{"repo", "read:org"}

// AuthURLBuilder constructs the provider authorization URL for the cloud
// branch of the flow. It is used once, when entering the OAuth step.
type AuthURLBuilder struct {
	conf  *oauth2.Config
	state string
}

// NewAuthURLBuilder creates a builder for the given OAuth client and
// redirect URL. A fresh state nonce is generated per builder.
func NewAuthURLBuilder(clientID, redirectURL string) *AuthURLBuilder {
	return &AuthURLBuilder{
		conf: &oauth2.Config{
			ClientID:    clientID,
			Endpoint:    oauthgithub.Endpoint,
			RedirectURL: redirectURL,
			Scopes:      defaultScopes,
		},
		state: uuid.NewString(),
	}
}

// URL returns the provider authorization URL to open in the browser.
func (b *AuthURLBuilder) URL() string {
	return b.conf.AuthCodeURL(b.state)
}

// State returns the nonce embedded in the authorization URL.
func (b *AuthURLBuilder) State() string {
	return b.state
}
