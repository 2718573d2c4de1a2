package setup

import (
	"encoding/base64"
	"encoding/json"
	"net/url"

	"ghconnect/pkg/config"
)

// redirectProfile is the payload carried in the "profile" query parameter
// of an OAuth redirect callback URL.
type redirectProfile struct {
	Integration struct {
		Auth struct {
			AccessToken  string   `json:"accessToken"`
			RefreshToken string   `json:"refreshToken"`
			Scopes       []string `json:"scopes"`
			Created      int64    `json:"created"`
		} `json:"auth"`
	} `json:"Integration"`
}

// ParseRedirectProfile extracts OAuth credentials from a redirect callback
// URL. The profile parameter is URL-decoded, base64-decoded, and parsed as
// JSON. Absence, a decoding failure, or a payload without an access token
// all report false with no credentials: the caller treats that as "not yet
// authenticated" rather than an error.
func ParseRedirectProfile(rawURL string) (*config.OAuth2Auth, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, false
	}

	encoded := parsed.Query().Get("profile")
	if encoded == "" {
		return nil, false
	}

	decoded, ok := decodeBase64(encoded)
	if !ok {
		return nil, false
	}

	var profile redirectProfile
	if err := json.Unmarshal(decoded, &profile); err != nil {
		return nil, false
	}
	if profile.Integration.Auth.AccessToken == "" {
		return nil, false
	}

	return &config.OAuth2Auth{
		AccessToken:  profile.Integration.Auth.AccessToken,
		RefreshToken: profile.Integration.Auth.RefreshToken,
		Scopes:       profile.Integration.Auth.Scopes,
		Created:      profile.Integration.Auth.Created,
	}, true
}

// decodeBase64 accepts both the URL-safe and standard alphabets, padded or
// not; redirect producers have used all four.
func decodeBase64(s string) ([]byte, bool) {
	for _, enc := range []*base64.Encoding{
		base64.URLEncoding,
		base64.RawURLEncoding,
		base64.StdEncoding,
		base64.RawStdEncoding,
	} {
		if data, err := enc.DecodeString(s); err == nil {
			return data, true
		}
	}
	return nil, false
}
