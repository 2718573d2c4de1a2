package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"ghconnect/pkg/config"
)

// TokenCache stores the OAuth token in an INI credentials file, one
// section per host, so subcommands can reuse it without redoing the flow.
type TokenCache struct {
	path string
}

// NewTokenCache creates a cache backed by the given path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// NewDefaultTokenCache creates a cache at ~/.ghconnect/credentials.
func NewDefaultTokenCache() (*TokenCache, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewTokenCache(filepath.Join(homeDir, ".ghconnect", "credentials")), nil
}

// Store writes the credentials for a host, overwriting any previous entry.
func (c *TokenCache) Store(host string, auth *config.OAuth2Auth) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	cfg := ini.Empty()
	if _, err := os.Stat(c.path); err == nil {
		loaded, err := ini.Load(c.path)
		if err != nil {
			return fmt.Errorf("failed to load credentials file: %w", err)
		}
		cfg = loaded
	}

	section := cfg.Section(host)
	section.Key("access_token").SetValue(auth.AccessToken)
	if auth.RefreshToken != "" {
		section.Key("refresh_token").SetValue(auth.RefreshToken)
	}
	section.Key("scopes").SetValue(strings.Join(auth.Scopes, ","))
	section.Key("created").SetValue(strconv.FormatInt(auth.Created, 10))

	if err := cfg.SaveTo(c.path); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return os.Chmod(c.path, 0600)
}

// Load reads the credentials for a host. A missing file or section means
// no cached token.
func (c *TokenCache) Load(host string) (*config.OAuth2Auth, error) {
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no stored credentials found")
	}

	cfg, err := ini.Load(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials file: %w", err)
	}

	if !cfg.HasSection(host) {
		return nil, fmt.Errorf("no stored credentials for %s", host)
	}
	section := cfg.Section(host)

	token := section.Key("access_token").String()
	if token == "" {
		return nil, fmt.Errorf("stored credentials for %s are incomplete", host)
	}

	auth := &config.OAuth2Auth{
		AccessToken:  token,
		RefreshToken: section.Key("refresh_token").String(),
		Created:      section.Key("created").MustInt64(0),
	}
	if scopes := section.Key("scopes").String(); scopes != "" {
		auth.Scopes = strings.Split(scopes, ",")
	}
	return auth, nil
}
