package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// IntegrationType identifies how the integration talks to GitHub.
type IntegrationType string

const (
	// IntegrationTypeUnset means the operator has not chosen a mode yet.
	IntegrationTypeUnset IntegrationType = ""
	// IntegrationTypeCloud uses github.com with OAuth.
	IntegrationTypeCloud IntegrationType = "cloud"
	// IntegrationTypeSelfManaged uses a self-hosted or third-party managed
	// GitHub instance with operator-supplied credentials.
	IntegrationTypeSelfManaged IntegrationType = "selfmanaged"
)

// AccountType distinguishes user accounts from organizations.
type AccountType string

const (
	AccountTypeUser AccountType = "USER"
	AccountTypeOrg  AccountType = "ORG"
)

// Account is a GitHub user or organization reachable with the configured
// credentials. Accounts are rebuilt on every enumeration; copies stored in
// Config.Accounts survive refreshes through reconciliation.
type Account struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name,omitempty" json:"name,omitempty"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	AvatarURL   string      `yaml:"avatar_url,omitempty" json:"avatarUrl,omitempty"`
	TotalCount  int         `yaml:"total_count" json:"totalCount"`
	Type        AccountType `yaml:"type" json:"type"`

	// Public is true when the account was added manually by login or URL
	// rather than discovered through the viewer's organization memberships.
	Public bool `yaml:"public" json:"public"`

	// Selected marks the account for sync. Meaningful once installed.
	Selected bool `yaml:"selected" json:"selected"`
}

// OAuth2Auth holds the OAuth credentials for a cloud connection.
type OAuth2Auth struct {
	AccessToken  string   `yaml:"access_token" json:"access_token"`
	RefreshToken string   `yaml:"refresh_token,omitempty" json:"refresh_token,omitempty"`
	Scopes       []string `yaml:"scopes,omitempty" json:"scopes,omitempty"`
	Created      int64    `yaml:"created" json:"created"`
}

// BasicAuth holds username/password credentials for a self-managed host.
type BasicAuth struct {
	URL      string `yaml:"url" json:"url"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// APIKeyAuth holds an API key credential for a self-managed host.
type APIKeyAuth struct {
	URL    string `yaml:"url" json:"url"`
	APIKey string `yaml:"apikey" json:"apikey"`
}

// Config is the connection configuration handed to the downstream product.
// It is shared mutable state for the setup flow: every mutation is followed
// by a Store.Save call so no component works from a stale copy.
type Config struct {
	IntegrationType IntegrationType `yaml:"integration_type,omitempty"`

	// Installed is set by the host once the integration has been installed.
	// A previously installed integration stays installable regardless of
	// the current selection.
	Installed bool `yaml:"installed,omitempty"`

	OAuth2Auth *OAuth2Auth `yaml:"oauth2_auth,omitempty"`
	BasicAuth  *BasicAuth  `yaml:"basic_auth,omitempty"`
	APIKeyAuth *APIKeyAuth `yaml:"apikey_auth,omitempty"`

	// Accounts is the persisted selection set, keyed by account ID.
	Accounts map[string]*Account `yaml:"accounts,omitempty"`

	// Exclusions maps an account ID to a gitignore-style pattern blob
	// limiting which repositories under that account are synced. Entries
	// may outlive their account; orphans are not an error.
	Exclusions map[string]string `yaml:"exclusions,omitempty"`
}

// SetExclusion inserts or overwrites the exclusion pattern for an account.
// Pattern contents are not validated here; they are interpreted downstream.
func (c *Config) SetExclusion(accountID, pattern string) {
	if c.Exclusions == nil {
		c.Exclusions = make(map[string]string)
	}
	c.Exclusions[accountID] = pattern
}

// Exclusion returns the stored pattern for an account, or the empty string
// when no exclusion has been set.
func (c *Config) Exclusion(accountID string) string {
	return c.Exclusions[accountID]
}

// HasAuth reports whether authentication for the chosen mode is complete.
func (c *Config) HasAuth() bool {
	switch c.IntegrationType {
	case IntegrationTypeCloud:
		return c.OAuth2Auth != nil && c.OAuth2Auth.AccessToken != ""
	case IntegrationTypeSelfManaged:
		return c.BasicAuth != nil || c.APIKeyAuth != nil
	default:
		return false
	}
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadConfigFromPath(configPath)
}

// LoadConfigFromPath loads configuration from a specific path.
func LoadConfigFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil // Return empty config if file doesn't exist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToPath saves configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Credentials live in this file, keep it owner-only.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".ghconnect", "config.yaml"), nil
}
