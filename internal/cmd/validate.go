package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ghconnect/pkg/config"
	"ghconnect/pkg/github"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the stored GitHub credentials",
	Long: `Check that the stored credentials still authenticate against GitHub
and print the user and token scopes they resolve to.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, _ []string) error {
	m, err := loadMachine()
	if err != nil {
		return err
	}

	cfg := m.Config()
	validator, err := validatorFor(cfg)
	if err != nil {
		return err
	}

	info, err := validator.Validate(cmd.Context())
	if err != nil {
		if resume, ok := github.ThrottledUntil(err); ok {
			fmt.Printf("⏳ GitHub is throttling requests, try again after %v\n", resume)
			return nil
		}
		fmt.Println("❌ Credential check failed, re-authentication is required")
		if reauthErr := m.RequireReauth(); reauthErr != nil {
			return reauthErr
		}
		return err
	}

	fmt.Printf("✅ Authenticated as %s\n", info.User)
	if len(info.Scopes) > 0 {
		fmt.Printf("🔑 Token scopes: %s\n", strings.Join(info.Scopes, ", "))
	}
	return nil
}

func validatorFor(cfg *config.Config) (github.CredentialValidator, error) {
	switch cfg.IntegrationType {
	case config.IntegrationTypeCloud:
		if cfg.OAuth2Auth == nil {
			return nil, fmt.Errorf("no credentials stored, run 'ghconnect connect' first")
		}
		return github.NewValidator(cfg.OAuth2Auth.AccessToken), nil
	case config.IntegrationTypeSelfManaged:
		switch {
		case cfg.APIKeyAuth != nil:
			return github.NewValidatorForHost(cfg.APIKeyAuth.URL, cfg.APIKeyAuth.APIKey)
		case cfg.BasicAuth != nil:
			return github.NewValidatorForHost(cfg.BasicAuth.URL, cfg.BasicAuth.Password)
		}
	}
	return nil, fmt.Errorf("no credentials stored, run 'ghconnect connect' first")
}
