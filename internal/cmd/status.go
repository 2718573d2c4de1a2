package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ghconnect/internal/setup"
	"ghconnect/pkg/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the connection state",
	Long:  "Print the current flow step, authentication mode, and account counts.",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	m, err := loadMachine()
	if err != nil {
		return err
	}

	cfg := m.Config()

	mode := "not chosen"
	if cfg.IntegrationType != "" {
		mode = string(cfg.IntegrationType)
	}

	auth := "none"
	switch {
	case cfg.OAuth2Auth != nil:
		auth = "oauth2"
	case cfg.APIKeyAuth != nil:
		auth = fmt.Sprintf("apikey (%s)", cfg.APIKeyAuth.URL)
	case cfg.BasicAuth != nil:
		auth = fmt.Sprintf("basic (%s as %s)", cfg.BasicAuth.URL, cfg.BasicAuth.Username)
	}

	selected := 0
	for _, acct := range cfg.Accounts {
		if acct.Selected {
			selected++
		}
	}

	fmt.Printf("Step:        %s\n", m.Step())
	fmt.Printf("Mode:        %s\n", mode)
	fmt.Printf("Auth:        %s\n", auth)
	fmt.Printf("Accounts:    %d known, %d selected\n", len(cfg.Accounts), selected)
	fmt.Printf("Exclusions:  %d\n", len(cfg.Exclusions))
	fmt.Printf("Installed:   %v\n", cfg.Installed)
	fmt.Printf("Installable: %v\n", m.Installable())

	if m.Step() == setup.StepThrottled && m.ResumeAt().After(time.Now()) {
		fmt.Printf("Throttled:   until %v\n", m.ResumeAt())
	}

	printStatusHint(cfg, m)
	return nil
}

func printStatusHint(cfg *config.Config, m *setup.Machine) {
	switch m.Step() {
	case setup.StepChooseMode:
		fmt.Println("\n📝 Run 'ghconnect connect' to link a GitHub account.")
	case setup.StepCloudAuth, setup.StepSelfManagedAuth:
		fmt.Println("\n📝 Authentication is incomplete, run 'ghconnect connect' to finish.")
	case setup.StepAccounts:
		if len(cfg.Accounts) == 0 {
			fmt.Println("\n📝 Run 'ghconnect accounts refresh' to fetch your accounts.")
		}
	}
}
