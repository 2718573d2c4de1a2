package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ghconnect/internal/setup"
	"ghconnect/pkg/config"
	"ghconnect/pkg/fuzzy"
)

var (
	connectClientID    string
	connectRedirectURL string
	connectNoBrowser   bool
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Walk through connecting a GitHub account",
	Long: `Walk through the connection flow: choose between github.com (cloud)
and a self-managed GitHub instance, authenticate, and pick the accounts
to sync.

For the cloud mode an OAuth authorization URL is opened in your browser;
after authorizing, paste the URL you were redirected to back into the
terminal. For the self-managed mode you will be asked for the host URL
and an API key (or username and password), which are validated against
the host before anything is saved.`,
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().StringVar(&connectClientID, "client-id", "", "OAuth application client ID for the cloud mode")
	connectCmd.Flags().StringVar(&connectRedirectURL, "redirect-url", "", "OAuth redirect URL registered with the application")
	connectCmd.Flags().BoolVar(&connectNoBrowser, "no-browser", false, "print the authorization URL instead of opening a browser")
}

func runConnect(cmd *cobra.Command, _ []string) error {
	m, err := loadMachine()
	if err != nil {
		return err
	}

	if m.Step() == setup.StepChooseMode {
		if err := chooseMode(m); err != nil {
			return err
		}
	}

	switch m.Step() {
	case setup.StepCloudAuth:
		if err := cloudAuth(m); err != nil {
			return err
		}
	case setup.StepSelfManagedAuth:
		if err := selfManagedAuth(cmd, m); err != nil {
			return err
		}
	case setup.StepThrottled:
		fmt.Printf("⏳ GitHub is throttling requests, try again after %v\n", m.ResumeAt())
		return nil
	}

	if m.Step() != setup.StepAccounts {
		return nil
	}

	accounts, err := m.RefreshAccounts(cmd.Context())
	if err != nil {
		if m.Step() == setup.StepThrottled {
			fmt.Printf("⏳ GitHub is throttling requests, try again after %v\n", m.ResumeAt())
			return nil
		}
		return err
	}

	printAccounts(accounts)
	fmt.Println()

	if err := selectAccounts(m, accounts); err != nil {
		return err
	}

	if m.Installable() {
		fmt.Println("✅ Ready to install")
	}
	return nil
}

func chooseMode(m *setup.Machine) error {
	finder := fuzzy.New("How is your GitHub hosted?")
	finder.AddOption("cloud", "github.com")
	finder.AddOption("selfmanaged", "GitHub Enterprise Server on your own infrastructure")

	choice, err := finder.Select()
	if err != nil {
		return err
	}

	switch choice {
	case "cloud":
		return m.ChooseMode(config.IntegrationTypeCloud)
	default:
		return m.ChooseMode(config.IntegrationTypeSelfManaged)
	}
}

func cloudAuth(m *setup.Machine) error {
	if connectClientID == "" || connectRedirectURL == "" {
		return fmt.Errorf("cloud mode requires --client-id and --redirect-url")
	}

	builder := setup.NewAuthURLBuilder(connectClientID, connectRedirectURL)
	authURL := builder.URL()

	fmt.Printf("🌐 Authorize ghconnect at: %s\n", authURL)
	if !connectNoBrowser {
		if err := setup.NewBrowserOpener().Open(authURL); err != nil {
			fmt.Printf("⚠️  Failed to open browser automatically: %v\n", err)
		}
	}

	fmt.Print("\nPaste the URL you were redirected to: ")
	reader := bufio.NewReader(os.Stdin)
	redirect, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	ok, err := m.HandleRedirect(strings.TrimSpace(redirect))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("the redirect URL did not contain a usable authorization, try again")
	}

	cache, err := setup.NewDefaultTokenCache()
	if err == nil {
		if cacheErr := cache.Store("github.com", m.Config().OAuth2Auth); cacheErr != nil {
			fmt.Printf("⚠️  Could not cache the token: %v\n", cacheErr)
		}
	}

	fmt.Println("✅ Authorized with GitHub")
	return nil
}

func selfManagedAuth(cmd *cobra.Command, m *setup.Machine) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("GitHub host URL: ")
	hostURL, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	fmt.Print("API key (leave empty to use username/password): ")
	keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}

	creds := setup.SelfManagedCredentials{
		URL:    strings.TrimSpace(hostURL),
		APIKey: strings.TrimSpace(string(keyBytes)),
	}

	if creds.APIKey == "" {
		fmt.Print("Username: ")
		username, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		fmt.Print("Password: ")
		passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		creds.Username = strings.TrimSpace(username)
		creds.Password = string(passBytes)
	}

	if err := m.ValidateSelfManaged(cmd.Context(), creds); err != nil {
		return fmt.Errorf("credential check failed: %w", err)
	}

	fmt.Println("✅ Credentials validated")
	return nil
}
