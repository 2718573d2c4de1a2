package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"ghconnect/internal/setup"
	"ghconnect/pkg/config"
	"ghconnect/pkg/github"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage the GitHub accounts selected for sync",
	Long: `List, refresh, and select the GitHub accounts whose repositories
will be synced, and add public accounts you are not a member of.`,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the known accounts",
	RunE:  runAccountsList,
}

var accountsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch the account list from GitHub and reconcile it",
	RunE:  runAccountsRefresh,
}

var accountsAddCmd = &cobra.Command{
	Use:   "add <login-or-url>",
	Short: "Add a public org or user by login, @login, or profile URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsAdd,
}

var accountsSelectCmd = &cobra.Command{
	Use:   "select [account-id]",
	Short: "Choose which accounts to sync",
	Long: `With no arguments, opens an interactive multi-select over all known
accounts. With an account ID, toggles that single account using
--sync=true|false.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAccountsSelect,
}

var accountsSelectSync bool

func init() {
	accountsSelectCmd.Flags().BoolVar(&accountsSelectSync, "sync", true, "whether the account should be synced")
	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsRefreshCmd)
	accountsCmd.AddCommand(accountsAddCmd)
	accountsCmd.AddCommand(accountsSelectCmd)
}

func runAccountsList(_ *cobra.Command, _ []string) error {
	m, err := loadMachine()
	if err != nil {
		return err
	}

	cfg := m.Config()
	ids := make([]string, 0, len(cfg.Accounts))
	for id := range cfg.Accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	accounts := make([]config.Account, 0, len(ids))
	for _, id := range ids {
		accounts = append(accounts, *cfg.Accounts[id])
	}
	printAccounts(accounts)
	return nil
}

func runAccountsRefresh(cmd *cobra.Command, _ []string) error {
	m, err := loadMachine()
	if err != nil {
		return err
	}

	accounts, err := m.RefreshAccounts(cmd.Context())
	if err != nil {
		if github.IsThrottled(err) {
			fmt.Printf("⏳ GitHub is throttling requests, try again after %v\n", m.ResumeAt())
			return nil
		}
		return err
	}

	printAccounts(accounts)
	return nil
}

func runAccountsAdd(cmd *cobra.Command, args []string) error {
	m, err := loadMachine()
	if err != nil {
		return err
	}

	acct, err := m.AddPublicAccount(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("✅ Added %s account %s\n", acct.Type, acct.ID)
	return nil
}

func runAccountsSelect(_ *cobra.Command, args []string) error {
	m, err := loadMachine()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		if err := m.SetSelected(args[0], accountsSelectSync); err != nil {
			return err
		}
		state := "excluded from"
		if accountsSelectSync {
			state = "selected for"
		}
		fmt.Printf("✅ Account %s %s sync\n", args[0], state)
		return nil
	}

	if m.Step() != setup.StepAccounts {
		return fmt.Errorf("not authenticated yet, run 'ghconnect connect' first")
	}

	cfg := m.Config()
	ids := make([]string, 0, len(cfg.Accounts))
	for id := range cfg.Accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	accounts := make([]config.Account, 0, len(ids))
	for _, id := range ids {
		accounts = append(accounts, *cfg.Accounts[id])
	}
	if len(accounts) == 0 {
		fmt.Println("No accounts found, run 'ghconnect accounts refresh' first")
		return nil
	}

	return selectAccounts(m, accounts)
}
