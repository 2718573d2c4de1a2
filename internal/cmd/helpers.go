package cmd

import (
	"fmt"
	"strings"

	"ghconnect/internal/setup"
	"ghconnect/pkg/config"
	"ghconnect/pkg/fuzzy"
)

// loadMachine loads the persisted configuration and builds the flow
// machine over it. Install-eligibility changes are reported to the
// operator directly.
func loadMachine() (*setup.Machine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	store, err := config.NewDefaultFileStore()
	if err != nil {
		return nil, err
	}

	m := setup.NewMachine(cfg, setup.Options{
		Store: store,
		Notify: func(installable bool) {
			if installable {
				fmt.Println("✅ Install is now enabled")
			} else {
				fmt.Println("⚠️  Install is disabled: select at least one account")
			}
		},
	})
	return m, nil
}

// printAccounts renders the reconciled account list.
func printAccounts(accounts []config.Account) {
	if len(accounts) == 0 {
		fmt.Println("No accounts found")
		return
	}

	fmt.Printf("%-24s %-6s %-8s %-8s %s\n", "ACCOUNT", "TYPE", "REPOS", "PUBLIC", "SELECTED")
	for _, acct := range accounts {
		selected := ""
		if acct.Selected {
			selected = "yes"
		}
		public := ""
		if acct.Public {
			public = "yes"
		}
		fmt.Printf("%-24s %-6s %-8d %-8s %s\n", acct.ID, acct.Type, acct.TotalCount, public, selected)
	}
}

// selectAccounts runs the fzf multi-select over the account list and
// applies the chosen selection.
func selectAccounts(m *setup.Machine, accounts []config.Account) error {
	finder := fuzzy.NewFzf("Select accounts to sync (tab to toggle):")
	options := make([]fuzzy.Option, 0, len(accounts))
	for _, acct := range accounts {
		desc := string(acct.Type)
		if acct.Name != "" {
			desc = fmt.Sprintf("%s, %s", acct.Name, strings.ToLower(string(acct.Type)))
		}
		options = append(options, fuzzy.Option{Value: acct.ID, Description: desc})
	}
	if err := finder.SetOptions(options); err != nil {
		return err
	}

	chosen, err := finder.MultiSelect()
	if err != nil {
		return err
	}

	chosenSet := make(map[string]bool, len(chosen))
	for _, id := range chosen {
		chosenSet[id] = true
	}

	for _, acct := range accounts {
		if err := m.SelectAccount(acct, chosenSet[acct.ID]); err != nil {
			return err
		}
	}

	fmt.Printf("✅ %d account(s) selected for sync\n", len(chosen))
	return nil
}
