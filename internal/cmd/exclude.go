package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var excludeCmd = &cobra.Command{
	Use:   "exclude",
	Short: "Manage per-account repository exclusion rules",
	Long: `Store a repository exclusion pattern per account. The pattern is
kept alongside the account selection and applied when repositories are
synced.`,
}

var excludeSetCmd = &cobra.Command{
	Use:   "set <account-id> <pattern>",
	Short: "Set the exclusion pattern for an account",
	Args:  cobra.ExactArgs(2),
	RunE:  runExcludeSet,
}

var excludeShowCmd = &cobra.Command{
	Use:   "show [account-id]",
	Short: "Show exclusion patterns",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExcludeShow,
}

func init() {
	excludeCmd.AddCommand(excludeSetCmd)
	excludeCmd.AddCommand(excludeShowCmd)
}

func runExcludeSet(_ *cobra.Command, args []string) error {
	m, err := loadMachine()
	if err != nil {
		return err
	}

	if err := m.SetExclusion(args[0], args[1]); err != nil {
		return err
	}

	fmt.Printf("✅ Exclusion for %s set to %q\n", args[0], args[1])
	return nil
}

func runExcludeShow(_ *cobra.Command, args []string) error {
	m, err := loadMachine()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		fmt.Printf("%s: %q\n", args[0], m.Exclusion(args[0]))
		return nil
	}

	cfg := m.Config()
	if len(cfg.Exclusions) == 0 {
		fmt.Println("No exclusion patterns set")
		return nil
	}

	ids := make([]string, 0, len(cfg.Exclusions))
	for id := range cfg.Exclusions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Printf("%s: %q\n", id, cfg.Exclusions[id])
	}
	return nil
}
