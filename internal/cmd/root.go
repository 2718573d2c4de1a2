package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ghconnect",
	Short: "Connect a GitHub account to your data aggregation workspace",
	Long: `ghconnect walks you through connecting a GitHub account, either
github.com with OAuth or a self-managed GitHub instance with your own
credentials. It enumerates the accounts and organizations reachable with
those credentials, lets you choose which ones to sync and which
repositories to exclude, and persists the selection for the sync engine.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(excludeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statusCmd)
}
