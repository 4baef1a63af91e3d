// Package cmd defines the cobra command surface of owncloud-client.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "owncloud-client",
	Short: "A CLI client for ownCloud shares",
	Long: `owncloud-client is a command-line tool for managing shares on an
ownCloud server via the OCS Share API.

Current capabilities include:
  - Configuration and authentication (app passwords or OAuth2 with PKCE)
  - Listing the shares defined for a server path
  - Creating user, group, federated and link shares
  - Changing permissions, link passwords, expiration dates and public upload
  - Deleting shares`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging for SDK and internal operations")
}
