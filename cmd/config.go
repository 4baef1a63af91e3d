package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jkarvonen/owncloud-client/internal/config"
	"github.com/jkarvonen/owncloud-client/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage client configuration",
	Long:  `Provides subcommands to set the server URL and inspect the stored configuration.`,
}

var configSetServerCmd = &cobra.Command{
	Use:   "set-server <url>",
	Short: "Set the ownCloud server URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL := args[0]
		if err := config.ValidateServerURL(serverURL); err != nil {
			return err
		}

		cfg, err := config.LoadOrCreate()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		cfg.ServerURL = serverURL
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}
		ui.Success("Server URL saved: " + serverURL)
		return nil
	},
}

var configSetCredentialsCmd = &cobra.Command{
	Use:   "set-credentials <username> <app-password>",
	Short: "Store a username and app password for basic authentication",
	Long: `Stores an ownCloud username and app password. App passwords can be
generated in the ownCloud web interface under security settings. For token
based authentication use 'auth login' instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrCreate()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		cfg.Username = args[0]
		cfg.Password = args[1]
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}
		ui.Success("Credentials saved for " + cfg.Username)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrCreate()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		fmt.Printf("Server:   %s\n", valueOrUnset(cfg.ServerURL))
		fmt.Printf("Username: %s\n", valueOrUnset(cfg.Username))
		fmt.Printf("Auth:     %s\n", authMode(cfg))
		fmt.Printf("Debug:    %v\n", cfg.Debug)
		return nil
	},
}

func valueOrUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func authMode(cfg *config.Configuration) string {
	switch {
	case cfg.Token.AccessToken != "":
		return "oauth2 token"
	case cfg.Password != "":
		return "app password"
	default:
		return "none"
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetServerCmd)
	configCmd.AddCommand(configSetCredentialsCmd)
	configCmd.AddCommand(configShowCmd)
}
