// Authentication commands: OAuth2 authorization code flow with PKCE against
// the ownCloud oauth2 app. 'auth login' prints the authorization URL and
// stores the PKCE verifier; 'auth complete' finishes the exchange with the
// redirect URL the user pastes back.
package cmd

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/jkarvonen/owncloud-client/internal/app"
	"github.com/jkarvonen/owncloud-client/internal/config"
	"github.com/jkarvonen/owncloud-client/internal/session"
	"github.com/jkarvonen/owncloud-client/internal/ui"
	"github.com/jkarvonen/owncloud-client/pkg/owncloud"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication with the ownCloud server",
	Long:  `Provides subcommands to start and complete an OAuth2 login, clear the current session, and check authentication status.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start an OAuth2 login",
	Long: `Starts the OAuth2 authorization code flow. Visit the printed URL in a
browser, authorize the application, then run 'auth complete' with the full
URL your browser was redirected to.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrCreate()
		if err != nil {
			return fmt.Errorf("loading configuration for login: %w", err)
		}
		if cfg.ServerURL == "" {
			return app.ErrNotConfigured
		}
		if cfg.Token.AccessToken != "" {
			fmt.Println("You are already logged in. Run 'owncloud-client auth logout' first to switch accounts.")
			return nil
		}

		sessionMgr, err := newSessionManager()
		if err != nil {
			return err
		}
		if pending, err := sessionMgr.LoadPendingLogin(); err != nil {
			return err
		} else if pending != nil {
			fmt.Println("A login attempt is already pending. Complete it with 'auth complete <redirect-url>'")
			fmt.Println("or cancel it with 'auth logout' and start over. Authorization URL:")
			fmt.Println(pending.AuthURL)
			return nil
		}

		ctx, oauthConfig := owncloud.GetOauth2Config(cfg.ServerURL, config.ClientID)
		authURL, verifier, err := owncloud.StartAuthentication(ctx, oauthConfig)
		if err != nil {
			return fmt.Errorf("login initiation failed: %w", err)
		}

		if err := sessionMgr.SavePendingLogin(&session.PendingLogin{
			Verifier:  verifier,
			AuthURL:   authURL,
			StartedAt: time.Now(),
		}); err != nil {
			return fmt.Errorf("saving pending login failed: %w", err)
		}

		fmt.Println("To complete authentication, open the following URL in a browser and authorize the app:")
		fmt.Println(authURL)
		fmt.Println()
		fmt.Println("Afterwards run: owncloud-client auth complete '<redirect-url>'")
		return nil
	},
}

var authCompleteCmd = &cobra.Command{
	Use:   "complete <redirect-url>",
	Short: "Complete a started OAuth2 login",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrCreate()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		sessionMgr, err := newSessionManager()
		if err != nil {
			return err
		}
		pending, err := sessionMgr.LoadPendingLogin()
		if err != nil {
			return err
		}
		if pending == nil {
			return fmt.Errorf("no pending login; run 'auth login' first")
		}

		code, err := extractAuthCode(args[0])
		if err != nil {
			return err
		}

		ctx, oauthConfig := owncloud.GetOauth2Config(cfg.ServerURL, config.ClientID)
		token, err := owncloud.CompleteAuthentication(ctx, oauthConfig, code, pending.Verifier)
		if err != nil {
			// The code or verifier is spent either way; clear the state
			// so the user can start over.
			_ = sessionMgr.DeletePendingLogin()
			return fmt.Errorf("authentication failed, please run 'auth login' again: %w", err)
		}

		cfg.Token = *token
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving token: %w", err)
		}
		_ = sessionMgr.DeletePendingLogin()
		ui.Success("Login successful!")
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear stored credentials and any pending login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrCreate()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		if err := app.Logout(cfg); err != nil {
			return err
		}
		ui.Success("You have been logged out.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current authentication state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrCreate()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		sessionMgr, err := newSessionManager()
		if err != nil {
			return err
		}
		pending, err := sessionMgr.LoadPendingLogin()
		if err != nil {
			return err
		}

		switch {
		case pending != nil:
			fmt.Println("A login is pending. Complete it with 'auth complete <redirect-url>'.")
		case cfg.Token.AccessToken != "":
			fmt.Println("Logged in with an OAuth2 token.")
		case cfg.Password != "":
			fmt.Printf("Using app password authentication as %s.\n", cfg.Username)
		default:
			fmt.Println("Not logged in.")
		}
		return nil
	},
}

func newSessionManager() (*session.Manager, error) {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("getting config directory: %w", err)
	}
	return session.NewManager(configDir), nil
}

// extractAuthCode pulls the authorization code out of the pasted redirect
// URL; a bare code is accepted too.
func extractAuthCode(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Query().Get("code") == "" {
		if err == nil && parsed.RawQuery == "" && parsed.Scheme == "" && raw != "" {
			return raw, nil
		}
		return "", fmt.Errorf("authorization code not found in %q", raw)
	}
	return parsed.Query().Get("code"), nil
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authCompleteCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
}
