// Package app wires configuration, the OCS client and the share manager
// together for the command layer.
package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/jkarvonen/owncloud-client/internal/config"
	"github.com/jkarvonen/owncloud-client/internal/logger"
	"github.com/jkarvonen/owncloud-client/internal/session"
	"github.com/jkarvonen/owncloud-client/pkg/owncloud"
)

// ErrNotConfigured means no server URL has been stored yet.
var ErrNotConfigured = errors.New("no server configured, run 'owncloud-client config set-server' first")

type App struct {
	Config *config.Configuration
	Logger logger.Logger
	Shares ShareService
}

// sdkLogger adapts the application logger to the SDK's Debug-only
// interface.
type sdkLogger struct {
	log logger.Logger
}

func (l sdkLogger) Debug(v ...interface{}) {
	l.log.Debug(fmt.Sprint(v...))
}

// NewApp loads the configuration and builds a ready-to-use share manager.
// It returns ErrNotConfigured when no server URL is stored and
// owncloud.ErrReauthRequired when no usable credentials exist.
func NewApp(cmd *cobra.Command) (*App, error) {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}

	log := logger.NewDefaultLogger(cfg.Debug)
	if cfg.Debug {
		owncloud.SetLogger(sdkLogger{log: log})
	}

	client, err := buildClient(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		Config: cfg,
		Logger: log,
		Shares: owncloud.NewManager(client),
	}, nil
}

// buildClient picks the credential mode: OAuth bearer when a token is
// stored, basic auth when an app password is, error otherwise.
func buildClient(cfg *config.Configuration) (*owncloud.Client, error) {
	if cfg.ServerURL == "" {
		return nil, ErrNotConfigured
	}

	if cfg.Token.AccessToken != "" {
		ctx, oauthConfig := owncloud.GetOauth2Config(cfg.ServerURL, config.ClientID)
		base := (*oauth2.Config)(oauthConfig).TokenSource(ctx, (*oauth2.Token)(&cfg.Token))
		onNewToken := func(token *oauth2.Token) error {
			return cfg.UpdateToken(owncloud.Token(*token))
		}
		source := newPersistingTokenSource(base, (*oauth2.Token)(&cfg.Token), onNewToken)
		client := owncloud.NewOAuthClient(ctx, cfg.ServerURL, source)
		client.SetDebug(cfg.Debug)
		return client, nil
	}

	if cfg.Username != "" && cfg.Password != "" {
		client := owncloud.NewClient(cfg.ServerURL, cfg.Username, cfg.Password)
		client.SetDebug(cfg.Debug)
		return client, nil
	}

	return nil, owncloud.ErrReauthRequired
}

// Logout clears stored credentials and any pending login.
func Logout(cfg *config.Configuration) error {
	cfg.Token = owncloud.Token{}
	cfg.Password = ""
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("could not clear credentials: %w", err)
	}

	configDir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	if err := session.NewManager(configDir).DeletePendingLogin(); err != nil {
		// A stale pending login is harmless; the logout itself succeeded.
		return nil
	}
	return nil
}
