// Share lifecycle commands: list, create, create-link and delete. Each
// command issues one manager operation and waits for its single outcome.
package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jkarvonen/owncloud-client/internal/app"
	"github.com/jkarvonen/owncloud-client/internal/ui"
	"github.com/jkarvonen/owncloud-client/pkg/owncloud"
)

var sharesCmd = &cobra.Command{
	Use:   "shares",
	Short: "Manage shares on the server",
	Long:  `Provides commands to list, create, modify and delete shares for server paths.`,
}

var sharesListCmd = &cobra.Command{
	Use:   "list <path>",
	Short: "List all shares defined for a server path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		defer a.Shares.Close()
		return sharesListLogic(a, cmd, args)
	},
}

func sharesListLogic(a *app.App, cmd *cobra.Command, args []string) error {
	outcome := ui.AwaitOutcome(a.Shares.FetchShares(cmd.Context(), args[0]), "Fetching shares")
	if err := outcome.Err(); err != nil {
		return fmt.Errorf("fetching shares: %w", err)
	}
	ui.DisplayShares(outcome.Shares)
	return nil
}

var sharesCreateCmd = &cobra.Command{
	Use:   "create <path> <type> <share-with>",
	Short: "Share a path with a user, group or remote user",
	Long: `Creates a share of <path> for the given recipient. <type> is one of
'user', 'group' or 'remote'. Permissions default to the server's configured
default mask unless --permissions is given.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		defer a.Shares.Close()
		return sharesCreateLogic(a, cmd, args)
	},
}

func sharesCreateLogic(a *app.App, cmd *cobra.Command, args []string) error {
	shareType, err := parseShareType(args[1])
	if err != nil {
		return err
	}

	permissions := owncloud.PermissionDefault
	if raw, _ := cmd.Flags().GetString("permissions"); raw != "" {
		permissions, err = parsePermissions(raw)
		if err != nil {
			return err
		}
	}

	outcome := ui.AwaitOutcome(
		a.Shares.CreateShare(cmd.Context(), args[0], shareType, args[2], permissions),
		"Creating share",
	)
	if err := outcome.Err(); err != nil {
		return fmt.Errorf("creating share: %w", err)
	}
	ui.Success("Share created:")
	ui.DisplayShare(outcome.Share)
	return nil
}

var sharesCreateLinkCmd = &cobra.Command{
	Use:   "create-link <path>",
	Short: "Create a public link share for a path",
	Long: `Creates a link share of <path>. Some servers require link shares to be
password protected; in that case the command reports it and you can retry
with --password.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		defer a.Shares.Close()
		return sharesCreateLinkLogic(a, cmd, args)
	},
}

func sharesCreateLinkLogic(a *app.App, cmd *cobra.Command, args []string) error {
	password, _ := cmd.Flags().GetString("password")

	outcome := ui.AwaitOutcome(
		a.Shares.CreateLinkShare(cmd.Context(), args[0], password),
		"Creating link share",
	)
	if outcome.Kind == owncloud.OutcomeRequiresPassword {
		ui.Error("This server requires link shares to be password protected. Retry with --password.")
		return nil
	}
	if err := outcome.Err(); err != nil {
		return fmt.Errorf("creating link share: %w", err)
	}
	ui.Success("Link share created:")
	ui.DisplayShare(outcome.Share)
	return nil
}

var sharesDeleteCmd = &cobra.Command{
	Use:   "delete <path> <share-id>",
	Short: "Delete a share",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		defer a.Shares.Close()
		return sharesDeleteLogic(a, cmd, args)
	},
}

func sharesDeleteLogic(a *app.App, cmd *cobra.Command, args []string) error {
	share, err := findShare(cmd.Context(), a, args[0], args[1])
	if err != nil {
		return err
	}

	outcome := ui.AwaitOutcome(share.Delete(cmd.Context()), "Deleting share")
	if err := outcome.Err(); err != nil {
		return fmt.Errorf("deleting share: %w", err)
	}
	ui.Success("Share " + share.ID() + " deleted.")
	return nil
}

// findShare fetches the shares for path and returns the one with the given
// id. Entity mutators need a live snapshot, so every mutation command goes
// through this lookup.
func findShare(ctx context.Context, a *app.App, path, id string) (*owncloud.Share, error) {
	outcome := ui.AwaitOutcome(a.Shares.FetchShares(ctx, path), "Fetching shares")
	if err := outcome.Err(); err != nil {
		return nil, fmt.Errorf("fetching shares: %w", err)
	}
	for _, share := range outcome.Shares {
		if share.ID() == id {
			return share, nil
		}
	}
	return nil, fmt.Errorf("no share with id %s found for %s", id, path)
}

// parseShareType maps the CLI type names onto share types. Link is
// deliberately absent; 'create-link' covers it.
func parseShareType(raw string) (owncloud.ShareType, error) {
	switch strings.ToLower(raw) {
	case "user":
		return owncloud.ShareTypeUser, nil
	case "group":
		return owncloud.ShareTypeGroup, nil
	case "remote", "federated":
		return owncloud.ShareTypeRemote, nil
	default:
		return 0, fmt.Errorf("unknown share type %q (want user, group or remote)", raw)
	}
}

// parsePermissions accepts either a numeric mask or a comma-separated flag
// list like "read,update,share".
func parsePermissions(raw string) (owncloud.Permissions, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return owncloud.Permissions(n), nil
	}

	var permissions owncloud.Permissions
	for _, name := range strings.Split(raw, ",") {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "read":
			permissions |= owncloud.PermissionRead
		case "update":
			permissions |= owncloud.PermissionUpdate
		case "create":
			permissions |= owncloud.PermissionCreate
		case "delete":
			permissions |= owncloud.PermissionDelete
		case "share":
			permissions |= owncloud.PermissionShare
		case "default":
			permissions |= owncloud.PermissionDefault
		default:
			return 0, fmt.Errorf("unknown permission %q", name)
		}
	}
	return permissions, nil
}

func init() {
	rootCmd.AddCommand(sharesCmd)
	sharesCmd.AddCommand(sharesListCmd)
	sharesCmd.AddCommand(sharesCreateCmd)
	sharesCmd.AddCommand(sharesCreateLinkCmd)
	sharesCmd.AddCommand(sharesDeleteCmd)

	sharesCreateCmd.Flags().String("permissions", "", "Permission mask, numeric or comma-separated (read,update,create,delete,share)")
	sharesCreateLinkCmd.Flags().String("password", "", "Password protecting the link")
}
