// Single-field share mutation commands. Each one fetches the live snapshot
// by id, issues exactly one mutator and reports its outcome.
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jkarvonen/owncloud-client/internal/app"
	"github.com/jkarvonen/owncloud-client/internal/ui"
)

var sharesSetPermissionsCmd = &cobra.Command{
	Use:   "set-permissions <path> <share-id> <permissions>",
	Short: "Replace a share's permission mask",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		defer a.Shares.Close()
		return sharesSetPermissionsLogic(a, cmd, args)
	},
}

func sharesSetPermissionsLogic(a *app.App, cmd *cobra.Command, args []string) error {
	permissions, err := parsePermissions(args[2])
	if err != nil {
		return err
	}

	share, err := findShare(cmd.Context(), a, args[0], args[1])
	if err != nil {
		return err
	}

	outcome := ui.AwaitOutcome(share.SetPermissions(cmd.Context(), permissions), "Updating permissions")
	if err := outcome.Err(); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	ui.Success("Permissions updated: " + outcome.Share.Permissions().String())
	return nil
}

var sharesSetPasswordCmd = &cobra.Command{
	Use:   "set-password <path> <share-id> [password]",
	Short: "Set or clear the password of a link share",
	Long: `Protects a link share with the given password, or removes the protection
when the password is omitted. The password is sent to the server and not
stored by the client.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		defer a.Shares.Close()
		return sharesSetPasswordLogic(a, cmd, args)
	},
}

func sharesSetPasswordLogic(a *app.App, cmd *cobra.Command, args []string) error {
	password := ""
	if len(args) == 3 {
		password = args[2]
	}

	share, err := findShare(cmd.Context(), a, args[0], args[1])
	if err != nil {
		return err
	}

	outcome := ui.AwaitOutcome(share.SetPassword(cmd.Context(), password), "Updating password")
	if err := outcome.Err(); err != nil {
		return fmt.Errorf("setting password: %w", err)
	}
	if outcome.Share.Link().PasswordSet {
		ui.Success("Password set.")
	} else {
		ui.Success("Password removed.")
	}
	return nil
}

var sharesSetExpireCmd = &cobra.Command{
	Use:   "set-expire <path> <share-id> [date]",
	Short: "Set or clear the expiration date of a link share",
	Long:  `Sets the expiration date (YYYY-MM-DD) of a link share, or clears it when the date is omitted.`,
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		defer a.Shares.Close()
		return sharesSetExpireLogic(a, cmd, args)
	},
}

func sharesSetExpireLogic(a *app.App, cmd *cobra.Command, args []string) error {
	var expireDate *time.Time
	if len(args) == 3 {
		parsed, err := time.Parse("2006-01-02", args[2])
		if err != nil {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", args[2], err)
		}
		expireDate = &parsed
	}

	share, err := findShare(cmd.Context(), a, args[0], args[1])
	if err != nil {
		return err
	}

	outcome := ui.AwaitOutcome(share.SetExpireDate(cmd.Context(), expireDate), "Updating expiration date")
	if err := outcome.Err(); err != nil {
		return fmt.Errorf("setting expiration date: %w", err)
	}
	if expireDate != nil {
		ui.Success("Expiration date set to " + expireDate.Format("2006-01-02") + ".")
	} else {
		ui.Success("Expiration date removed.")
	}
	return nil
}

var sharesSetPublicUploadCmd = &cobra.Command{
	Use:   "set-public-upload <path> <share-id> <true|false>",
	Short: "Toggle anonymous uploads through a link share",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("error creating app: %w", err)
		}
		defer a.Shares.Close()
		return sharesSetPublicUploadLogic(a, cmd, args)
	},
}

func sharesSetPublicUploadLogic(a *app.App, cmd *cobra.Command, args []string) error {
	var publicUpload bool
	switch args[2] {
	case "true":
		publicUpload = true
	case "false":
		publicUpload = false
	default:
		return fmt.Errorf("invalid value %q, want true or false", args[2])
	}

	share, err := findShare(cmd.Context(), a, args[0], args[1])
	if err != nil {
		return err
	}

	outcome := ui.AwaitOutcome(share.SetPublicUpload(cmd.Context(), publicUpload), "Updating public upload")
	if err := outcome.Err(); err != nil {
		return fmt.Errorf("setting public upload: %w", err)
	}
	if outcome.Share.Link().PublicUpload {
		ui.Success("Public upload enabled.")
	} else {
		ui.Success("Public upload disabled.")
	}
	return nil
}

func init() {
	sharesCmd.AddCommand(sharesSetPermissionsCmd)
	sharesCmd.AddCommand(sharesSetPasswordCmd)
	sharesCmd.AddCommand(sharesSetExpireCmd)
	sharesCmd.AddCommand(sharesSetPublicUploadCmd)
}
