// Package ui renders shares and operation progress for the CLI. All data
// output goes to stdout; progress and status chatter go to stderr so piped
// output stays clean.
package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/jkarvonen/owncloud-client/pkg/owncloud"
)

const (
	lineLength        = 110
	maxPathLength     = 40
	maxRecipientWidth = 30
	spinnerType       = 14
	spinnerThrottle   = 100 * time.Millisecond
)

// Success prints a success message to stdout.
func Success(message string) {
	fmt.Println(message)
}

// Error prints an error message to stderr.
func Error(message string) {
	fmt.Fprintln(os.Stderr, "Error:", message)
}

// DisplayShares renders a table of shares in server order.
func DisplayShares(shares []*owncloud.Share) {
	if len(shares) == 0 {
		fmt.Println("No shares found.")
		return
	}

	fmt.Printf("%-8s %-7s %-*s %-22s %-*s\n", "ID", "TYPE", maxPathLength, "PATH", "PERMISSIONS", maxRecipientWidth, "RECIPIENT")
	for i := 0; i < lineLength; i++ {
		fmt.Print("-")
	}
	fmt.Println()

	for _, share := range shares {
		fmt.Printf("%-8s %-7s %-*s %-22s %-*s\n",
			share.ID(),
			share.Type().String(),
			maxPathLength, truncate(share.Path(), maxPathLength),
			share.Permissions().String(),
			maxRecipientWidth, truncate(recipient(share), maxRecipientWidth),
		)
	}
}

// DisplayShare renders one share in detail, including link-only state.
func DisplayShare(share *owncloud.Share) {
	fmt.Printf("ID:          %s\n", share.ID())
	fmt.Printf("Type:        %s\n", share.Type())
	fmt.Printf("Path:        %s\n", share.Path())
	fmt.Printf("Permissions: %s\n", share.Permissions())
	if sharee := share.ShareWith(); sharee != nil {
		fmt.Printf("Shared with: %s (%s)\n", sharee.DisplayName, sharee.ID)
	}
	if link := share.Link(); link != nil {
		fmt.Printf("URL:         %s\n", link.URL)
		fmt.Printf("Password:    %s\n", yesNo(link.PasswordSet))
		if link.ExpireDate != nil {
			fmt.Printf("Expires:     %s\n", link.ExpireDate.Format("2006-01-02"))
		} else {
			fmt.Printf("Expires:     never\n")
		}
		fmt.Printf("Public upload: %s\n", yesNo(link.PublicUpload))
	}
}

// AwaitOutcome spins until the operation's single outcome arrives.
func AwaitOutcome(ch <-chan owncloud.Outcome, description string) owncloud.Outcome {
	bar := newWaitSpinner(description)
	ticker := time.NewTicker(spinnerThrottle)
	defer ticker.Stop()
	defer bar.Finish()

	for {
		select {
		case outcome := <-ch:
			return outcome
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

// newWaitSpinner builds an indeterminate spinner writing to stderr.
func newWaitSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(spinnerType),
		progressbar.OptionThrottle(spinnerThrottle),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)
}

func recipient(share *owncloud.Share) string {
	if link := share.Link(); link != nil {
		return link.URL
	}
	if sharee := share.ShareWith(); sharee != nil {
		return sharee.DisplayName
	}
	return "-"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
