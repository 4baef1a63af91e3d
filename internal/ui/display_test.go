package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jkarvonen/owncloud-client/pkg/owncloud"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	assert.Equal(t, "long st...", truncate("long string that keeps going", 10))
	assert.Equal(t, "abc", truncate("abcdef", 3))
}

func TestRecipient(t *testing.T) {
	user := owncloud.NewShare("1", "/d", owncloud.ShareTypeUser, owncloud.PermissionRead,
		&owncloud.Sharee{ID: "alice", DisplayName: "Alice Adams", Type: owncloud.ShareTypeUser})
	assert.Equal(t, "Alice Adams", recipient(user))

	link := owncloud.NewLinkShare("2", "/d", owncloud.PermissionRead,
		owncloud.LinkData{URL: "https://cloud.example.com/s/tok"})
	assert.Equal(t, "https://cloud.example.com/s/tok", recipient(link))

	bare := owncloud.NewShare("3", "/d", owncloud.ShareTypeGroup, owncloud.PermissionRead, nil)
	assert.Equal(t, "-", recipient(bare))
}

func TestDisplaySharesDoesNotPanic(t *testing.T) {
	expire := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	DisplayShares(nil)
	DisplayShares([]*owncloud.Share{
		owncloud.NewShare("1", "/Documents", owncloud.ShareTypeUser, owncloud.PermissionRead,
			&owncloud.Sharee{ID: "alice", DisplayName: "Alice", Type: owncloud.ShareTypeUser}),
		owncloud.NewLinkShare("2", "/Photos", owncloud.PermissionRead, owncloud.LinkData{
			URL:         "https://cloud.example.com/s/tok",
			PasswordSet: true,
			ExpireDate:  &expire,
		}),
	})
}

func TestDisplayShareDoesNotPanic(t *testing.T) {
	DisplayShare(owncloud.NewLinkShare("2", "/Photos", owncloud.PermissionRead, owncloud.LinkData{
		URL: "https://cloud.example.com/s/tok",
	}))
	DisplayShare(owncloud.NewShare("1", "/Documents", owncloud.ShareTypeRemote, owncloud.PermissionDefault,
		&owncloud.Sharee{ID: "bob@other.example.com", DisplayName: "Bob", Type: owncloud.ShareTypeRemote}))
}

func TestAwaitOutcomeReturnsDeliveredOutcome(t *testing.T) {
	ch := make(chan owncloud.Outcome, 1)
	ch <- owncloud.Outcome{Kind: owncloud.OutcomeDeleted}
	close(ch)

	outcome := AwaitOutcome(ch, "waiting")
	assert.Equal(t, owncloud.OutcomeDeleted, outcome.Kind)
}
