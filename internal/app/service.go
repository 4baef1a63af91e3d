package app

import (
	"context"

	"github.com/jkarvonen/owncloud-client/pkg/owncloud"
)

// ShareService is the manager surface the command layer depends on. It
// exists so cmd tests can substitute a fake without a live server.
type ShareService interface {
	CreateLinkShare(ctx context.Context, path, password string) <-chan owncloud.Outcome
	CreateShare(ctx context.Context, path string, shareType owncloud.ShareType, shareWith string, permissions owncloud.Permissions) <-chan owncloud.Outcome
	FetchShares(ctx context.Context, path string) <-chan owncloud.Outcome
	Close()
}

// owncloud.Manager is the live implementation.
var _ ShareService = (*owncloud.Manager)(nil)
