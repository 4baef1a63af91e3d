// Package owncloud provides a client for the ownCloud OCS Share API.
// It exposes share entities as immutable snapshots and a ShareManager that
// issues remote operations without blocking the caller; every operation
// eventually delivers exactly one Outcome on the channel it returns.
package owncloud

import (
	"context"
	"strings"
	"time"
)

// Permissions is the bit-mask combination of capabilities granted by a share.
type Permissions int

// Individual permission bits, matching the OCS wire values.
const (
	PermissionRead   Permissions = 1
	PermissionUpdate Permissions = 2
	PermissionCreate Permissions = 4
	PermissionDelete Permissions = 8
	PermissionShare  Permissions = 16

	// PermissionDefault is a sentinel asking the server to apply its
	// configured default mask instead of an explicit one.
	PermissionDefault Permissions = 1 << 30
)

// Has reports whether every bit in flag is present in p.
func (p Permissions) Has(flag Permissions) bool {
	return p&flag == flag
}

// String renders the mask as a compact flag list, e.g. "read,update,share".
func (p Permissions) String() string {
	if p == PermissionDefault {
		return "default"
	}
	var flags []string
	for _, f := range []struct {
		bit  Permissions
		name string
	}{
		{PermissionRead, "read"},
		{PermissionUpdate, "update"},
		{PermissionCreate, "create"},
		{PermissionDelete, "delete"},
		{PermissionShare, "share"},
	} {
		if p.Has(f.bit) {
			flags = append(flags, f.name)
		}
	}
	if len(flags) == 0 {
		return "none"
	}
	return strings.Join(flags, ",")
}

// ShareType identifies the kind of recipient a share targets.
// Values match the OCS share_type field.
type ShareType int

const (
	ShareTypeUser   ShareType = 0
	ShareTypeGroup  ShareType = 1
	ShareTypeLink   ShareType = 3
	ShareTypeRemote ShareType = 6
)

func (t ShareType) String() string {
	switch t {
	case ShareTypeUser:
		return "user"
	case ShareTypeGroup:
		return "group"
	case ShareTypeLink:
		return "link"
	case ShareTypeRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Sharee describes the recipient of a user, group or federated share.
// Link shares have no sharee; their recipient is the public URL.
type Sharee struct {
	ID          string
	DisplayName string
	Type        ShareType
}

// LinkData holds the state that only link shares carry.
// PasswordSet only records whether a password protects the link; the
// password itself is write-only and never retained client-side.
type LinkData struct {
	URL          string
	PasswordSet  bool
	ExpireDate   *time.Time
	PublicUpload bool
}

// Share is one share as last confirmed by the server. Snapshots are
// immutable: mutating operations never change the receiver, they deliver a
// new snapshot through their outcome channel once the server confirms the
// change. The ID is assigned by the server at creation and never changes.
type Share struct {
	mgr         *Manager
	id          string
	path        string
	shareType   ShareType
	permissions Permissions
	shareWith   *Sharee
	link        *LinkData
}

// NewShare builds a detached snapshot of a user, group or federated share.
// Detached snapshots can be inspected and displayed but their mutators fail
// with an invalid-request outcome; live snapshots come from a Manager.
func NewShare(id, path string, shareType ShareType, permissions Permissions, shareWith *Sharee) *Share {
	return &Share{
		id:          id,
		path:        path,
		shareType:   shareType,
		permissions: permissions,
		shareWith:   shareWith,
	}
}

// NewLinkShare builds a detached snapshot of a link share.
func NewLinkShare(id, path string, permissions Permissions, link LinkData) *Share {
	return &Share{
		id:          id,
		path:        path,
		shareType:   ShareTypeLink,
		permissions: permissions,
		link:        &link,
	}
}

// ID returns the server-assigned share identifier.
func (s *Share) ID() string { return s.id }

// Path returns the server path the share targets.
func (s *Share) Path() string { return s.path }

// Type returns the share type.
func (s *Share) Type() ShareType { return s.shareType }

// Permissions returns the confirmed permission mask.
func (s *Share) Permissions() Permissions { return s.permissions }

// ShareWith returns the recipient descriptor, or nil for link shares.
func (s *Share) ShareWith() *Sharee { return s.shareWith }

// IsLink reports whether this is a link share.
func (s *Share) IsLink() bool { return s.shareType == ShareTypeLink }

// Link returns the link-only state, or nil for non-link shares.
func (s *Share) Link() *LinkData { return s.link }

// clone returns a copy of the snapshot with its own LinkData so a pending
// mutation cannot alias the original.
func (s *Share) clone() *Share {
	next := *s
	if s.link != nil {
		link := *s.link
		next.link = &link
	}
	if s.shareWith != nil {
		sharee := *s.shareWith
		next.shareWith = &sharee
	}
	return &next
}

// SetPermissions asks the server to replace this share's permission mask.
// On success the outcome carries a snapshot whose permissions equal the
// requested mask; on failure the outcome reports the server error and no
// snapshot changes.
func (s *Share) SetPermissions(ctx context.Context, permissions Permissions) <-chan Outcome {
	if s.mgr == nil {
		return rejected("share is not attached to a manager")
	}
	return s.mgr.setPermissions(ctx, s, permissions)
}

// Delete asks the server to remove this share. On success the Deleted
// outcome fires and the caller must stop using every snapshot of the share;
// no field of the snapshot itself is touched.
func (s *Share) Delete(ctx context.Context) <-chan Outcome {
	if s.mgr == nil {
		return rejected("share is not attached to a manager")
	}
	return s.mgr.deleteShare(ctx, s)
}

// SetPassword protects the link with the given password, or removes
// protection when password is empty. The password is sent to the server and
// discarded; only the PasswordSet flag of the new snapshot reflects it.
func (s *Share) SetPassword(ctx context.Context, password string) <-chan Outcome {
	if s.mgr == nil {
		return rejected("share is not attached to a manager")
	}
	if !s.IsLink() {
		return rejected("password can only be set on link shares")
	}
	return s.mgr.setPassword(ctx, s, password)
}

// SetExpireDate sets or clears (nil) the link's expiration date.
func (s *Share) SetExpireDate(ctx context.Context, expireDate *time.Time) <-chan Outcome {
	if s.mgr == nil {
		return rejected("share is not attached to a manager")
	}
	if !s.IsLink() {
		return rejected("expire date can only be set on link shares")
	}
	return s.mgr.setExpireDate(ctx, s, expireDate)
}

// SetPublicUpload toggles anonymous uploads through the link.
func (s *Share) SetPublicUpload(ctx context.Context, publicUpload bool) <-chan Outcome {
	if s.mgr == nil {
		return rejected("share is not attached to a manager")
	}
	if !s.IsLink() {
		return rejected("public upload can only be set on link shares")
	}
	return s.mgr.setPublicUpload(ctx, s, publicUpload)
}
