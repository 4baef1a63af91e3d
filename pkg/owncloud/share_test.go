package owncloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissionsString(t *testing.T) {
	tests := []struct {
		permissions Permissions
		want        string
	}{
		{PermissionRead, "read"},
		{PermissionRead | PermissionUpdate, "read,update"},
		{PermissionRead | PermissionUpdate | PermissionCreate | PermissionDelete | PermissionShare, "read,update,create,delete,share"},
		{PermissionDefault, "default"},
		{0, "none"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.permissions.String())
	}
}

func TestPermissionsHas(t *testing.T) {
	mask := PermissionRead | PermissionShare
	assert.True(t, mask.Has(PermissionRead))
	assert.True(t, mask.Has(PermissionShare))
	assert.True(t, mask.Has(PermissionRead|PermissionShare))
	assert.False(t, mask.Has(PermissionUpdate))
	assert.False(t, mask.Has(PermissionRead|PermissionUpdate))
}

func TestShareTypeString(t *testing.T) {
	assert.Equal(t, "user", ShareTypeUser.String())
	assert.Equal(t, "group", ShareTypeGroup.String())
	assert.Equal(t, "link", ShareTypeLink.String())
	assert.Equal(t, "remote", ShareTypeRemote.String())
	assert.Equal(t, "unknown", ShareType(99).String())
}

func TestDetachedShareAccessors(t *testing.T) {
	sharee := &Sharee{ID: "alice", DisplayName: "Alice", Type: ShareTypeUser}
	share := NewShare("11", "/Documents", ShareTypeUser, PermissionRead, sharee)

	assert.Equal(t, "11", share.ID())
	assert.Equal(t, "/Documents", share.Path())
	assert.Equal(t, ShareTypeUser, share.Type())
	assert.Equal(t, PermissionRead, share.Permissions())
	assert.Equal(t, sharee, share.ShareWith())
	assert.False(t, share.IsLink())
	assert.Nil(t, share.Link())
}

func TestCloneDoesNotAliasLinkData(t *testing.T) {
	share := NewLinkShare("12", "/Photos", PermissionRead, LinkData{URL: "https://cloud.example.com/s/a"})

	next := share.clone()
	next.link.PasswordSet = true
	next.permissions = PermissionShare

	assert.False(t, share.Link().PasswordSet)
	assert.Equal(t, PermissionRead, share.Permissions())
}
