package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingLoginLifecycle(t *testing.T) {
	mgr := NewManager(t.TempDir())

	// Nothing pending initially.
	state, err := mgr.LoadPendingLogin()
	require.NoError(t, err)
	assert.Nil(t, state)

	saved := &PendingLogin{
		Verifier:  "verifier-value",
		AuthURL:   "https://cloud.example.com/index.php/apps/oauth2/authorize?x=y",
		StartedAt: time.Now().Truncate(time.Second),
	}
	require.NoError(t, mgr.SavePendingLogin(saved))

	state, err = mgr.LoadPendingLogin()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, saved.Verifier, state.Verifier)
	assert.Equal(t, saved.AuthURL, state.AuthURL)

	require.NoError(t, mgr.DeletePendingLogin())
	state, err = mgr.LoadPendingLogin()
	require.NoError(t, err)
	assert.Nil(t, state)

	// Deleting again is idempotent.
	require.NoError(t, mgr.DeletePendingLogin())
}
