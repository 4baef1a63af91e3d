package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkarvonen/owncloud-client/pkg/owncloud"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &Configuration{
		ServerURL: "https://cloud.example.com",
		Username:  "alice",
		Password:  "app-pass",
		Debug:     true,
	}
	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://cloud.example.com", loaded.ServerURL)
	assert.Equal(t, "alice", loaded.Username)
	assert.Equal(t, "app-pass", loaded.Password)
	assert.True(t, loaded.Debug)
}

func TestLoadOrCreateMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadOrCreate()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.ServerURL)
	assert.Equal(t, "", cfg.Username)
}

func TestSaveRejectsInvalidServerURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &Configuration{ServerURL: "not a url"}
	assert.Error(t, cfg.Save())
}

func TestValidateServerURL(t *testing.T) {
	assert.NoError(t, ValidateServerURL("https://cloud.example.com"))
	assert.Error(t, ValidateServerURL(""))
	assert.Error(t, ValidateServerURL("cloud.example.com without scheme"))
}

func TestSaveFilePermissions(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := &Configuration{ServerURL: "https://cloud.example.com"}
	require.NoError(t, cfg.Save())

	info, err := os.Stat(filepath.Join(home, configDirName, configFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestUpdateTokenPersists(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &Configuration{ServerURL: "https://cloud.example.com"}
	require.NoError(t, cfg.Save())

	require.NoError(t, cfg.UpdateToken(owncloud.Token{AccessToken: "fresh"}))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh", loaded.Token.AccessToken)
}
