// Package session manages the temporary state file used while an OAuth2
// PKCE login spans two CLI invocations ('auth login' prints the URL, 'auth
// complete' finishes the exchange). File locking prevents concurrent CLI
// instances from corrupting the state.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const pendingLoginFile = "pending_login.json"

// PendingLogin is the state of a login that has been started but not yet
// completed: the PKCE verifier must survive until the user pastes the
// redirect URL back.
type PendingLogin struct {
	Verifier  string    `json:"verifier"`
	AuthURL   string    `json:"auth_url"`
	StartedAt time.Time `json:"started_at"`
}

// Manager handles session file operations within a configurable directory.
type Manager struct {
	configDir string
}

// NewManager creates a session manager rooted at the given config dir.
func NewManager(configDir string) *Manager {
	return &Manager{configDir: configDir}
}

func (m *Manager) sessionDir() string {
	return filepath.Join(m.configDir, "sessions")
}

func (m *Manager) pendingLoginPath() string {
	return filepath.Join(m.sessionDir(), pendingLoginFile)
}

func (m *Manager) withLock(fn func(path string) error) error {
	if err := os.MkdirAll(m.sessionDir(), 0755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	path := m.pendingLoginPath()
	fileLock := flock.New(path + ".lock")
	locked, err := fileLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring session file lock: %w", err)
	}
	if !locked {
		return errors.New("could not acquire session file lock, another instance may be running")
	}
	defer fileLock.Unlock()
	return fn(path)
}

// SavePendingLogin persists a started login.
func (m *Manager) SavePendingLogin(state *PendingLogin) error {
	return m.withLock(func(path string) error {
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling pending login: %w", err)
		}
		return os.WriteFile(path, data, 0600)
	})
}

// LoadPendingLogin returns the started login, or (nil, nil) when none is
// pending.
func (m *Manager) LoadPendingLogin() (*PendingLogin, error) {
	var state *PendingLogin
	err := m.withLock(func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("reading pending login: %w", err)
		}
		state = &PendingLogin{}
		if err := json.Unmarshal(data, state); err != nil {
			return fmt.Errorf("unmarshalling pending login: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// DeletePendingLogin removes the state file; deleting a non-existent file
// is not an error.
func (m *Manager) DeletePendingLogin() error {
	return m.withLock(func(path string) error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("deleting pending login: %w", err)
		}
		return nil
	})
}
