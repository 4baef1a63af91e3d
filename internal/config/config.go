// Package config persists the application's settings as a JSON file in the
// user's home directory. Writes are guarded both by an in-process mutex and
// a cross-process file lock so concurrent CLI invocations cannot corrupt
// the file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/flock"

	"github.com/jkarvonen/owncloud-client/pkg/owncloud"
)

const configDirName = ".owncloud-client"
const configFile = "config.json"

// ClientID is the OAuth2 client id registered for this application in the
// ownCloud oauth2 app.
const ClientID = "xdXOt13JKxym1B1QcEncf2XDkLAexMBFwiT9j6EfhhHFJhs2KM9jbjTmf8JBXE69"

var validate = validator.New()

// Configuration holds all persisted settings: the server to talk to, the
// credentials (app password or OAuth token) and the debug flag.
type Configuration struct {
	ServerURL string         `json:"server_url" validate:"omitempty,url"`
	Username  string         `json:"username"`
	Password  string         `json:"password,omitempty"`
	Token     owncloud.Token `json:"token"`
	Debug     bool           `json:"debug"`
	mu        sync.RWMutex
}

// GetConfigDir returns the directory holding the configuration and session
// files, creating nothing.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, configDirName), nil
}

// Validate checks the configuration's field constraints.
func (c *Configuration) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateServerURL checks a candidate server URL before it is stored.
func ValidateServerURL(serverURL string) error {
	if err := validate.Var(serverURL, "required,url"); err != nil {
		return fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}
	return nil
}

// Save persists the configuration to disk under a file lock.
func (c *Configuration) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.Validate(); err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling config to JSON: %v", err)
	}

	configDirPath, err := GetConfigDir()
	if err != nil {
		return err
	}
	if _, err := os.Stat(configDirPath); os.IsNotExist(err) {
		if err := os.Mkdir(configDirPath, 0700); err != nil {
			return fmt.Errorf("creating config directory: %v", err)
		}
	}

	configFilePath := filepath.Join(configDirPath, configFile)
	fileLock := flock.New(configFilePath + ".lock")
	locked, err := fileLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring config file lock: %w", err)
	}
	if !locked {
		return errors.New("could not acquire config file lock, another instance may be running")
	}
	defer fileLock.Unlock()

	if err := os.WriteFile(configFilePath, jsonData, 0600); err != nil {
		return fmt.Errorf("writing configuration file: %v", err)
	}

	return nil
}

// Load reads the configuration file from disk.
func Load() (*Configuration, error) {
	config := &Configuration{}
	configDirPath, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(configDirPath, configFile)
	fileHandle, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(fileHandle, config); err != nil {
		return nil, fmt.Errorf("unmarshalling json: %v", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadOrCreate attempts to load a configuration file. If it doesn't exist,
// it returns a new, empty configuration.
func LoadOrCreate() (*Configuration, error) {
	config, err := Load()
	if err != nil {
		if os.IsNotExist(err) {
			return &Configuration{}, nil
		}
		return nil, err
	}
	return config, nil
}

// UpdateToken stores a refreshed OAuth token and persists immediately so a
// crash cannot lose it.
func (c *Configuration) UpdateToken(token owncloud.Token) error {
	c.mu.Lock()
	c.Token = token
	c.mu.Unlock()
	return c.Save()
}
