// ABOUTME: Persists the CLI login token between invocations.
// ABOUTME: Stored as JSON under the XDG config directory with 0600 permissions.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type sessionFile struct {
	Token string `json:"token"`
}

// SessionPath returns the session file location following XDG spec.
func SessionPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "vitals", "session.json")
}

// SaveSession writes s's token to path.
func SaveSession(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	data, err := json.Marshal(sessionFile{Token: s.Token})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// LoadSession reads and verifies the token at path. A missing file yields
// ErrUnauthorized.
func LoadSession(path string, issuer *Issuer) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return issuer.Parse(f.Token)
}

// ClearSession removes the session file. Removing a missing file is not an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
