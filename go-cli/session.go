package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Session is the locally cached login. It is trusted until the server
// rejects it.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (s Session) LoggedIn() bool {
	return s.Token != "" && s.User != nil
}

// SessionFile persists a Session as JSON.
type SessionFile struct {
	path string
}

func NewSessionFile(path string) *SessionFile {
	return &SessionFile{path: path}
}

func defaultSessionPath() (string, error) {
	dir := os.Getenv("POSTBOARD_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("couldn't find home dir: %w", err)
		}
		dir = filepath.Join(home, ".postboard")
	}
	return filepath.Join(dir, "session.json"), nil
}

func (f *SessionFile) Load() (Session, error) {
	b, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return Session{}, nil
	} else if err != nil {
		return Session{}, fmt.Errorf("error reading %s: %w", f.path, err)
	}

	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, fmt.Errorf("error unmarshalling %s: %w", f.path, err)
	}
	return s, nil
}

func (f *SessionFile) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("error creating session dir: %w", err)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("error marshalling session: %w", err)
	}
	return os.WriteFile(f.path, b, 0o600)
}

func (f *SessionFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error removing %s: %w", f.path, err)
	}
	return nil
}
