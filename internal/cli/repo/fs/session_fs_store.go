package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ProductManager/internal/cli/repo"
)

// SessionFSStore keeps the CLI session in a single JSON file.
type SessionFSStore struct {
	Path string
}

var _ repo.SessionStore = SessionFSStore{}

func NewSessionFSStore(path string) SessionFSStore {
	return SessionFSStore{Path: path}
}

// Save writes the session, creating the parent directory when needed.
func (s SessionFSStore) Save(sess repo.Session) error {
	if strings.TrimSpace(sess.Token) == "" {
		return errors.New("empty session token")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, b, 0o600)
}

// Load reads the session. A missing or empty file yields repo.ErrNoSession.
func (s SessionFSStore) Load() (repo.Session, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return repo.Session{}, repo.ErrNoSession
	}
	if err != nil {
		return repo.Session{}, err
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return repo.Session{}, repo.ErrNoSession
	}
	var sess repo.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return repo.Session{}, fmt.Errorf("corrupt session file %s: %w", s.Path, err)
	}
	sess.Token = strings.TrimSpace(sess.Token)
	if sess.Token == "" {
		return repo.Session{}, repo.ErrNoSession
	}
	return sess, nil
}

// Clear removes the session file. Clearing an absent session succeeds.
func (s SessionFSStore) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
