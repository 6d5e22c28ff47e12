package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
	"gopkg.in/yaml.v3"
)

// SessionFileName is the name of the login session file in the base path.
const SessionFileName = ".pdb_session.yaml"

// SessionStore persists the login session between CLI invocations.
type SessionStore interface {
	LoadSession() (*models.Session, error)
	SaveSession(session *models.Session) error
	ClearSession() error
}

type fileSessionStore struct {
	basePath string
}

// NewSessionStore creates a SessionStore backed by .pdb_session.yaml in the
// given base directory.
func NewSessionStore(basePath string) SessionStore {
	return &fileSessionStore{basePath: basePath}
}

func (s *fileSessionStore) filePath() string {
	return filepath.Join(s.basePath, SessionFileName)
}

// LoadSession returns the saved session, or nil when nobody is logged in.
func (s *fileSessionStore) LoadSession() (*models.Session, error) {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var session models.Session
	if err := yaml.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("loading session: parsing YAML: %w", err)
	}
	if session.Email == "" {
		return nil, nil
	}
	return &session, nil
}

func (s *fileSessionStore) SaveSession(session *models.Session) error {
	if session == nil {
		return fmt.Errorf("saving session: session is nil")
	}
	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("saving session: creating directory: %w", err)
	}
	data, err := yaml.Marshal(session)
	if err != nil {
		return fmt.Errorf("saving session: marshaling YAML: %w", err)
	}
	if err := os.WriteFile(s.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("saving session: writing file: %w", err)
	}
	return nil
}

// ClearSession removes the session file. Clearing when logged out is not an
// error.
func (s *fileSessionStore) ClearSession() error {
	if err := os.Remove(s.filePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
