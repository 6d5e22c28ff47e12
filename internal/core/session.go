package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/procurement-dashboard/pkg/models"
)

// ErrNotLoggedIn is returned when a command needs a session and none exists.
var ErrNotLoggedIn = errors.New("not logged in: run 'pdb login' first")

// SessionManager is the login gate. Any non-empty email and password are
// accepted; the role decides what the user sees.
type SessionManager interface {
	Login(email, password string, role models.Role) (*models.Session, error)
	Logout() error
	Current() (*models.Session, error)
}

type sessionManager struct {
	store  SessionPersister
	events EventLogger
	now    func() time.Time
}

// NewSessionManager creates a SessionManager persisting through store.
// events may be nil.
func NewSessionManager(store SessionPersister, events EventLogger) SessionManager {
	return &sessionManager{store: store, events: events, now: time.Now}
}

func (sm *sessionManager) Login(email, password string, role models.Role) (*models.Session, error) {
	email = strings.TrimSpace(email)
	var errs []string
	if email == "" {
		errs = append(errs, "email must not be empty")
	}
	if password == "" {
		errs = append(errs, "password must not be empty")
	}
	if role != models.RoleAdmin && role != models.RoleOfficer {
		errs = append(errs, fmt.Sprintf("role %q is invalid, must be one of: admin, officer", role))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("login failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	session := &models.Session{Email: email, Role: role, LoggedInAt: sm.now().UTC()}
	if err := sm.store.SaveSession(session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	if sm.events != nil {
		_ = sm.events.LogEvent(EventSessionLogin, map[string]any{"email": email, "role": string(role)})
	}
	return session, nil
}

func (sm *sessionManager) Logout() error {
	if err := sm.store.ClearSession(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if sm.events != nil {
		_ = sm.events.LogEvent(EventSessionLogout, nil)
	}
	return nil
}

// Current returns the active session or ErrNotLoggedIn.
func (sm *sessionManager) Current() (*models.Session, error) {
	s, err := sm.store.LoadSession()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if s == nil {
		return nil, ErrNotLoggedIn
	}
	return s, nil
}
