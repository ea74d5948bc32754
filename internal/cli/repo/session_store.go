package repo

import "errors"

// ErrNoSession is returned when no session is stored.
var ErrNoSession = errors.New("no active session: run login or register")

// Session is the locally cached sign-in.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// SessionStore persists the session between CLI runs.
type SessionStore interface {
	Save(s Session) error
	Load() (Session, error)
	Clear() error
}
