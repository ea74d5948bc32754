package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ProductManager/internal/cli/api"
	"ProductManager/internal/cli/repo"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrLoginTaken         = errors.New("login already taken")
	ErrEmptyCredentials   = errors.New("email and password are required")
)

// AuthService is the sign-in use case of the CLI.
type AuthService interface {
	// Login signs in and keeps the session; returns the user id.
	Login(ctx context.Context, email, password string) (string, error)
	// Register creates the account and signs in; returns the user id.
	Register(ctx context.Context, email, password string) (string, error)
	// Logout drops the local session.
	Logout() error
	// CurrentUser returns the user of a still valid local session without network.
	CurrentUser() (string, bool)
}

// HTTPAuthService signs in against the identity API and keeps the session in a SessionStore.
type HTTPAuthService struct {
	baseURL string
	store   repo.SessionStore
	now     func() time.Time
}

var _ AuthService = (*HTTPAuthService)(nil)

func NewHTTPAuthService(baseURL string, store repo.SessionStore) *HTTPAuthService {
	return &HTTPAuthService{baseURL: baseURL, store: store, now: time.Now}
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type userResponse struct {
	UserID string `json:"user_id"`
}

func (s *HTTPAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return s.authenticate(ctx, "/api/user/login", email, password)
}

func (s *HTTPAuthService) Register(ctx context.Context, email, password string) (string, error) {
	return s.authenticate(ctx, "/api/user/register", email, password)
}

func (s *HTTPAuthService) authenticate(ctx context.Context, path, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", ErrEmptyCredentials
	}
	resp, body, err := api.PostJSON(ctx, api.Endpoint(s.baseURL, path), credentials{Login: email, Password: password}, "")
	if err != nil {
		return "", err
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return "", ErrInvalidCredentials
	case http.StatusConflict:
		return "", ErrLoginTaken
	default:
		return "", api.NewStatusError(resp.StatusCode, body)
	}

	token, err := api.TokenFromResponse(resp)
	if err != nil {
		return "", err
	}
	var ur userResponse
	if err := json.Unmarshal(body, &ur); err != nil || ur.UserID == "" {
		return "", fmt.Errorf("unexpected auth response: %s", strings.TrimSpace(string(body)))
	}
	if err := s.store.Save(repo.Session{Token: token, UserID: ur.UserID, Email: email}); err != nil {
		return "", fmt.Errorf("saving session: %w", err)
	}
	return ur.UserID, nil
}

func (s *HTTPAuthService) Logout() error {
	return s.store.Clear()
}

func (s *HTTPAuthService) CurrentUser() (string, bool) {
	sess, err := s.Session()
	if err != nil {
		return "", false
	}
	return sess.UserID, true
}

// Session returns the stored session unless its token has expired.
func (s *HTTPAuthService) Session() (repo.Session, error) {
	sess, err := s.store.Load()
	if err != nil {
		return repo.Session{}, err
	}
	if sess.UserID == "" || tokenExpired(sess.Token, s.now()) {
		return repo.Session{}, repo.ErrNoSession
	}
	return sess, nil
}

// tokenExpired reads the exp claim without verifying the signature; the
// server stays the authority, so a token without a readable exp is kept.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}
