package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// AuthCookieName is the cookie the server issues on login and register.
const AuthCookieName = "auth_token"

// ErrNoAuthCookie is returned when a login response carries no auth cookie.
var ErrNoAuthCookie = errors.New("no auth cookie in response")

// StatusError describes a non-2xx reply.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server status %d", e.Code)
	}
	return fmt.Sprintf("server status %d: %s", e.Code, e.Body)
}

// DoJSON sends payload as JSON (nil means no body) and returns the response with its
// body read. If token is non-empty, it is passed as auth cookie.
func DoJSON(ctx context.Context, method, url string, payload any, token string) (*http.Response, []byte, error) {
	var rd io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	SetToken(req, token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	return resp, body, nil
}

// PostJSON sends a JSON POST request.
func PostJSON(ctx context.Context, url string, payload any, token string) (*http.Response, []byte, error) {
	return DoJSON(ctx, http.MethodPost, url, payload, token)
}

// SetToken attaches the auth cookie.
func SetToken(req *http.Request, token string) {
	if token != "" {
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
	}
}

// TokenFromResponse extracts the auth cookie from a response.
func TokenFromResponse(resp *http.Response) (string, error) {
	for _, c := range resp.Cookies() {
		if c.Name == AuthCookieName && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", ErrNoAuthCookie
}

// NewStatusError builds a StatusError from a reply body.
func NewStatusError(code int, body []byte) *StatusError {
	return &StatusError{Code: code, Body: strings.TrimSpace(string(body))}
}

// Endpoint joins the server URL and an API path.
func Endpoint(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + path
}
