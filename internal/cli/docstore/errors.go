package docstore

import (
	"errors"
	"net/http"

	"ProductManager/internal/cli/api"
)

// Error codes shared with the server.
const (
	CodeUnauthenticated  = "unauthenticated"
	CodePermissionDenied = "permission-denied"
	CodeInvalidArgument  = "invalid-argument"
	CodeInternal         = "internal"
)

var (
	ErrUnauthenticated  = errors.New("not signed in")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")
	// ErrStreamClosed is reported when the server ends a watch without an error event.
	ErrStreamClosed = errors.New("watch stream closed by server")
)

// Error is a failure reported by the document store.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

// Is matches the sentinel of the error code.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case CodeUnauthenticated:
		return target == ErrUnauthenticated
	case CodePermissionDenied:
		return target == ErrPermissionDenied
	case CodeInvalidArgument:
		return target == ErrInvalidArgument
	}
	return false
}

func statusError(code int, body []byte) error {
	se := api.NewStatusError(code, body)
	switch code {
	case http.StatusUnauthorized:
		return &Error{Code: CodeUnauthenticated, Message: se.Body}
	case http.StatusForbidden:
		return &Error{Code: CodePermissionDenied, Message: se.Body}
	case http.StatusBadRequest:
		return &Error{Code: CodeInvalidArgument, Message: se.Body}
	}
	return se
}
