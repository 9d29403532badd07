package session

import (
	"errors"
	"strings"

	"github.com/worldacross/membership/internal/client/client"
	"github.com/worldacross/membership/internal/client/models"
)

var (
	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("session store is closed")
	// ErrNotAuthenticated is returned by operations that need a session.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrStale is returned when a newer session change superseded the
	// operation before its response arrived. The response was dropped.
	ErrStale = errors.New("superseded by a newer session change")
)

// Describe turns an operation error into the message kept in State.Error.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, client.ErrUnavailable):
		return "The membership service is unavailable. Please try again."
	case errors.Is(err, client.ErrAccountExists):
		return "An account with this email already exists."
	case errors.Is(err, ErrNotAuthenticated):
		return "Please log in first."
	case errors.Is(err, models.ErrPasswordMismatch):
		return "Passwords do not match."
	case errors.Is(err, client.ErrUnauthorized):
		if msg, ok := detail(err, client.ErrUnauthorized); ok {
			return msg
		}
		return "Invalid email or password."
	case errors.Is(err, client.ErrInvalidInput):
		if msg, ok := detail(err, client.ErrInvalidInput); ok {
			return msg
		}
		return err.Error()
	default:
		return err.Error()
	}
}

// detail returns the text a collaborator attached after sentinel.
func detail(err, sentinel error) (string, bool) {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	i := strings.Index(msg, marker)
	if i < 0 || i+len(marker) == len(msg) {
		return "", false
	}
	return msg[i+len(marker):], true
}
