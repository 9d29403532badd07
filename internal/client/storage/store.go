package storage

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("credential store closed")

// CredentialStore keeps at most one credential.
type CredentialStore interface {
	// Load returns the stored credential, or "" when there is none.
	Load(ctx context.Context) (string, error)
	// Save replaces the stored credential. expiresAt is advisory metadata.
	Save(ctx context.Context, token string, expiresAt time.Time) error
	// Remove deletes the credential. Removing an absent credential is not an error.
	Remove(ctx context.Context) error
	Close() error
}
