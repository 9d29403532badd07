package client

import (
	"context"

	"github.com/worldacross/membership/internal/client/models"
)

// Client is the remote membership API as seen by the session store.
type Client interface {
	Authenticate(ctx context.Context, creds models.Credentials) (models.User, error)
	SignOut(ctx context.Context) error
	FetchCurrentUser(ctx context.Context, userID int64) (models.User, error)
	RegisterUser(ctx context.Context, reg models.Registration) (models.User, error)
	UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) (models.User, error)
	ChangePassword(ctx context.Context, userID int64, change models.PasswordChange) error
}
