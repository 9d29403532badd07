package session

import (
	"strings"

	"github.com/worldacross/membership/internal/client/models"
)

// ExpiredMessage is shown after the watcher ends a session.
const ExpiredMessage = "Your session has expired. Please log in again."

// Command is a state transition request applied by Reduce.
type Command interface {
	command() string
}

// Started marks an operation in flight.
type Started struct{}

// Authenticated installs a verified user and its credential.
type Authenticated struct {
	User  models.User
	Token string
}

// Failed ends an operation with a user-facing message.
type Failed struct{ Message string }

// Settled ends Bootstrap without a session.
type Settled struct{ Message string }

// LoggedOut drops the session.
type LoggedOut struct{}

// Expired drops the session because its credential stopped verifying.
type Expired struct{}

// ProfileUpdated merges fresh profile fields into the current user.
type ProfileUpdated struct{ User models.User }

// Finished ends an operation that does not change the session.
type Finished struct{}

// ErrorCleared resets Error.
type ErrorCleared struct{}

func (Started) command() string        { return "started" }
func (Authenticated) command() string  { return "authenticated" }
func (Failed) command() string         { return "failed" }
func (Settled) command() string        { return "settled" }
func (LoggedOut) command() string      { return "loggedOut" }
func (Expired) command() string        { return "expired" }
func (ProfileUpdated) command() string { return "profileUpdated" }
func (Finished) command() string       { return "finished" }
func (ErrorCleared) command() string   { return "errorCleared" }

// CommandName returns the tag of cmd.
func CommandName(cmd Command) string {
	if cmd == nil {
		return ""
	}
	return cmd.command()
}

// Reduce returns the state that follows s after cmd. It never mutates s and
// never performs I/O. Unknown commands leave the state unchanged.
func Reduce(s State, cmd Command) State {
	s = s.clone()

	switch c := cmd.(type) {
	case Started:
		s.IsLoading = true
		s.Error = ""
		if s.Status == StatusAnonymous {
			s.Status = StatusChecking
		}
		return s

	case Authenticated:
		if c.Token == "" || c.User.ID == 0 {
			return anonymous("Sign-in returned an incomplete session.")
		}
		u := c.User
		return State{
			Status:          StatusAuthenticated,
			User:            &u,
			Token:           c.Token,
			IsAuthenticated: true,
		}

	case Failed:
		msg := strings.TrimSpace(c.Message)
		if msg == "" {
			msg = "Something went wrong."
		}
		if s.Status == StatusChecking {
			return anonymous(msg)
		}
		s.IsLoading = false
		s.Error = msg
		return s

	case Settled:
		return anonymous(c.Message)

	case LoggedOut:
		return anonymous("")

	case Expired:
		return anonymous(ExpiredMessage)

	case ProfileUpdated:
		s.IsLoading = false
		if s.Status != StatusAuthenticated || s.User == nil {
			return s
		}
		patch := c.User
		patch.ID = 0
		merged := s.User.Merge(patch)
		s.User = &merged
		s.Error = ""
		return s

	case Finished:
		if s.Status == StatusChecking {
			return anonymous("")
		}
		s.IsLoading = false
		return s

	case ErrorCleared:
		s.Error = ""
		return s
	}
	return s
}
