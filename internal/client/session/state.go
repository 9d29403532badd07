package session

import "github.com/worldacross/membership/internal/client/models"

// Status is the coarse authentication state.
type Status string

const (
	StatusAnonymous     Status = "anonymous"
	StatusChecking      Status = "checking"
	StatusAuthenticated Status = "authenticated"
)

// State is the session snapshot observed by the UI.
//
// IsAuthenticated is true exactly when Status is StatusAuthenticated, and
// then User is non-nil and Token is non-empty. Error is empty when there is
// nothing to show.
type State struct {
	Status          Status
	User            *models.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// InitialState is the state before Bootstrap settles.
func InitialState() State {
	return State{Status: StatusAnonymous, IsLoading: true}
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func anonymous(msg string) State {
	return State{Status: StatusAnonymous, Error: msg}
}
