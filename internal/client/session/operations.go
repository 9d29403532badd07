package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/worldacross/membership/internal/client/models"
	"github.com/worldacross/membership/internal/logging"
)

// Bootstrap restores the session from the stored credential. A missing,
// invalid or expired credential, or a member who is no longer active,
// settles the store anonymous and discards the credential.
func (s *Store) Bootstrap(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	_, err := s.shared(ctx, "bootstrap", func(ctx context.Context) (any, error) {
		return nil, s.bootstrap(ctx)
	})
	s.outcome("bootstrap", err)
	return err
}

func (s *Store) bootstrap(ctx context.Context) error {
	log := s.opLogger("bootstrap")

	if s.skipAuthCheck {
		log.Debug(ctx, "auth check skipped")
		s.persist.Lock()
		s.dispatch(Settled{})
		s.persist.Unlock()
		return nil
	}

	epoch := s.start()

	tok, err := s.creds.Load(ctx)
	if err != nil {
		log.Error(ctx, "load credential", "error", err)
		s.commit(ctx, log, epoch, "", Settled{Message: "Could not read the saved session."})
		return fmt.Errorf("load credential: %w", err)
	}
	if tok == "" {
		s.commit(ctx, log, epoch, "", Settled{})
		return nil
	}

	res := s.verify(tok)
	if !res.Valid {
		log.Info(ctx, "stored credential rejected", "reason", string(res.Reason))
		s.commit(ctx, log, epoch, tok, Settled{})
		return nil
	}

	stored, err := UserFromClaims(res.Claims)
	if err != nil {
		log.Warn(ctx, "stored credential unusable", "error", err)
		s.commit(ctx, log, epoch, tok, Settled{})
		return nil
	}

	user, err := s.api.FetchCurrentUser(ctx, stored.ID)
	if err != nil {
		log.Warn(ctx, "fetch current user", "user_id", stored.ID, "error", err)
		s.commit(ctx, log, epoch, tok, Settled{Message: Describe(err)})
		return fmt.Errorf("fetch current user: %w", err)
	}
	if !user.IsActive() {
		log.Info(ctx, "member no longer active", "user_id", user.ID, "status", string(user.Status))
		s.commit(ctx, log, epoch, tok, Settled{})
		return nil
	}

	if !s.commit(ctx, log, epoch, "", Authenticated{User: user, Token: tok}) {
		return ErrStale
	}
	log.Info(ctx, "session restored", "user_id", user.ID)
	return nil
}

// Login authenticates creds, issues and stores a credential and moves the
// store to authenticated. Concurrent logins for the same email share one
// call, which keeps running while any of its callers still waits.
func (s *Store) Login(ctx context.Context, creds models.Credentials) error {
	if s.isClosed() {
		return ErrClosed
	}
	key := "login:" + normalizeEmail(creds.Email)
	_, err := s.shared(ctx, key, func(ctx context.Context) (any, error) {
		return nil, s.login(ctx, creds)
	})
	s.outcome("login", err)
	return err
}

func (s *Store) login(ctx context.Context, creds models.Credentials) error {
	log := s.opLogger("login")
	epoch := s.start()

	user, err := s.api.Authenticate(ctx, creds)
	if err != nil {
		log.Info(ctx, "login rejected", "error", err)
		s.dispatchIf(epoch, Failed{Message: Describe(err)})
		return fmt.Errorf("authenticate: %w", err)
	}

	if err := s.establish(ctx, log, epoch, user); err != nil {
		return err
	}
	log.Info(ctx, "logged in", "user_id", user.ID)
	return nil
}

// Logout signs out remotely on a best-effort basis, removes the stored
// credential and always ends anonymous.
func (s *Store) Logout(ctx context.Context) error {
	_, err := s.shared(ctx, "logout", func(ctx context.Context) (any, error) {
		log := s.opLogger("logout")
		if err := s.api.SignOut(ctx); err != nil {
			log.Warn(ctx, "remote sign-out failed", "error", err)
		}

		s.persist.Lock()
		if err := s.creds.Remove(ctx); err != nil {
			log.Warn(ctx, "remove credential", "error", err)
		}
		s.dispatch(LoggedOut{})
		s.persist.Unlock()

		log.Info(ctx, "logged out")
		return nil, nil
	})
	s.outcome("logout", err)
	return err
}

// Register creates an account. With credential issuing enabled the new
// member is also logged in; otherwise the store returns to its previous
// session status. With the auth check skipped a placeholder member is
// returned without calling the API.
func (s *Store) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	if s.isClosed() {
		return models.User{}, ErrClosed
	}

	if s.skipAuthCheck {
		s.opLogger("register").Debug(ctx, "auth check skipped, registration not sent")
		s.metrics.Operation("register", "skipped")
		return placeholderUser(reg), nil
	}

	key := "register:" + normalizeEmail(reg.Email)
	v, err := s.shared(ctx, key, func(ctx context.Context) (any, error) {
		return s.register(ctx, reg)
	})
	s.outcome("register", err)
	if err != nil {
		return models.User{}, err
	}
	return v.(models.User), nil
}

func (s *Store) register(ctx context.Context, reg models.Registration) (models.User, error) {
	log := s.opLogger("register")
	epoch := s.start()

	user, err := s.api.RegisterUser(ctx, reg)
	if err != nil {
		log.Info(ctx, "registration rejected", "error", err)
		s.dispatchIf(epoch, Failed{Message: Describe(err)})
		return models.User{}, fmt.Errorf("register: %w", err)
	}
	log.Info(ctx, "member registered", "user_id", user.ID)

	if !s.registerIssuesCredential {
		s.dispatchIf(epoch, Finished{})
		return user, nil
	}
	if err := s.establish(ctx, log, epoch, user); err != nil {
		return user, err
	}
	return user, nil
}

// UpdateProfile sends upd for the current member and merges the response.
func (s *Store) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) error {
	if s.isClosed() {
		return ErrClosed
	}
	_, err := s.shared(ctx, "profile", func(ctx context.Context) (any, error) {
		return nil, s.updateProfile(ctx, upd)
	})
	s.outcome("profile", err)
	return err
}

func (s *Store) updateProfile(ctx context.Context, upd models.ProfileUpdate) error {
	log := s.opLogger("profile")

	userID, err := s.currentUserID()
	if err != nil {
		s.dispatch(Failed{Message: Describe(err)})
		return err
	}

	epoch := s.start()
	user, err := s.api.UpdateProfile(ctx, userID, upd)
	if err != nil {
		log.Info(ctx, "profile update rejected", "user_id", userID, "error", err)
		s.dispatchIf(epoch, Failed{Message: Describe(err)})
		return fmt.Errorf("update profile: %w", err)
	}
	if !s.dispatchIf(epoch, ProfileUpdated{User: user}) {
		return ErrStale
	}
	log.Info(ctx, "profile updated", "user_id", userID)
	return nil
}

// ChangePassword changes the current member's password. The session and
// its credential are left as they are.
func (s *Store) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	if s.isClosed() {
		return ErrClosed
	}
	_, err := s.shared(ctx, "password", func(ctx context.Context) (any, error) {
		return nil, s.changePassword(ctx, change)
	})
	s.outcome("password", err)
	return err
}

func (s *Store) changePassword(ctx context.Context, change models.PasswordChange) error {
	log := s.opLogger("password")

	userID, err := s.currentUserID()
	if err != nil {
		s.dispatch(Failed{Message: Describe(err)})
		return err
	}

	epoch := s.start()
	if err := s.api.ChangePassword(ctx, userID, change); err != nil {
		log.Info(ctx, "password change rejected", "user_id", userID, "error", err)
		s.dispatchIf(epoch, Failed{Message: Describe(err)})
		return fmt.Errorf("change password: %w", err)
	}
	s.dispatchIf(epoch, Finished{})
	log.Info(ctx, "password changed", "user_id", userID)
	return nil
}

// establish issues and stores a credential for user and installs the
// session unless a newer session change happened since epoch. A stale
// response never touches the stored credential, which belongs to the newer
// session.
func (s *Store) establish(ctx context.Context, log logging.Logger, epoch uint64, user models.User) error {
	tok, exp, err := s.codec.IssueWithExpiry(claimsFor(user), s.tokenTTL)
	if err != nil {
		log.Error(ctx, "issue credential", "error", err)
		s.dispatchIf(epoch, Failed{Message: "Could not create a session."})
		return err
	}

	s.persist.Lock()
	defer s.persist.Unlock()

	if !s.current(epoch) {
		log.Info(ctx, "session change raced this operation, response dropped", "user_id", user.ID)
		return ErrStale
	}
	if err := s.creds.Save(ctx, tok, exp); err != nil {
		log.Error(ctx, "save credential", "error", err)
		s.dispatchIf(epoch, Failed{Message: "Could not save the session."})
		return fmt.Errorf("save credential: %w", err)
	}

	if !s.dispatchIf(epoch, Authenticated{User: user, Token: tok}) {
		log.Info(ctx, "session change raced this operation, response dropped", "user_id", user.ID)
		s.discardIfCurrent(ctx, log, tok)
		return ErrStale
	}
	return nil
}

// discardIfCurrent removes the stored credential only while it is still tok,
// so a credential stored by a newer login survives.
// Callers hold persist.
func (s *Store) discardIfCurrent(ctx context.Context, log logging.Logger, tok string) {
	stored, err := s.creds.Load(ctx)
	if err != nil {
		log.Warn(ctx, "load credential", "error", err)
		return
	}
	if stored != tok {
		return
	}
	if err := s.creds.Remove(ctx); err != nil {
		log.Warn(ctx, "remove credential", "error", err)
	}
}

func (s *Store) currentUserID() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status != StatusAuthenticated || s.state.User == nil {
		return 0, ErrNotAuthenticated
	}
	return s.state.User.ID, nil
}

func placeholderUser(reg models.Registration) models.User {
	first, last := strings.TrimSpace(reg.FirstName), strings.TrimSpace(reg.LastName)
	return models.User{
		Email:     strings.TrimSpace(reg.Email),
		FirstName: first,
		LastName:  last,
		Name:      strings.TrimSpace(first + " " + last),
		Phone:     strings.TrimSpace(reg.Phone),
		Status:    models.UserStatusActive,
		Role:      models.RoleMember,
		CreatedAt: time.Now().UTC(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
