package cli

import (
	"context"
	"fmt"

	"github.com/worldacross/membership/internal/client/models"
	"github.com/worldacross/membership/internal/client/session"
	"github.com/worldacross/membership/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) prompt(text string) (string, error) {
	return getSimpleText(a.reader, text, a.out)
}

// fail reports err to the user and returns it.
func (a *App) fail(err error) error {
	printlnFn("Error:", session.Describe(err))
	return err
}

// Register prompts for the member's details and creates an account. The
// password buffers are wiped before returning.
func (a *App) Register(ctx context.Context) error {
	var reg models.Registration
	var err error

	if reg.FirstName, err = a.prompt("First name"); err != nil {
		return err
	}
	if reg.LastName, err = a.prompt("Last name"); err != nil {
		return err
	}
	if reg.Email, err = a.prompt("Email"); err != nil {
		return err
	}
	if reg.Phone, err = a.prompt("Phone (optional)"); err != nil {
		return err
	}
	if reg.Password, err = getPassword(a.out, "Password"); err != nil {
		return err
	}
	defer common.WipeByteArray(reg.Password)
	if reg.ConfirmPassword, err = getPassword(a.out, "Confirm password"); err != nil {
		return err
	}
	defer common.WipeByteArray(reg.ConfirmPassword)

	if err := reg.Validate(); err != nil {
		return a.fail(err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	user, err := a.store.Register(ctx, reg)
	if err != nil {
		return a.fail(err)
	}

	if a.isLoggedIn() {
		printlnFn("Welcome aboard,", user.DisplayName())
	} else {
		printlnFn("Account created for", user.Email+". You can log in now.")
	}
	return nil
}

// Login prompts for credentials and opens a session. The password is wiped
// before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	creds := models.Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return a.fail(err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := a.store.Login(ctx, creds); err != nil {
		return a.fail(err)
	}
	s := a.store.Snapshot()
	if !s.IsAuthenticated || s.User == nil {
		printlnFn("Session ended before it could be shown.")
		return nil
	}
	printlnFn("Logged in as", s.User.DisplayName())
	return nil
}

// Logout always ends the session.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := a.store.Logout(ctx); err != nil {
		return a.fail(err)
	}
	printlnFn("Logged out.")
	return nil
}

// Whoami prints the current member.
func (a *App) Whoami(context.Context) error {
	s := a.store.Snapshot()
	if !s.IsAuthenticated {
		printlnFn("Not logged in.")
		return nil
	}

	u := s.User
	printlnFn("Name:  ", u.DisplayName())
	printlnFn("Email: ", u.Email)
	if u.Phone != "" {
		printlnFn("Phone: ", u.Phone)
	}
	if u.MembershipTier != "" {
		printlnFn("Tier:  ", u.MembershipTier)
	}
	printlnFn("Role:  ", string(u.Role))
	if !u.CreatedAt.IsZero() {
		printlnFn("Member since", u.CreatedAt.Format("January 2006"))
	}
	return nil
}

// Profile prompts for new profile values. Blank answers keep the current
// value.
func (a *App) Profile(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.fail(session.ErrNotAuthenticated)
	}

	var upd models.ProfileUpdate
	var err error
	if upd.FirstName, err = a.prompt("First name (blank to keep)"); err != nil {
		return err
	}
	if upd.LastName, err = a.prompt("Last name (blank to keep)"); err != nil {
		return err
	}
	if upd.Phone, err = a.prompt("Phone (blank to keep)"); err != nil {
		return err
	}
	if err := upd.Validate(); err != nil {
		return a.fail(err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := a.store.UpdateProfile(ctx, upd); err != nil {
		return a.fail(err)
	}
	printlnFn("Profile updated.")
	return nil
}

// Passwd changes the member's password. All buffers are wiped before
// returning.
func (a *App) Passwd(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.fail(session.ErrNotAuthenticated)
	}

	var change models.PasswordChange
	var err error
	if change.CurrentPassword, err = getPassword(a.out, "Current password"); err != nil {
		return err
	}
	defer common.WipeByteArray(change.CurrentPassword)
	if change.NewPassword, err = getPassword(a.out, "New password"); err != nil {
		return err
	}
	defer common.WipeByteArray(change.NewPassword)
	if change.ConfirmPassword, err = getPassword(a.out, "Confirm new password"); err != nil {
		return err
	}
	defer common.WipeByteArray(change.ConfirmPassword)

	if err := change.Validate(); err != nil {
		return a.fail(err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := a.store.ChangePassword(ctx, change); err != nil {
		return a.fail(err)
	}
	printlnFn("Password changed.")
	return nil
}

// Status prints the raw session state.
func (a *App) Status(context.Context) error {
	s := a.store.Snapshot()
	printlnFn("Status:", string(s.Status))
	printlnFn("Loading:", s.IsLoading)
	if s.Error != "" {
		printlnFn("Last error:", s.Error)
	}
	if s.IsAuthenticated {
		printlnFn(fmt.Sprintf("Signed in as %s (id %d)", s.User.Email, s.User.ID))
	}
	return nil
}

// ClearError resets the last error message.
func (a *App) ClearError(context.Context) error {
	a.store.ClearError()
	printlnFn("Cleared.")
	return nil
}
