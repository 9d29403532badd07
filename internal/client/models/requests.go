package models

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("email is invalid")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrNameRequired     = errors.New("first and last name are required")
	ErrNothingToUpdate  = errors.New("nothing to update")
)

// MinPasswordLength applies to registration and password changes.
const MinPasswordLength = 8

// Credentials are submitted on login.
type Credentials struct {
	Email    string
	Password []byte
}

func (c Credentials) Validate() error {
	if err := validateEmail(c.Email); err != nil {
		return err
	}
	if len(c.Password) == 0 {
		return ErrPasswordRequired
	}
	return nil
}

// Registration is submitted to create a membership account.
type Registration struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Password        []byte
	ConfirmPassword []byte
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return ErrNameRequired
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if len(r.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if r.ConfirmPassword != nil && string(r.ConfirmPassword) != string(r.Password) {
		return ErrPasswordMismatch
	}
	return nil
}

// ProfileUpdate carries the editable profile fields; empty fields are left
// unchanged.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Phone     string
}

func (p ProfileUpdate) Validate() error {
	if p.FirstName == "" && p.LastName == "" && p.Phone == "" {
		return ErrNothingToUpdate
	}
	return nil
}

// PasswordChange is submitted to change the password of the current member.
type PasswordChange struct {
	CurrentPassword []byte
	NewPassword     []byte
	ConfirmPassword []byte
}

func (p PasswordChange) Validate() error {
	if len(p.CurrentPassword) == 0 {
		return ErrPasswordRequired
	}
	if len(p.NewPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if p.ConfirmPassword != nil && string(p.ConfirmPassword) != string(p.NewPassword) {
		return ErrPasswordMismatch
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if err := validation.Validate(email, validation.Required); err != nil {
		return ErrEmailRequired
	}
	if err := validation.Validate(email, is.Email); err != nil {
		return ErrEmailInvalid
	}
	return nil
}
