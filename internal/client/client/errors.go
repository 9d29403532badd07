package client

import "errors"

var (
	ErrUnavailable   = errors.New("membership service unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAccountExists = errors.New("an account with this email already exists")
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
)
