// Package client contains the membership API collaborator used by the
// session store.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface):
//     Authenticate, SignOut, FetchCurrentUser, RegisterUser, UpdateProfile
//     and ChangePassword.
//  2. MockClient, an in-process implementation over pre-seeded members that
//     answers after an artificial latency. There is no real backend.
//
// # Error Handling
//
// Conditions are exposed as sentinel errors matched with errors.Is:
// ErrUnauthorized (authentication failure), ErrUnavailable (network
// failure, including context cancellation while waiting), ErrAccountExists,
// ErrNotFound and ErrInvalidInput. Error messages are human readable and
// safe to show to the member.
//
// Concurrency & Contexts
//
// MockClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation while waiting.
package client
