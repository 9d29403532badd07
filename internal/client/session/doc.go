// Package session holds the client's authentication state.
//
// A Store owns one State. Every change goes through Reduce, a pure function
// over tagged commands, so the state machine can be tested without any
// collaborator. Operations (Bootstrap, Login, Logout, Register,
// UpdateProfile, ChangePassword) call the membership API and the credential
// store outside the state lock and apply the resulting command afterwards.
//
// While the state is authenticated a watcher goroutine re-verifies the
// credential on a fixed interval and expires the session when the
// credential stops verifying.
package session
