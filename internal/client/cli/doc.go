// Package cli provides the interactive World Across membership client.
//
// It wires configuration, the credential store, the mocked membership API,
// the session store and its metrics, then runs a REPL over them. Typical
// flow: restore the saved session, then execute user commands until exit.
//
// Key features:
//   - Register / Login / Logout
//   - Whoami, profile updates and password changes
//   - Session status and metrics (stats)
//   - A notice when the background watcher expires the session
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
