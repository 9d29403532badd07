// Package storage persists the session credential in a durable key-value
// store, the client-side equivalent of per-origin local storage.
//
// Exactly one entry matters: common.CredentialKey holding the credential
// string. Its absence means logged out. Its presence says nothing about
// validity; callers must always re-verify what Load returns.
//
// Backends:
//   - SQLiteStore: a metadata(key, value) table in a local SQLite file,
//     schema managed by embedded goose migrations.
//   - RedisStore: one key per origin, expiring together with the credential.
//   - MemoryStore: process-local, for tests and throwaway sessions.
package storage
