// Package common contains constants and helpers shared by the membership
// client packages.
package common

// CredentialKey is the durable key-value entry holding the session credential.
// Absence means logged out; presence never implies validity.
const CredentialKey = "world_across_token"

// CredentialExpiryKey holds the RFC 3339 expiry written next to CredentialKey
// by backends that keep metadata.
const CredentialExpiryKey = CredentialKey + ":expires_at"
