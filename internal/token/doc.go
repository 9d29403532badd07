// Package token mints and verifies the session credential held by the
// membership client.
//
// A credential is a three segment string, header.payload.signature, where the
// header and payload are base64url encoded JSON and the signature is a
// base64url encoded 64-bit xxhash over "<header>.<payload>.<secret>".
//
// The checksum is NOT a MAC. It catches accidental or naive tampering of any
// segment, nothing more, and must not be used as a security control.
//
// Verification never returns an error; callers branch on Result.Valid and
// read Result.Reason when it is false.
package token
