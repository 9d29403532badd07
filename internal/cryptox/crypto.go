// Package cryptox holds the password verifier scheme used by the membership
// API: argon2id key derivation followed by a SHA-256 verifier.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/worldacross/membership/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of salts produced by NewVerifier.
const SaltSize = 16

// DeriveKey stretches password with argon2id (1 pass, 64 MiB, 4 lanes).
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier hashes a derived key so the key itself is never stored.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// NewVerifier returns a fresh random salt and the verifier of password under it.
func NewVerifier(password []byte) (salt, verifier []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)
	return salt, MakeVerifier(key)
}

// CheckPassword reports whether password matches verifier under salt.
// The comparison runs in constant time.
func CheckPassword(password, salt, verifier []byte) bool {
	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)
	return subtle.ConstantTimeCompare(MakeVerifier(key), verifier) == 1
}
