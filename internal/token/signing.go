package token

import (
	"bytes"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Algorithm is the "alg" header value of credentials minted by this package.
const Algorithm = "XXH64"

// checksumMethod plugs the demo checksum into jwt's signing machinery so that
// segment encoding and claim validation are handled by the library.
type checksumMethod struct{}

var signingMethodChecksum = &checksumMethod{}

func init() {
	jwt.RegisterSigningMethod(Algorithm, func() jwt.SigningMethod {
		return signingMethodChecksum
	})
}

func (m *checksumMethod) Alg() string {
	return Algorithm
}

func (m *checksumMethod) Sign(signingString string, key interface{}) ([]byte, error) {
	secret, ok := key.([]byte)
	if !ok {
		return nil, jwt.ErrInvalidKeyType
	}
	return checksum(signingString, secret), nil
}

func (m *checksumMethod) Verify(signingString string, sig []byte, key interface{}) error {
	secret, ok := key.([]byte)
	if !ok {
		return jwt.ErrInvalidKeyType
	}
	if !bytes.Equal(sig, checksum(signingString, secret)) {
		return jwt.ErrTokenSignatureInvalid
	}
	return nil
}

func checksum(signingString string, secret []byte) []byte {
	d := xxhash.New()
	_, _ = d.WriteString(signingString)
	_, _ = d.WriteString(".")
	_, _ = d.Write(secret)

	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, d.Sum64())
	return out
}
