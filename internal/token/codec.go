package token

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is used when a ttl string is not recognized.
const DefaultTTL = 24 * time.Hour

// Reason explains why Verify rejected a credential.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonMalformedToken    Reason = "MalformedToken"
	ReasonDecodeError       Reason = "DecodeError"
	ReasonSignatureMismatch Reason = "SignatureMismatch"
	ReasonExpired           Reason = "Expired"
)

// Result is the outcome of Verify. Claims is only set when Valid is true.
type Result struct {
	Valid  bool
	Reason Reason
	Claims map[string]any
}

// Codec issues and verifies credentials with a fixed shared secret.
// It is safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// Option customizes a Codec.
type Option func(*Codec)

// WithClock injects the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns a Codec signing with secret.
func New(secret string, opts ...Option) *Codec {
	c := &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{Algorithm}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	return c
}

// Issue stamps iat and exp onto a copy of claims and returns the encoded
// credential. Caller supplied iat/exp values are overwritten.
func (c *Codec) Issue(claims map[string]any, ttl string) (string, error) {
	signed, _, err := c.IssueWithExpiry(claims, ttl)
	return signed, err
}

// IssueWithExpiry is Issue that also reports the stamped expiry.
func (c *Codec) IssueWithExpiry(claims map[string]any, ttl string) (string, time.Time, error) {
	now := c.now()
	exp := now.Add(ParseTTL(ttl))

	mc := make(jwt.MapClaims, len(claims)+2)
	for k, v := range claims {
		mc[k] = v
	}
	mc["iat"] = now.Unix()
	mc["exp"] = exp.Unix()

	signed, err := jwt.NewWithClaims(signingMethodChecksum, mc).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return signed, time.Unix(exp.Unix(), 0), nil
}

// Verify decodes and checks tokenString. It reports MalformedToken when the
// string is not exactly three segments, DecodeError when a segment is not
// valid base64url JSON, SignatureMismatch when the checksum does not match
// and Expired when exp is in the past.
func (c *Codec) Verify(tokenString string) Result {
	if strings.Count(tokenString, ".") != 2 {
		return Result{Reason: ReasonMalformedToken}
	}

	tok, err := c.parser.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return Result{Reason: reasonFor(err)}
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return Result{Reason: ReasonDecodeError}
	}
	return Result{Valid: true, Claims: map[string]any(claims)}
}

func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonSignatureMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonDecodeError
	default:
		// any other claim validation failure (nbf, malformed exp) makes the
		// payload unusable
		return ReasonDecodeError
	}
}

var ttlPattern = regexp.MustCompile(`^(\d+)([hd])$`)

// ParseTTL converts "Nh" and "Nd" into a duration. Anything else, including
// a zero count, yields DefaultTTL.
func ParseTTL(ttl string) time.Duration {
	m := ttlPattern.FindStringSubmatch(strings.TrimSpace(ttl))
	if m == nil {
		return DefaultTTL
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return DefaultTTL
	}

	unit := time.Hour
	if m[2] == "d" {
		unit = 24 * time.Hour
	}
	if int64(n) > math.MaxInt64/int64(unit) {
		return DefaultTTL
	}
	return time.Duration(n) * unit
}
