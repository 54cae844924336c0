package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretSize is the smallest HMAC secret the codec accepts, in bytes.
const MinSecretSize = 32

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrWrongType  = errors.New("jwtx: unexpected token type")
	ErrWeakSecret = errors.New("jwtx: signing secret too short")
)

// Codec signs and verifies HS256 tokens with a single server-held secret.
// It never performs I/O; time comes from the injected clock.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithClock overrides the time source used for iat/exp.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec returns a codec for the given secret.
func NewCodec(secret []byte, opts ...CodecOption) (*Codec, error) {
	if len(secret) < MinSecretSize {
		return nil, ErrWeakSecret
	}

	c := &Codec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Now returns the codec's current time.
func (c *Codec) Now() time.Time { return c.now() }

// Issue signs a new token of the given type for subject.
func (c *Codec) Issue(subject string, typ TokenType, ttl time.Duration) (string, Claims, error) {
	if subject == "" || !typ.Valid() || ttl <= 0 {
		return "", Claims{}, fmt.Errorf("jwtx: invalid issue request (sub=%q type=%q ttl=%s)", subject, typ, ttl)
	}

	claims := NewClaims(subject, typ, ttl, c.now())
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, claims, nil
}

// Decode verifies the signature, then expiry, then the token type.
//
// Errors:
//   - ErrMalformed when the token is not a structurally valid JWT
//   - ErrInvalidSig when the signature or algorithm does not match
//   - ErrExpired when now >= exp
//   - ErrWrongType when a token of the other type is presented
func (c *Codec) Decode(raw string, want TokenType) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(), // exp is checked below against our clock
	)

	var claims Claims
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	if claims.Subject == "" || claims.ID == "" {
		return Claims{}, ErrMalformed
	}
	if err := claims.ValidateExpiry(c.now()); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateType(want); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
