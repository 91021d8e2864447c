package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

const minKeyLength = 32

// Service signs and parses tokens with a single HMAC key.
type Service struct {
	key    []byte
	issuer string
	leeway time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer stamps iss on parse validation. Signing does not set it; the
// claims passed to Sign must carry it.
func WithIssuer(iss string) Option {
	return func(s *Service) { s.issuer = iss }
}

// WithLeeway tolerates clock skew on exp/nbf/iat checks.
func WithLeeway(d time.Duration) Option {
	return func(s *Service) { s.leeway = d }
}

// New creates a Service. The key must be at least 32 bytes.
func New(key []byte, opts ...Option) (*Service, error) {
	if len(key) == 0 {
		return nil, ErrMissingSigningKey
	}
	if len(key) < minKeyLength {
		return nil, ErrWeakSigningKey
	}
	s := &Service{key: key}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issuer returns the configured issuer, if any.
func (s *Service) Issuer() string { return s.issuer }

// Sign serializes claims into a compact HS256 token.
func (s *Service) Sign(claims gojwt.Claims) (string, error) {
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Parse verifies token and decodes it into claims, which must be a pointer.
func (s *Service) Parse(token string, claims gojwt.Claims) error {
	if token == "" {
		return ErrMissingToken
	}

	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
	}
	if s.leeway > 0 {
		opts = append(opts, gojwt.WithLeeway(s.leeway))
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}

	parsed, err := gojwt.NewParser(opts...).ParseWithClaims(token, claims, func(*gojwt.Token) (any, error) {
		return s.key, nil
	})
	switch {
	case err == nil && parsed.Valid:
		return nil
	case errors.Is(err, gojwt.ErrTokenExpired):
		return errors.Join(ErrExpiredToken, err)
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return errors.Join(ErrInvalidSignature, err)
	case err != nil:
		return errors.Join(ErrInvalidToken, err)
	default:
		return ErrInvalidToken
	}
}
