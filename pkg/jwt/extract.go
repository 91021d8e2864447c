package jwt

import (
	"context"
	"net/http"
	"strings"
)

// Extractor pulls a raw token out of a request.
type Extractor func(r *http.Request) (string, error)

// FromBearer reads "Authorization: Bearer <token>".
func FromBearer(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// FromCookie reads the named cookie.
func FromCookie(name string) Extractor {
	return func(r *http.Request) (string, error) {
		c, err := r.Cookie(name)
		if err != nil || c.Value == "" {
			return "", ErrMissingToken
		}
		return c.Value, nil
	}
}

// FirstOf tries extractors in order and returns the first token found.
func FirstOf(extractors ...Extractor) Extractor {
	return func(r *http.Request) (string, error) {
		for _, ex := range extractors {
			if tok, err := ex(r); err == nil {
				return tok, nil
			}
		}
		return "", ErrMissingToken
	}
}

type claimsKey struct{}

// WithClaims stores verified claims in ctx.
func WithClaims(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns claims of type T stored by WithClaims.
func ClaimsFrom[T any](ctx context.Context) (T, bool) {
	c, ok := ctx.Value(claimsKey{}).(T)
	return c, ok
}
