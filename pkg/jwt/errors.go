package jwt

import "errors"

var (
	ErrInvalidToken      = errors.New("jwt: invalid token")
	ErrExpiredToken      = errors.New("jwt: token is expired")
	ErrInvalidSignature  = errors.New("jwt: invalid signature")
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	ErrWeakSigningKey    = errors.New("jwt: signing key shorter than 32 bytes")
	ErrMissingToken      = errors.New("jwt: missing token")
)
