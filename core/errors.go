// Package core holds the typed error every service returns to the HTTP layer.
package core

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError independently of its HTTP status.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidationFailed
	KindNotFound
	KindInvalidCredential
	KindExpired
	KindLocked
	KindConflict
	KindUnauthorized
	KindUpstream
	KindRateLimited
	KindNotImplemented
)

var kindNames = [...]string{
	KindInternal:          "internal",
	KindValidationFailed:  "validation_failed",
	KindNotFound:          "not_found",
	KindInvalidCredential: "invalid_credential",
	KindExpired:           "expired",
	KindLocked:            "locked",
	KindConflict:          "conflict",
	KindUnauthorized:      "unauthorized",
	KindUpstream:          "upstream",
	KindRateLimited:       "rate_limited",
	KindNotImplemented:    "not_implemented",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// AppError is comparable, so package-level values work as errors.Is targets.
// Attach a cause with errors.Join to keep it for logs without exposing it.
type AppError struct {
	Kind    Kind
	Code    int
	Message string
}

func (e AppError) Error() string { return e.Message }

func New(kind Kind, code int, message string) AppError {
	return AppError{Kind: kind, Code: code, Message: message}
}

func ValidationFailed(message string) AppError {
	return New(KindValidationFailed, http.StatusBadRequest, message)
}

func NotFound(message string) AppError {
	return New(KindNotFound, http.StatusBadRequest, message)
}

func InvalidCredential(message string) AppError {
	return New(KindInvalidCredential, http.StatusUnauthorized, message)
}

func Expired(message string) AppError {
	return New(KindExpired, http.StatusUnauthorized, message)
}

func Locked(message string) AppError {
	return New(KindLocked, http.StatusLocked, message)
}

func Conflict(message string) AppError {
	return New(KindConflict, http.StatusConflict, message)
}

func Unauthorized(message string) AppError {
	return New(KindUnauthorized, http.StatusUnauthorized, message)
}

func Forbidden(message string) AppError {
	return New(KindUnauthorized, http.StatusForbidden, message)
}

func Upstream(message string) AppError {
	return New(KindUpstream, http.StatusBadGateway, message)
}

func NotImplemented(message string) AppError {
	return New(KindNotImplemented, http.StatusNotImplemented, message)
}

var (
	ErrInternal            = New(KindInternal, http.StatusInternalServerError, "Internal server error")
	ErrEmailDispatchFailed = New(KindUpstream, http.StatusInternalServerError, "Failed to send email")
	ErrRateLimited         = New(KindRateLimited, http.StatusTooManyRequests, "Too many requests")
	ErrUnauthorized        = Unauthorized("Unauthorized")
)

// As extracts the first AppError in err's tree.
func As(err error) (AppError, bool) {
	var ae AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

// KindOf reports KindInternal for errors that carry no AppError.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindInternal
}
