package credential

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidID = errors.New("credential: invalid user id")

// Store persists users. Not-found lookups return an error matching
// pkg/mongo.ErrNotFound; unique violations return *pkg/mongo.DuplicateKeyError.
type Store interface {
	// Create inserts u, assigning timestamps and an ID unless one is preset.
	// The password is hashed per ApplyPassword.
	Create(ctx context.Context, u *User, password string) error
	ByID(ctx context.Context, id string) (*User, error)
	// ByEmail ignores soft-deleted users.
	ByEmail(ctx context.Context, email string) (*User, error)
	// ByRefreshToken finds the user holding exactly token.
	ByRefreshToken(ctx context.Context, token string) (*User, error)

	// IncrementFailedLogins atomically bumps the counter and returns the new value.
	IncrementFailedLogins(ctx context.Context, id string) (int, error)
	SetLockout(ctx context.Context, id string, until time.Time) error
	// RecordLogin clears lockout state and stamps lastLoginAt.
	RecordLogin(ctx context.Context, id string, at time.Time) error

	// SaveSessions replaces the whole session list.
	SaveSessions(ctx context.Context, id string, tokens []string) error
	// RemoveSession pulls exactly token and keeps the rest.
	RemoveSession(ctx context.Context, id, token string) error

	MarkEmailVerified(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, password string, at time.Time) error
	// RevokePassword drops the password, the EMAIL provider tag and every
	// session of the account.
	RevokePassword(ctx context.Context, id string, at time.Time) error
	AddProvider(ctx context.Context, id string, p Provider) error
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*User, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
}
