// Package otp issues and consumes short-lived numeric codes keyed by user
// and purpose.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Purpose scopes a code to one flow.
type Purpose string

const (
	PurposeEmail         Purpose = "email"
	PurposePhone         Purpose = "phone"
	PurposePasswordReset Purpose = "password_reset"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeEmail, PurposePhone, PurposePasswordReset:
		return true
	}
	return false
}

const (
	// DefaultTTL is how long a code stays valid.
	DefaultTTL = 10 * time.Minute
	// CodeLength is the number of decimal digits in a code.
	CodeLength = 6
)

var ErrGenerate = errors.New("otp: failed to generate code")

// Code is a stored one-time code.
type Code struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"userId"`
	Purpose   Purpose       `bson:"type"`
	Value     string        `bson:"otp"`
	Attempts  int           `bson:"attempts"`
	ExpiresAt time.Time     `bson:"expiresAt"`
	Consumed  bool          `bson:"consumed"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

// ExpiredAt reports whether the code is no longer valid at now.
func (c *Code) ExpiredAt(now time.Time) bool { return !now.Before(c.ExpiresAt) }

// Ledger stores codes. Latest lookups return pkg/mongo.ErrNotFound when no
// unconsumed code exists.
type Ledger interface {
	Create(ctx context.Context, c *Code) error
	// Latest returns the most recently created unconsumed code.
	Latest(ctx context.Context, userID string, p Purpose) (*Code, error)
	Consume(ctx context.Context, id bson.ObjectID) error
	// DeleteForUser removes every code of the user, across purposes.
	DeleteForUser(ctx context.Context, userID string) error
}

// Generate returns a uniformly random zero-padded decimal code.
func Generate() (string, error) {
	limit := big.NewInt(1)
	for range CodeLength {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", errors.Join(ErrGenerate, err)
	}
	s := n.String()
	for len(s) < CodeLength {
		s = "0" + s
	}
	return s, nil
}

// New builds an unsaved code for userID valid for ttl from now.
func New(userID bson.ObjectID, p Purpose, ttl time.Duration, now time.Time) (*Code, error) {
	v, err := Generate()
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Code{
		UserID:    userID,
		Purpose:   p,
		Value:     v,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
