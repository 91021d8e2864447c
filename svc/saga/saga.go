// Package saga records registration intents and undoes registrations whose
// confirmation mail never went out.
//
// The registration flow picks the user id up front and writes a pending
// intent naming it before creating anything, then moves the intent to
// completed or compensated. Intents left pending by a crash are settled by
// Reconciler.
package saga

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	pkgmongo "github.com/edutrack/institute/pkg/mongo"
	"github.com/edutrack/institute/svc/credential"
	"github.com/edutrack/institute/svc/otp"
)

type State string

const (
	StatePending     State = "pending"
	StateCompleted   State = "completed"
	StateCompensated State = "compensated"
)

var ErrNotPending = errors.New("saga: intent is not pending")

// Intent is one registration attempt.
type Intent struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"userId,omitempty"`
	Email     string        `bson:"email"`
	State     State         `bson:"state"`
	Attempts  int           `bson:"attempts"`
	LastError string        `bson:"lastError,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

// Store persists intents. State transitions only apply to pending intents
// and return ErrNotPending otherwise.
type Store interface {
	// Begin records the id the user is about to be created with.
	Begin(ctx context.Context, email string, userID bson.ObjectID) (*Intent, error)
	Complete(ctx context.Context, id bson.ObjectID) error
	MarkCompensated(ctx context.Context, id bson.ObjectID) error
	RecordFailure(ctx context.Context, id bson.ObjectID, cause error) error
	// Stale lists pending intents last touched before cutoff, oldest first.
	Stale(ctx context.Context, cutoff time.Time, limit int) ([]Intent, error)
}

// Users is the part of the credential store compensation needs.
type Users interface {
	ByID(ctx context.Context, id string) (*credential.User, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

// Codes is the part of the OTP ledger compensation needs.
type Codes interface {
	Latest(ctx context.Context, userID string, p otp.Purpose) (*otp.Code, error)
	DeleteForUser(ctx context.Context, userID string) error
}

// Compensate soft-deletes the user and removes its codes. A user that no
// longer exists only has its codes removed.
func Compensate(ctx context.Context, users Users, codes Codes, userID string, now time.Time) error {
	err := users.SoftDelete(ctx, userID, now)
	if err != nil && !errors.Is(err, pkgmongo.ErrNotFound) {
		return err
	}
	return codes.DeleteForUser(ctx, userID)
}
