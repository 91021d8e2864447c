package saga

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/edutrack/institute/pkg/logger"
	pkgmongo "github.com/edutrack/institute/pkg/mongo"
	"github.com/edutrack/institute/svc/otp"
)

type Config struct {
	Interval   time.Duration `env:"SAGA_SWEEP_INTERVAL" envDefault:"1m"`
	StaleAfter time.Duration `env:"SAGA_STALE_AFTER" envDefault:"15m"`
	BatchSize  int           `env:"SAGA_BATCH_SIZE" envDefault:"100"`
}

// SweepResult counts what one sweep did. Deferred intents belong to users
// still holding a live verification code and are looked at again later.
type SweepResult struct {
	Completed   int
	Compensated int
	Deferred    int
	Failed      int
}

type outcome uint8

const (
	outcomeCompensated outcome = iota
	outcomeCompleted
	outcomeDeferred
)

// Reconciler settles intents left pending past the stale threshold.
type Reconciler struct {
	cfg   Config
	store Store
	users Users
	codes Codes
	log   *slog.Logger
	now   func() time.Time
}

type ReconcilerOption func(*Reconciler)

func WithLogger(l *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if l != nil {
			r.log = l
		}
	}
}

func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

func NewReconciler(cfg Config, store Store, users Users, codes Codes, opts ...ReconcilerOption) *Reconciler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	// An intent must not go stale while its verification code is still
	// usable.
	if cfg.StaleAfter < otp.DefaultTTL {
		cfg.StaleAfter = otp.DefaultTTL + 5*time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	r := &Reconciler{
		cfg:   cfg,
		store: store,
		users: users,
		codes: codes,
		log:   logger.Discard(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run sweeps on every tick until ctx is done.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			res, err := r.Sweep(ctx)
			if err != nil {
				r.log.ErrorContext(ctx, "saga sweep failed", logger.Error(err), logger.Component("saga"))
				continue
			}
			if res != (SweepResult{}) {
				r.log.InfoContext(ctx, "saga sweep",
					slog.Int("completed", res.Completed),
					slog.Int("compensated", res.Compensated),
					slog.Int("deferred", res.Deferred),
					slog.Int("failed", res.Failed),
					logger.Component("saga"),
				)
			}
		}
	}
}

// Sweep settles one batch of stale intents. A verified user proves the mail
// arrived, so its intent completes. An unverified user with an unexpired
// email code is left alone until the code runs out. Anything else is
// compensated.
func (r *Reconciler) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	stale, err := r.store.Stale(ctx, r.now().Add(-r.cfg.StaleAfter), r.cfg.BatchSize)
	if err != nil {
		return res, err
	}

	for _, in := range stale {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		out, err := r.settle(ctx, in)
		switch {
		case err != nil:
			res.Failed++
			r.log.WarnContext(ctx, "saga intent not settled",
				logger.IntentID(in.ID.Hex()),
				logger.Error(err),
				logger.Component("saga"),
			)
			if ferr := r.store.RecordFailure(ctx, in.ID, err); ferr != nil {
				r.log.ErrorContext(ctx, "saga failure not recorded",
					logger.IntentID(in.ID.Hex()),
					logger.Error(ferr),
					logger.Component("saga"),
				)
			}
		case out == outcomeCompleted:
			res.Completed++
		case out == outcomeDeferred:
			res.Deferred++
		default:
			res.Compensated++
		}
	}
	return res, nil
}

func (r *Reconciler) settle(ctx context.Context, in Intent) (outcome, error) {
	if in.UserID.IsZero() {
		return outcomeCompensated, r.store.MarkCompensated(ctx, in.ID)
	}
	userID := in.UserID.Hex()

	u, err := r.users.ByID(ctx, userID)
	if err != nil && !errors.Is(err, pkgmongo.ErrNotFound) {
		return outcomeCompensated, err
	}
	if u != nil && u.IsVerified {
		return outcomeCompleted, r.store.Complete(ctx, in.ID)
	}
	if u != nil {
		live, err := r.liveCode(ctx, userID)
		if err != nil {
			return outcomeCompensated, err
		}
		if live {
			return outcomeDeferred, nil
		}
	}

	if err := Compensate(ctx, r.users, r.codes, userID, r.now()); err != nil {
		return outcomeCompensated, err
	}
	return outcomeCompensated, r.store.MarkCompensated(ctx, in.ID)
}

// liveCode reports whether the user can still verify with a code that was
// mailed before a failed Complete.
func (r *Reconciler) liveCode(ctx context.Context, userID string) (bool, error) {
	c, err := r.codes.Latest(ctx, userID, otp.PurposeEmail)
	if errors.Is(err, pkgmongo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !c.ExpiredAt(r.now()), nil
}
