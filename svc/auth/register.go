package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/edutrack/institute/core"
	"github.com/edutrack/institute/pkg/logger"
	pkgmongo "github.com/edutrack/institute/pkg/mongo"
	"github.com/edutrack/institute/pkg/sanitizer"
	"github.com/edutrack/institute/svc/credential"
	"github.com/edutrack/institute/svc/otp"
	"github.com/edutrack/institute/svc/saga"
)

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Gender   credential.Gender
}

func (in RegisterInput) user() *credential.User {
	return &credential.User{
		Name:      sanitizer.SingleLine(in.Name),
		Email:     sanitizer.NormalizeEmail(in.Email),
		Phone:     sanitizer.NormalizePhone(in.Phone),
		Gender:    in.Gender,
		Providers: []credential.Provider{credential.ProviderEmail},
		Roles:     []credential.Role{credential.RoleClient},
		Status:    credential.StatusActive,
	}
}

// Register creates an email account, issues a verification code and mails
// it. Either every step takes effect or none is visible once Register
// returns: a transaction rolls back on failure, otherwise the account is
// compensated.
func (s *Service) Register(ctx context.Context, in RegisterInput) (credential.PublicUser, error) {
	var (
		u   *credential.User
		err error
	)
	if s.transactional(ctx) {
		u, err = s.registerTx(ctx, in)
	} else {
		u, err = s.registerSaga(ctx, in)
	}
	if errors.Is(err, core.ErrEmailDispatchFailed) {
		// Nothing of the attempt is left, so the caller has to start over.
		err = errors.Join(ErrRegistrationRolledBack, err)
	}
	if err != nil {
		return credential.PublicUser{}, err
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.UserID(u.IDHex()),
		logger.Email(sanitizer.MaskEmail(u.Email)),
	)
	return u.Public(), nil
}

func (s *Service) registerTx(ctx context.Context, in RegisterInput) (*credential.User, error) {
	var u *credential.User
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		// fn may be re-run on transient errors, so start from a fresh record.
		u = in.user()
		if err := s.users.Create(txCtx, u, in.Password); err != nil {
			return mapDuplicate(err)
		}
		code, err := s.newCode(txCtx, u.ID, otp.PurposeEmail)
		if err != nil {
			return err
		}
		return s.sendCode(txCtx, u, code)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) registerSaga(ctx context.Context, in RegisterInput) (*credential.User, error) {
	// The id is fixed before anything is written so the intent can name the
	// user even if the process dies right after Create.
	u := in.user()
	u.ID = bson.NewObjectID()
	intent, err := s.intents.Begin(ctx, u.Email, u.ID)
	if err != nil {
		return nil, err
	}
	log := s.logger.With(logger.IntentID(intent.ID.Hex()))

	if err := s.users.Create(ctx, u, in.Password); err != nil {
		s.abortIntent(ctx, intent, "", err)
		return nil, mapDuplicate(err)
	}

	code, err := s.newCode(ctx, u.ID, otp.PurposeEmail)
	if err != nil {
		s.abortIntent(ctx, intent, u.IDHex(), err)
		return nil, err
	}
	if err := s.sendCode(ctx, u, code); err != nil {
		s.abortIntent(ctx, intent, u.IDHex(), err)
		return nil, err
	}

	// The account is usable now. A pending intent left behind is settled by
	// the reconciler once the user verifies or the intent goes stale.
	if err := s.intents.Complete(ctx, intent.ID); err != nil {
		log.WarnContext(ctx, "failed to complete registration intent", logger.Error(err))
	}
	return u, nil
}

// abortIntent undoes whatever registration wrote for userID. When
// compensation itself fails the intent stays pending for the reconciler.
func (s *Service) abortIntent(ctx context.Context, intent *saga.Intent, userID string, cause error) {
	ctx = context.WithoutCancel(ctx)
	log := s.logger.With(logger.IntentID(intent.ID.Hex()), logger.Error(cause))

	if userID != "" {
		if err := saga.Compensate(ctx, s.users, s.codes, userID, s.now()); err != nil {
			log.ErrorContext(ctx, "registration compensation failed", logger.UserID(userID), slog.Any("compensation_error", err))
			if rerr := s.intents.RecordFailure(ctx, intent.ID, err); rerr != nil {
				log.ErrorContext(ctx, "failed to record intent failure", slog.Any("record_error", rerr))
			}
			return
		}
	}
	if err := s.intents.MarkCompensated(ctx, intent.ID); err != nil {
		log.WarnContext(ctx, "failed to mark intent compensated", slog.Any("mark_error", err))
		return
	}
	log.InfoContext(ctx, "registration compensated", logger.UserID(userID))
}

func mapDuplicate(err error) error {
	var dup *pkgmongo.DuplicateKeyError
	if !errors.As(err, &dup) {
		return err
	}
	if dup.Has("phone") {
		return errors.Join(ErrPhoneTaken, err)
	}
	return errors.Join(ErrEmailTaken, err)
}

// nopIntents stands in when no intent log is configured. Compensation
// still runs inline; only the crash-recovery record is missing.
type nopIntents struct{}

var _ saga.Store = nopIntents{}

func (nopIntents) Begin(_ context.Context, email string, userID bson.ObjectID) (*saga.Intent, error) {
	return &saga.Intent{ID: bson.NewObjectID(), UserID: userID, Email: email, State: saga.StatePending}, nil
}

func (nopIntents) Complete(context.Context, bson.ObjectID) error { return nil }

func (nopIntents) MarkCompensated(context.Context, bson.ObjectID) error { return nil }

func (nopIntents) RecordFailure(context.Context, bson.ObjectID, error) error { return nil }

func (nopIntents) Stale(context.Context, time.Time, int) ([]saga.Intent, error) { return nil, nil }
