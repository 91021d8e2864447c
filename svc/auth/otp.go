package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/edutrack/institute/core"
	"github.com/edutrack/institute/pkg/email"
	"github.com/edutrack/institute/pkg/email/templates"
	"github.com/edutrack/institute/pkg/logger"
	pkgmongo "github.com/edutrack/institute/pkg/mongo"
	"github.com/edutrack/institute/svc/credential"
	"github.com/edutrack/institute/svc/otp"
)

type VerifyOTPInput struct {
	UserID  string
	Code    string
	Purpose otp.Purpose
}

// VerifyOTP consumes the latest code for (user, purpose). An email code
// also marks the account verified.
func (s *Service) VerifyOTP(ctx context.Context, in VerifyOTPInput) error {
	if !in.Purpose.Valid() {
		return ErrInvalidOTPType
	}
	code, err := s.checkCode(ctx, in.UserID, in.Purpose, in.Code)
	if err != nil {
		return err
	}
	if err := s.codes.Consume(ctx, code.ID); err != nil {
		if errors.Is(err, pkgmongo.ErrNotFound) {
			return ErrOTPNotFound
		}
		return err
	}

	if in.Purpose == otp.PurposeEmail {
		if err := s.users.MarkEmailVerified(ctx, in.UserID, s.now()); err != nil {
			if errors.Is(err, pkgmongo.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
	}
	s.logger.InfoContext(ctx, "otp verified", logger.UserID(in.UserID), logger.Purpose(string(in.Purpose)))
	return nil
}

// checkCode finds the newest unconsumed code and checks value before expiry.
func (s *Service) checkCode(ctx context.Context, userID string, p otp.Purpose, value string) (*otp.Code, error) {
	code, err := s.codes.Latest(ctx, userID, p)
	if err != nil {
		if errors.Is(err, pkgmongo.ErrNotFound) {
			return nil, ErrOTPNotFound
		}
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(code.Value), []byte(value)) != 1 {
		return nil, ErrInvalidOTP
	}
	if code.ExpiredAt(s.now()) {
		return nil, ErrOTPExpired
	}
	return code, nil
}

func (s *Service) newCode(ctx context.Context, userID bson.ObjectID, p otp.Purpose) (*otp.Code, error) {
	code, err := otp.New(userID, p, s.otpTTL, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.codes.Create(ctx, code); err != nil {
		return nil, err
	}
	return code, nil
}

// sendCode mails code to u within the mail timeout. Delivery failures
// match core.ErrEmailDispatchFailed.
func (s *Service) sendCode(ctx context.Context, u *credential.User, code *otp.Code) error {
	params := templates.OTPParams{
		OrgName:   s.orgName,
		Name:      u.Name,
		Code:      code.Value,
		ValidMins: int(s.otpTTL.Minutes()),
	}

	var subject, intro string
	switch code.Purpose {
	case otp.PurposePasswordReset:
		subject = templates.PasswordResetSubject(params)
		intro = "We received a request to reset your password. Use the code below to choose a new one."
	default:
		subject = templates.VerificationSubject(params)
		intro = "Use the code below to verify your email address."
	}

	html, err := templates.Render(ctx, templates.OTPBody(params, intro))
	if err != nil {
		return fmt.Errorf("render %s mail: %w", code.Purpose, err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()

	err = s.mailer.Send(sendCtx, email.Message{
		To:      u.Email,
		Subject: subject,
		HTML:    html,
		Tag:     string(code.Purpose),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to send otp mail",
			logger.UserID(u.IDHex()),
			logger.Purpose(string(code.Purpose)),
			logger.Error(err),
		)
		return errors.Join(core.ErrEmailDispatchFailed, err)
	}
	return nil
}
