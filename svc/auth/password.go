package auth

import (
	"context"
	"errors"

	"github.com/edutrack/institute/pkg/logger"
	pkgmongo "github.com/edutrack/institute/pkg/mongo"
	"github.com/edutrack/institute/pkg/sanitizer"
	"github.com/edutrack/institute/svc/credential"
	"github.com/edutrack/institute/svc/otp"
)

// ForgotPassword mails a password_reset code to the account behind emailAddr.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	u, err := s.userByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	code, err := s.newCode(ctx, u.ID, otp.PurposePasswordReset)
	if err != nil {
		return err
	}
	if err := s.sendCode(ctx, u, code); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "password reset requested", logger.UserID(u.IDHex()))
	return nil
}

type ResetPasswordInput struct {
	Email       string
	Code        string
	NewPassword string
}

// ResetPassword consumes a password_reset code and sets a new password.
// OAuth-only accounts gain the EMAIL provider.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	u, err := s.userByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	code, err := s.checkCode(ctx, u.IDHex(), otp.PurposePasswordReset, in.Code)
	if err != nil {
		return err
	}
	if err := s.codes.Consume(ctx, code.ID); err != nil {
		if errors.Is(err, pkgmongo.ErrNotFound) {
			return ErrOTPNotFound
		}
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.IDHex(), in.NewPassword, s.now()); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "password reset", logger.UserID(u.IDHex()))
	return nil
}

// ChangePassword requires the current password. Accounts without one
// cannot use it and must go through ResetPassword.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(u.PasswordHash, oldPassword) {
		return ErrOldPassword
	}
	if err := s.users.UpdatePassword(ctx, userID, newPassword, s.now()); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "password changed", logger.UserID(userID))
	return nil
}

func (s *Service) userByEmail(ctx context.Context, emailAddr string) (*credential.User, error) {
	u, err := s.users.ByEmail(ctx, sanitizer.NormalizeEmail(emailAddr))
	if errors.Is(err, pkgmongo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *Service) userByID(ctx context.Context, id string) (*credential.User, error) {
	u, err := s.users.ByID(ctx, id)
	if errors.Is(err, pkgmongo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}
