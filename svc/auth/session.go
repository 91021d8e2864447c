package auth

import (
	"context"
	"errors"

	"github.com/edutrack/institute/pkg/logger"
	pkgmongo "github.com/edutrack/institute/pkg/mongo"
	"github.com/edutrack/institute/pkg/sanitizer"
	"github.com/edutrack/institute/svc/credential"
	"github.com/edutrack/institute/svc/token"
)

// Session is a signed-in user with a freshly issued token pair.
type Session struct {
	User   credential.PublicUser
	Tokens token.Pair
}

// Login checks email and password. Every failed password bumps the
// account's counter; reaching MaxFailedLogins locks it for LockoutDuration.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (Session, error) {
	u, err := s.users.ByEmail(ctx, sanitizer.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, pkgmongo.ErrNotFound) {
			return Session{}, ErrInvalidLogin
		}
		return Session{}, err
	}

	now := s.now()
	if u.LockedAt(now) {
		return Session{}, ErrAccountLocked
	}

	if !s.hasher.Compare(u.PasswordHash, password) {
		n, err := s.users.IncrementFailedLogins(ctx, u.IDHex())
		if err != nil {
			return Session{}, err
		}
		if n >= MaxFailedLogins {
			if err := s.users.SetLockout(ctx, u.IDHex(), now.Add(LockoutDuration)); err != nil {
				return Session{}, err
			}
			s.logger.WarnContext(ctx, "account locked", logger.UserID(u.IDHex()), logger.Event("lockout"))
		}
		return Session{}, ErrInvalidLogin
	}

	pair, err := s.startSession(ctx, u)
	if err != nil {
		return Session{}, err
	}
	s.logger.InfoContext(ctx, "user logged in", logger.UserID(u.IDHex()))
	return Session{User: u.Public(), Tokens: pair}, nil
}

// startSession issues a pair, appends its refresh token to the session list
// and resets lockout state.
func (s *Service) startSession(ctx context.Context, u *credential.User) (token.Pair, error) {
	pair, err := s.issuer.IssuePair(subjectOf(u))
	if err != nil {
		return token.Pair{}, err
	}

	sessions := credential.NewSessions(u.RefreshTokens, s.maxSessions)
	if evicted := sessions.Push(pair.RefreshToken); len(evicted) > 0 {
		s.logger.DebugContext(ctx, "evicted oldest sessions", logger.UserID(u.IDHex()), logger.Event("session_evicted"))
	}
	if err := s.users.SaveSessions(ctx, u.IDHex(), sessions.Tokens()); err != nil {
		return token.Pair{}, err
	}
	u.RefreshTokens = sessions.Tokens()

	now := s.now()
	if err := s.users.RecordLogin(ctx, u.IDHex(), now); err != nil {
		return token.Pair{}, err
	}
	u.FailedLoginAttempts = 0
	u.LockoutUntil = nil
	u.LastLoginAt = &now
	return pair, nil
}

// Refresh rotates refresh: it must verify and still be held by its user.
// The old token is dropped and the new one appended.
func (s *Service) Refresh(ctx context.Context, refresh string) (token.Pair, error) {
	claims, err := s.issuer.VerifyRefresh(refresh)
	if err != nil {
		s.logger.DebugContext(ctx, "refresh token rejected", logger.Error(err))
		return token.Pair{}, ErrRefreshDenied
	}

	u, err := s.users.ByRefreshToken(ctx, refresh)
	if err != nil {
		if errors.Is(err, pkgmongo.ErrNotFound) {
			s.logger.WarnContext(ctx, "refresh token not held by any user", logger.UserID(claims.UID), logger.Event("refresh_reuse"))
			return token.Pair{}, ErrRefreshDenied
		}
		return token.Pair{}, err
	}
	if u.IDHex() != claims.UID {
		return token.Pair{}, ErrRefreshDenied
	}

	pair, err := s.issuer.IssuePair(subjectOf(u))
	if err != nil {
		return token.Pair{}, err
	}
	sessions := credential.NewSessions(u.RefreshTokens, s.maxSessions)
	sessions.Remove(refresh)
	sessions.Push(pair.RefreshToken)
	if err := s.users.SaveSessions(ctx, u.IDHex(), sessions.Tokens()); err != nil {
		return token.Pair{}, err
	}
	return pair, nil
}

// Logout removes exactly refresh from its holder's sessions. Unknown or
// already removed tokens are not an error.
func (s *Service) Logout(ctx context.Context, refresh string) error {
	if refresh == "" {
		return nil
	}

	var userID string
	if claims, err := s.issuer.VerifyRefresh(refresh); err == nil {
		userID = claims.UID
	} else {
		// Expired tokens still occupy a slot until removed.
		u, err := s.users.ByRefreshToken(ctx, refresh)
		if err != nil {
			if errors.Is(err, pkgmongo.ErrNotFound) {
				return nil
			}
			return err
		}
		userID = u.IDHex()
	}

	if err := s.users.RemoveSession(ctx, userID, refresh); err != nil {
		if errors.Is(err, pkgmongo.ErrNotFound) {
			return nil
		}
		return err
	}
	s.logger.InfoContext(ctx, "user logged out", logger.UserID(userID))
	return nil
}

func subjectOf(u *credential.User) token.Subject {
	return token.Subject{
		Email: u.Email,
		Role:  string(u.PrimaryRole()),
		UID:   u.IDHex(),
	}
}
