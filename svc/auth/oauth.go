package auth

import (
	"context"
	"errors"
	"slices"

	"github.com/edutrack/institute/pkg/logger"
	pkgmongo "github.com/edutrack/institute/pkg/mongo"
	"github.com/edutrack/institute/pkg/sanitizer"
	"github.com/edutrack/institute/svc/credential"
	"github.com/edutrack/institute/svc/oauth"
)

// OAuthURL returns the consent URL of provider carrying state.
func (s *Service) OAuthURL(provider, state string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", ErrUnknownProvider
	}
	return p.AuthURL(state), nil
}

// OAuthCallback resolves code into a profile, then signs in the matching
// account, creating it on first use. The caller has already checked state.
func (s *Service) OAuthCallback(ctx context.Context, provider, code string) (Session, error) {
	if provider == oauth.ProviderFacebook {
		// TODO: resolve the Graph profile and link or create the credential
		// with ProviderFacebook, mirroring the Google branch below.
		return Session{}, ErrFacebookDisabled
	}
	p, ok := s.providers[provider]
	if !ok {
		return Session{}, ErrUnknownProvider
	}

	profile, err := p.ResolveProfile(ctx, code)
	switch {
	case errors.Is(err, oauth.ErrNoEmail):
		return Session{}, ErrOAuthNoEmail
	case err != nil:
		s.logger.WarnContext(ctx, "oauth profile resolution failed", logger.Provider(provider), logger.Error(err))
		return Session{}, errors.Join(ErrOAuthUpstream, err)
	}

	u, err := s.linkOrCreate(ctx, credential.ProviderGoogle, profile)
	if err != nil {
		return Session{}, err
	}
	pair, err := s.startSession(ctx, u)
	if err != nil {
		return Session{}, err
	}
	s.logger.InfoContext(ctx, "user signed in with oauth", logger.UserID(u.IDHex()), logger.Provider(provider))
	return Session{User: u.Public(), Tokens: pair}, nil
}

func (s *Service) linkOrCreate(ctx context.Context, tag credential.Provider, profile oauth.Profile) (*credential.User, error) {
	emailAddr := sanitizer.NormalizeEmail(profile.Email)
	now := s.now()

	u, err := s.users.ByEmail(ctx, emailAddr)
	if errors.Is(err, pkgmongo.ErrNotFound) {
		u = &credential.User{
			Name:       sanitizer.SingleLine(profile.Name),
			Email:      emailAddr,
			Avatar:     profile.AvatarURL,
			Providers:  []credential.Provider{tag},
			Roles:      []credential.Role{credential.RoleClient},
			Status:     credential.StatusActive,
			IsVerified: profile.EmailVerified,
		}
		if profile.EmailVerified {
			u.EmailVerifiedAt = &now
		}
		err = s.users.Create(ctx, u, "")
		var dup *pkgmongo.DuplicateKeyError
		if errors.As(err, &dup) {
			// Lost a race with a concurrent first sign-in.
			return s.users.ByEmail(ctx, emailAddr)
		}
		return u, err
	}
	if err != nil {
		return nil, err
	}

	if !u.HasProvider(tag) && !profile.EmailVerified {
		return nil, ErrOAuthUnverifiedEmail
	}
	if !u.HasProvider(tag) {
		if err := s.users.AddProvider(ctx, u.IDHex(), tag); err != nil {
			return nil, err
		}
		u.Providers = append(u.Providers, tag)
	}
	if profile.EmailVerified && !u.IsVerified {
		// Whoever registered the unverified address never proved they own
		// it, so their password and sessions go before the account is
		// handed to the provider's user.
		if u.PasswordHash != "" {
			if err := s.users.RevokePassword(ctx, u.IDHex(), now); err != nil {
				return nil, err
			}
			u.PasswordHash = ""
			u.RefreshTokens = []string{}
			u.Providers = slices.DeleteFunc(u.Providers, func(p credential.Provider) bool {
				return p == credential.ProviderEmail
			})
			s.logger.WarnContext(ctx, "unverified password revoked on provider sign-in",
				logger.UserID(u.IDHex()),
				logger.Event("password_revoked"),
			)
		}
		if err := s.users.MarkEmailVerified(ctx, u.IDHex(), now); err != nil {
			return nil, err
		}
		u.IsVerified = true
		u.EmailVerifiedAt = &now
	}
	return u, nil
}
