package auth

import (
	"context"
	"errors"

	pkgmongo "github.com/edutrack/institute/pkg/mongo"
	"github.com/edutrack/institute/pkg/sanitizer"
	"github.com/edutrack/institute/svc/credential"
)

func (s *Service) Profile(ctx context.Context, userID string) (credential.PublicUser, error) {
	u, err := s.userByID(ctx, userID)
	if err != nil {
		return credential.PublicUser{}, err
	}
	return u.Public(), nil
}

// UpdateProfile applies the non-nil fields of upd. A phone already used by
// another account is a conflict.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd credential.ProfileUpdate) (credential.PublicUser, error) {
	if upd.Empty() {
		return s.Profile(ctx, userID)
	}
	if upd.Name != nil {
		v := sanitizer.SingleLine(*upd.Name)
		upd.Name = &v
	}
	if upd.Phone != nil {
		v := sanitizer.NormalizePhone(*upd.Phone)
		upd.Phone = &v
	}

	u, err := s.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, pkgmongo.ErrNotFound) {
			return credential.PublicUser{}, ErrUserNotFound
		}
		return credential.PublicUser{}, mapDuplicate(err)
	}
	return u.Public(), nil
}
