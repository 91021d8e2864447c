package credential

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrHashFailed = errors.New("credential: failed to hash password")

// Hasher produces and checks one-way password hashes.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Compare(hash, plaintext string) bool
}

// BcryptHasher uses bcrypt. Compare is constant-time in the hash.
type BcryptHasher struct {
	Cost int
}

var _ Hasher = BcryptHasher{}

func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{Cost: cost}
}

func (h BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.Cost)
	if err != nil {
		return "", errors.Join(ErrHashFailed, err)
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(hash, plaintext string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// ApplyPassword hashes plaintext into u only when u is an EMAIL-provider
// account and a plaintext was supplied. It reports whether the hash changed.
func ApplyPassword(u *User, plaintext string, h Hasher, now time.Time) (bool, error) {
	if plaintext == "" || !u.HasProvider(ProviderEmail) {
		return false, nil
	}
	hash, err := h.Hash(plaintext)
	if err != nil {
		return false, err
	}
	u.PasswordHash = hash
	u.PasswordChangedAt = &now
	return true, nil
}
