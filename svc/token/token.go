// Package token issues and verifies the access/refresh pair.
package token

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	pkgjwt "github.com/edutrack/institute/pkg/jwt"
)

var (
	ErrInvalidToken = errors.New("token: invalid")
	ErrWrongKind    = errors.New("token: wrong token kind")
	ErrMissingUID   = errors.New("token: missing uid")
)

type Config struct {
	Secret     string        `env:"JWT_SECRET,required"`
	Issuer     string        `env:"JWT_ISSUER" envDefault:"institute"`
	AccessTTL  time.Duration `env:"JWT_SHORT_EXPIRY" envDefault:"1h"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"480h"`
	Leeway     time.Duration `env:"JWT_LEEWAY" envDefault:"5s"`
}

// Kind separates access from refresh tokens so one cannot stand in for the other.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Subject is who a pair is issued to.
type Subject struct {
	Email string
	Role  string
	UID   string
}

// Claims is the token payload. ID (jti) is unique per token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	UID   string `json:"uid"`
	Kind  Kind   `json:"typ"`
	gojwt.RegisteredClaims
}

type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type Issuer struct {
	jwt        *pkgjwt.Service
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Issuer)

// WithClock overrides the issuance clock.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

func NewIssuer(cfg Config, opts ...Option) (*Issuer, error) {
	svc, err := pkgjwt.New([]byte(cfg.Secret), pkgjwt.WithIssuer(cfg.Issuer), pkgjwt.WithLeeway(cfg.Leeway))
	if err != nil {
		return nil, err
	}
	i := &Issuer{
		jwt:        svc,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
	if i.accessTTL <= 0 {
		i.accessTTL = time.Hour
	}
	if i.refreshTTL <= 0 {
		i.refreshTTL = 20 * 24 * time.Hour
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *Issuer) IssuePair(sub Subject) (Pair, error) {
	now := i.now()
	access, err := i.sign(sub, KindAccess, now, i.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(sub, KindRefresh, now, i.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  now.Add(i.accessTTL),
		RefreshExpiresAt: now.Add(i.refreshTTL),
	}, nil
}

func (i *Issuer) VerifyAccess(tok string) (*Claims, error) { return i.verify(tok, KindAccess) }

func (i *Issuer) VerifyRefresh(tok string) (*Claims, error) { return i.verify(tok, KindRefresh) }

func (i *Issuer) sign(sub Subject, kind Kind, now time.Time, ttl time.Duration) (string, error) {
	return i.jwt.Sign(Claims{
		Email: sub.Email,
		Role:  sub.Role,
		UID:   sub.UID,
		Kind:  kind,
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   sub.UID,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
	})
}

func (i *Issuer) verify(tok string, kind Kind) (*Claims, error) {
	var c Claims
	if err := i.jwt.Parse(tok, &c); err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if c.Kind != kind {
		return nil, errors.Join(ErrInvalidToken, ErrWrongKind)
	}
	if c.UID == "" {
		return nil, errors.Join(ErrInvalidToken, ErrMissingUID)
	}
	return &c, nil
}
