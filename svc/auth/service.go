package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/edutrack/institute/pkg/email"
	"github.com/edutrack/institute/pkg/feature"
	"github.com/edutrack/institute/pkg/logger"
	"github.com/edutrack/institute/svc/credential"
	"github.com/edutrack/institute/svc/oauth"
	"github.com/edutrack/institute/svc/otp"
	"github.com/edutrack/institute/svc/saga"
	"github.com/edutrack/institute/svc/token"
)

const (
	// TransactionsFlag switches registration to a single database transaction.
	TransactionsFlag = "registration_transactions"

	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

// TxRunner runs fn inside a transaction that commits only when fn returns nil.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	users   credential.Store
	codes   otp.Ledger
	issuer  *token.Issuer
	mailer  email.Sender
	hasher  credential.Hasher
	intents saga.Store

	tx        TxRunner
	flags     feature.Provider
	providers map[string]oauth.Provider

	logger      *slog.Logger
	now         func() time.Time
	orgName     string
	otpTTL      time.Duration
	mailTimeout time.Duration
	maxSessions int
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTransactions enables transactional registration whenever
// TransactionsFlag is on in flags.
func WithTransactions(tx TxRunner, flags feature.Provider) Option {
	return func(s *Service) {
		s.tx = tx
		s.flags = flags
	}
}

// WithSagaStore records registration intents so the reconciler can settle
// attempts interrupted mid-flight.
func WithSagaStore(st saga.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.intents = st
		}
	}
}

func WithOAuthProviders(ps ...oauth.Provider) Option {
	return func(s *Service) {
		for _, p := range ps {
			if p != nil {
				s.providers[p.Name()] = p
			}
		}
	}
}

func WithHasher(h credential.Hasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithOrgName sets the organisation name used in outgoing mail.
func WithOrgName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.orgName = name
		}
	}
}

func WithMailTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.mailTimeout = d
		}
	}
}

func WithOTPTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.otpTTL = d
		}
	}
}

func New(users credential.Store, codes otp.Ledger, issuer *token.Issuer, mailer email.Sender, opts ...Option) *Service {
	s := &Service{
		users:       users,
		codes:       codes,
		issuer:      issuer,
		mailer:      mailer,
		hasher:      credential.NewBcryptHasher(0),
		intents:     nopIntents{},
		providers:   make(map[string]oauth.Provider),
		logger:      logger.Discard(),
		now:         time.Now,
		orgName:     "Institute",
		otpTTL:      otp.DefaultTTL,
		mailTimeout: 10 * time.Second,
		maxSessions: credential.MaxSessions,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("auth"))
	return s
}

// AccessTTL and RefreshTTL expose token lifetimes for cookie max-age.
func (s *Service) AccessTTL() time.Duration { return s.issuer.AccessTTL() }

func (s *Service) RefreshTTL() time.Duration { return s.issuer.RefreshTTL() }

// VerifyAccess validates an access token.
func (s *Service) VerifyAccess(tok string) (*token.Claims, error) {
	return s.issuer.VerifyAccess(tok)
}

func (s *Service) transactional(ctx context.Context) bool {
	return s.tx != nil && feature.Enabled(ctx, s.flags, TransactionsFlag)
}
