package auth_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/edutrack/institute/pkg/email"
	pkgmongo "github.com/edutrack/institute/pkg/mongo"
	"github.com/edutrack/institute/svc/credential"
	"github.com/edutrack/institute/svc/oauth"
	"github.com/edutrack/institute/svc/otp"
	"github.com/edutrack/institute/svc/saga"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock { return &clock{t: time.Now().UTC().Truncate(time.Second)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// memUsers mimics MongoStore, including the unique email and phone indexes
// and the purge of soft-deleted records on re-registration.
type memUsers struct {
	mu     sync.Mutex
	users  map[string]*credential.User
	hasher credential.Hasher
	now    func() time.Time
}

var _ credential.Store = (*memUsers)(nil)

func newMemUsers(h credential.Hasher, now func() time.Time) *memUsers {
	return &memUsers{users: make(map[string]*credential.User), hasher: h, now: now}
}

func (s *memUsers) snapshot() map[string]credential.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]credential.User, len(s.users))
	for id, u := range s.users {
		out[id] = *u
	}
	return out
}

func (s *memUsers) restore(snap map[string]credential.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]*credential.User, len(snap))
	for id, u := range snap {
		s.users[id] = &u
	}
}

func (s *memUsers) get(id string) credential.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

func (s *memUsers) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *memUsers) Create(_ context.Context, u *credential.User, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, other := range s.users {
		if other.Email == u.Email && other.Status == credential.StatusDeleted {
			delete(s.users, id)
			continue
		}
		if other.Email == u.Email {
			return &pkgmongo.DuplicateKeyError{Fields: []string{"email"}}
		}
		if u.Phone != "" && other.Phone == u.Phone {
			return &pkgmongo.DuplicateKeyError{Fields: []string{"phone"}}
		}
	}
	if _, err := credential.ApplyPassword(u, password, s.hasher, now); err != nil {
		return err
	}
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	u.CreatedAt, u.UpdatedAt = now, now
	if u.RefreshTokens == nil {
		u.RefreshTokens = []string{}
	}
	cp := *u
	s.users[u.IDHex()] = &cp
	return nil
}

func (s *memUsers) find(match func(*credential.User) bool) (*credential.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			cp := *u
			cp.RefreshTokens = slices.Clone(u.RefreshTokens)
			cp.Providers = slices.Clone(u.Providers)
			return &cp, nil
		}
	}
	return nil, pkgmongo.ErrNotFound
}

func (s *memUsers) ByID(_ context.Context, id string) (*credential.User, error) {
	return s.find(func(u *credential.User) bool { return u.IDHex() == id })
}

func (s *memUsers) ByEmail(_ context.Context, addr string) (*credential.User, error) {
	return s.find(func(u *credential.User) bool {
		return u.Email == addr && u.Status != credential.StatusDeleted
	})
}

func (s *memUsers) ByRefreshToken(_ context.Context, tok string) (*credential.User, error) {
	return s.find(func(u *credential.User) bool {
		return u.Status != credential.StatusDeleted && slices.Contains(u.RefreshTokens, tok)
	})
}

func (s *memUsers) update(id string, fn func(*credential.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return pkgmongo.ErrNotFound
	}
	if err := fn(u); err != nil {
		return err
	}
	u.UpdatedAt = s.now()
	return nil
}

func (s *memUsers) IncrementFailedLogins(_ context.Context, id string) (int, error) {
	var n int
	err := s.update(id, func(u *credential.User) error {
		u.FailedLoginAttempts++
		n = u.FailedLoginAttempts
		return nil
	})
	return n, err
}

func (s *memUsers) SetLockout(_ context.Context, id string, until time.Time) error {
	return s.update(id, func(u *credential.User) error { u.LockoutUntil = &until; return nil })
}

func (s *memUsers) RecordLogin(_ context.Context, id string, at time.Time) error {
	return s.update(id, func(u *credential.User) error {
		u.FailedLoginAttempts = 0
		u.LockoutUntil = nil
		u.LastLoginAt = &at
		return nil
	})
}

func (s *memUsers) SaveSessions(_ context.Context, id string, tokens []string) error {
	return s.update(id, func(u *credential.User) error { u.RefreshTokens = slices.Clone(tokens); return nil })
}

func (s *memUsers) RemoveSession(_ context.Context, id, tok string) error {
	return s.update(id, func(u *credential.User) error {
		u.RefreshTokens = slices.DeleteFunc(u.RefreshTokens, func(t string) bool { return t == tok })
		return nil
	})
}

func (s *memUsers) MarkEmailVerified(_ context.Context, id string, at time.Time) error {
	return s.update(id, func(u *credential.User) error {
		u.IsVerified = true
		u.EmailVerifiedAt = &at
		return nil
	})
}

func (s *memUsers) UpdatePassword(_ context.Context, id, password string, at time.Time) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return s.update(id, func(u *credential.User) error {
		u.PasswordHash = hash
		u.PasswordChangedAt = &at
		if !u.HasProvider(credential.ProviderEmail) {
			u.Providers = append(u.Providers, credential.ProviderEmail)
		}
		return nil
	})
}

func (s *memUsers) RevokePassword(_ context.Context, id string, at time.Time) error {
	return s.update(id, func(u *credential.User) error {
		u.PasswordHash = ""
		u.PasswordChangedAt = &at
		u.RefreshTokens = []string{}
		u.Providers = slices.DeleteFunc(u.Providers, func(p credential.Provider) bool {
			return p == credential.ProviderEmail
		})
		return nil
	})
}

func (s *memUsers) AddProvider(_ context.Context, id string, p credential.Provider) error {
	return s.update(id, func(u *credential.User) error {
		if !u.HasProvider(p) {
			u.Providers = append(u.Providers, p)
		}
		return nil
	})
}

func (s *memUsers) UpdateProfile(_ context.Context, id string, upd credential.ProfileUpdate) (*credential.User, error) {
	s.mu.Lock()
	if upd.Phone != nil && *upd.Phone != "" {
		for oid, other := range s.users {
			if oid != id && other.Phone == *upd.Phone {
				s.mu.Unlock()
				return nil, &pkgmongo.DuplicateKeyError{Fields: []string{"phone"}}
			}
		}
	}
	s.mu.Unlock()

	err := s.update(id, func(u *credential.User) error {
		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.Phone != nil {
			u.Phone = *upd.Phone
		}
		if upd.Avatar != nil {
			u.Avatar = *upd.Avatar
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u := s.get(id)
	return &u, nil
}

func (s *memUsers) SoftDelete(_ context.Context, id string, at time.Time) error {
	return s.update(id, func(u *credential.User) error {
		u.Status = credential.StatusDeleted
		u.DeletedAt = &at
		u.RefreshTokens = []string{}
		return nil
	})
}

type memCodes struct {
	mu    sync.Mutex
	codes []*otp.Code
}

var _ otp.Ledger = (*memCodes)(nil)

func (l *memCodes) snapshot() []otp.Code {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]otp.Code, 0, len(l.codes))
	for _, c := range l.codes {
		out = append(out, *c)
	}
	return out
}

func (l *memCodes) restore(snap []otp.Code) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.codes = l.codes[:0]
	for _, c := range snap {
		l.codes = append(l.codes, &c)
	}
}

func (l *memCodes) forUser(userID string) []otp.Code {
	var out []otp.Code
	for _, c := range l.snapshot() {
		if c.UserID.Hex() == userID {
			out = append(out, c)
		}
	}
	return out
}

// value returns the newest unconsumed code value, as a mail reader would see it.
func (l *memCodes) value(userID string, p otp.Purpose) string {
	c, err := l.Latest(context.Background(), userID, p)
	if err != nil {
		return ""
	}
	return c.Value
}

func (l *memCodes) Create(_ context.Context, c *otp.Code) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c.ID = bson.NewObjectID()
	cp := *c
	l.codes = append(l.codes, &cp)
	return nil
}

// Latest relies on insertion order for ties on createdAt, like the _id
// tie-break in MongoLedger.
func (l *memCodes) Latest(_ context.Context, userID string, p otp.Purpose) (*otp.Code, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var latest *otp.Code
	for _, c := range l.codes {
		if c.UserID.Hex() != userID || c.Purpose != p || c.Consumed {
			continue
		}
		if latest == nil || !c.CreatedAt.Before(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, pkgmongo.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (l *memCodes) Consume(_ context.Context, id bson.ObjectID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.codes {
		if c.ID == id && !c.Consumed {
			c.Consumed = true
			return nil
		}
	}
	return pkgmongo.ErrNotFound
}

func (l *memCodes) DeleteForUser(_ context.Context, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.codes = slices.DeleteFunc(l.codes, func(c *otp.Code) bool { return c.UserID.Hex() == userID })
	return nil
}

// memTx rolls both stores back when fn fails.
type memTx struct {
	users *memUsers
	codes *memCodes
	runs  int
}

func (t *memTx) InTx(ctx context.Context, fn func(context.Context) error) error {
	t.runs++
	users, codes := t.users.snapshot(), t.codes.snapshot()
	if err := fn(ctx); err != nil {
		t.users.restore(users)
		t.codes.restore(codes)
		return err
	}
	return nil
}

type memIntents struct {
	mu      sync.Mutex
	intents map[bson.ObjectID]*saga.Intent
}

var _ saga.Store = (*memIntents)(nil)

func newMemIntents() *memIntents {
	return &memIntents{intents: make(map[bson.ObjectID]*saga.Intent)}
}

func (s *memIntents) all() []saga.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []saga.Intent
	for _, in := range s.intents {
		out = append(out, *in)
	}
	return out
}

func (s *memIntents) Begin(_ context.Context, addr string, userID bson.ObjectID) (*saga.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := &saga.Intent{ID: bson.NewObjectID(), UserID: userID, Email: addr, State: saga.StatePending}
	s.intents[in.ID] = in
	cp := *in
	return &cp, nil
}

func (s *memIntents) mutate(id bson.ObjectID, fn func(*saga.Intent)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intents[id]
	if !ok || in.State != saga.StatePending {
		return errors.Join(saga.ErrNotPending, pkgmongo.ErrNotFound)
	}
	fn(in)
	return nil
}

func (s *memIntents) Complete(_ context.Context, id bson.ObjectID) error {
	return s.mutate(id, func(in *saga.Intent) { in.State = saga.StateCompleted })
}

func (s *memIntents) MarkCompensated(_ context.Context, id bson.ObjectID) error {
	return s.mutate(id, func(in *saga.Intent) { in.State = saga.StateCompensated })
}

func (s *memIntents) RecordFailure(_ context.Context, id bson.ObjectID, cause error) error {
	return s.mutate(id, func(in *saga.Intent) {
		in.Attempts++
		in.LastError = cause.Error()
	})
}

func (s *memIntents) Stale(context.Context, time.Time, int) ([]saga.Intent, error) {
	return nil, nil
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg email.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type mockProvider struct {
	mock.Mock
	name string
}

var _ oauth.Provider = (*mockProvider)(nil)

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) AuthURL(state string) string {
	return m.Called(state).String(0)
}

func (m *mockProvider) ResolveProfile(ctx context.Context, code string) (oauth.Profile, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(oauth.Profile), args.Error(1)
}
