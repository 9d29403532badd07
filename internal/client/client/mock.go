package client

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/worldacross/membership/internal/client/models"
	"github.com/worldacross/membership/internal/cryptox"
)

// DefaultLatency is the artificial delay of every MockClient call.
const DefaultLatency = 800 * time.Millisecond

// SeedAccount is a member preloaded into a MockClient.
type SeedAccount struct {
	User     models.User
	Password string
}

// DefaultSeed is the demo membership roster.
func DefaultSeed() []SeedAccount {
	joined := time.Date(2023, time.March, 14, 9, 0, 0, 0, time.UTC)
	return []SeedAccount{
		{
			User: models.User{
				ID: 1, Email: "demo@worldacross.com", FirstName: "Alex", LastName: "Morgan",
				Name: "Alex Morgan", Phone: "+1 555 0100", Status: models.UserStatusActive,
				Role: models.RoleMember, MembershipTier: "Explorer", CreatedAt: joined,
			},
			Password: "travel123",
		},
		{
			User: models.User{
				ID: 2, Email: "paused@worldacross.com", FirstName: "Jamie", LastName: "Lee",
				Name: "Jamie Lee", Status: models.UserStatusInactive,
				Role: models.RoleMember, MembershipTier: "Voyager", CreatedAt: joined,
			},
			Password: "travel123",
		},
		{
			User: models.User{
				ID: 3, Email: "admin@worldacross.com", FirstName: "Sam", LastName: "Rivera",
				Name: "Sam Rivera", Status: models.UserStatusActive,
				Role: models.RoleAdmin, MembershipTier: "Globetrotter", CreatedAt: joined,
			},
			Password: "admin12345",
		},
	}
}

type account struct {
	user   models.User
	secret *secret
}

// secret holds a password verifier. Seeded accounts keep the plain
// password until the first check, so building a client costs no argon2
// work. A secret is never mutated after derivation; a password change
// swaps in a new one.
type secret struct {
	once     sync.Once
	password []byte
	salt     []byte
	verifier []byte
}

func pendingSecret(password string) *secret {
	return &secret{password: []byte(password)}
}

func derivedSecret(password []byte) *secret {
	salt, verifier := cryptox.NewVerifier(password)
	return &secret{salt: salt, verifier: verifier}
}

func (s *secret) check(password []byte) bool {
	s.once.Do(func() {
		if s.verifier == nil {
			s.salt, s.verifier = cryptox.NewVerifier(s.password)
		}
		s.password = nil
	})
	return cryptox.CheckPassword(password, s.salt, s.verifier)
}

// MockClient answers Client calls from an in-memory roster after a fixed
// latency.
type MockClient struct {
	mu       sync.Mutex
	accounts map[int64]*account
	byEmail  map[string]int64
	nextID   int64
	latency  time.Duration
	now      func() time.Time
	failNext error
}

// MockOption customizes a MockClient.
type MockOption func(*mockConfig)

type mockConfig struct {
	latency time.Duration
	now     func() time.Time
	seed    []SeedAccount
}

// WithLatency overrides DefaultLatency. Zero disables the delay.
func WithLatency(d time.Duration) MockOption {
	return func(c *mockConfig) {
		if d >= 0 {
			c.latency = d
		}
	}
}

// WithClock injects the clock used for CreatedAt on registration.
func WithClock(now func() time.Time) MockOption {
	return func(c *mockConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSeed replaces DefaultSeed.
func WithSeed(seed []SeedAccount) MockOption {
	return func(c *mockConfig) {
		c.seed = seed
	}
}

// NewMockClient builds a MockClient loaded with the seed roster.
func NewMockClient(opts ...MockOption) *MockClient {
	cfg := mockConfig{latency: DefaultLatency, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.seed == nil {
		cfg.seed = DefaultSeed()
	}

	m := &MockClient{
		accounts: make(map[int64]*account, len(cfg.seed)),
		byEmail:  make(map[string]int64, len(cfg.seed)),
		latency:  cfg.latency,
		now:      cfg.now,
	}
	for _, s := range cfg.seed {
		m.put(&account{user: s.User, secret: pendingSecret(s.Password)})
	}
	return m
}

// FailNext makes the next call return err without touching the roster.
func (m *MockClient) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// SetStatus changes the account status of a member, as an administrator would.
func (m *MockClient) SetStatus(userID int64, status models.UserStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[userID]
	if !ok {
		return fmt.Errorf("%w: member %d", ErrNotFound, userID)
	}
	acc.user.Status = status
	return nil
}

// Members lists the roster ordered by id.
func (m *MockClient) Members() []models.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.User, 0, len(m.accounts))
	for _, acc := range m.accounts {
		out = append(out, acc.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MockClient) Authenticate(ctx context.Context, creds models.Credentials) (models.User, error) {
	if err := m.begin(ctx); err != nil {
		return models.User{}, err
	}
	if err := creds.Validate(); err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	m.mu.Lock()
	acc, ok := m.lookup(creds.Email)
	var snapshot account
	if ok {
		snapshot = *acc
	}
	m.mu.Unlock()

	if !ok || !snapshot.secret.check(creds.Password) {
		return models.User{}, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if !snapshot.user.IsActive() {
		return models.User{}, fmt.Errorf("%w: account is %s", ErrUnauthorized, snapshot.user.Status)
	}
	return snapshot.user, nil
}

func (m *MockClient) SignOut(ctx context.Context) error {
	return m.begin(ctx)
}

func (m *MockClient) FetchCurrentUser(ctx context.Context, userID int64) (models.User, error) {
	if err := m.begin(ctx); err != nil {
		return models.User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[userID]
	if !ok {
		return models.User{}, fmt.Errorf("%w: member %d", ErrNotFound, userID)
	}
	return acc.user, nil
}

func (m *MockClient) RegisterUser(ctx context.Context, reg models.Registration) (models.User, error) {
	if err := m.begin(ctx); err != nil {
		return models.User{}, err
	}
	if err := reg.Validate(); err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	// derive outside the lock, argon2 is slow on purpose
	sec := derivedSecret(reg.Password)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.lookup(reg.Email); exists {
		return models.User{}, ErrAccountExists
	}

	first, last := strings.TrimSpace(reg.FirstName), strings.TrimSpace(reg.LastName)
	acc := &account{
		user: models.User{
			ID:             m.nextID + 1,
			Email:          strings.TrimSpace(reg.Email),
			FirstName:      first,
			LastName:       last,
			Name:           first + " " + last,
			Phone:          strings.TrimSpace(reg.Phone),
			Status:         models.UserStatusActive,
			Role:           models.RoleMember,
			MembershipTier: "Explorer",
			CreatedAt:      m.now().UTC(),
		},
		secret: sec,
	}
	m.put(acc)
	return acc.user, nil
}

func (m *MockClient) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) (models.User, error) {
	if err := m.begin(ctx); err != nil {
		return models.User{}, err
	}
	if err := upd.Validate(); err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[userID]
	if !ok {
		return models.User{}, fmt.Errorf("%w: member %d", ErrNotFound, userID)
	}

	patch := models.User{
		FirstName: strings.TrimSpace(upd.FirstName),
		LastName:  strings.TrimSpace(upd.LastName),
		Phone:     strings.TrimSpace(upd.Phone),
	}
	acc.user = acc.user.Merge(patch)
	if patch.FirstName != "" || patch.LastName != "" {
		acc.user.Name = strings.TrimSpace(acc.user.FirstName + " " + acc.user.LastName)
	}
	return acc.user, nil
}

func (m *MockClient) ChangePassword(ctx context.Context, userID int64, change models.PasswordChange) error {
	if err := m.begin(ctx); err != nil {
		return err
	}
	if err := change.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[userID]
	if !ok {
		return fmt.Errorf("%w: member %d", ErrNotFound, userID)
	}
	if !acc.secret.check(change.CurrentPassword) {
		return fmt.Errorf("%w: current password is incorrect", ErrUnauthorized)
	}
	acc.secret = derivedSecret(change.NewPassword)
	return nil
}

// begin waits out the artificial latency and consumes an injected failure.
func (m *MockClient) begin(ctx context.Context) error {
	if m.latency > 0 {
		timer := time.NewTimer(m.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		}
	} else if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	return nil
}

func (m *MockClient) lookup(email string) (*account, bool) {
	id, ok := m.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, false
	}
	return m.accounts[id], true
}

func (m *MockClient) put(acc *account) {
	m.accounts[acc.user.ID] = acc
	m.byEmail[strings.ToLower(acc.user.Email)] = acc.user.ID
	if acc.user.ID > m.nextID {
		m.nextID = acc.user.ID
	}
}
