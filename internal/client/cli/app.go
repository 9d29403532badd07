package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/worldacross/membership/internal/client/client"
	"github.com/worldacross/membership/internal/client/config"
	"github.com/worldacross/membership/internal/client/metrics"
	"github.com/worldacross/membership/internal/client/models"
	"github.com/worldacross/membership/internal/client/session"
	"github.com/worldacross/membership/internal/client/storage"
	"github.com/worldacross/membership/internal/logging"
	"github.com/worldacross/membership/internal/token"
)

// opTimeout bounds a single command's calls to the membership API.
const opTimeout = 10 * time.Second

// sessionStore is the part of *session.Store the CLI drives.
type sessionStore interface {
	Bootstrap(ctx context.Context) error
	Login(ctx context.Context, creds models.Credentials) error
	Logout(ctx context.Context) error
	Register(ctx context.Context, reg models.Registration) (models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) error
	ChangePassword(ctx context.Context, change models.PasswordChange) error
	ClearError()
	Snapshot() session.State
	Subscribe(fn func(session.State)) func()
	Close() error
}

type App struct {
	config   *config.Config
	store    sessionStore
	creds    storage.CredentialStore
	gatherer prometheus.Gatherer
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer

	expiredShown atomic.Bool
}

// NewApp wires the credential store selected by c, the mocked membership
// API and a session store with its metrics.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogLevel)

	creds, err := openCredentialStore(ctx, c)
	if err != nil {
		log.Error(ctx, "open credential store", "backend", c.StorageBackend, "error", err)
		return nil, err
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	api := client.NewMockClient(client.WithLatency(c.APILatency))
	store := session.NewStore(
		token.New(c.TokenSecret),
		api,
		creds,
		session.WithSkipAuthCheck(c.SkipAuthCheck),
		session.WithTokenTTL(c.TokenTTL),
		session.WithExpiryCheckInterval(c.ExpiryCheckInterval),
		session.WithRegisterIssuesCredential(c.RegisterIssuesCredential),
		session.WithOperationTimeout(opTimeout),
		session.WithLogger(log.With("component", "session")),
		session.WithMetrics(m),
	)

	return newApp(c, store, creds, reg, log), nil
}

func newApp(c *config.Config, store sessionStore, creds storage.CredentialStore, g prometheus.Gatherer, log logging.Logger) *App {
	return &App{
		config:   c,
		store:    store,
		creds:    creds,
		gatherer: g,
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
}

func openCredentialStore(ctx context.Context, c *config.Config) (storage.CredentialStore, error) {
	switch c.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil
	case config.BackendRedis:
		rs, err := storage.DialRedis(ctx, c.RedisAddr, c.Origin)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case config.BackendSQLite:
		ss, err := storage.OpenSQLite(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return ss, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
}

// Run restores the saved session and runs the REPL until the user exits or
// stdin is closed.
func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)

	unsubscribe := a.store.Subscribe(a.onStateChange)
	defer unsubscribe()

	printlnFn("Welcome to World Across (type 'help' for commands)")

	bctx, cancel := context.WithTimeout(ctx, opTimeout)
	if err := a.store.Bootstrap(bctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	}
	cancel()

	if s := a.store.Snapshot(); s.IsAuthenticated {
		printlnFn("Welcome back,", s.User.DisplayName())
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) close(ctx context.Context) {
	if err := a.store.Close(); err != nil {
		a.log.Warn(ctx, "close session store", "error", err)
	}
	if err := a.creds.Close(); err != nil {
		a.log.Warn(ctx, "close credential store", "error", err)
	}
}

// onStateChange tells the user once when the watcher ends their session.
func (a *App) onStateChange(s session.State) {
	switch {
	case s.IsAuthenticated:
		a.expiredShown.Store(false)
	case s.Error == session.ExpiredMessage:
		if a.expiredShown.CompareAndSwap(false, true) {
			printlnFn("\nYour session has expired. Please log in again.")
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.store.Snapshot().IsAuthenticated
}

func (a *App) getStatus() string {
	s := a.store.Snapshot()
	if s.IsAuthenticated {
		return fmt.Sprintf("(%s)", s.User.DisplayName())
	}
	return ""
}
