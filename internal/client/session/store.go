package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/worldacross/membership/internal/client/client"
	"github.com/worldacross/membership/internal/client/metrics"
	"github.com/worldacross/membership/internal/client/storage"
	"github.com/worldacross/membership/internal/logging"
	"github.com/worldacross/membership/internal/token"
)

// DefaultExpiryCheckInterval is how often the watcher re-verifies the
// credential of an authenticated session.
const DefaultExpiryCheckInterval = 5 * time.Minute

// DefaultOperationTimeout bounds a shared operation once it runs detached
// from the caller that started it.
const DefaultOperationTimeout = 30 * time.Second

// Store owns the session state and runs the session operations.
// It is safe for concurrent use.
type Store struct {
	codec   *token.Codec
	api     client.Client
	creds   storage.CredentialStore
	log     logging.Logger
	metrics *metrics.Metrics

	skipAuthCheck            bool
	tokenTTL                 string
	expiryCheckInterval      time.Duration
	registerIssuesCredential bool
	operationTimeout         time.Duration

	flight singleflight.Group

	// persist is held while a credential write and the session change it
	// belongs to are applied. Lock order is persist, then mu.
	persist sync.Mutex

	mu      sync.Mutex
	state   State
	epoch   uint64
	subs    map[int]func(State)
	nextSub int
	watch   *watcher
	closed  bool
}

// Option customizes a Store.
type Option func(*Store)

// WithSkipAuthCheck makes Bootstrap settle anonymous without reading the
// stored credential and makes Register return a local placeholder.
func WithSkipAuthCheck(skip bool) Option {
	return func(s *Store) { s.skipAuthCheck = skip }
}

// WithTokenTTL sets the lifetime of issued credentials ("24h", "7d").
func WithTokenTTL(ttl string) Option {
	return func(s *Store) { s.tokenTTL = ttl }
}

// WithExpiryCheckInterval sets the watcher period. Zero or negative
// disables the watcher.
func WithExpiryCheckInterval(d time.Duration) Option {
	return func(s *Store) { s.expiryCheckInterval = d }
}

// WithRegisterIssuesCredential controls whether a successful Register also
// logs the new member in.
func WithRegisterIssuesCredential(issue bool) Option {
	return func(s *Store) { s.registerIssuesCredential = issue }
}

// WithOperationTimeout bounds how long a shared operation may run after
// it is detached from its callers. Zero or negative keeps the default.
func WithOperationTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.operationTimeout = d
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the collectors updated by the store.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore returns a Store in InitialState. Call Bootstrap to settle it.
func NewStore(codec *token.Codec, api client.Client, creds storage.CredentialStore, opts ...Option) *Store {
	s := &Store{
		codec:                    codec,
		api:                      api,
		creds:                    creds,
		log:                      logging.Nop{},
		tokenTTL:                 "24h",
		expiryCheckInterval:      DefaultExpiryCheckInterval,
		registerIssuesCredential: true,
		operationTimeout:         DefaultOperationTimeout,
		state:                    InitialState(),
		subs:                     make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to receive the state after every applied
// transition. fn runs on the goroutine that applied the transition and must
// neither block nor call back into the store. The returned func
// unsubscribes.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Close stops the watcher and rejects further operations. It does not close
// the credential store. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	w := s.stopWatcherLocked()
	s.mu.Unlock()

	if w != nil {
		<-w.done
	}
	return nil
}

// ClearError resets the error message.
func (s *Store) ClearError() {
	s.dispatch(ErrorCleared{})
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// start applies Started and returns the epoch the operation runs under.
func (s *Store) start() uint64 {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	s.dispatch(Started{})
	return epoch
}

func (s *Store) dispatch(cmd Command) State {
	st, _ := s.apply(cmd, 0, false)
	return st
}

// dispatchIf applies cmd only if no session change happened since epoch.
func (s *Store) dispatchIf(epoch uint64, cmd Command) bool {
	_, ok := s.apply(cmd, epoch, true)
	return ok
}

func (s *Store) apply(cmd Command, epoch uint64, guarded bool) (State, bool) {
	s.mu.Lock()
	if guarded && epoch != s.epoch {
		s.mu.Unlock()
		s.log.Debug(context.Background(), "dropped stale transition", "command", CommandName(cmd))
		return State{}, false
	}

	prev := s.state
	next := Reduce(prev, cmd)
	s.state = next

	switch cmd.(type) {
	case Authenticated, LoggedOut, Expired, Settled:
		s.epoch++
	}

	switch {
	case next.Status == StatusAuthenticated && prev.Status != StatusAuthenticated:
		s.startWatcherLocked()
	case next.Status != StatusAuthenticated && prev.Status == StatusAuthenticated:
		// the loop may be blocked on this mutex, so it is not waited for
		s.stopWatcherLocked()
	}

	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	if next.Status != prev.Status {
		s.metrics.Transition(string(next.Status))
	}
	out := next.clone()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(out.clone())
	}
	return out, true
}

// current reports whether no session change happened since epoch.
func (s *Store) current(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch == epoch
}

// commit removes tok if it is still the stored credential and then applies
// cmd unless the session changed since epoch. Both happen under persist so
// no credential can be saved in between. An empty tok skips the removal.
func (s *Store) commit(ctx context.Context, log logging.Logger, epoch uint64, tok string, cmd Command) bool {
	s.persist.Lock()
	defer s.persist.Unlock()

	if tok != "" {
		s.discardIfCurrent(ctx, log, tok)
	}
	return s.dispatchIf(epoch, cmd)
}

// shared runs fn once per key for all concurrent callers. fn gets a context
// detached from the caller that started it and bounded by the operation
// timeout, so one caller giving up does not fail the others. Each caller
// stops waiting when its own ctx ends.
func (s *Store) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := s.flight.DoChan(key, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.operationTimeout)
		defer cancel()
		return fn(runCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// opLogger returns a logger tagged with a fresh operation id.
func (s *Store) opLogger(op string) logging.Logger {
	return s.log.With("op", op, "op_id", uuid.NewString())
}

func (s *Store) outcome(op string, err error) {
	switch {
	case err == nil:
		s.metrics.Operation(op, "ok")
	case errors.Is(err, ErrStale):
		s.metrics.Operation(op, "stale")
	default:
		s.metrics.Operation(op, "error")
	}
}
