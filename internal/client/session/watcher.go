package session

import (
	"context"
	"time"

	"github.com/worldacross/membership/internal/token"
)

type watcher struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *Store) startWatcherLocked() {
	if s.watch != nil || s.closed || s.expiryCheckInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &watcher{cancel: cancel, done: make(chan struct{})}
	s.watch = w
	go s.watchLoop(ctx, w, s.expiryCheckInterval)
}

func (s *Store) stopWatcherLocked() *watcher {
	w := s.watch
	s.watch = nil
	if w != nil {
		w.cancel()
	}
	return w
}

func (s *Store) watchLoop(ctx context.Context, w *watcher, every time.Duration) {
	defer close(w.done)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Revalidate(ctx)
		}
	}
}

// Revalidate re-verifies the credential of an authenticated session. When
// it no longer verifies the stored credential is removed and the session
// expires. It reports whether the session is still authenticated.
func (s *Store) Revalidate(ctx context.Context) bool {
	s.mu.Lock()
	st, epoch := s.state, s.epoch
	s.mu.Unlock()

	if st.Status != StatusAuthenticated {
		return false
	}

	res := s.verify(st.Token)
	if res.Valid {
		return true
	}

	log := s.opLogger("expire")
	log.Info(ctx, "session credential no longer valid", "reason", string(res.Reason))

	if s.commit(ctx, log, epoch, st.Token, Expired{}) {
		s.outcome("expire", nil)
	}
	return false
}

func (s *Store) verify(tok string) token.Result {
	res := s.codec.Verify(tok)
	s.metrics.Verification(string(res.Reason))
	return res
}
