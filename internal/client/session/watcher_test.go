package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldacross/membership/internal/client/models"
)

func TestRevalidate(t *testing.T) {
	f := newFixture(t, &fakeClient{AuthUser: alex}, WithTokenTTL("1h"))
	ctx := context.Background()

	assert.False(t, f.store.Revalidate(ctx), "anonymous store has nothing to revalidate")

	require.NoError(t, f.store.Login(ctx, models.Credentials{Email: alex.Email}))
	assert.True(t, f.store.Revalidate(ctx))

	f.clock.Advance(time.Hour + time.Second)
	assert.False(t, f.store.Revalidate(ctx))
	assert.Equal(t, anonymous(ExpiredMessage), f.store.Snapshot())
	assert.Empty(t, f.storedToken(t))
}

func TestRevalidate_KeepsNewerStoredCredential(t *testing.T) {
	f := newFixture(t, &fakeClient{AuthUser: alex}, WithTokenTTL("1h"))
	ctx := context.Background()
	require.NoError(t, f.store.Login(ctx, models.Credentials{Email: alex.Email}))

	f.clock.Advance(2 * time.Hour)
	newer := f.seedCredential(t, alex, "24h")

	assert.False(t, f.store.Revalidate(ctx))
	assert.Equal(t, newer, f.storedToken(t))
}

func TestWatcher_ExpiresSession(t *testing.T) {
	f := newFixture(t, &fakeClient{AuthUser: alex},
		WithTokenTTL("1h"), WithExpiryCheckInterval(5*time.Millisecond))
	ctx := context.Background()

	expired := make(chan State, 1)
	f.store.Subscribe(func(s State) {
		if s.Error == ExpiredMessage {
			select {
			case expired <- s:
			default:
			}
		}
	})

	require.NoError(t, f.store.Login(ctx, models.Credentials{Email: alex.Email}))
	require.Equal(t, StatusAuthenticated, f.store.Snapshot().Status)

	f.clock.Advance(time.Hour + time.Second)

	select {
	case s := <-expired:
		assert.Equal(t, StatusAnonymous, s.Status)
		assert.Nil(t, s.User)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not expire the session")
	}
	require.Eventually(t, func() bool { return f.storedToken(t) == "" }, time.Second, 5*time.Millisecond)
}

func TestWatcher_StopsOnLogoutAndClose(t *testing.T) {
	f := newFixture(t, &fakeClient{AuthUser: alex}, WithExpiryCheckInterval(time.Millisecond))
	ctx := context.Background()

	require.NoError(t, f.store.Login(ctx, models.Credentials{Email: alex.Email}))
	f.store.mu.Lock()
	running := f.store.watch != nil
	f.store.mu.Unlock()
	require.True(t, running)

	require.NoError(t, f.store.Logout(ctx))
	f.store.mu.Lock()
	assert.Nil(t, f.store.watch)
	f.store.mu.Unlock()

	require.NoError(t, f.store.Login(ctx, models.Credentials{Email: alex.Email}))
	require.NoError(t, f.store.Close())

	// closed store: an expired credential is no longer noticed
	var mu sync.Mutex
	changes := 0
	f.store.Subscribe(func(State) { mu.Lock(); changes++; mu.Unlock() })
	f.clock.Advance(48 * time.Hour)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, changes)
	assert.Equal(t, StatusAuthenticated, f.store.Snapshot().Status)
}

func TestWatcher_DisabledByZeroInterval(t *testing.T) {
	f := newFixture(t, &fakeClient{AuthUser: alex})
	require.NoError(t, f.store.Login(context.Background(), models.Credentials{Email: alex.Email}))

	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	assert.Nil(t, f.store.watch)
}
