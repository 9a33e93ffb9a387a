package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ericksa/lexinegotiate/internal/fault"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestStoreCreateGetDelete(t *testing.T) {
	store := NewStore(time.Hour, nil)

	sess := store.Create()
	require.NotEmpty(t, sess.ID())

	got, err := store.Get(sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, store.Len())

	store.Delete(sess.ID())
	_, err = store.Get(sess.ID())
	assert.ErrorIs(t, err, fault.ErrNotFound)

	store.Delete("unknown")
}

func TestStoreSweepEvictsIdleSessions(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewStore(30*time.Minute, nil, WithClock(clock.Now))

	stale := store.Create()
	clock.Advance(20 * time.Minute)
	fresh := store.Create()
	clock.Advance(15 * time.Minute)

	assert.Equal(t, 1, store.Sweep())
	_, err := store.Get(stale.ID())
	assert.ErrorIs(t, err, fault.ErrNotFound)
	_, err = store.Get(fresh.ID())
	assert.NoError(t, err)
}

func TestStoreSweepDisabled(t *testing.T) {
	store := NewStore(0, nil)
	store.Create()
	assert.Zero(t, store.Sweep())
}

func TestRunJanitorStopsWithContext(t *testing.T) {
	store := NewStore(time.Millisecond, nil)
	store.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.RunJanitor(ctx, time.Millisecond) }()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
