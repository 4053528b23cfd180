package cache

import (
	"context"
	"math/rand"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(t *testing.T, backend Backend, ttl time.Duration, clock *fakeClock) *ResponseCache {
	t.Helper()
	c, err := New(context.Background(), backend, Options{TTL: ttl, Now: clock.Now, Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)
	return c
}

func TestResponseCache_Freshness(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	backend := NewMemoryBackend()
	c := newTestCache(t, backend, time.Minute, clock)
	key := Fingerprint("/projects", url.Values{"limit": {"100"}})

	require.NoError(t, c.Put(ctx, key, []byte(`{"data":[1]}`)))

	got, hit := c.Get(ctx, key)
	require.True(t, hit)
	assert.JSONEq(t, `{"data":[1]}`, string(got))

	clock.Advance(time.Minute)
	_, hit = c.Get(ctx, key)
	assert.True(t, hit, "an entry exactly TTL old is still fresh")

	clock.Advance(time.Second)
	_, hit = c.Get(ctx, key)
	assert.False(t, hit)

	_, err := backend.Load(ctx, key)
	require.ErrorIs(t, err, ErrNotFound, "stale entries are removed on read")
}

func TestResponseCache_PruneAfterTwiceTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	backend := NewMemoryBackend()
	c := newTestCache(t, backend, time.Minute, clock)

	require.NoError(t, c.Put(ctx, LogicalKey("old"), []byte(`[]`)))
	clock.Advance(90 * time.Second)
	require.NoError(t, c.Put(ctx, LogicalKey("young"), []byte(`[]`)))

	n, err := c.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "stale but within the grace window")

	clock.Advance(31 * time.Second)
	n, err = c.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	infos, err := backend.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, LogicalKey("young"), infos[0].Key)
}

func TestResponseCache_Disabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := NewMemoryBackend()
	c := newTestCache(t, backend, 0, newFakeClock())

	require.NoError(t, c.Put(ctx, LogicalKey("x"), []byte(`{}`)))
	_, hit := c.Get(ctx, LogicalKey("x"))
	assert.False(t, hit)

	infos, err := backend.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)

	n, err := c.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestResponseCache_CorruptPayloadIsMiss(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	backend := NewMemoryBackend()
	c := newTestCache(t, backend, time.Minute, clock)

	key := LogicalKey("broken")
	require.NoError(t, backend.Store(ctx, Entry{Key: key, Payload: []byte(`{"data":[`), StoredAt: clock.Now()}))

	_, hit := c.Get(ctx, key)
	assert.False(t, hit)
	_, err := backend.Load(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResponseCache_StatsAndInvalidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	c := newTestCache(t, NewMemoryBackend(), time.Minute, clock)

	require.NoError(t, c.Put(ctx, LogicalKey("a"), []byte(`[1,2]`)))
	clock.Advance(2 * time.Minute)
	require.NoError(t, c.Put(ctx, LogicalKey("b"), []byte(`{}`)))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 1, stats.ExpiredCount)
	assert.Equal(t, int64(7), stats.TotalBytes)
	assert.Equal(t, int64(60), stats.TTLSeconds)

	n, err := c.InvalidateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Count)
}

func TestNew_ProbabilisticPrune(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Store(ctx, Entry{Key: LogicalKey("ancient"), Payload: []byte(`1`), StoredAt: clock.Now().Add(-time.Hour)}))

	_, err := New(ctx, backend, Options{TTL: time.Minute, PruneChance: 0, Now: clock.Now})
	require.NoError(t, err)
	infos, _ := backend.List(ctx)
	assert.Len(t, infos, 1, "chance 0 never prunes")

	_, err = New(ctx, backend, Options{TTL: time.Minute, PruneChance: 1, Now: clock.Now})
	require.NoError(t, err)
	infos, _ = backend.List(ctx)
	assert.Empty(t, infos, "chance 1 always prunes")

	_, err = New(ctx, backend, Options{TTL: time.Minute, PruneChance: 2})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestKeys(t *testing.T) {
	t.Parallel()

	a := Fingerprint("/projects", url.Values{"offset": {"0"}, "limit": {"100"}})
	b := Fingerprint("/projects", url.Values{"limit": {"100"}, "offset": {"0"}})
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, Fingerprint("/projects", url.Values{"limit": {"100"}, "offset": {"100"}}))
	assert.NotEqual(t, Fingerprint("/projects", nil), LogicalKey("/projects"))
	assert.True(t, validKey(a))
	assert.False(t, validKey("../etc/passwd"))
}

func TestPruner_DisabledReturnsImmediately(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, NewMemoryBackend(), time.Minute, newFakeClock())
	p, err := NewPruner(c, PrunerOptions{})
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background()))
}

func TestPruner_RunsUntilCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := newFakeClock()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Store(ctx, Entry{Key: LogicalKey("old"), Payload: []byte(`1`), StoredAt: clock.Now().Add(-time.Hour)}))
	c := newTestCache(t, backend, time.Minute, clock)

	p, err := NewPruner(c, PrunerOptions{Interval: 5 * time.Millisecond})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		infos, _ := backend.List(ctx)
		return len(infos) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
