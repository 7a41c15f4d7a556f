package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TazeAI/internal/domain/models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestTTLCacheExpiresOnInjectedClock(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTLCache(clk.Now, 0)
	require.NoError(t, c.SetBytes(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("2"), 0))

	v, ok, err := c.GetBytes(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	clk.t = clk.t.Add(59 * time.Second)
	_, ok, _ = c.GetBytes(ctx, "a")
	assert.True(t, ok)

	clk.t = clk.t.Add(time.Second)
	_, ok, _ = c.GetBytes(ctx, "a")
	assert.False(t, ok)

	clk.t = clk.t.Add(24 * time.Hour)
	_, ok, _ = c.GetBytes(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestTTLCacheBounded(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTLCache(clk.Now, 2)
	require.NoError(t, c.SetBytes(ctx, "soon", []byte("a"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "later", []byte("b"), time.Hour))
	require.NoError(t, c.SetBytes(ctx, "new", []byte("c"), time.Hour))

	assert.Equal(t, 2, c.Len())
	_, ok, _ := c.GetBytes(ctx, "soon")
	assert.False(t, ok, "entry closest to expiry is evicted")
	_, ok, _ = c.GetBytes(ctx, "later")
	assert.True(t, ok)

	// Overwriting an existing key never evicts.
	require.NoError(t, c.SetBytes(ctx, "later", []byte("d"), time.Hour))
	assert.Equal(t, 2, c.Len())
}

func TestSignalsKeyIsOrderInsensitive(t *testing.T) {
	assert.Equal(t, SignalsKey([]string{"vale3", " PETR4"}), SignalsKey([]string{"PETR4", "VALE3", ""}))
	assert.Equal(t, "signals:PETR4,VALE3", SignalsKey([]string{"VALE3", "PETR4"}))
}

func TestSignalCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	sc := NewSignalCache(NewTTLCache(nil, 0), nil)
	score := 7.5
	in := []models.SignalRecord{{Symbol: "PETR4", CurrentPrice: 38.2, Score: &score, Status: models.StatusBuy}}
	sc.Set(ctx, "k", in, time.Minute)

	out, ok := sc.Get(ctx, "k")
	require.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, "PETR4", out[0].Symbol)
	require.NotNil(t, out[0].Score)
	assert.Equal(t, 7.5, *out[0].Score)

	_, ok = sc.Get(ctx, "missing")
	assert.False(t, ok)
}

type brokenCache struct{ calls int }

func (b *brokenCache) GetBytes(context.Context, string) ([]byte, bool, error) {
	b.calls++
	return nil, false, errors.New("connection refused")
}

func (b *brokenCache) SetBytes(context.Context, string, []byte, time.Duration) error {
	b.calls++
	return errors.New("connection refused")
}

func TestFallbackCacheServesFromMemoryWhenPrimaryFails(t *testing.T) {
	ctx := context.Background()
	primary := &brokenCache{}
	f := NewFallbackCache(primary, NewTTLCache(nil, 0), nil)

	require.NoError(t, f.SetBytes(ctx, "k", []byte("v"), time.Minute))
	b, ok, err := f.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)
	assert.Equal(t, 2, primary.calls)
	assert.False(t, f.healthy.Load())
}
