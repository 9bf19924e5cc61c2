package cache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SetAndGet(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(time.Minute, 10)

	_, found, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k", []byte(`[1,2]`), time.Minute))
	v, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte(`[1,2]`), v)
}

func TestLocal_ReturnsPrivateCopies(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(time.Minute, 10)

	in := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", in, time.Minute))
	in[0] = 'X'

	v, _, _ := c.Get(ctx, "k")
	v[1] = 'Y'

	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestLocal_ExpiresByTTL(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(time.Minute, 10)

	require.NoError(t, c.Set(ctx, "short", []byte("v"), 50*time.Millisecond))
	_, found, _ := c.Get(ctx, "short")
	require.True(t, found)

	time.Sleep(100 * time.Millisecond)

	_, found, _ = c.Get(ctx, "short")
	assert.False(t, found)
}

func TestLocal_CapacityEvictsSoonestExpiring(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(time.Minute, 3)

	require.NoError(t, c.Set(ctx, "a", []byte("a"), 10*time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("b"), time.Minute))
	require.NoError(t, c.Set(ctx, "c", []byte("c"), 5*time.Minute))
	require.NoError(t, c.Set(ctx, "d", []byte("d"), 5*time.Minute))

	assert.Equal(t, 3, c.Len())
	_, found, _ := c.Get(ctx, "b")
	assert.False(t, found, "b expires first and should be evicted")
	for _, k := range []string{"a", "c", "d"} {
		_, found, _ := c.Get(ctx, k)
		assert.True(t, found, k)
	}
}

func TestLocal_OverwriteDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(time.Minute, 2)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "a", []byte("2"), time.Minute))

	assert.Equal(t, 2, c.Len())
	v, found, _ := c.Get(ctx, "b")
	require.True(t, found)
	assert.Equal(t, "1", string(v))
}

func TestLocal_CapacityPrefersExpiredEntries(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(time.Minute, 2)

	require.NoError(t, c.Set(ctx, "old", []byte("x"), 20*time.Millisecond))
	require.NoError(t, c.Set(ctx, "keep", []byte("x"), time.Hour))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, c.Set(ctx, "new", []byte("x"), time.Minute))

	for _, k := range []string{"keep", "new"} {
		_, found, _ := c.Get(ctx, k)
		assert.True(t, found, k)
	}
}

func TestInstrument_CountsLookups(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := Instrument(NewLocal(time.Minute, 10), m)

	_, _, _ = c.Get(ctx, "k")
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, _, _ = c.Get(ctx, "k")
	_, _, _ = c.Get(ctx, "k")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues("miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Lookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sets))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Errors))
}

func TestInstrument_NilMetricsReturnsCache(t *testing.T) {
	l := NewLocal(time.Minute, 1)
	assert.Same(t, l, Instrument(l, nil))
}
