// Package cache holds the response cache backends used by read paths.
// Values are opaque byte slices so every backend hands back exactly what
// was stored and callers never share mutable state with the cache.
package cache

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache is a best-effort TTL cache. Entries are only ever removed by expiry
// or capacity pressure.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
}

type Metrics struct {
	Lookups *prometheus.CounterVec
	Sets    prometheus.Counter
	Errors  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "response_cache_lookups_total",
				Help: "Response cache lookups by result",
			},
			[]string{"result"},
		),
		Sets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "response_cache_sets_total",
			Help: "Response cache writes",
		}),
		Errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "response_cache_errors_total",
			Help: "Response cache backend errors",
		}),
	}
	reg.MustRegister(m.Lookups, m.Sets, m.Errors)
	return m
}

type instrumented struct {
	next Cache
	m    *Metrics
}

// Instrument counts hits, misses, writes and backend errors of c.
func Instrument(c Cache, m *Metrics) Cache {
	if m == nil {
		return c
	}
	return &instrumented{next: c, m: m}
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := c.next.Get(ctx, key)
	switch {
	case err != nil:
		c.m.Errors.Inc()
	case ok:
		c.m.Lookups.WithLabelValues("hit").Inc()
	default:
		c.m.Lookups.WithLabelValues("miss").Inc()
	}
	return v, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.next.Set(ctx, key, value, ttl)
	if err != nil {
		c.m.Errors.Inc()
		return err
	}
	c.m.Sets.Inc()
	return nil
}

func (c *instrumented) Ping(ctx context.Context) error { return c.next.Ping(ctx) }
