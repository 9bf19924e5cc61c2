package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const cleanupInterval = time.Minute

// Local is an in-process TTL cache bounded by entry count. When full it
// drops expired entries first, then whichever entry expires soonest.
type Local struct {
	mu         sync.Mutex
	c          *gocache.Cache
	maxEntries int
}

func NewLocal(defaultTTL time.Duration, maxEntries int) *Local {
	return &Local{
		c:          gocache.New(defaultTTL, cleanupInterval),
		maxEntries: maxEntries,
	}
}

func (l *Local) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := l.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v.([]byte)), true, nil
}

func (l *Local) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.c.Get(key); !exists && l.maxEntries > 0 && l.c.ItemCount() >= l.maxEntries {
		l.c.DeleteExpired()
		for l.c.ItemCount() >= l.maxEntries {
			l.evictSoonest()
		}
	}

	l.c.Set(key, slices.Clone(value), ttl)
	return nil
}

func (l *Local) Ping(context.Context) error { return nil }

func (l *Local) Len() int { return l.c.ItemCount() }

func (l *Local) evictSoonest() {
	var (
		victim  string
		soonest int64
	)
	for k, it := range l.c.Items() {
		// Expiration 0 means no expiry; such entries sort last.
		exp := it.Expiration
		if exp == 0 {
			exp = 1<<63 - 1
		}
		if victim == "" || exp < soonest {
			victim, soonest = k, exp
		}
	}
	if victim == "" {
		l.c.DeleteExpired()
		return
	}
	l.c.Delete(victim)
}
