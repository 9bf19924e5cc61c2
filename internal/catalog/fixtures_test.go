package catalog

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"MiniCatalog/internal/cache"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func product(id, name string, qty, sold int) Product {
	return Product{
		ID:          id,
		Name:        name,
		Description: name + " description",
		Price:       10,
		Quantity:    qty,
		Sold:        sold,
		CreatedAt:   t0,
		UpdatedAt:   t0,
	}
}

func names(ps []Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

type fixture struct {
	snap  *MemSnapshotter
	store *Store
	cache *cache.Local
	svc   *Service
}

func newFixture(t *testing.T, seed ...Product) *fixture {
	t.Helper()

	snap := NewMemSnapshotter(seed...)
	store := NewStore(context.Background(), snap, zap.NewNop())
	c := cache.NewLocal(time.Minute, 100)

	svc := NewService(store, c, time.Minute, zap.NewNop())
	svc.now = func() time.Time { return t0.Add(time.Hour) }
	n := 0
	svc.newID = func() string {
		n++
		return "new-" + string(rune('0'+n))
	}

	return &fixture{snap: snap, store: store, cache: c, svc: svc}
}
