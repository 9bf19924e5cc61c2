package catalog

import (
	"context"
	"slices"
	"sync"
)

// MemSnapshotter keeps the last saved snapshot in memory. It backs tests and
// throwaway local runs.
type MemSnapshotter struct {
	mu       sync.RWMutex
	products []Product
	saves    int

	LoadErr error
	SaveErr error
	PingErr error
}

func NewMemSnapshotter(seed ...Product) *MemSnapshotter {
	return &MemSnapshotter{products: slices.Clone(seed)}
}

func (s *MemSnapshotter) Load(context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return slices.Clone(s.products), nil
}

func (s *MemSnapshotter) Save(_ context.Context, products []Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.products = slices.Clone(products)
	s.saves++
	return nil
}

func (s *MemSnapshotter) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.PingErr
}

// Saved returns the last persisted snapshot and how many saves happened.
func (s *MemSnapshotter) Saved() ([]Product, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products), s.saves
}
