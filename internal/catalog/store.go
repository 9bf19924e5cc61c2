package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Snapshotter is the durable side of the store. Save always receives the
// whole collection.
type Snapshotter interface {
	Load(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, products []Product) error
	Ping(ctx context.Context) error
}

// Store owns the in-memory product collection. Mutations are serialized and
// written through to the Snapshotter before they return.
type Store struct {
	mu       sync.Mutex
	products []Product
	snap     Snapshotter
	log      *zap.Logger
}

// NewStore loads the initial collection. A load failure is logged and the
// store starts empty so the service stays available.
func NewStore(ctx context.Context, snap Snapshotter, log *zap.Logger) *Store {
	s := &Store{snap: snap, log: log}

	products, err := snap.Load(ctx)
	if err != nil {
		log.Warn("load products failed, starting empty", zap.Error(err))
		return s
	}
	s.products = products
	log.Info("products loaded", zap.Int("count", len(products)))
	return s
}

// Snapshot returns a private copy of the collection in insertion order.
func (s *Store) Snapshot() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products)
}

func (s *Store) Get(id string) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.products[i], true
	}
	return Product{}, false
}

func (s *Store) Ping(ctx context.Context) error { return s.snap.Ping(ctx) }

// Update runs fn with exclusive access to the collection. If fn changed
// anything the full collection is persisted before Update returns. A failed
// save is returned but the in-memory change is kept.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{s: s}
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty {
		return nil
	}
	if err := s.snap.Save(ctx, slices.Clone(s.products)); err != nil {
		return fmt.Errorf("persist products: %w", err)
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.products, func(p Product) bool { return p.ID == id })
}

// Tx is only valid inside the Update callback that received it.
type Tx struct {
	s     *Store
	dirty bool
}

func (tx *Tx) Get(id string) (Product, bool) {
	if i := tx.s.indexOf(id); i >= 0 {
		return tx.s.products[i], true
	}
	return Product{}, false
}

// NameTaken reports whether another product than exceptID uses name.
func (tx *Tx) NameTaken(name, exceptID string) bool {
	return slices.ContainsFunc(tx.s.products, func(p Product) bool {
		return p.Name == name && p.ID != exceptID
	})
}

func (tx *Tx) Insert(p Product) {
	tx.s.products = append(tx.s.products, p)
	tx.dirty = true
}

func (tx *Tx) Replace(p Product) bool {
	i := tx.s.indexOf(p.ID)
	if i < 0 {
		return false
	}
	tx.s.products[i] = p
	tx.dirty = true
	return true
}

func (tx *Tx) Remove(id string) bool {
	i := tx.s.indexOf(id)
	if i < 0 {
		return false
	}
	tx.s.products = slices.Delete(tx.s.products, i, i+1)
	tx.dirty = true
	return true
}
