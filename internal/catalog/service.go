package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"MiniCatalog/internal/cache"
	"MiniCatalog/pkg/kit"
)

var (
	ErrNotFound      = kit.NotFound("Product not found.")
	ErrDuplicateName = kit.Validation("Product name must be unique.")
	ErrPendingOrders = kit.Validation("Product with pending orders cannot be deleted.")
)

const (
	opList     = "list"
	opLowStock = "low-stock"
	opPopular  = "most-popular"
)

// Service answers reads through the response cache and applies mutations
// through the store. Mutations never invalidate cached reads; entries age
// out by TTL only.
type Service struct {
	store *Store
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewService(store *Store, c cache.Cache, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{
		store: store,
		cache: c,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *Service) List(ctx context.Context, q ListQuery) []Product {
	key := cacheKey(opList, url.Values{
		"name":        {q.Name},
		"description": {q.Description},
		"sortBy":      {string(q.SortBy)},
	}, q.Page)
	return s.cached(ctx, key, func(ps []Product) []Product { return List(ps, q) })
}

func (s *Service) LowStock(ctx context.Context, q LowStockQuery) []Product {
	key := cacheKey(opLowStock, url.Values{
		"threshold": {strconv.Itoa(q.Threshold)},
	}, q.Page)
	return s.cached(ctx, key, func(ps []Product) []Product { return RankLowStock(ps, q) })
}

func (s *Service) MostPopular(ctx context.Context, q PopularQuery) []Product {
	key := cacheKey(opPopular, url.Values{
		"top": {strconv.Itoa(q.Top)},
	}, q.Page)
	return s.cached(ctx, key, func(ps []Product) []Product { return RankPopular(ps, q) })
}

func (s *Service) Get(id string) (Product, error) {
	p, ok := s.store.Get(id)
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	log := s.requestLog(ctx, "create")

	var created Product
	err := s.store.Update(ctx, func(tx *Tx) error {
		if tx.NameTaken(in.Name, "") {
			return ErrDuplicateName
		}
		now := s.now().UTC()
		created = Product{
			ID:          s.newID(),
			Name:        in.Name,
			Description: in.Description,
			Price:       in.Price,
			Quantity:    in.Quantity,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		tx.Insert(created)
		return nil
	})
	if err != nil {
		return Product{}, rejected(log, err)
	}

	log.Info("product created", zap.String("product_id", created.ID))
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Product, error) {
	log := s.requestLog(ctx, "update").With(zap.String("product_id", id))

	var updated Product
	err := s.store.Update(ctx, func(tx *Tx) error {
		cur, ok := tx.Get(id)
		if !ok {
			return ErrNotFound
		}
		if in.Name != nil && tx.NameTaken(*in.Name, id) {
			return ErrDuplicateName
		}
		updated = in.apply(cur)
		updated.UpdatedAt = s.now().UTC()
		tx.Replace(updated)
		return nil
	})
	if err != nil {
		return Product{}, rejected(log, err)
	}

	log.Info("product updated")
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	log := s.requestLog(ctx, "delete").With(zap.String("product_id", id))

	err := s.store.Update(ctx, func(tx *Tx) error {
		cur, ok := tx.Get(id)
		if !ok {
			return ErrNotFound
		}
		if cur.PendingOrders > 0 {
			return ErrPendingOrders
		}
		tx.Remove(id)
		return nil
	})
	if err != nil {
		return rejected(log, err)
	}

	log.Info("product deleted")
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return errors.Join(s.store.Ping(ctx), s.cache.Ping(ctx))
}

// cached serves key from the cache, or computes it over a fresh snapshot
// and stores the result. Cache failures degrade to recomputation.
func (s *Service) cached(ctx context.Context, key string, compute func([]Product) []Product) []Product {
	log := s.log.With(zap.String("request_id", kit.RequestID(ctx)), zap.String("cache_key", key))

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("cache get failed", zap.Error(err))
	}
	if ok {
		var out []Product
		if err := json.Unmarshal(raw, &out); err == nil {
			return out
		}
		log.Warn("cache entry undecodable, recomputing")
	}

	out := compute(s.store.Snapshot())

	raw, err = json.Marshal(out)
	if err != nil {
		log.Warn("cache encode failed", zap.Error(err))
		return out
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		log.Warn("cache set failed", zap.Error(err))
	}
	return out
}

func (s *Service) requestLog(ctx context.Context, op string) *zap.Logger {
	return s.log.With(zap.String("request_id", kit.RequestID(ctx)), zap.String("op", op))
}

// rejected logs domain rejections where they are detected. Unexpected
// errors pass through untouched for the pipeline to log.
func rejected(log *zap.Logger, err error) error {
	var ke *kit.Error
	if errors.As(err, &ke) {
		log.Info("product mutation rejected", zap.String("reason", ke.Message))
	}
	return err
}

// cacheKey is op plus the canonical (key-sorted) encoding of the non-empty
// parameters.
func cacheKey(op string, params url.Values, p Page) string {
	for k, v := range params {
		if len(v) == 0 || v[0] == "" {
			delete(params, k)
		}
	}
	if p.Enabled() {
		params.Set("page", strconv.Itoa(p.Number))
		params.Set("limit", strconv.Itoa(p.Size))
	}
	return op + "?" + params.Encode()
}
