package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniCatalog/pkg/kit"
)

const (
	maxBodyBytes = 1 << 20
	readyTimeout = 1 * time.Second
)

type Server struct {
	Service *Service
	Log     *zap.Logger

	// WriteLimit guards mutating routes when set.
	WriteLimit func(http.Handler) http.Handler
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", kit.Handle(s.Log, s.ready))

	r.Route("/products", func(r chi.Router) {
		r.Get("/", kit.Handle(s.Log, s.list))
		r.Get("/low-stock", kit.Handle(s.Log, s.lowStock))
		r.Get("/most-popular", kit.Handle(s.Log, s.mostPopular))
		r.Get("/{id}", kit.Handle(s.Log, s.get))

		r.Group(func(wr chi.Router) {
			if s.WriteLimit != nil {
				wr.Use(s.WriteLimit)
			}
			wr.Post("/", kit.Handle(s.Log, s.create))
			wr.Put("/{id}", kit.Handle(s.Log, s.update))
			wr.Delete("/{id}", kit.Handle(s.Log, s.delete))
		})
	})

	return r
}

func (s *Server) ready(r *http.Request) (kit.Result, error) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Service.Ping(ctx); err != nil {
		s.Log.Warn("readyz failed", zap.Error(err))
		return kit.Result{}, kit.Unavailable("not ready", err)
	}
	return kit.OK(map[string]string{"status": "ok"}), nil
}

func (s *Server) list(r *http.Request) (kit.Result, error) {
	qv := r.URL.Query()

	sortBy, err := ParseSortField(qv.Get("sortBy"))
	if err != nil {
		return kit.Result{}, err
	}
	page, err := bindPage(qv)
	if err != nil {
		return kit.Result{}, err
	}

	return kit.OK(s.Service.List(r.Context(), ListQuery{
		Name:        qv.Get("name"),
		Description: qv.Get("description"),
		SortBy:      sortBy,
		Page:        page,
	})), nil
}

func (s *Server) lowStock(r *http.Request) (kit.Result, error) {
	qv := r.URL.Query()

	if qv.Get("threshold") == "" {
		return kit.Result{}, kit.Validation("threshold is required")
	}
	threshold, err := bindInt(qv, "threshold", 0)
	if err != nil {
		return kit.Result{}, err
	}
	page, err := bindPage(qv)
	if err != nil {
		return kit.Result{}, err
	}

	return kit.OK(s.Service.LowStock(r.Context(), LowStockQuery{Threshold: threshold, Page: page})), nil
}

func (s *Server) mostPopular(r *http.Request) (kit.Result, error) {
	qv := r.URL.Query()

	top, err := bindInt(qv, "top", 1)
	if err != nil {
		return kit.Result{}, err
	}
	page, err := bindPage(qv)
	if err != nil {
		return kit.Result{}, err
	}

	return kit.OK(s.Service.MostPopular(r.Context(), PopularQuery{Top: top, Page: page})), nil
}

func (s *Server) get(r *http.Request) (kit.Result, error) {
	p, err := s.Service.Get(chi.URLParam(r, "id"))
	if err != nil {
		return kit.Result{}, err
	}
	return kit.OK(p), nil
}

func (s *Server) create(r *http.Request) (kit.Result, error) {
	var in CreateInput
	if err := decodeBody(r, &in); err != nil {
		return kit.Result{}, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return kit.Result{}, kit.Validation("name is required")
	}
	if err := checkStock(in.Price, in.Quantity); err != nil {
		return kit.Result{}, err
	}

	p, err := s.Service.Create(r.Context(), in)
	if err != nil {
		return kit.Result{}, err
	}
	return kit.Created(p), nil
}

func (s *Server) update(r *http.Request) (kit.Result, error) {
	var in UpdateInput
	if err := decodeBody(r, &in); err != nil {
		return kit.Result{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return kit.Result{}, kit.Validation("name must not be empty")
		}
		in.Name = &name
	}
	if in.Price != nil && *in.Price < 0 {
		return kit.Result{}, kit.Validation("price must not be negative")
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return kit.Result{}, kit.Validation("quantity must not be negative")
	}

	p, err := s.Service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		return kit.Result{}, err
	}
	return kit.OK(p), nil
}

func (s *Server) delete(r *http.Request) (kit.Result, error) {
	if err := s.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		return kit.Result{}, err
	}
	return kit.NoContent(), nil
}

// bindPage returns a Page only when page and limit are both supplied. Any
// integer page is accepted; out-of-range pages yield an empty window.
func bindPage(qv url.Values) (Page, error) {
	if qv.Get("page") == "" || qv.Get("limit") == "" {
		return Page{}, nil
	}
	n, err := bindInt(qv, "page", math.MinInt)
	if err != nil {
		return Page{}, err
	}
	size, err := bindInt(qv, "limit", 1)
	if err != nil {
		return Page{}, err
	}
	return Page{Number: n, Size: size}, nil
}

// bindInt parses an optional integer parameter; absent yields 0.
func bindInt(qv url.Values, name string, minValue int) (int, error) {
	raw := qv.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, kit.Validationf("%s must be an integer", name)
	}
	if n < minValue {
		return 0, kit.Validationf("%s must be >= %d", name, minValue)
	}
	return n, nil
}

func decodeBody(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() { _ = body.Close() }()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return kit.Validation("request body too large")
		}
		return kit.Validationf("invalid JSON body: %v", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return kit.Validation("extra data after JSON object")
	}
	return nil
}

func checkStock(price float64, quantity int) error {
	if price < 0 {
		return kit.Validation("price must not be negative")
	}
	if quantity < 0 {
		return kit.Validation("quantity must not be negative")
	}
	return nil
}
