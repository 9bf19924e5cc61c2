package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"MiniCatalog/pkg/kit"
)

type HTTPDeps struct {
	Log       *zap.Logger
	AccessLog *zap.Logger
	Service   string
	Registry  *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

// NewHandler assembles the request pipeline: correlation id, access log,
// recovery, completion log and metrics, then the routes whose results are
// enveloped or normalized by kit.Handle.
func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, kit.NotFound("Cannot "+r.Method+" "+r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, kit.MethodNotAllowed("Cannot "+r.Method+" "+r.URL.Path))
	})

	r.Mount("/", s.Routes())
	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	access := deps.AccessLog
	if access == nil {
		access = zap.NewNop()
	}

	r.Use(kit.Correlation)
	r.Use(kit.AccessLog(access))
	r.Use(kit.Recoverer(deps.Log))
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}
