package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hivehoney/aisla-sub000/api/controllers"
	"github.com/hivehoney/aisla-sub000/api/middleware"
	product "github.com/hivehoney/aisla-sub000/internal/products"
	"github.com/hivehoney/aisla-sub000/pkg/config"
	"github.com/hivehoney/aisla-sub000/pkg/logger"
)

// Deps are the collaborators the HTTP surface is built from. Gatherer may be nil, in
// which case /metrics is not mounted.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	ProductService product.Service
	ReadyChecks    []controllers.ReadyCheck
	Gatherer       prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.ReadyChecks...))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/products", controllers.SearchProducts(deps.ProductService, cfg.Search, logg))
	})

	return r
}
