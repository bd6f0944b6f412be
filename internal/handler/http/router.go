package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nkansal-godaddy/GoStudents/pkg/health"
	"github.com/nkansal-godaddy/GoStudents/pkg/middleware"
)

const serviceName = "gostudents"

// RouterConfig carries the handlers and cross-cutting settings for the HTTP
// router.
type RouterConfig struct {
	Proxy     *ProxyHandler
	Provision *ProvisionHandler
	Signup    *SignupHandler
	Catalog   *CatalogHandler
	Health    *health.Handler
	CORS      middleware.CORSConfig
	Logger    *slog.Logger

	// CatalogMaxAge is the Cache-Control max-age (seconds) for the static
	// school/offer catalogs.
	CatalogMaxAge int
}

// NewRouter builds the chi router with the full middleware stack and all
// routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(serviceName))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Commerce proxies: upstream status and body pass through verbatim.
		r.Post("/catalog", cfg.Proxy.Catalog)
		r.Post("/orders/{basketId}", cfg.Proxy.Orders)
		r.Post("/fulfill", cfg.Proxy.Fulfill)

		// Server-side pipeline: one call runs all three steps.
		r.Post("/provision", cfg.Provision.Provision)

		r.Post("/signup", cfg.Signup.Signup)
		r.Post("/curriculum", cfg.Signup.Curriculum)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogMaxAge))
			r.Get("/schools", cfg.Catalog.Schools)
			r.Get("/offers", cfg.Catalog.Offers)
		})
	})

	return r
}
