package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loyaltyworks/loyalty-backend/api/controllers"
	"github.com/loyaltyworks/loyalty-backend/api/middleware"
	"github.com/loyaltyworks/loyalty-backend/internal/audit"
	"github.com/loyaltyworks/loyalty-backend/internal/customers"
	"github.com/loyaltyworks/loyalty-backend/pkg/config"
	"github.com/loyaltyworks/loyalty-backend/pkg/db"
	"github.com/loyaltyworks/loyalty-backend/pkg/logger"
	"github.com/loyaltyworks/loyalty-backend/pkg/metrics"
	pkgredis "github.com/loyaltyworks/loyalty-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	httpMetrics *metrics.HTTPMetrics,
	customerService customers.Service,
	auditService audit.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var redisPinger pkgredis.Pinger
	var idemStore pkgredis.IdempotencyStore
	if redisClient != nil {
		redisPinger = redisClient
		idemStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.ListCustomers(customerService, logg))
			r.Post("/", controllers.CreateCustomer(customerService, logg))
			r.Get("/phone-check", controllers.CheckCustomerPhone(customerService, logg))
			r.Route("/{customerID}", func(r chi.Router) {
				r.Patch("/", controllers.UpdateCustomer(customerService, logg))
				r.Delete("/", controllers.DeleteCustomer(customerService, logg))
				r.Post("/points", controllers.AdjustCustomerPoints(customerService, logg))
				r.Get("/audit-logs", controllers.ListCustomerAuditLogs(auditService, logg))
			})
		})

		r.Get("/audit-logs", controllers.ListAuditLogs(auditService, logg))
	})

	return r
}
