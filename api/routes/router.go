package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mateovidal/campusbites-backend/api/controllers"
	webhookcontrollers "github.com/mateovidal/campusbites-backend/api/controllers/webhooks"
	"github.com/mateovidal/campusbites-backend/api/middleware"
	forecastsvc "github.com/mateovidal/campusbites-backend/internal/forecast"
	ordersvc "github.com/mateovidal/campusbites-backend/internal/orders"
	paymentsvc "github.com/mateovidal/campusbites-backend/internal/payments"
	walletsvc "github.com/mateovidal/campusbites-backend/internal/wallet"
	"github.com/mateovidal/campusbites-backend/pkg/config"
	"github.com/mateovidal/campusbites-backend/pkg/db"
	"github.com/mateovidal/campusbites-backend/pkg/enums"
	"github.com/mateovidal/campusbites-backend/pkg/logger"
	"github.com/mateovidal/campusbites-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Registry prometheus.Gatherer

	OrdersService   ordersvc.Service
	WalletService   walletsvc.Service
	PaymentsService paymentsvc.Service
	ForecastService forecastsvc.Service
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var cachePinger redis.Pinger
	if params.Redis != nil {
		cachePinger = params.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, params.DB, cachePinger, logg))
	})

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	// The gateway signs its own calls, so this route sits outside the JWT group.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payment", webhookcontrollers.PaymentWebhook(params.PaymentsService, cfg.Gateway, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if params.Redis != nil {
			r.Use(middleware.Idempotency(params.Redis, logg))
		}

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.PlaceOrder(params.OrdersService, logg))
			r.Get("/", controllers.ListOrders(params.OrdersService, logg))
			r.Get("/{orderID}", controllers.OrderDetail(params.OrdersService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.ActorRoleStaff.String(), logg))
				r.Get("/open", controllers.ListOpenOrders(params.OrdersService, logg))
				r.Post("/{orderID}/status", controllers.UpdateOrderStatus(params.OrdersService, logg))
				r.Post("/{orderID}/cancel", controllers.CancelOrder(params.OrdersService, logg))
			})
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletStatement(params.WalletService, logg))
			r.Post("/transfer", controllers.Transfer(params.WalletService, logg))
		})

		r.With(middleware.RequireRole(enums.ActorRoleStaff.String(), logg)).
			Get("/forecast", controllers.ForecastReport(params.ForecastService, logg))
	})

	return r
}
