package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andalib/andalib-backend/api/controllers"
	authcontrollers "github.com/andalib/andalib-backend/api/controllers/auth"
	"github.com/andalib/andalib-backend/api/middleware"
	"github.com/andalib/andalib-backend/internal/auth"
	"github.com/andalib/andalib-backend/internal/loans"
	"github.com/andalib/andalib-backend/internal/members"
	"github.com/andalib/andalib-backend/internal/notifications"
	"github.com/andalib/andalib-backend/internal/returns"
	"github.com/andalib/andalib-backend/pkg/config"
	"github.com/andalib/andalib-backend/pkg/enums"
	"github.com/andalib/andalib-backend/pkg/logger"
	"github.com/andalib/andalib-backend/pkg/metrics"
)

// Deps carries everything the HTTP surface needs. Nil services answer 500.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Gatherer prometheus.Gatherer
	Metrics  *metrics.HTTPMetrics
	// Readiness lists the dependencies pinged by /health/ready.
	Readiness map[string]controllers.Pinger

	Auth          auth.Service
	Returns       returns.Service
	Loans         loans.Service
	Members       members.Service
	Notifications notifications.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/auth/login", authcontrollers.AuthLogin(deps.Auth, logg))

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.RequireRole(logg, enums.AdminRoleAdmin, enums.AdminRoleLibrarian),
		)

		r.Route("/returns", func(r chi.Router) {
			r.Post("/process", controllers.ProcessReturn(deps.Returns, logg))
			r.Post("/update/{returnId}", controllers.UpdateReturn(deps.Returns, logg))
			r.Get("/history", controllers.ReturnHistory(deps.Returns, logg))
			r.Delete("/history/{id}", controllers.DeleteReturn(deps.Returns, logg))
			r.Get("/borrowings/active/{nim}", controllers.ActiveBorrowings(deps.Returns, logg))
			r.Get("/members/search", controllers.SearchMembers(deps.Returns, logg))
		})

		r.Post("/loans", controllers.BorrowBook(deps.Loans, logg))

		r.With(middleware.RequireRole(logg, enums.AdminRoleAdmin)).
			Delete("/members/{id}", controllers.DeleteMember(deps.Members, logg))

		r.Route("/member-notifications", func(r chi.Router) {
			r.Get("/mine", controllers.ListNotifications(deps.Notifications, logg))
			r.Patch("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
			r.Patch("/{id}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Delete("/{id}", controllers.DeleteNotification(deps.Notifications, logg))
		})
	})

	return r
}
