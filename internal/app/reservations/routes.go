// Package reservations собирает HTTP-приложение сервиса бронирований.
package reservations

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация документации Swagger.
	_ "github.com/magabrotheeeer/tour-reservations/docs"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/health"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/reservation/cancel"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/reservation/complete"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/reservation/confirm"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/reservation/create"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/reservation/list"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/reservation/read"
	reservationupdate "github.com/magabrotheeeer/tour-reservations/internal/http/handlers/reservation/update"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/users/convert"
	userupdate "github.com/magabrotheeeer/tour-reservations/internal/http/handlers/users/update"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/users/verify"
	"github.com/magabrotheeeer/tour-reservations/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-reservations/internal/services/auth"
	"github.com/magabrotheeeer/tour-reservations/internal/services/guard"
	"github.com/magabrotheeeer/tour-reservations/internal/services/reservation"
)

// Services собирает зависимости обработчиков.
type Services struct {
	Credentials  *auth.CredentialStore
	Auth         *auth.AuthService
	Users        *auth.UserService
	Guard        *guard.Guard
	Reservations *reservation.Manager
	Limiter      *middlewarectx.ClientLimiter
	AdminToken   string
	Health       map[string]health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.Metrics,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, s.Limiter))
			r.Post("/auth/register", register.New(logger, s.Credentials).ServeHTTP)
			r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
			r.Post("/auth/refresh", refresh.New(logger, s.Auth).ServeHTTP)
			r.Post("/auth/logout", logout.New(logger, s.Auth).ServeHTTP)
		})

		// Служебные вызовы
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AdminToken(logger, s.AdminToken))
			r.Post("/users/{id}/verify", verify.New(logger, s.Users).ServeHTTP)
			r.Post("/reservations/{id}/complete", complete.New(logger, s.Reservations).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Guard, logger))

			r.Get("/auth/me", me.New(logger).ServeHTTP)
			r.Get("/auth/me/role", me.NewRole(logger).ServeHTTP)
			r.Put("/users/me", userupdate.New(logger, s.Users).ServeHTTP)
			r.Post("/users/me/convert-to-operator", convert.New(logger, s.Users).ServeHTTP)

			r.Get("/reservations", list.New(logger, s.Reservations).ServeHTTP)
			r.Get("/reservations/{id}", read.New(logger, s.Reservations).ServeHTTP)
			r.Post("/reservations/{id}/cancel", cancel.New(logger, s.Reservations).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireTourist(logger))
				r.Post("/reservations", create.New(logger, s.Reservations).ServeHTTP)
				r.Put("/reservations/{id}", reservationupdate.New(logger, s.Reservations).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireOperator(logger))
				r.Get("/reservations/operator", list.NewOperator(logger, s.Reservations).ServeHTTP)
				r.Post("/reservations/{id}/confirm", confirm.New(logger, s.Reservations).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, s.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
