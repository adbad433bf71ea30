package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tour-reservations/internal/http/response"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
	"github.com/magabrotheeeer/tour-reservations/internal/services/guard"
)

// RequireTourist пропускает только туристов. Должен стоять после JWTMiddleware.
func RequireTourist(log *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(log, "middlewarectx.RequireTourist", guard.RequireVerifiedTourist)
}

// RequireOperator пропускает только проверенных операторов.
func RequireOperator(log *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(log, "middlewarectx.RequireOperator", guard.RequireVerifiedOperator)
}

func requireRole(log *slog.Logger, op string, check func(*models.User) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := UserFromContext(r.Context())
			if err := check(user); err != nil {
				log.Warn("access denied",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
				response.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
