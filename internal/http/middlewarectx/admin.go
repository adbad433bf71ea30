package middlewarectx

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tour-reservations/internal/http/response"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// AdminTokenHeader заголовок со статическим токеном служебных вызовов.
const AdminTokenHeader = "X-Admin-Token"

// AdminToken пропускает только запросы со служебным токеном.
// Пустой токен в конфигурации закрывает служебные маршруты полностью.
func AdminToken(log *slog.Logger, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(AdminTokenHeader)
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				log.Warn("admin token rejected",
					slog.String("op", "middlewarectx.AdminToken"),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				response.WriteError(w, r, models.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
