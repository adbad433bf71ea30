// Package middlewarectx содержит HTTP middleware сервиса бронирований.
//
// JWTMiddleware проверяет access-токен из заголовка Authorization, перечитывает
// пользователя и кладёт его в контекст запроса. Ролевые middleware пропускают
// дальше только туристов или проверенных операторов.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tour-reservations/internal/http/response"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// UserKey ключ текущего пользователя в контексте.
const UserKey Key = "user"

// UserResolver определяет пользователя по access-токену.
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет access-токен
// в заголовке Authorization. Refresh-токены здесь не принимаются.
func JWTMiddleware(resolver UserResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, ok := BearerToken(r)
			if !ok {
				log.Warn("missing or invalid authorization header")
				response.WriteError(w, r, models.ErrUnauthorized)
				return
			}

			user, err := resolver.CurrentUser(r.Context(), token)
			if err != nil {
				log.Warn("token rejected", sl.Err(err))
				response.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken извлекает токен из заголовка "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserFromContext возвращает пользователя, сохранённого JWTMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}

// WithUser кладёт пользователя в контекст.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}
