package middlewarectx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/tour-reservations/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

func TestRoleMiddleware(t *testing.T) {
	tourist := &models.User{UUID: "t-1"}
	operator := &models.User{UUID: "o-1", IsOperator: true, IsVerified: true}
	unverified := &models.User{UUID: "o-2", IsOperator: true}

	tests := []struct {
		name     string
		mw       func(http.Handler) http.Handler
		user     *models.User
		wantCode int
	}{
		{"tourist passes tourist gate", middlewarectx.RequireTourist(newNoopLogger()), tourist, http.StatusOK},
		{"operator blocked by tourist gate", middlewarectx.RequireTourist(newNoopLogger()), operator, http.StatusForbidden},
		{"no user", middlewarectx.RequireTourist(newNoopLogger()), nil, http.StatusUnauthorized},
		{"verified operator passes", middlewarectx.RequireOperator(newNoopLogger()), operator, http.StatusOK},
		{"unverified operator blocked", middlewarectx.RequireOperator(newNoopLogger()), unverified, http.StatusForbidden},
		{"tourist blocked by operator gate", middlewarectx.RequireOperator(newNoopLogger()), tourist, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				req = req.WithContext(middlewarectx.WithUser(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()

			tt.mw(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
