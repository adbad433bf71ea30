package register

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/tour-reservations/internal/models"
	"github.com/magabrotheeeer/tour-reservations/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, in auth.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	valid := Request{
		Email:     "anna@example.com",
		Password:  "password123",
		FirstName: "Anna",
		LastName:  "Smirnova",
	}

	tests := []struct {
		name           string
		body           any
		mockSetup      func(*ServiceMock)
		wantStatusCode int
		wantBody       string
	}{
		{
			name: "успешная регистрация",
			body: valid,
			mockSetup: func(m *ServiceMock) {
				m.On("Register", mock.Anything, mock.MatchedBy(func(in auth.RegisterInput) bool {
					return in.Email == "anna@example.com" && in.Profile.FirstName == "Anna" && !in.IsOperator
				})).Return(&models.User{UUID: "u-1", Email: "anna@example.com"}, nil)
			},
			wantStatusCode: http.StatusCreated,
			wantBody:       `"uid":"u-1"`,
		},
		{
			name: "email занят",
			body: valid,
			mockSetup: func(m *ServiceMock) {
				m.On("Register", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("auth.Register: %w", models.ErrDuplicateEmail))
			},
			wantStatusCode: http.StatusConflict,
			wantBody:       `"error":"email already registered"`,
		},
		{
			name:           "короткий пароль",
			body:           Request{Email: "a@b.io", Password: "short", FirstName: "A", LastName: "B"},
			mockSetup:      func(*ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantBody:       "field Password must be at least 8",
		},
		{
			name:           "битый JSON",
			body:           "{",
			mockSetup:      func(*ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantBody:       "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.mockSetup(svc)

			var raw []byte
			if s, ok := tt.body.(string); ok {
				raw = []byte(s)
			} else {
				raw, _ = json.Marshal(tt.body)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(raw))
			rec := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.NotContains(t, rec.Body.String(), "password")
			svc.AssertExpectations(t)
		})
	}
}
