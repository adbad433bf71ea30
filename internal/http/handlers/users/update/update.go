// Package update реализует изменение профиля текущего пользователя.
// Принимаются только поля профиля, флаги ролей изменить нельзя.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tour-reservations/internal/http/dto"
	"github.com/magabrotheeeer/tour-reservations/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-reservations/internal/http/response"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// Request содержит изменяемые поля профиля. Отсутствующее поле не меняется.
type Request struct {
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Country     *string `json:"country,omitempty" validate:"omitempty,max=100"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=255"`
	PostalCode  *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=512"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

func (req Request) toUpdate() models.ProfileUpdate {
	return models.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Country:     req.Country,
		City:        req.City,
		Address:     req.Address,
		PostalCode:  req.PostalCode,
		AvatarURL:   req.AvatarURL,
		Description: req.Description,
	}
}

type Service interface {
	UpdateProfile(ctx context.Context, user *models.User, upd models.ProfileUpdate) (*models.User, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменение профиля
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Поля профиля"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse
// @Router /users/me [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, models.ErrUnauthorized)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user, req.toUpdate())
	if err != nil {
		log.Error("failed to update profile", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	log.Info("profile updated", slog.String("user_uid", updated.UUID))
	render.JSON(w, r, response.StatusOKWithData(dto.FromUser(updated)))
}
