// Package create реализует HTTP-обработчик создания брони туристом.
//
// Handler декодирует JSON, валидирует поля, переводит даты в формат домена и
// передаёт бронь менеджеру. Стоимость считает сервер, клиентская цена не принимается.
package create

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
	"github.com/magabrotheeeer/tour-reservations/internal/services/reservation"
)

// Request входные данные новой брони.
type Request struct {
	PackageID int64 `json:"package_id" validate:"required,gt=0"`
	dto.Trip
}

// Service создаёт бронь.
type Service interface {
	Create(ctx context.Context, tourist *models.User, in reservation.CreateInput) (*models.Reservation, error)
}

// Handler обрабатывает запросы на создание брони.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать бронь
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Параметры брони"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Только для туристов"
// @Failure 404 {object} response.ErrorResponse "Турпакет не найден"
// @Failure 422 {object} response.ErrorResponse
// @Router /reservations [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reservation.create"

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
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	in, err := req.Input(req.PackageID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.service.Create(r.Context(), user, in)
	if err != nil {
		log.Warn("failed to create reservation", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("reservation created", slog.Int64("reservation_id", res.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(res))
}
