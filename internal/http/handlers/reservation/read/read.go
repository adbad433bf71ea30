// Package read реализует получение брони по ID.
//
// Бронь видят только её турист и оператор турпакета, остальные получают 404.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tour-reservations/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-reservations/internal/http/params"
	"github.com/magabrotheeeer/tour-reservations/internal/http/response"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// Service описывает интерфейс чтения брони.
type Service interface {
	Get(ctx context.Context, id int64, actor models.Actor) (*models.Reservation, error)
}

// Handler обрабатывает запросы на получение брони.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить бронь
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID брони"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /reservations/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reservation.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, models.ErrUnauthorized)
		return
	}

	id, err := params.ID(r, "id")
	if err != nil {
		log.Warn("failed to decode id from url", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	res, err := h.service.Get(r.Context(), id, models.UserActor(user))
	if err != nil {
		log.Warn("failed to read reservation", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(res))
}
