// Package complete реализует служебное завершение брони.
// Вызывается от имени системы, маршрут закрыт AdminToken.
package complete

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tour-reservations/internal/http/params"
	"github.com/magabrotheeeer/tour-reservations/internal/http/response"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

type Service interface {
	Complete(ctx context.Context, id int64, actor models.Actor) (*models.Reservation, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Завершить бронь
// @Tags Reservations
// @Produce json
// @Param X-Admin-Token header string true "Служебный токен"
// @Param id path int true "ID брони"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.ErrorResponse
// @Router /reservations/{id}/complete [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reservation.complete"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := params.ID(r, "id")
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.service.Complete(r.Context(), id, models.SystemActor)
	if err != nil {
		log.Warn("completion rejected", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(res))
}
