// Package update реализует изменение параметров поездки в ожидающей брони.
// Менять бронь может только создавший её турист.
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
	"github.com/magabrotheeeer/tour-reservations/internal/http/params"
	"github.com/magabrotheeeer/tour-reservations/internal/http/response"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
	"github.com/magabrotheeeer/tour-reservations/internal/services/reservation"
)

type Service interface {
	UpdateDetails(ctx context.Context, id int64, actor models.Actor, in reservation.CreateInput) (*models.Reservation, error)
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
// @Summary Изменить параметры поездки
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID брони"
// @Param request body dto.Trip true "Новые параметры"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.ErrorResponse "Бронь уже не в ожидании"
// @Router /reservations/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reservation.update"

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
		response.WriteError(w, r, err)
		return
	}

	var req dto.Trip
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
	in, err := req.Input(0)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.service.UpdateDetails(r.Context(), id, models.UserActor(user), in)
	if err != nil {
		log.Warn("failed to update reservation", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(res))
}
