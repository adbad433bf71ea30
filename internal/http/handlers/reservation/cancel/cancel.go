// Package cancel реализует отмену брони туристом или оператором турпакета.
//
// Внутри окна отмены поздняя отмена разрешена только если её допускает турпакет,
// иначе клиент получает 409.
package cancel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tour-reservations/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-reservations/internal/http/params"
	"github.com/magabrotheeeer/tour-reservations/internal/http/response"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// Request содержит необязательную причину отмены. Пустое тело допустимо.
type Request struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type Service interface {
	Cancel(ctx context.Context, id int64, actor models.Actor, reason *string) (*models.Reservation, error)
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
// @Summary Отменить бронь
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID брони"
// @Param request body Request false "Причина отмены"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Окно отмены или недопустимый переход"
// @Router /reservations/{id}/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reservation.cancel"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
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

	res, err := h.service.Cancel(r.Context(), id, models.UserActor(user), req.Reason)
	if err != nil {
		log.Warn("cancellation rejected", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	log.Info("reservation cancelled", slog.Int64("reservation_id", res.ID))
	render.JSON(w, r, response.StatusOKWithData(res))
}
