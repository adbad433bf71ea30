// Package list реализует постраничные списки броней туриста и оператора.
//
// Брони отдаются от новых к старым. Параметры limit и offset необязательны,
// по умолчанию 20 записей, не больше 100.
package list

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

// Service описывает выборки броней.
type Service interface {
	ListForTourist(ctx context.Context, user *models.User, limit, offset int) ([]*models.Reservation, error)
	ListForOperator(ctx context.Context, user *models.User, limit, offset int) ([]*models.Reservation, error)
}

type lister func(ctx context.Context, user *models.User, limit, offset int) ([]*models.Reservation, error)

// Handler отдаёт список броней.
type Handler struct {
	log  *slog.Logger
	op   string
	list lister
}

// New создаёт обработчик списка броней туриста.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, op: "handlers.reservation.list", list: service.ListForTourist}
}

// NewOperator создаёт обработчик списка броней на турпакеты оператора.
func NewOperator(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, op: "handlers.reservation.list_operator", list: service.ListForOperator}
}

// ServeHTTP godoc
// @Summary Список броней
// @Description /reservations отдаёт брони туриста, /reservations/operator брони на турпакеты оператора.
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Router /reservations [get]
// @Router /reservations/operator [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(
		slog.String("op", h.op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, models.ErrUnauthorized)
		return
	}
	limit, offset, err := params.Page(r)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.list(r.Context(), user, limit, offset)
	if err != nil {
		log.Error("failed to list reservations", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("reservations listed", slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"reservations": res,
		"count":        len(res),
	}))
}
