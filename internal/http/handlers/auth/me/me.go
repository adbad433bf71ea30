// Package me отдаёт профиль и роль текущего пользователя.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tour-reservations/internal/http/dto"
	"github.com/magabrotheeeer/tour-reservations/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-reservations/internal/http/response"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// Handler возвращает профиль текущего пользователя.
type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, models.ErrUnauthorized)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(dto.FromUser(user)))
}

// RoleHandler возвращает сводку роли текущего пользователя.
type RoleHandler struct {
	log *slog.Logger
}

func NewRole(log *slog.Logger) *RoleHandler {
	return &RoleHandler{log: log}
}

// ServeHTTP godoc
// @Summary Роль текущего пользователя
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /auth/me/role [get]
func (h *RoleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, models.ErrUnauthorized)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(dto.RoleOf(user)))
}
