// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков и сопоставления ошибок домена
// с кодами HTTP.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (при неуспехе).
// Поле Data — данные ответа (при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает ответ с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// StatusFor сопоставляет ошибку домена с HTTP-кодом и публичным сообщением.
// Неизвестные ошибки превращаются в 500 без подробностей.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrDuplicateEmail):
		return http.StatusConflict, models.ErrDuplicateEmail.Error()
	case errors.Is(err, models.ErrAuthenticationFailed):
		return http.StatusUnauthorized, models.ErrAuthenticationFailed.Error()
	case errors.Is(err, models.ErrTokenExpired):
		return http.StatusUnauthorized, models.ErrTokenExpired.Error()
	case errors.Is(err, models.ErrTokenInvalid):
		return http.StatusUnauthorized, models.ErrTokenInvalid.Error()
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, models.ErrUnauthorized.Error()
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, models.ErrForbidden.Error()
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, models.ErrNotFound.Error()
	case errors.Is(err, models.ErrValidation):
		return http.StatusUnprocessableEntity, validationMessage(err)
	case errors.Is(err, models.ErrPolicyViolation):
		return http.StatusConflict, models.ErrPolicyViolation.Error()
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict, models.ErrInvalidTransition.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// validationMessage возвращает текст после последнего вхождения ErrValidation,
// чтобы клиент видел причину без цепочки op.
func validationMessage(err error) string {
	msg := err.Error()
	marker := models.ErrValidation.Error()
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i:]
	}
	return marker
}

// WriteError пишет ошибку домена в ответ с подходящим статусом.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := StatusFor(err)
	render.Status(r, code)
	render.JSON(w, r, Error(msg))
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s", err.Field(), err.Param()))
		case "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than or equal to %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}
