package models

import "errors"

// Ошибки домена. Сервисы оборачивают их через fmt.Errorf("%s: %w", op, err),
// HTTP-слой сопоставляет их с кодами ответа через errors.Is.
var (
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrAuthenticationFailed = errors.New("invalid credentials")
	ErrTokenInvalid         = errors.New("token is invalid")
	ErrTokenExpired         = errors.New("token is expired")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrPolicyViolation      = errors.New("cancellation policy violation")
	ErrInvalidTransition    = errors.New("invalid status transition")
)
