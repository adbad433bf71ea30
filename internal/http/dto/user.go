// Package dto содержит структуры запросов и ответов HTTP API, общие для нескольких обработчиков.
package dto

import (
	"time"

	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// User публичное представление пользователя. Хэш пароля наружу не отдаётся.
type User struct {
	UUID         string     `json:"uid"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	IsOperator   bool       `json:"is_operator"`
	IsVerified   bool       `json:"is_verified"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        *string    `json:"phone,omitempty"`
	Country      *string    `json:"country,omitempty"`
	City         *string    `json:"city,omitempty"`
	Address      *string    `json:"address,omitempty"`
	PostalCode   *string    `json:"postal_code,omitempty"`
	AvatarURL    *string    `json:"avatar_url,omitempty"`
	Description  *string    `json:"description,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastAccessAt *time.Time `json:"last_access_at,omitempty"`
}

// FromUser собирает публичное представление пользователя.
func FromUser(u *models.User) User {
	return User{
		UUID:         u.UUID,
		Email:        u.Email,
		Role:         u.Role(),
		IsOperator:   u.IsOperator,
		IsVerified:   u.IsVerified,
		FirstName:    u.Profile.FirstName,
		LastName:     u.Profile.LastName,
		Phone:        u.Profile.Phone,
		Country:      u.Profile.Country,
		City:         u.Profile.City,
		Address:      u.Profile.Address,
		PostalCode:   u.Profile.PostalCode,
		AvatarURL:    u.Profile.AvatarURL,
		Description:  u.Profile.Description,
		CreatedAt:    u.CreatedAt,
		LastAccessAt: u.LastAccessAt,
	}
}

// Role краткая сводка роли текущего пользователя.
type Role struct {
	Role       string `json:"role"`
	IsOperator bool   `json:"is_operator"`
	IsVerified bool   `json:"is_verified"`
}

// RoleOf возвращает сводку роли пользователя.
func RoleOf(u *models.User) Role {
	return Role{Role: u.Role(), IsOperator: u.IsOperator, IsVerified: u.IsVerified}
}
