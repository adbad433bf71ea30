// Package models содержит доменные структуры сервиса бронирований:
// пользователя (туриста или оператора), бронь, условия турпакета,
// а также типизированные ошибки домена.
package models

import "time"

// Profile хранит профильные данные пользователя, не влияющие на права доступа.
type Profile struct {
	FirstName   string
	LastName    string
	Phone       *string
	Country     *string
	City        *string
	Address     *string
	PostalCode  *string
	AvatarURL   *string
	Description *string
}

// User представляет зарегистрированного пользователя: туриста или оператора.
type User struct {
	UUID         string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта (уникальная)
	PasswordHash string    // bcrypt-хэш пароля
	IsOperator   bool      // Пользователь публикует турпакеты
	IsVerified   bool      // Аккаунт проверен
	Profile      Profile   // Данные профиля
	CreatedAt    time.Time // Дата регистрации
	LastAccessAt *time.Time
}

// Role возвращает текстовое название роли пользователя.
func (u *User) Role() string {
	if u.IsOperator {
		return RoleOperator
	}
	return RoleTourist
}

// ProfileComplete сообщает, заполнены ли поля, обязательные для перехода в операторы.
func (u *User) ProfileComplete() bool {
	return nonEmpty(u.Profile.Phone) && nonEmpty(u.Profile.Country) && nonEmpty(u.Profile.City)
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}

const (
	// RoleTourist — роль туриста.
	RoleTourist = "tourist"
	// RoleOperator — роль туроператора.
	RoleOperator = "operator"
)

// ProfileUpdate задаёт разрешённый набор изменяемых полей профиля.
// Флаги ролей и служебные поля сюда не входят.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	Country     *string
	City        *string
	Address     *string
	PostalCode  *string
	AvatarURL   *string
	Description *string
}

// Empty сообщает, что в обновлении нет ни одного поля.
func (p ProfileUpdate) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil && p.Country == nil &&
		p.City == nil && p.Address == nil && p.PostalCode == nil && p.AvatarURL == nil &&
		p.Description == nil
}
