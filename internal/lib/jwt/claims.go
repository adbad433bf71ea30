// Package jwt реализует выпуск и проверку подписанных сессионных токенов.
//
// Выпускается пара: короткоживущий access-токен и долгоживущий refresh-токен.
// Оба содержат идентификатор пользователя, email, снимок ролей и claim kind,
// различающий назначение токена.
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Kind назначение токена.
type Kind string

const (
	// KindAccess — токен для вызова защищённых операций.
	KindAccess Kind = "access"
	// KindRefresh — токен для получения новой пары.
	KindRefresh Kind = "refresh"
)

// TokenTypeBearer — тип токена, отдаваемый клиенту.
const TokenTypeBearer = "bearer"

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
//
// Снимок ролей (IsOperator, IsVerified) берётся в момент выпуска и может устареть;
// решения об авторизации принимаются по актуальной записи пользователя.
type CustomClaims struct {
	Email                string `json:"email"`
	IsOperator           bool   `json:"is_operator"`
	IsVerified           bool   `json:"is_verified"`
	Kind                 Kind   `json:"kind"`
	jwt.RegisteredClaims        // sub, exp, iat, jti
}

// TokenPair — результат выпуска токенов.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // Время жизни access-токена в секундах
}
