package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// Maker описывает интерфейс выпуска и проверки токенов.
type Maker interface {
	// Issue выпускает пару access/refresh для пользователя.
	Issue(user *models.User) (*TokenPair, error)
	// Verify проверяет подпись, срок действия и обязательные claims.
	Verify(tokenStr string) (*CustomClaims, error)
	// VerifyKind дополнительно требует токен указанного назначения.
	VerifyKind(tokenStr string, kind Kind) (*CustomClaims, error)
	// ExpiresIn возвращает оставшееся время жизни токена, не меньше нуля.
	ExpiresIn(claims *CustomClaims) time.Duration
}

// MakerImpl реализует Maker на HMAC-SHA256 с секретом сервера.
type MakerImpl struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option настраивает MakerImpl.
type Option func(*MakerImpl)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(m *MakerImpl) {
		m.now = now
	}
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и времён жизни токенов.
func NewJWTMaker(secretKey string, accessTTL, refreshTTL time.Duration, opts ...Option) *MakerImpl {
	m := &MakerImpl{
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue выпускает access- и refresh-токены с одинаковым снимком ролей.
func (m *MakerImpl) Issue(user *models.User) (*TokenPair, error) {
	const op = "jwt.Issue"
	if user == nil || user.UUID == "" || user.Email == "" {
		return nil, fmt.Errorf("%s: subject and email are required", op)
	}
	access, err := m.sign(user, KindAccess, m.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	refresh, err := m.sign(user, KindRefresh, m.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(m.accessTTL / time.Second),
	}, nil
}

func (m *MakerImpl) sign(user *models.User, kind Kind, ttl time.Duration) (string, error) {
	now := m.now()
	claims := CustomClaims{
		Email:      user.Email,
		IsOperator: user.IsOperator,
		IsVerified: user.IsVerified,
		Kind:       kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UUID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify парсит токен, проверяет подпись, алгоритм и срок действия.
//
// Возвращает ошибку, обёртывающую models.ErrTokenExpired для истёкших токенов
// и models.ErrTokenInvalid во всех остальных случаях.
func (m *MakerImpl) Verify(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.Verify"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return m.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%s: %w: %s", op, models.ErrTokenInvalid, err.Error())
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, models.ErrTokenInvalid)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%s: %w: missing subject or email", op, models.ErrTokenInvalid)
	}
	if claims.Kind != KindAccess && claims.Kind != KindRefresh {
		return nil, fmt.Errorf("%s: %w: unknown kind %q", op, models.ErrTokenInvalid, claims.Kind)
	}
	return claims, nil
}

// VerifyKind проверяет токен и отклоняет токены другого назначения.
func (m *MakerImpl) VerifyKind(tokenStr string, kind Kind) (*CustomClaims, error) {
	const op = "jwt.VerifyKind"
	claims, err := m.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%s: %w: expected %s token, got %s", op, models.ErrTokenInvalid, kind, claims.Kind)
	}
	return claims, nil
}

// ExpiresIn возвращает оставшееся время жизни токена относительно часов Maker.
func (m *MakerImpl) ExpiresIn(claims *CustomClaims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	left := claims.ExpiresAt.Sub(m.now())
	if left < 0 {
		return 0
	}
	return left
}
