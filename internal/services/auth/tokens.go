package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/tour-reservations/internal/lib/jwt"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/metrics"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// Authenticator проверяет пару email/пароль.
type Authenticator interface {
	Verify(ctx context.Context, email, rawPassword string) (*models.User, error)
}

// UserReader читает актуальную запись пользователя.
type UserReader interface {
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)
}

// TokenRevoker хранит отозванные refresh-токены.
type TokenRevoker interface {
	// RevokeToken возвращает false, если jti уже был отозван.
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// AuthService выпускает, обновляет и отзывает токены.
type AuthService struct {
	creds   Authenticator
	users   UserReader
	maker   jwt.Maker
	revoker TokenRevoker
	log     *slog.Logger
}

// NewAuthService создаёт AuthService.
func NewAuthService(creds Authenticator, users UserReader, maker jwt.Maker, revoker TokenRevoker, log *slog.Logger) *AuthService {
	return &AuthService{
		creds:   creds,
		users:   users,
		maker:   maker,
		revoker: revoker,
		log:     log,
	}
}

// Login проверяет учётные данные и выпускает пару токенов.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*jwt.TokenPair, *models.User, error) {
	const op = "auth.Login"
	user, err := s.creds.Verify(ctx, email, rawPassword)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	pair, err := s.maker.Issue(user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	return pair, user, nil
}

// Refresh принимает только refresh-токен, перечитывает пользователя и выпускает
// новую пару. Использованный refresh-токен отзывается.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	const op = "auth.Refresh"
	claims, err := s.maker.VerifyKind(refreshToken, jwt.KindRefresh)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("refresh", "failure").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%s: %w: missing jti", op, models.ErrTokenInvalid)
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			metrics.AuthAttempts.WithLabelValues("refresh", "failure").Inc()
			return nil, fmt.Errorf("%s: %w: user no longer exists", op, models.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Пара выпускается до отзыва: сбой выпуска не должен сжигать refresh-токен.
	pair, err := s.maker.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	first, err := s.revoker.RevokeToken(ctx, claims.ID, s.maker.ExpiresIn(claims))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !first {
		s.log.Warn("refresh token reuse", slog.String("user_uid", user.UUID), slog.String("jti", claims.ID))
		metrics.AuthAttempts.WithLabelValues("refresh", "failure").Inc()
		return nil, fmt.Errorf("%s: %w: token revoked", op, models.ErrTokenInvalid)
	}
	metrics.AuthAttempts.WithLabelValues("refresh", "success").Inc()
	return pair, nil
}

// Logout отзывает refresh-токен. Повторный выход не считается ошибкой.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	const op = "auth.Logout"
	claims, err := s.maker.VerifyKind(refreshToken, jwt.KindRefresh)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if claims.ID == "" {
		return fmt.Errorf("%s: %w: missing jti", op, models.ErrTokenInvalid)
	}
	if _, err := s.revoker.RevokeToken(ctx, claims.ID, s.maker.ExpiresIn(claims)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("refresh token revoked", slog.String("user_uid", claims.Subject))
	return nil
}
