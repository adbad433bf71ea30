package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// ProfileRepository меняет профиль и роль пользователя.
type ProfileRepository interface {
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userUID string, upd models.ProfileUpdate) (*models.User, error)
	SetOperator(ctx context.Context, userUID string) (bool, error)
	SetVerified(ctx context.Context, userUID string) error
}

// UserService изменяет профиль и роль пользователя.
type UserService struct {
	repo ProfileRepository
	log  *slog.Logger
}

// NewUserService создаёт UserService.
func NewUserService(repo ProfileRepository, log *slog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// UpdateProfile применяет разрешённые изменения профиля.
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, upd models.ProfileUpdate) (*models.User, error) {
	const op = "auth.UpdateProfile"
	if upd.Empty() {
		return nil, fmt.Errorf("%s: %w: nothing to update", op, models.ErrValidation)
	}
	updated, err := s.repo.UpdateProfile(ctx, user.UUID, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// ConvertToOperator делает туриста оператором. Профиль должен содержать телефон,
// страну и город на момент конвертации.
func (s *UserService) ConvertToOperator(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "auth.ConvertToOperator"
	current, err := s.repo.GetUserByID(ctx, user.UUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if current.IsOperator {
		return nil, fmt.Errorf("%s: %w: already an operator", op, models.ErrInvalidTransition)
	}
	if !current.ProfileComplete() {
		return nil, fmt.Errorf("%s: %w: phone, country and city are required", op, models.ErrValidation)
	}

	changed, err := s.repo.SetOperator(ctx, current.UUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !changed {
		return nil, fmt.Errorf("%s: %w: already an operator", op, models.ErrInvalidTransition)
	}
	s.log.Info("user converted to operator", slog.String("user_uid", current.UUID))

	current.IsOperator = true
	return current, nil
}

// VerifyUser помечает пользователя проверенным.
func (s *UserService) VerifyUser(ctx context.Context, userUID string) error {
	const op = "auth.VerifyUser"
	if err := s.repo.SetVerified(ctx, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user verified", slog.String("user_uid", userUID))
	return nil
}
