// Package server реализует gRPC-сервер авторизационного сервиса.
//
// AuthServer отдаёт другим сервисам маркетплейса (каталог, отзывы) проверку
// access-токена, вход и обновление пары токенов. Бизнес-логика делегируется
// AuthService и Guard.
package server

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/tour-reservations/internal/lib/jwt"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// TokenService выпускает и обновляет пары токенов.
type TokenService interface {
	Login(ctx context.Context, email, rawPassword string) (*jwt.TokenPair, *models.User, error)
	Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
}

// CurrentUserResolver определяет пользователя по access-токену.
type CurrentUserResolver interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// AuthServer реализует gRPC-сервис авторизации.
type AuthServer struct {
	tokens TokenService
	guard  CurrentUserResolver
	log    *slog.Logger
}

var _ AuthServiceServer = (*AuthServer)(nil)

// NewAuthServer создает новый экземпляр AuthServer.
func NewAuthServer(tokens TokenService, guard CurrentUserResolver, logger *slog.Logger) *AuthServer {
	return &AuthServer{
		tokens: tokens,
		guard:  guard,
		log:    logger,
	}
}

// ValidateToken проверяет access-токен и возвращает актуальные данные пользователя.
func (s *AuthServer) ValidateToken(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.ValidateToken"
	log := s.log.With(sl.Op(op))

	user, err := s.guard.CurrentUser(ctx, req.GetValue())
	if err != nil {
		log.Warn("token rejected", sl.Err(err))
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{
		"valid":       true,
		"user_uid":    user.UUID,
		"email":       user.Email,
		"role":        user.Role(),
		"is_operator": user.IsOperator,
		"is_verified": user.IsVerified,
	})
}

// Login проверяет учётные данные и выпускает пару токенов.
// Ожидает поля email и password.
func (s *AuthServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.Login"
	log := s.log.With(sl.Op(op))

	fields := req.GetFields()
	email := fields["email"].GetStringValue()
	password := fields["password"].GetStringValue()
	if email == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}

	pair, user, err := s.tokens.Login(ctx, email, password)
	if err != nil {
		log.Warn("login failed", sl.Err(err))
		return nil, toStatus(err)
	}
	log.Info("login success", slog.String("user_uid", user.UUID))
	return pairStruct(pair)
}

// Refresh обменивает refresh-токен на новую пару.
func (s *AuthServer) Refresh(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.Refresh"
	log := s.log.With(sl.Op(op))

	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh token is required")
	}
	pair, err := s.tokens.Refresh(ctx, req.GetValue())
	if err != nil {
		log.Warn("refresh failed", sl.Err(err))
		return nil, toStatus(err)
	}
	return pairStruct(pair)
}

func pairStruct(pair *jwt.TokenPair) (*structpb.Struct, error) {
	res, err := structpb.NewStruct(map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    pair.TokenType,
		"expires_in":    pair.ExpiresIn,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return res, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, models.ErrAuthenticationFailed),
		errors.Is(err, models.ErrTokenInvalid),
		errors.Is(err, models.ErrTokenExpired),
		errors.Is(err, models.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthenticated")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
