// Package auth собирает gRPC-сервис авторизации.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/magabrotheeeer/tour-reservations/internal/cache"
	"github.com/magabrotheeeer/tour-reservations/internal/config"
	"github.com/magabrotheeeer/tour-reservations/internal/grpc/server"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/jwt"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/password"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
	authservices "github.com/magabrotheeeer/tour-reservations/internal/services/auth"
	"github.com/magabrotheeeer/tour-reservations/internal/services/guard"
	"github.com/magabrotheeeer/tour-reservations/internal/storage/repository"
)

type App struct {
	grpcServer *grpc.Server
	listener   net.Listener
	logger     *slog.Logger
	db         *repository.Storage
	cache      *cache.Cache
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.auth.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{logger: logger, db: db, cache: cacheRedis}

	hasher, err := password.NewHasher(cfg.BcryptCost)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Debug("password hasher ready", slog.Int("bcrypt_cost", hasher.Cost()))
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.AccessTTL, cfg.RefreshTTL)
	credentials := authservices.NewCredentialStore(db, hasher, logger)
	authService := authservices.NewAuthService(credentials, db, jwtMaker, cacheRedis, logger)

	lis, err := net.Listen("tcp", cfg.GRPCAuthAddress)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app.listener = lis

	app.grpcServer = grpc.NewServer()
	server.RegisterAuthServiceServer(app.grpcServer, server.NewAuthServer(authService, guard.New(jwtMaker, db), logger))

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("Auth gRPC service listening on", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	select {
	case <-ctx.Done():
		a.grpcServer.GracefulStop()
		a.close()
		return nil
	case err := <-errCh:
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
