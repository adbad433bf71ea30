package reservations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/tour-reservations/internal/cache"
	"github.com/magabrotheeeer/tour-reservations/internal/config"
	"github.com/magabrotheeeer/tour-reservations/internal/http/handlers/health"
	"github.com/magabrotheeeer/tour-reservations/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/jwt"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/password"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
	"github.com/magabrotheeeer/tour-reservations/internal/migrations"
	"github.com/magabrotheeeer/tour-reservations/internal/services/auth"
	"github.com/magabrotheeeer/tour-reservations/internal/services/catalog"
	"github.com/magabrotheeeer/tour-reservations/internal/services/guard"
	"github.com/magabrotheeeer/tour-reservations/internal/services/reservation"
	"github.com/magabrotheeeer/tour-reservations/internal/storage/repository"
)

// App HTTP-сервис бронирований.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	broker *rabbitmq.Broker
}

// New подключает хранилища, применяет миграции и собирает маршруты.
// Без rabbitmq.url события броней не публикуются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.reservations.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
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
	maker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.AccessTTL, cfg.RefreshTTL)

	var opts []reservation.Option
	if cfg.RabbitMQ.URL != "" {
		app.broker, err = rabbitmq.Open(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		opts = append(opts, reservation.WithPublisher(app.broker))
	} else {
		logger.Warn("rabbitmq url is empty, reservation events are not published")
	}

	credentials := auth.NewCredentialStore(db, hasher, logger)
	packages := catalog.NewPackageLookup(db, cacheRedis, cfg.PackageTTL, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Credentials:  credentials,
		Auth:         auth.NewAuthService(credentials, db, maker, cacheRedis, logger),
		Users:        auth.NewUserService(db, logger),
		Guard:        guard.New(maker, db),
		Reservations: reservation.NewManager(db, packages, logger, opts...),
		Limiter:      middlewarectx.NewClientLimiter(cfg.RPS, cfg.Burst),
		AdminToken:   cfg.AdminToken,
		Health:       map[string]health.Pinger{"postgres": db, "redis": cacheRedis},
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run обслуживает запросы до отмены ctx и затем плавно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
