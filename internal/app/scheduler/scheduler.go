// Package scheduler собирает фоновый процесс завершения броней.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/tour-reservations/internal/cache"
	"github.com/magabrotheeeer/tour-reservations/internal/config"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
	"github.com/magabrotheeeer/tour-reservations/internal/services/catalog"
	"github.com/magabrotheeeer/tour-reservations/internal/services/reservation"
	schedulerservice "github.com/magabrotheeeer/tour-reservations/internal/services/scheduler"
	"github.com/magabrotheeeer/tour-reservations/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	broker           *rabbitmq.Broker
	db               *repository.Storage
	cache            *cache.Cache
	logger           *slog.Logger
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.scheduler.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// Миграции применяет HTTP-сервис, планировщик ждёт их.
	if err := repository.WaitReady(ctx, db, 10, 3*time.Second); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{db: db, cache: cacheRedis, logger: logger}

	var opts []reservation.Option
	if cfg.RabbitMQ.URL != "" {
		app.broker, err = rabbitmq.Open(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		opts = append(opts, reservation.WithPublisher(app.broker))
	}

	packages := catalog.NewPackageLookup(db, cacheRedis, cfg.PackageTTL, logger)
	manager := reservation.NewManager(db, packages, logger, opts...)
	app.schedulerService = schedulerservice.NewSchedulerService(manager, cfg.Interval, logger)

	return app, nil
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx)

	a.logger.Info("shutting down scheduler service")
	a.close()
	return nil
}

func (a *App) close() {
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq", sl.Err(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
