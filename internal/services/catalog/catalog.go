// Package catalog даёт ядру бронирований доступ к условиям турпакетов:
// владельцу, цене за человека и правилам отмены.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// PackageRepository читает турпакет из хранилища.
type PackageRepository interface {
	GetPackage(ctx context.Context, id int64) (*models.TourPackage, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// PackageLookup читает условия турпакетов через кэш.
type PackageLookup struct {
	repo  PackageRepository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewPackageLookup создаёт PackageLookup. cache может быть nil.
func NewPackageLookup(repo PackageRepository, cache Cache, ttl time.Duration, log *slog.Logger) *PackageLookup {
	return &PackageLookup{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func cacheKey(id int64) string {
	return "package:" + strconv.FormatInt(id, 10)
}

// GetPackage возвращает турпакет, сначала пытаясь взять его из кэша.
// Ошибки кэша только логируются.
func (l *PackageLookup) GetPackage(ctx context.Context, id int64) (*models.TourPackage, error) {
	const op = "catalog.GetPackage"
	key := cacheKey(id)

	if l.cache != nil {
		var cached models.TourPackage
		found, err := l.cache.Get(ctx, key, &cached)
		if err != nil {
			l.log.Warn("failed to read package from cache", slog.Int64("package_id", id), sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	pkg, err := l.repo.GetPackage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, key, pkg, l.ttl); err != nil {
			l.log.Warn("failed to cache package", slog.Int64("package_id", id), sl.Err(err))
		}
	}
	return pkg, nil
}

// GetOwnerID возвращает UID оператора, владеющего турпакетом.
func (l *PackageLookup) GetOwnerID(ctx context.Context, id int64) (string, error) {
	pkg, err := l.GetPackage(ctx, id)
	if err != nil {
		return "", err
	}
	return pkg.OperatorID, nil
}

// GetPricePerPerson возвращает цену за человека в минимальных единицах валюты.
// Снятый с продажи турпакет цены не имеет.
func (l *PackageLookup) GetPricePerPerson(ctx context.Context, id int64) (int64, error) {
	pkg, err := l.GetPackage(ctx, id)
	if err != nil {
		return 0, err
	}
	if !pkg.Active {
		return 0, fmt.Errorf("catalog.GetPricePerPerson: %w: package %d is not available", models.ErrValidation, id)
	}
	return pkg.PricePerPersonCents, nil
}

// GetCancellationPolicy возвращает правила отмены турпакета.
func (l *PackageLookup) GetCancellationPolicy(ctx context.Context, id int64) (models.CancellationPolicy, error) {
	pkg, err := l.GetPackage(ctx, id)
	if err != nil {
		return models.CancellationPolicy{}, err
	}
	return models.CancellationPolicy{
		Allowed:    pkg.AllowsLateCancellation,
		WindowDays: pkg.CancellationWindowDays,
	}, nil
}
