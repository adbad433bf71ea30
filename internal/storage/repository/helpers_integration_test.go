//go:build integration

package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/tour-reservations/internal/migrations"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

const postgresPort = nat.Port("5432/tcp")

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("tours"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort(postgresPort).WithStartupTimeout(time.Minute),
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")))
	require.NoError(t, CheckDatabaseReady(ctx, storage))

	return storage
}

// TestDataFactory создаёт тестовые данные напрямую через SQL.
type TestDataFactory struct {
	db *sql.DB
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{db: storage.DB}
}

func (f *TestDataFactory) CreateUser(t *testing.T, email string, isOperator bool) string {
	var uid string
	err := f.db.QueryRow(`INSERT INTO users (email, password_hash, is_operator, is_verified)
		VALUES ($1, 'hash', $2, TRUE) RETURNING uid`, email, isOperator).Scan(&uid)
	require.NoError(t, err)
	return uid
}

func (f *TestDataFactory) CreatePackage(t *testing.T, operatorID string, priceCents int64, allowsLate bool, windowDays int) int64 {
	var id int64
	err := f.db.QueryRow(`INSERT INTO packages (operator_id, title, price_per_person_cents,
		allows_late_cancellation, cancellation_window_days)
		VALUES ($1, 'Alps', $2, $3, $4) RETURNING id`, operatorID, priceCents, allowsLate, windowDays).Scan(&id)
	require.NoError(t, err)
	return id
}

func newReservation(packageID int64, touristID, operatorID string, createdAt time.Time) *models.Reservation {
	return &models.Reservation{
		PackageID:       packageID,
		TouristID:       touristID,
		OperatorID:      operatorID,
		StartDate:       time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC),
		Adults:          2,
		Children:        2,
		TotalPriceCents: 60000,
		Status:          models.StatusPending,
		CreatedAt:       createdAt,
	}
}
