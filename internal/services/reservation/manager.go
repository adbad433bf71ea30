// Package reservation управляет жизненным циклом броней: создание, подтверждение,
// отмена с учётом окна отмены, завершение, чтение и списки.
//
// Каждый переход выполняется одним условным UPDATE в хранилище, поэтому из
// нескольких одновременных попыток перевести бронь в одно состояние успешна ровно одна.
package reservation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/magabrotheeeer/tour-reservations/internal/lib/days"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/metrics"
	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
	"github.com/magabrotheeeer/tour-reservations/internal/models"
	"github.com/magabrotheeeer/tour-reservations/internal/services/guard"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxHeadcount ограничивает число путешественников в одной брони.
	MaxHeadcount = 50
)

// Repository описывает хранилище броней.
type Repository interface {
	CreateReservation(ctx context.Context, r *models.Reservation) (*models.Reservation, error)
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	TransitionReservation(ctx context.Context, id int64, from []models.ReservationStatus, change models.StatusChange) (*models.Reservation, error)
	UpdateTripDetails(ctx context.Context, id int64, touristID string, details models.TripDetails, totalPriceCents int64, at time.Time) (*models.Reservation, error)
	ListByTourist(ctx context.Context, touristID string, limit, offset int) ([]*models.Reservation, error)
	ListByOperator(ctx context.Context, operatorID string, limit, offset int) ([]*models.Reservation, error)
	CompleteFinished(ctx context.Context, today, at time.Time) ([]*models.Reservation, error)
}

// PackageLookup даёт условия турпакета.
type PackageLookup interface {
	GetOwnerID(ctx context.Context, packageID int64) (string, error)
	GetPricePerPerson(ctx context.Context, packageID int64) (int64, error)
	GetCancellationPolicy(ctx context.Context, packageID int64) (models.CancellationPolicy, error)
}

// EventPublisher публикует события броней.
type EventPublisher interface {
	Publish(ctx context.Context, event models.ReservationEvent) error
}

// CreateInput задаёт параметры новой брони.
type CreateInput struct {
	PackageID    int64
	StartDate    time.Time
	EndDate      time.Time
	Adults       int
	Children     int
	SpecialNeeds *string
	Notes        *string
}

// Manager исполняет операции над бронями.
type Manager struct {
	repo      Repository
	packages  PackageLookup
	publisher EventPublisher
	log       *slog.Logger
	now       func() time.Time
}

// Option настраивает Manager.
type Option func(*Manager)

// WithPublisher включает публикацию событий.
func WithPublisher(p EventPublisher) Option {
	return func(m *Manager) {
		m.publisher = p
	}
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager создаёт Manager.
func NewManager(repo Repository, packages PackageLookup, log *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		repo:     repo,
		packages: packages,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create бронирует турпакет для туриста. Итоговая цена равна цене за человека,
// умноженной на число взрослых и детей. Бронь создаётся в состоянии pending.
func (m *Manager) Create(ctx context.Context, tourist *models.User, in CreateInput) (*models.Reservation, error) {
	const op = "reservation.Create"
	if err := guard.RequireVerifiedTourist(tourist); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := m.now().UTC()
	if err := validateTrip(in.StartDate, in.EndDate, in.Adults, in.Children, days.Truncate(now)); err != nil {
		m.reject(op, "validation")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	operatorID, err := m.packages.GetOwnerID(ctx, in.PackageID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	price, err := m.packages.GetPricePerPerson(ctx, in.PackageID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r := &models.Reservation{
		PackageID:    in.PackageID,
		TouristID:    tourist.UUID,
		OperatorID:   operatorID,
		StartDate:    days.Truncate(in.StartDate),
		EndDate:      days.Truncate(in.EndDate),
		Adults:       in.Adults,
		Children:     in.Children,
		Status:       models.StatusPending,
		SpecialNeeds: in.SpecialNeeds,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.TotalPriceCents, err = totalPrice(price, r.Headcount())
	if err != nil {
		m.reject(op, "validation")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := m.repo.CreateReservation(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.ReservationTransitions.WithLabelValues(string(models.StatusPending)).Inc()
	m.log.Info("reservation created",
		slog.Int64("reservation_id", created.ID),
		slog.Int64("package_id", created.PackageID),
		slog.String("tourist_id", created.TouristID),
	)
	m.publish(ctx, models.EventReservationCreated, created, now)
	return created, nil
}

// Get возвращает бронь её туристу, оператору турпакета или системе.
// Для остальных бронь не существует.
func (m *Manager) Get(ctx context.Context, id int64, actor models.Actor) (*models.Reservation, error) {
	const op = "reservation.Get"
	r, err := m.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !canSee(r, actor) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return r, nil
}

// Confirm подтверждает ожидающую бронь после оплаты. Доступно системе и
// проверенному оператору турпакета.
func (m *Manager) Confirm(ctx context.Context, id int64, actor models.Actor, paymentMethod *string) (*models.Reservation, error) {
	const op = "reservation.Confirm"
	r, err := m.Get(ctx, id, actor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !actor.System && (actor.UserID != r.OperatorID || !actor.VerifiedOperator()) {
		m.reject(op, "forbidden")
		return nil, fmt.Errorf("%s: %w: only the verified package operator can confirm", op, models.ErrForbidden)
	}
	return m.transition(ctx, op, r, models.StatusChange{
		To:            models.StatusConfirmed,
		MarkPaid:      true,
		PaymentMethod: paymentMethod,
	})
}

// Cancel отменяет бронь по запросу туриста, проверенного оператора турпакета или системы.
// Внутри окна отмены это возможно, только если турпакет разрешает позднюю отмену.
func (m *Manager) Cancel(ctx context.Context, id int64, actor models.Actor, reason *string) (*models.Reservation, error) {
	const op = "reservation.Cancel"
	r, err := m.Get(ctx, id, actor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !actor.System && actor.UserID != r.TouristID && !actor.VerifiedOperator() {
		m.reject(op, "forbidden")
		return nil, fmt.Errorf("%s: %w: operator is not verified", op, models.ErrForbidden)
	}
	if r.Status.Terminal() {
		m.reject(op, "invalid_transition")
		return nil, fmt.Errorf("%s: %w: %s reservation cannot be cancelled", op, models.ErrInvalidTransition, r.Status)
	}

	policy, err := m.packages.GetCancellationPolicy(ctx, r.PackageID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	today := days.Truncate(m.now())
	if !policy.Allowed && days.InsideWindow(today, r.StartDate, policy.WindowDays) {
		m.reject(op, "policy_violation")
		return nil, fmt.Errorf("%s: %w: trip starts in %d days, window is %d days",
			op, models.ErrPolicyViolation, days.Until(today, r.StartDate), policy.WindowDays)
	}

	return m.transition(ctx, op, r, models.StatusChange{
		To:                 models.StatusCancelled,
		CancellationReason: reason,
	})
}

// Complete завершает подтверждённую бронь. Доступно только системе.
func (m *Manager) Complete(ctx context.Context, id int64, actor models.Actor) (*models.Reservation, error) {
	const op = "reservation.Complete"
	if !actor.System {
		return nil, fmt.Errorf("%s: %w: completion is a system operation", op, models.ErrForbidden)
	}
	r, err := m.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m.transition(ctx, op, r, models.StatusChange{To: models.StatusCompleted})
}

// CompleteFinished завершает все подтверждённые брони, поездка по которым уже закончилась,
// и возвращает их число.
func (m *Manager) CompleteFinished(ctx context.Context) (int, error) {
	const op = "reservation.CompleteFinished"
	now := m.now().UTC()
	completed, err := m.repo.CompleteFinished(ctx, days.Truncate(now), now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	for _, r := range completed {
		metrics.ReservationTransitions.WithLabelValues(string(models.StatusCompleted)).Inc()
		m.publish(ctx, models.EventReservationCompleted, r, now)
	}
	if len(completed) > 0 {
		m.log.Info("finished reservations completed", slog.Int("count", len(completed)))
	}
	return len(completed), nil
}

// UpdateDetails меняет параметры поездки ожидающей брони. Доступно только туристу,
// создавшему бронь. Цена пересчитывается.
func (m *Manager) UpdateDetails(ctx context.Context, id int64, actor models.Actor, in CreateInput) (*models.Reservation, error) {
	const op = "reservation.UpdateDetails"
	r, err := m.Get(ctx, id, actor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if actor.UserID != r.TouristID {
		return nil, fmt.Errorf("%s: %w: only the tourist can change trip details", op, models.ErrForbidden)
	}
	if r.Status != models.StatusPending {
		m.reject(op, "invalid_transition")
		return nil, fmt.Errorf("%s: %w: %s reservation cannot be changed", op, models.ErrInvalidTransition, r.Status)
	}
	now := m.now().UTC()
	if err := validateTrip(in.StartDate, in.EndDate, in.Adults, in.Children, days.Truncate(now)); err != nil {
		m.reject(op, "validation")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	price, err := m.packages.GetPricePerPerson(ctx, r.PackageID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	details := models.TripDetails{
		StartDate:    days.Truncate(in.StartDate),
		EndDate:      days.Truncate(in.EndDate),
		Adults:       in.Adults,
		Children:     in.Children,
		SpecialNeeds: in.SpecialNeeds,
		Notes:        in.Notes,
	}
	total, err := totalPrice(price, in.Adults+in.Children)
	if err != nil {
		m.reject(op, "validation")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated, err := m.repo.UpdateTripDetails(ctx, r.ID, r.TouristID, details, total, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m.log.Info("reservation details updated", slog.Int64("reservation_id", updated.ID))
	m.publish(ctx, models.EventReservationUpdated, updated, now)
	return updated, nil
}

// ListForTourist возвращает брони туриста, новые первыми.
func (m *Manager) ListForTourist(ctx context.Context, user *models.User, limit, offset int) ([]*models.Reservation, error) {
	const op = "reservation.ListForTourist"
	if user == nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}
	limit, offset = normalizePage(limit, offset)
	res, err := m.repo.ListByTourist(ctx, user.UUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// ListForOperator возвращает брони на турпакеты оператора, новые первыми.
func (m *Manager) ListForOperator(ctx context.Context, user *models.User, limit, offset int) ([]*models.Reservation, error) {
	const op = "reservation.ListForOperator"
	if err := guard.RequireVerifiedOperator(user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	limit, offset = normalizePage(limit, offset)
	res, err := m.repo.ListByOperator(ctx, user.UUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (m *Manager) transition(ctx context.Context, op string, r *models.Reservation, change models.StatusChange) (*models.Reservation, error) {
	if !r.Status.CanTransitionTo(change.To) {
		m.reject(op, "invalid_transition")
		return nil, fmt.Errorf("%s: %w: %s -> %s", op, models.ErrInvalidTransition, r.Status, change.To)
	}
	change.At = m.now().UTC()

	updated, err := m.repo.TransitionReservation(ctx, r.ID, models.SourcesOf(change.To), change)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.ReservationTransitions.WithLabelValues(string(change.To)).Inc()
	m.log.Info("reservation status changed",
		slog.Int64("reservation_id", updated.ID),
		slog.String("from", string(r.Status)),
		slog.String("to", string(updated.Status)),
	)
	m.publish(ctx, models.EventTypeFor(updated.Status), updated, change.At)
	return updated, nil
}

// publish не влияет на результат операции: переход уже сохранён.
func (m *Manager) publish(ctx context.Context, eventType string, r *models.Reservation, at time.Time) {
	if m.publisher == nil {
		return
	}
	event := models.NewReservationEvent(eventType, r, at)
	if err := m.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		m.log.Error("failed to publish reservation event",
			slog.String("event", eventType),
			slog.Int64("reservation_id", r.ID),
			sl.Err(err),
		)
	}
}

func (m *Manager) reject(op, reason string) {
	metrics.ReservationRejections.WithLabelValues(op, reason).Inc()
}

func canSee(r *models.Reservation, actor models.Actor) bool {
	if actor.System {
		return true
	}
	return actor.UserID != "" && (actor.UserID == r.TouristID || actor.UserID == r.OperatorID)
}

func validateTrip(start, end time.Time, adults, children int, today time.Time) error {
	switch {
	case start.IsZero() || end.IsZero():
		return fmt.Errorf("%w: start and end dates are required", models.ErrValidation)
	case days.Truncate(end).Before(days.Truncate(start)):
		return fmt.Errorf("%w: end date is before start date", models.ErrValidation)
	case adults < 1:
		return fmt.Errorf("%w: at least one adult is required", models.ErrValidation)
	case children < 0:
		return fmt.Errorf("%w: children cannot be negative", models.ErrValidation)
	case adults+children > MaxHeadcount:
		return fmt.Errorf("%w: at most %d travellers per reservation", models.ErrValidation, MaxHeadcount)
	case days.Truncate(start).Before(today):
		return fmt.Errorf("%w: start date is in the past", models.ErrValidation)
	}
	return nil
}

func totalPrice(pricePerPerson int64, headcount int) (int64, error) {
	if pricePerPerson < 0 {
		return 0, fmt.Errorf("%w: negative package price", models.ErrValidation)
	}
	if headcount > 0 && pricePerPerson > math.MaxInt64/int64(headcount) {
		return 0, fmt.Errorf("%w: total price overflows", models.ErrValidation)
	}
	return pricePerPerson * int64(headcount), nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
