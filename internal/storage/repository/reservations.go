package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

const reservationColumns = `id, package_id, tourist_id, operator_id, start_date, end_date,
	adults, children, total_price_cents, status, paid, paid_at, payment_method,
	special_needs, notes, cancellation_reason, cancelled_at, created_at, updated_at`

func scanReservation(row rowScanner) (*models.Reservation, error) {
	r := &models.Reservation{}
	var paidAt, cancelledAt sql.NullTime
	err := row.Scan(&r.ID, &r.PackageID, &r.TouristID, &r.OperatorID, &r.StartDate, &r.EndDate,
		&r.Adults, &r.Children, &r.TotalPriceCents, &r.Status, &r.Paid, &paidAt, &r.PaymentMethod,
		&r.SpecialNeeds, &r.Notes, &r.CancellationReason, &cancelledAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if paidAt.Valid {
		r.PaidAt = &paidAt.Time
	}
	if cancelledAt.Valid {
		r.CancelledAt = &cancelledAt.Time
	}
	return r, nil
}

func scanReservations(rows *sql.Rows) ([]*models.Reservation, error) {
	result := make([]*models.Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateReservation сохраняет новую бронь и возвращает её с присвоенным id.
func (s *Storage) CreateReservation(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	const op = "storage.CreateReservation"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO reservations (package_id, tourist_id, operator_id, start_date, end_date,
			      adults, children, total_price_cents, status, special_needs, notes,
			      created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
			  RETURNING ` + reservationColumns
	created, err := scanReservation(s.DB.QueryRowContext(ctx, query,
		r.PackageID, r.TouristID, r.OperatorID, r.StartDate, r.EndDate,
		r.Adults, r.Children, r.TotalPriceCents, string(r.Status), r.SpecialNeeds, r.Notes,
		r.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetReservation возвращает бронь по id.
func (s *Storage) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	const op = "storage.GetReservation"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	r, err := scanReservation(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return r, nil
}

// TransitionReservation атомарно переводит бронь в change.To, если её текущее
// состояние входит в from. Иначе возвращает models.ErrInvalidTransition.
func (s *Storage) TransitionReservation(ctx context.Context, id int64, from []models.ReservationStatus,
	change models.StatusChange) (*models.Reservation, error) {
	const op = "storage.TransitionReservation"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var cancelledAt, paidAt *time.Time
	if change.To == models.StatusCancelled {
		cancelledAt = &change.At
	}
	if change.MarkPaid {
		paidAt = &change.At
	}

	query := `UPDATE reservations SET
			      status = $2,
			      updated_at = $3,
			      cancellation_reason = COALESCE($4, cancellation_reason),
			      cancelled_at = COALESCE($5, cancelled_at),
			      paid = paid OR $6,
			      paid_at = COALESCE(paid_at, $7),
			      payment_method = COALESCE($8, payment_method)
			  WHERE id = $1 AND status = ANY($9)
			  RETURNING ` + reservationColumns
	r, err := scanReservation(s.DB.QueryRowContext(ctx, query, id,
		string(change.To), change.At, change.CancellationReason, cancelledAt,
		change.MarkPaid, paidAt, change.PaymentMethod, statusStrings(from)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidTransition)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// UpdateTripDetails меняет параметры поездки, пока бронь ожидает подтверждения
// и принадлежит touristID.
func (s *Storage) UpdateTripDetails(ctx context.Context, id int64, touristID string,
	details models.TripDetails, totalPriceCents int64, at time.Time) (*models.Reservation, error) {
	const op = "storage.UpdateTripDetails"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reservations SET
			      start_date = $3,
			      end_date = $4,
			      adults = $5,
			      children = $6,
			      special_needs = $7,
			      notes = $8,
			      total_price_cents = $9,
			      updated_at = $10
			  WHERE id = $1 AND tourist_id = $2 AND status = 'pending'
			  RETURNING ` + reservationColumns
	r, err := scanReservation(s.DB.QueryRowContext(ctx, query, id, touristID,
		details.StartDate, details.EndDate, details.Adults, details.Children,
		details.SpecialNeeds, details.Notes, totalPriceCents, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidTransition)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// ListByTourist возвращает брони туриста, новые первыми.
func (s *Storage) ListByTourist(ctx context.Context, touristID string, limit, offset int) ([]*models.Reservation, error) {
	const op = "storage.ListByTourist"
	res, err := s.listBy(ctx, "tourist_id", touristID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// ListByOperator возвращает брони на турпакеты оператора, новые первыми.
func (s *Storage) ListByOperator(ctx context.Context, operatorID string, limit, offset int) ([]*models.Reservation, error) {
	const op = "storage.ListByOperator"
	res, err := s.listBy(ctx, "operator_id", operatorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// column подставляется только из констант вызывающих функций.
func (s *Storage) listBy(ctx context.Context, column, value string, limit, offset int) ([]*models.Reservation, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations
			  WHERE ` + column + ` = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, value, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	return scanReservations(rows)
}

// CompleteFinished завершает подтверждённые брони, у которых end_date раньше today.
func (s *Storage) CompleteFinished(ctx context.Context, today, at time.Time) ([]*models.Reservation, error) {
	const op = "storage.CompleteFinished"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reservations SET status = 'completed', updated_at = $2
			  WHERE status = 'confirmed' AND end_date < $1
			  RETURNING ` + reservationColumns
	rows, err := s.DB.QueryContext(ctx, query, today, at)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	res, err := scanReservations(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func statusStrings(statuses []models.ReservationStatus) []string {
	res := make([]string, len(statuses))
	for i, st := range statuses {
		res[i] = string(st)
	}
	return res
}
