package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

// GetPackage возвращает условия турпакета, нужные для бронирования.
func (s *Storage) GetPackage(ctx context.Context, id int64) (*models.TourPackage, error) {
	const op = "storage.GetPackage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, operator_id, title, price_per_person_cents,
			      allows_late_cancellation, cancellation_window_days, active
			  FROM packages
			  WHERE id = $1`
	p := &models.TourPackage{}
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.OperatorID, &p.Title,
		&p.PricePerPersonCents, &p.AllowsLateCancellation, &p.CancellationWindowDays, &p.Active)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return p, nil
}
