package reservation

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/magabrotheeeer/tour-reservations/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryRepo повторяет условные UPDATE хранилища под мьютексом.
type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Reservation
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: map[int64]*models.Reservation{}}
}

func (m *memoryRepo) CreateReservation(_ context.Context, r *models.Reservation) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	stored := *r
	stored.ID = m.nextID
	m.rows[stored.ID] = &stored
	res := stored
	return &res, nil
}

func (m *memoryRepo) GetReservation(_ context.Context, id int64) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	res := *r
	return &res, nil
}

func (m *memoryRepo) TransitionReservation(_ context.Context, id int64, from []models.ReservationStatus, change models.StatusChange) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || !slices.Contains(from, r.Status) {
		return nil, models.ErrInvalidTransition
	}
	r.Status = change.To
	r.UpdatedAt = change.At
	if change.CancellationReason != nil {
		r.CancellationReason = change.CancellationReason
	}
	if change.To == models.StatusCancelled {
		at := change.At
		r.CancelledAt = &at
	}
	if change.MarkPaid {
		r.Paid = true
		if r.PaidAt == nil {
			at := change.At
			r.PaidAt = &at
		}
	}
	if change.PaymentMethod != nil {
		r.PaymentMethod = change.PaymentMethod
	}
	res := *r
	return &res, nil
}

func (m *memoryRepo) UpdateTripDetails(_ context.Context, id int64, touristID string, d models.TripDetails, total int64, at time.Time) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || r.TouristID != touristID || r.Status != models.StatusPending {
		return nil, models.ErrInvalidTransition
	}
	r.StartDate, r.EndDate = d.StartDate, d.EndDate
	r.Adults, r.Children = d.Adults, d.Children
	r.SpecialNeeds, r.Notes = d.SpecialNeeds, d.Notes
	r.TotalPriceCents = total
	r.UpdatedAt = at
	res := *r
	return &res, nil
}

func (m *memoryRepo) list(match func(*models.Reservation) bool, limit, offset int) []*models.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]*models.Reservation, 0)
	for _, r := range m.rows {
		if match(r) {
			c := *r
			res = append(res, &c)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	if offset >= len(res) {
		return []*models.Reservation{}
	}
	res = res[offset:]
	if len(res) > limit {
		res = res[:limit]
	}
	return res
}

func (m *memoryRepo) ListByTourist(_ context.Context, touristID string, limit, offset int) ([]*models.Reservation, error) {
	return m.list(func(r *models.Reservation) bool { return r.TouristID == touristID }, limit, offset), nil
}

func (m *memoryRepo) ListByOperator(_ context.Context, operatorID string, limit, offset int) ([]*models.Reservation, error) {
	return m.list(func(r *models.Reservation) bool { return r.OperatorID == operatorID }, limit, offset), nil
}

func (m *memoryRepo) CompleteFinished(_ context.Context, today, at time.Time) ([]*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]*models.Reservation, 0)
	for _, r := range m.rows {
		if r.Status == models.StatusConfirmed && r.EndDate.Before(today) {
			r.Status = models.StatusCompleted
			r.UpdatedAt = at
			c := *r
			res = append(res, &c)
		}
	}
	return res, nil
}

// packagesStub хранит турпакеты по id.
type packagesStub map[int64]models.TourPackage

func (p packagesStub) get(id int64) (models.TourPackage, error) {
	pkg, ok := p[id]
	if !ok {
		return models.TourPackage{}, models.ErrNotFound
	}
	return pkg, nil
}

func (p packagesStub) GetOwnerID(_ context.Context, id int64) (string, error) {
	pkg, err := p.get(id)
	return pkg.OperatorID, err
}

func (p packagesStub) GetPricePerPerson(_ context.Context, id int64) (int64, error) {
	pkg, err := p.get(id)
	return pkg.PricePerPersonCents, err
}

func (p packagesStub) GetCancellationPolicy(_ context.Context, id int64) (models.CancellationPolicy, error) {
	pkg, err := p.get(id)
	return models.CancellationPolicy{Allowed: pkg.AllowsLateCancellation, WindowDays: pkg.CancellationWindowDays}, err
}

// recordingPublisher запоминает опубликованные события.
type recordingPublisher struct {
	mu     sync.Mutex
	err    error
	events []models.ReservationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event models.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := make([]string, len(p.events))
	for i, e := range p.events {
		res[i] = e.Type
	}
	return res
}

// clock управляемые часы.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
