package models

import "time"

// ReservationStatus состояние брони.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
)

var transitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransitionTo сообщает, допускает ли конечный автомат переход в next.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal сообщает, что из состояния нет переходов.
func (s ReservationStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// SourcesOf возвращает состояния, из которых возможен переход в target.
func SourcesOf(target ReservationStatus) []ReservationStatus {
	var res []ReservationStatus
	for _, from := range []ReservationStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		if from.CanTransitionTo(target) {
			res = append(res, from)
		}
	}
	return res
}

// Reservation описывает бронь турпакета туристом.
type Reservation struct {
	ID                 int64             `json:"id"`
	PackageID          int64             `json:"package_id"`
	TouristID          string            `json:"tourist_id"`
	OperatorID         string            `json:"operator_id"`
	StartDate          time.Time         `json:"start_date"`
	EndDate            time.Time         `json:"end_date"`
	Adults             int               `json:"adults"`
	Children           int               `json:"children"`
	TotalPriceCents    int64             `json:"total_price_cents"`
	Status             ReservationStatus `json:"status"`
	Paid               bool              `json:"paid"`
	PaidAt             *time.Time        `json:"paid_at,omitempty"`
	PaymentMethod      *string           `json:"payment_method,omitempty"`
	SpecialNeeds       *string           `json:"special_needs,omitempty"`
	Notes              *string           `json:"notes,omitempty"`
	CancellationReason *string           `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// Headcount возвращает общее число путешественников.
func (r *Reservation) Headcount() int {
	return r.Adults + r.Children
}

// StatusChange содержит данные атомарного перехода состояния.
type StatusChange struct {
	To                 ReservationStatus
	At                 time.Time
	CancellationReason *string
	PaymentMethod      *string
	MarkPaid           bool
}

// TripDetails задаёт набор полей, которые турист может изменить в ожидающей брони.
type TripDetails struct {
	StartDate    time.Time
	EndDate      time.Time
	Adults       int
	Children     int
	SpecialNeeds *string
	Notes        *string
}

// Actor инициатор операции над бронью: пользователь или сама система.
// Флаги ролей берутся из актуальной записи пользователя, а не из токена.
type Actor struct {
	UserID     string
	IsOperator bool
	IsVerified bool
	System     bool
}

// SystemActor используется фоновыми задачами.
var SystemActor = Actor{System: true}

// UserActor создаёт инициатора по пользователю. Для nil возвращается анонимный инициатор.
func UserActor(user *User) Actor {
	if user == nil {
		return Actor{}
	}
	return Actor{UserID: user.UUID, IsOperator: user.IsOperator, IsVerified: user.IsVerified}
}

// VerifiedOperator сообщает, что инициатор является проверенным оператором.
func (a Actor) VerifiedOperator() bool {
	return a.IsOperator && a.IsVerified
}

// ReservationEvent публикуется при каждом переходе состояния брони.
type ReservationEvent struct {
	Type          string            `json:"type"`
	ReservationID int64             `json:"reservation_id"`
	PackageID     int64             `json:"package_id"`
	TouristID     string            `json:"tourist_id"`
	OperatorID    string            `json:"operator_id"`
	Status        ReservationStatus `json:"status"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// Типы событий броней. Совпадают с ключами маршрутизации в RabbitMQ.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationCompleted = "reservation.completed"
	EventReservationUpdated   = "reservation.updated"
)

// EventTypeFor возвращает тип события для перехода в состояние status.
func EventTypeFor(status ReservationStatus) string {
	switch status {
	case StatusConfirmed:
		return EventReservationConfirmed
	case StatusCancelled:
		return EventReservationCancelled
	case StatusCompleted:
		return EventReservationCompleted
	default:
		return EventReservationCreated
	}
}

// NewReservationEvent собирает событие по текущему состоянию брони.
func NewReservationEvent(eventType string, r *Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID,
		PackageID:     r.PackageID,
		TouristID:     r.TouristID,
		OperatorID:    r.OperatorID,
		Status:        r.Status,
		OccurredAt:    at,
	}
}
