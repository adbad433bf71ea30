// Package metrics регистрирует метрики Prometheus сервиса бронирований.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReservationTransitions считает успешные переходы состояния брони.
	ReservationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tour_reservations",
		Name:      "reservation_transitions_total",
		Help:      "Number of reservation status transitions.",
	}, []string{"status"})

	// ReservationRejections считает отклонённые операции над бронями по причине.
	ReservationRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tour_reservations",
		Name:      "reservation_rejections_total",
		Help:      "Number of rejected reservation operations.",
	}, []string{"operation", "reason"})

	// AuthAttempts считает попытки входа и обновления токенов по результату.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tour_reservations",
		Name:      "auth_attempts_total",
		Help:      "Number of login and refresh attempts.",
	}, []string{"operation", "result"})

	// HTTPRequestDuration — длительность обработки HTTP-запросов.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tour_reservations",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "code"})
)
