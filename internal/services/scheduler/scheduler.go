// Package scheduler периодически завершает брони, поездка по которым закончилась.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/tour-reservations/internal/lib/sl"
)

// Completer завершает закончившиеся брони и возвращает их число.
type Completer interface {
	CompleteFinished(ctx context.Context) (int, error)
}

type SchedulerService struct {
	completer Completer
	interval  time.Duration
	log       *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(completer Completer, interval time.Duration, log *slog.Logger) *SchedulerService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SchedulerService{
		completer: completer,
		interval:  interval,
		log:       log,
	}
}

// Run выполняет проход сразу и затем с заданным интервалом, пока не отменён ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.runCompleteFinished(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCompleteFinished(ctx)
		}
	}
}

func (s *SchedulerService) runCompleteFinished(ctx context.Context) {
	s.log.Info("completing finished reservations")
	n, err := s.completer.CompleteFinished(ctx)
	if err != nil {
		s.log.Error("failed to complete reservations", sl.Err(err))
		return
	}
	if n == 0 {
		s.log.Info("no finished reservations found")
		return
	}
	s.log.Info("finished reservations completed", slog.Int("count", n))
}
