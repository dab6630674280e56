package preview

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// scheduler triggers periodic rebuilds.
type scheduler struct {
	s gocron.Scheduler
}

// startScheduler runs trigger every interval until Stop.
func startScheduler(interval time.Duration, trigger func()) (*scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			slog.Info("Scheduled rebuild", slog.Duration("interval", interval))
			trigger()
		}),
		gocron.WithName("periodic-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	s.Start()
	return &scheduler{s: s}, nil
}

func (s *scheduler) Stop() error {
	if s == nil {
		return nil
	}
	return s.s.Shutdown()
}
