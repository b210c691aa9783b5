package services

import (
	"context"
	"log/slog"
	"time"
)

type DispatchRunner interface {
	Run(ctx context.Context, req DispatchRequest) (DispatchSummary, error)
}

// ReminderScheduler triggers a dispatch run on a fixed interval until ctx ends.
type ReminderScheduler struct {
	runner   DispatchRunner
	interval time.Duration
	log      *slog.Logger
}

func NewReminderScheduler(runner DispatchRunner, interval time.Duration, log *slog.Logger) *ReminderScheduler {
	return &ReminderScheduler{runner: runner, interval: interval, log: log}
}

func (s *ReminderScheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	s.log.Info("scheduled reminders enabled", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *ReminderScheduler) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduled reminder panic", "panic", r)
		}
	}()

	summary, err := s.runner.Run(ctx, DispatchRequest{})
	if err != nil {
		s.log.Error("scheduled reminder run failed", "error", err)
		return
	}
	s.log.Info("scheduled reminder run complete", "members", summary.Total)
}
