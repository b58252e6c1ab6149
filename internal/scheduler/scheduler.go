package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is one unit of periodic housekeeping.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler runs every task on each tick until the context ends.
type Scheduler struct {
	Tasks    []Task
	Interval time.Duration
	Logger   *slog.Logger

	wg sync.WaitGroup
}

func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	// kick immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	for _, task := range s.Tasks {
		task := task
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := task.Run(ctx); err != nil {
				s.logger().Warn("scheduler: task failed", slog.String("task", task.Name), slog.Any("error", err))
			}
		}()
	}
	s.wg.Wait()
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// ExpireDrafts adapts a draft store's Expire into a Task.
func ExpireDrafts(expire func() int, logger *slog.Logger) Task {
	return Task{
		Name: "expire-drafts",
		Run: func(context.Context) error {
			if n := expire(); n > 0 && logger != nil {
				logger.Debug("expired abandoned drafts", slog.Int("count", n))
			}
			return nil
		},
	}
}
